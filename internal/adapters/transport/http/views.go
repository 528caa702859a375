package http

import (
	"time"

	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/google/uuid"
)

type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type MessageView struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	Author    UserView  `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatView struct {
	ID          uuid.UUID    `json:"id"`
	User1       UserView     `json:"user1"`
	User2       UserView     `json:"user2"`
	CreatedAt   time.Time    `json:"created_at"`
	LastMessage *MessageView `json:"last_message"`
}

type TokenPairView struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func userView(u model.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func messageView(m model.MessageDetail) MessageView {
	return MessageView{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Author:    userView(m.Author),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

func messageViews(ms []model.MessageDetail) []MessageView {
	out := make([]MessageView, 0, len(ms))
	for _, m := range ms {
		out = append(out, messageView(m))
	}
	return out
}

func chatView(c model.ChatDetail) ChatView {
	v := ChatView{
		ID:        c.ID,
		User1:     userView(c.User1),
		User2:     userView(c.User2),
		CreatedAt: c.CreatedAt,
	}
	if c.LastMessage != nil {
		mv := messageView(model.MessageDetail{Message: *c.LastMessage, Author: authorOf(c, c.LastMessage.AuthorID)})
		v.LastMessage = &mv
	}
	return v
}

func chatViews(cs []model.ChatDetail) []ChatView {
	out := make([]ChatView, 0, len(cs))
	for _, c := range cs {
		out = append(out, chatView(c))
	}
	return out
}

// authorOf resolves the last message's author from the chat's own pair;
// the author of a chat message is always one of the two participants.
func authorOf(c model.ChatDetail, id uuid.UUID) model.User {
	if c.User1.ID == id {
		return c.User1
	}
	return c.User2
}
