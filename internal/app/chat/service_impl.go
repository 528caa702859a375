package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Velmor/DuoChat/chat-service/internal/adapters/mail"
	"github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/dto"
	"github.com/Velmor/DuoChat/chat-service/internal/app/authz"
	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Dispatcher interface {
	Enqueue(job mail.Job)
}

type chatService struct {
	chatRepo   repo.ChatRepo
	msgRepo    repo.MessageRepo
	userRepo   repo.UserRepo
	chatAuth   authz.ChatAuth
	msgAuth    authz.MessageAuth
	dispatcher Dispatcher
	v          *validator.Validate
}

func New(
	cr repo.ChatRepo,
	mr repo.MessageRepo,
	ur repo.UserRepo,
	d Dispatcher,
	v *validator.Validate,
) Service {
	return &chatService{
		chatRepo: cr, msgRepo: mr, userRepo: ur,
		dispatcher: d, v: v,
	}
}

func (s *chatService) CreateChat(ctx context.Context, caller uuid.UUID, dto dto.CreateChatDTO) (model.ChatDetail, error) {
	if err := s.v.Struct(dto); err != nil {
		return model.ChatDetail{}, customErrors.NewInvalidArgument(err.Error())
	}

	counterpart, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(dto.User2))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.ChatDetail{}, customErrors.ErrNotFound
	case err != nil:
		return model.ChatDetail{}, customErrors.WrapInternal(err, "CreateChat")
	}

	if counterpart.ID == caller {
		return model.ChatDetail{}, customErrors.ErrSelfChat
	}

	chat := model.Chat{
		ID:      uuid.New(),
		User1ID: caller,
		User2ID: counterpart.ID,
	}
	if _, err := s.chatRepo.CreateChat(ctx, chat); err != nil {
		return model.ChatDetail{}, customErrors.WrapInternal(err, "CreateChat")
	}

	created, err := s.chatRepo.GetChatByID(ctx, chat.ID)
	if err != nil {
		return model.ChatDetail{}, customErrors.WrapInternal(err, "CreateChat")
	}
	return s.chatDetail(ctx, created)
}

func (s *chatService) ListChats(ctx context.Context, caller uuid.UUID, opts ListOptions) ([]model.ChatDetail, error) {
	q := repo.ChatQuery{
		ParticipantID: caller,
		Sort:          opts.Sort,
		Desc:          opts.Desc,
	}
	chats, err := s.chatRepo.FindChatsForParticipant(ctx, q)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListChats")
	}

	ids := make([]uuid.UUID, 0, len(chats)*2)
	for _, c := range chats {
		ids = append(ids, c.User1ID, c.User2ID)
	}
	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListChats")
	}

	out := make([]model.ChatDetail, 0, len(chats))
	for _, c := range chats {
		last, err := s.lastMessage(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ChatDetail{
			Chat:        c,
			User1:       users[c.User1ID],
			User2:       users[c.User2ID],
			LastMessage: last,
		})
	}
	return out, nil
}

func (s *chatService) GetChat(ctx context.Context, caller, chatID uuid.UUID) (model.ChatDetail, error) {
	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return model.ChatDetail{}, err
	}
	if err := s.chatAuth.CanView(caller, chat); err != nil {
		return model.ChatDetail{}, err
	}
	return s.chatDetail(ctx, chat)
}

func (s *chatService) PostMessage(ctx context.Context, caller, chatID uuid.UUID, dto dto.PostMessageDTO) (model.MessageDetail, error) {
	if err := s.v.Struct(dto); err != nil {
		return model.MessageDetail{}, customErrors.NewInvalidArgument(err.Error())
	}

	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return model.MessageDetail{}, err
	}
	if err := s.chatAuth.CanPost(caller, chat); err != nil {
		return model.MessageDetail{}, err
	}

	msg := model.Message{
		ID:        uuid.New(),
		ChatID:    chat.ID,
		AuthorID:  caller,
		Content:   dto.Content,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.msgRepo.CreateMessage(ctx, msg); err != nil {
		return model.MessageDetail{}, customErrors.WrapInternal(err, "PostMessage")
	}
	return s.messageDetail(ctx, msg)
}

func (s *chatService) ListMessages(ctx context.Context, caller, chatID uuid.UUID) ([]model.MessageDetail, error) {
	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := s.chatAuth.CanView(caller, chat); err != nil {
		return nil, err
	}

	msgs, err := s.msgRepo.FindMessagesByChat(ctx, chatID)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListMessages")
	}
	return s.messageDetails(ctx, msgs)
}

func (s *chatService) MyMessages(ctx context.Context, caller uuid.UUID, opts ListOptions) ([]model.MessageDetail, error) {
	msgs, err := s.msgRepo.FindMessagesByAuthor(ctx, repo.MessageQuery{
		AuthorID: caller,
		Sort:     opts.Sort,
		Desc:     opts.Desc,
	})
	if err != nil {
		return nil, customErrors.WrapInternal(err, "MyMessages")
	}
	return s.messageDetails(ctx, msgs)
}

func (s *chatService) GetMessage(ctx context.Context, caller, messageID uuid.UUID) (model.MessageDetail, error) {
	msg, chat, err := s.loadMessage(ctx, messageID)
	if err != nil {
		return model.MessageDetail{}, err
	}
	if err := s.msgAuth.CanView(caller, msg, chat); err != nil {
		return model.MessageDetail{}, err
	}
	return s.messageDetail(ctx, msg)
}

func (s *chatService) UpdateMessage(ctx context.Context, caller, messageID uuid.UUID, dto dto.UpdateMessageDTO) (model.MessageDetail, error) {
	if err := s.v.Struct(dto); err != nil {
		return model.MessageDetail{}, customErrors.NewInvalidArgument(err.Error())
	}

	msg, _, err := s.loadMessage(ctx, messageID)
	if err != nil {
		return model.MessageDetail{}, err
	}
	if err := s.msgAuth.CanMutate(caller, msg); err != nil {
		return model.MessageDetail{}, err
	}

	msg.Content = dto.Content
	if err := s.msgRepo.UpdateMessage(ctx, msg); err != nil {
		return model.MessageDetail{}, customErrors.WrapInternal(err, "UpdateMessage")
	}
	return s.messageDetail(ctx, msg)
}

func (s *chatService) DeleteMessage(ctx context.Context, caller, messageID uuid.UUID) error {
	msg, _, err := s.loadMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.msgAuth.CanMutate(caller, msg); err != nil {
		return err
	}
	if err := s.msgRepo.DeleteMessage(ctx, msg.ID); err != nil {
		return customErrors.WrapInternal(err, "DeleteMessage")
	}
	return nil
}

func (s *chatService) EmailTranscript(ctx context.Context, caller, chatID uuid.UUID) error {
	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return err
	}
	if err := s.chatAuth.CanView(caller, chat); err != nil {
		return err
	}

	callerUser, err := s.userRepo.GetUserByID(ctx, caller)
	if err != nil {
		return customErrors.WrapInternal(err, "EmailTranscript")
	}
	users, err := s.userRepo.GetUsersByIDs(ctx, []uuid.UUID{chat.User1ID, chat.User2ID})
	if err != nil {
		return customErrors.WrapInternal(err, "EmailTranscript")
	}

	msgs, err := s.msgRepo.FindMessagesByChat(ctx, chatID)
	if err != nil {
		return customErrors.WrapInternal(err, "EmailTranscript")
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", users[m.AuthorID].Email, m.Content))
	}

	s.dispatcher.Enqueue(mail.Job{
		To: callerUser.Email,
		Subject: fmt.Sprintf("Chat messages between %s and %s",
			users[chat.User1ID].Email, users[chat.User2ID].Email),
		Body: strings.Join(lines, "\n"),
	})
	return nil
}

func (s *chatService) loadChat(ctx context.Context, chatID uuid.UUID) (model.Chat, error) {
	chat, err := s.chatRepo.GetChatByID(ctx, chatID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Chat{}, customErrors.ErrNotFound
	case err != nil:
		return model.Chat{}, customErrors.WrapInternal(err, "GetChatByID")
	}
	return chat, nil
}

func (s *chatService) loadMessage(ctx context.Context, messageID uuid.UUID) (model.Message, model.Chat, error) {
	msg, err := s.msgRepo.GetMessageByID(ctx, messageID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Message{}, model.Chat{}, customErrors.ErrNotFound
	case err != nil:
		return model.Message{}, model.Chat{}, customErrors.WrapInternal(err, "GetMessageByID")
	}
	chat, err := s.loadChat(ctx, msg.ChatID)
	if err != nil {
		return model.Message{}, model.Chat{}, err
	}
	return msg, chat, nil
}

func (s *chatService) lastMessage(ctx context.Context, chatID uuid.UUID) (*model.Message, error) {
	last, err := s.msgRepo.LastMessageByChat(ctx, chatID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, customErrors.WrapInternal(err, "LastMessageByChat")
	}
	return &last, nil
}

func (s *chatService) chatDetail(ctx context.Context, chat model.Chat) (model.ChatDetail, error) {
	users, err := s.userRepo.GetUsersByIDs(ctx, []uuid.UUID{chat.User1ID, chat.User2ID})
	if err != nil {
		return model.ChatDetail{}, customErrors.WrapInternal(err, "chat users")
	}
	last, err := s.lastMessage(ctx, chat.ID)
	if err != nil {
		return model.ChatDetail{}, err
	}
	return model.ChatDetail{
		Chat:        chat,
		User1:       users[chat.User1ID],
		User2:       users[chat.User2ID],
		LastMessage: last,
	}, nil
}

func (s *chatService) messageDetail(ctx context.Context, msg model.Message) (model.MessageDetail, error) {
	author, err := s.userRepo.GetUserByID(ctx, msg.AuthorID)
	if err != nil {
		return model.MessageDetail{}, customErrors.WrapInternal(err, "message author")
	}
	return model.MessageDetail{Message: msg, Author: author}, nil
}

func (s *chatService) messageDetails(ctx context.Context, msgs []model.Message) ([]model.MessageDetail, error) {
	ids := make([]uuid.UUID, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.AuthorID)
	}
	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "message authors")
	}
	out := make([]model.MessageDetail, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, model.MessageDetail{Message: m, Author: users[m.AuthorID]})
	}
	return out, nil
}
