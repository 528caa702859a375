package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Chat is a two-participant thread. User1/User2 are positional only;
// membership checks treat the pair as unordered.
type Chat struct {
	ID        uuid.UUID
	User1ID   uuid.UUID
	User2ID   uuid.UUID
	CreatedAt time.Time
}

// HasParticipant reports whether id is one of the two chat members.
func (c Chat) HasParticipant(id uuid.UUID) bool {
	return c.User1ID == id || c.User2ID == id
}

type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	Timestamp time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserID       uuid.UUID
}

// ChatDetail is a chat joined with both participants and its newest
// message, shaped for the list/detail responses.
type ChatDetail struct {
	Chat
	User1       User
	User2       User
	LastMessage *Message
}

type MessageDetail struct {
	Message
	Author User
}
