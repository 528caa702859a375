package repo

import (
	"context"

	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/google/uuid"
)

type SortKey string

const (
	SortByCreatedAt SortKey = "created_at"
	SortByTimestamp SortKey = "timestamp"
	SortByID        SortKey = "id"
)

// ChatQuery scopes and orders a chat listing. ParticipantID is mandatory:
// chat listings are always caller-scoped.
type ChatQuery struct {
	ParticipantID uuid.UUID
	Sort          SortKey
	Desc          bool
}

type ChatRepo interface {
	CreateChat(ctx context.Context, c model.Chat) (uuid.UUID, error)

	GetChatByID(ctx context.Context, id uuid.UUID) (model.Chat, error)

	FindChatsForParticipant(ctx context.Context, q ChatQuery) ([]model.Chat, error)
}

// MessageQuery orders a message listing, optionally narrowed to an author.
type MessageQuery struct {
	AuthorID uuid.UUID
	Sort     SortKey
	Desc     bool
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m model.Message) (uuid.UUID, error)

	GetMessageByID(ctx context.Context, id uuid.UUID) (model.Message, error)

	// FindMessagesByChat returns the chat's messages ascending by
	// timestamp, id as the tiebreak.
	FindMessagesByChat(ctx context.Context, chatID uuid.UUID) ([]model.Message, error)

	FindMessagesByAuthor(ctx context.Context, q MessageQuery) ([]model.Message, error)

	// LastMessageByChat returns ErrNotFound for an empty chat.
	LastMessageByChat(ctx context.Context, chatID uuid.UUID) (model.Message, error)

	UpdateMessage(ctx context.Context, m model.Message) error

	DeleteMessage(ctx context.Context, id uuid.UUID) error
}
