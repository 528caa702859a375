package chat

import (
	"context"

	"github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/dto"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/repo"
	"github.com/google/uuid"
)

// ListOptions is the caller-facing slice of ChatQuery/MessageQuery: the
// participant scope is always the caller and never client-supplied.
type ListOptions struct {
	Sort repo.SortKey
	Desc bool
}

type Service interface {
	// CreateChat opens a thread between the caller and the account behind
	// counterpart's email.
	CreateChat(ctx context.Context, caller uuid.UUID, dto dto.CreateChatDTO) (model.ChatDetail, error)

	// ListChats returns only chats the caller participates in.
	ListChats(ctx context.Context, caller uuid.UUID, opts ListOptions) ([]model.ChatDetail, error)

	GetChat(ctx context.Context, caller, chatID uuid.UUID) (model.ChatDetail, error)

	// PostMessage appends to the chat ledger; the author is the caller
	// regardless of anything in the request body.
	PostMessage(ctx context.Context, caller, chatID uuid.UUID, dto dto.PostMessageDTO) (model.MessageDetail, error)

	// ListMessages returns the chat's messages ascending by timestamp.
	ListMessages(ctx context.Context, caller, chatID uuid.UUID) ([]model.MessageDetail, error)

	// MyMessages lists messages authored by the caller.
	MyMessages(ctx context.Context, caller uuid.UUID, opts ListOptions) ([]model.MessageDetail, error)

	GetMessage(ctx context.Context, caller, messageID uuid.UUID) (model.MessageDetail, error)

	UpdateMessage(ctx context.Context, caller, messageID uuid.UUID, dto dto.UpdateMessageDTO) (model.MessageDetail, error)

	DeleteMessage(ctx context.Context, caller, messageID uuid.UUID) error

	// EmailTranscript mails the full chat history to the caller.
	EmailTranscript(ctx context.Context, caller, chatID uuid.UUID) error
}
