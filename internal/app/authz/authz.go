package authz

import (
	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/google/uuid"
)

// ChatAuth gates access to a chat thread: only its two participants may
// view or act inside it.
type ChatAuth struct{}

func (ChatAuth) CanView(caller uuid.UUID, chat model.Chat) error {
	if !chat.HasParticipant(caller) {
		return customErrors.ErrForbidden
	}
	return nil
}

// CanPost applies the same participant rule; the author of a created
// message is always forced to the caller upstream.
func (a ChatAuth) CanPost(caller uuid.UUID, chat model.Chat) error {
	return a.CanView(caller, chat)
}

// MessageAuth gates access to an individual message. Viewing requires
// membership in the parent chat; mutation is author-only and denial is 403
// even though the resource demonstrably exists.
type MessageAuth struct{}

func (MessageAuth) CanView(caller uuid.UUID, _ model.Message, parent model.Chat) error {
	if !parent.HasParticipant(caller) {
		return customErrors.ErrForbidden
	}
	return nil
}

func (MessageAuth) CanMutate(caller uuid.UUID, msg model.Message) error {
	if msg.AuthorID != caller {
		return customErrors.ErrForbidden
	}
	return nil
}
