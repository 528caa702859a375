package authz

import (
	"testing"

	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChatAuth_Participants(t *testing.T) {
	u1, u2, outsider := uuid.New(), uuid.New(), uuid.New()
	chat := model.Chat{ID: uuid.New(), User1ID: u1, User2ID: u2}

	var auth ChatAuth
	require.NoError(t, auth.CanView(u1, chat))
	require.NoError(t, auth.CanView(u2, chat))
	require.NoError(t, auth.CanPost(u2, chat))

	err := auth.CanView(outsider, chat)
	require.True(t, customErrors.IsForbidden(err))
	err = auth.CanPost(outsider, chat)
	require.True(t, customErrors.IsForbidden(err))
}

func TestMessageAuth_ViewRequiresMembership(t *testing.T) {
	u1, u2, outsider := uuid.New(), uuid.New(), uuid.New()
	chat := model.Chat{ID: uuid.New(), User1ID: u1, User2ID: u2}
	msg := model.Message{ID: uuid.New(), ChatID: chat.ID, AuthorID: u1}

	var auth MessageAuth
	require.NoError(t, auth.CanView(u1, msg, chat))
	require.NoError(t, auth.CanView(u2, msg, chat))
	require.True(t, customErrors.IsForbidden(auth.CanView(outsider, msg, chat)))
}

func TestMessageAuth_MutateAuthorOnly(t *testing.T) {
	author, peer := uuid.New(), uuid.New()
	msg := model.Message{ID: uuid.New(), AuthorID: author}

	var auth MessageAuth
	require.NoError(t, auth.CanMutate(author, msg))

	// the other participant may read it but never mutate it
	require.True(t, customErrors.IsForbidden(auth.CanMutate(peer, msg)))
}
