package account

import (
	"context"

	"github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/dto"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/google/uuid"
)

type Service interface {
	// Register creates an inactive account and dispatches a verification
	// code to its email.
	Register(ctx context.Context, dto dto.RegisterDTO) (model.User, error)

	// Verify consumes the code and activates the account. A code is
	// accepted at most once.
	Verify(ctx context.Context, dto dto.VerifyCodeDTO) error

	// ResendCode regenerates the code, replacing any pending one.
	ResendCode(ctx context.Context, dto dto.ResendCodeDTO) error

	// Login checks credentials and issues a token pair. An unverified
	// account with the right password is rejected distinctly.
	Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error)

	Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error)

	GetAccount(ctx context.Context, id uuid.UUID) (model.User, error)
}
