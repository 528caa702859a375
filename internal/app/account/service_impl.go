package account

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/Velmor/DuoChat/chat-service/internal/adapters/mail"
	"github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/jwt"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/repo"
	"github.com/Velmor/DuoChat/chat-service/internal/infra/config"
	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// Dispatcher is the async notification sink; Enqueue must not block the
// request path.
type Dispatcher interface {
	Enqueue(job mail.Job)
}

type accountService struct {
	userRepo   repo.UserRepo
	codeRepo   repo.CodeRepo
	dispatcher Dispatcher
	tokenUtil  jwt.TokenUtil
	cfg        *config.Config
	v          *validator.Validate
	log        *zap.Logger
}

func New(
	ur repo.UserRepo,
	cr repo.CodeRepo,
	d Dispatcher,
	tu jwt.TokenUtil,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &accountService{
		userRepo: ur, codeRepo: cr, dispatcher: d,
		tokenUtil: tu, cfg: cfg, v: v, log: log,
	}
}

func (a *accountService) Register(ctx context.Context, dto dto.RegisterDTO) (model.User, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := argon2id.CreateHash(dto.Password+a.cfg.PasswordPepper, argonParams)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(dto.Email),
		PasswordHash: passwordHash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		IsActive:     false,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	// The account row survives a code-store or mail failure: the user can
	// always ask for a resend, so nothing is rolled back here.
	if err := a.issueCode(ctx, user.Email); err != nil {
		a.log.Error("verification code not dispatched",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	return user, nil
}

func (a *accountService) Verify(ctx context.Context, dto dto.VerifyCodeDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	email := strings.ToLower(dto.Email)
	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "Verify")
	}

	if err := a.codeRepo.Consume(ctx, email, dto.Code); err != nil {
		if errors.Is(err, customErrors.ErrInvalidCode) {
			return customErrors.ErrInvalidCode
		}
		return err
	}

	user.IsActive = true
	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		return customErrors.WrapInternal(err, "Verify")
	}
	return nil
}

func (a *accountService) ResendCode(ctx context.Context, dto dto.ResendCodeDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	email := strings.ToLower(dto.Email)
	if _, err := a.userRepo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return customErrors.ErrNotFound
		}
		return customErrors.WrapInternal(err, "ResendCode")
	}

	// Active accounts may still request a code; the extra mail is harmless.
	return a.issueCode(ctx, email)
}

func (a *accountService) Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, strings.ToLower(dto.Email))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(dto.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return model.TokenPair{}, customErrors.ErrNotVerified
	}

	return a.issueTokens(user.ID)
}

func (a *accountService) Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.tokenUtil.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}
	return a.issueTokens(uid)
}

func (a *accountService) GetAccount(ctx context.Context, id uuid.UUID) (model.User, error) {
	return a.userRepo.GetUserByID(ctx, id)
}

func (a *accountService) issueCode(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return customErrors.WrapInternal(err, "generate code")
	}
	if err := a.codeRepo.Put(ctx, email, code); err != nil {
		return err
	}
	a.dispatcher.Enqueue(mail.Job{
		To:      email,
		Subject: "Your verification code",
		Body:    "Your verification code is " + code,
	})
	return nil
}

func (a *accountService) issueTokens(uid uuid.UUID) (model.TokenPair, error) {
	at, atExp, err := a.tokenUtil.GenerateAccessToken(uid)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, err := a.tokenUtil.GenerateRefreshToken(uid)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserID:       uid,
	}, nil
}

// generateCode draws six uniformly random uppercase-alphanumeric characters.
func generateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}
