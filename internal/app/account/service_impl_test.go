package account

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	redisrepo "github.com/Velmor/DuoChat/chat-service/internal/adapters/db/redis"
	"github.com/Velmor/DuoChat/chat-service/internal/adapters/mail"
	"github.com/Velmor/DuoChat/chat-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	appjwt "github.com/Velmor/DuoChat/chat-service/internal/app/jwt"
	"github.com/Velmor/DuoChat/chat-service/internal/domain/model"
	"github.com/Velmor/DuoChat/chat-service/internal/infra/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userRepoStub struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[uuid.UUID]model.User)}
}

func (u *userRepoStub) CreateUser(ctx context.Context, m model.User) (uuid.UUID, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, v := range u.users {
		if strings.EqualFold(v.Email, m.Email) {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
	}
	u.users[m.ID] = m
	return m.ID, nil
}

func (u *userRepoStub) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, v := range u.users {
		if strings.EqualFold(v.Email, email) {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}

func (u *userRepoStub) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	v, ok := u.users[id]
	if !ok {
		return model.User{}, customErrors.ErrNotFound
	}
	return v, nil
}

func (u *userRepoStub) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[uuid.UUID]model.User)
	for _, id := range ids {
		if v, ok := u.users[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (u *userRepoStub) UpdateUser(ctx context.Context, m model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[m.ID] = m
	return nil
}

func (u *userRepoStub) DeleteUser(ctx context.Context, id uuid.UUID) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.users, id)
	return nil
}

type dispatcherStub struct {
	mu   sync.Mutex
	jobs []mail.Job
}

func (d *dispatcherStub) Enqueue(job mail.Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

// lastCode extracts the six-char code from the latest dispatched mail.
func (d *dispatcherStub) lastCode(t *testing.T) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.jobs)
	body := d.jobs[len(d.jobs)-1].Body
	return body[len(body)-6:]
}

func (d *dispatcherStub) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.jobs)
}

type fixture struct {
	svc   Service
	users *userRepoStub
	disp  *dispatcherStub
	mr    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)
	codeRepo := redisrepo.NewRedisCodeRepo(
		redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()}),
		120*time.Second,
	)

	cfg := &config.Config{
		JWTPrivateKeyPath: "../jwt/testdata/priv.pem",
		JWTPublicKeyPath:  "../jwt/testdata/pub.pem",
		AccessTokenTTL:    time.Minute,
		RefreshTokenTTL:   time.Hour,
		JWTIssuer:         "t",
		JWTAudience:       "t",
		PasswordPepper:    "p",
	}
	tokenUtil, err := appjwt.NewTokenUtil(cfg)
	require.NoError(t, err)

	v := validator.New()
	require.NoError(t, v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool { return true }))

	users := newUserRepoStub()
	disp := &dispatcherStub{}
	svc := New(users, codeRepo, disp, tokenUtil, cfg, v, zap.NewNop())
	return &fixture{svc: svc, users: users, disp: disp, mr: mr}
}

func TestAccountService_RegisterInactiveUntilVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	require.False(t, user.IsActive)
	require.Equal(t, 1, f.disp.count())

	code := f.disp.lastCode(t)
	require.Len(t, code, 6)

	err = f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: code})
	require.NoError(t, err)

	got, err := f.users.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, got.IsActive)
}

func TestAccountService_RegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	// duplicate across any activation state, case-insensitive
	_, err = f.svc.Register(ctx, dto.RegisterDTO{Email: "A@X.COM", Password: "Aa1aaaaa"})
	require.True(t, customErrors.IsAlreadyExists(err))
}

func TestAccountService_RegisterInvalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), dto.RegisterDTO{})
	require.Error(t, err)
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestAccountService_VerifyWrongThenRightThenReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	code := f.disp.lastCode(t)

	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	err = f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: wrong})
	require.True(t, customErrors.IsInvalidCode(err))

	require.NoError(t, f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: code}))

	// one-shot consumption: the same code must never work twice
	err = f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: code})
	require.True(t, customErrors.IsInvalidCode(err))
}

func TestAccountService_VerifyUnknownAccount(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Verify(context.Background(), dto.VerifyCodeDTO{Email: "ghost@x.com", Code: "ABC123"})
	require.True(t, customErrors.IsNotFound(err))
}

func TestAccountService_CodeExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	code := f.disp.lastCode(t)

	f.mr.FastForward(121 * time.Second)

	err = f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: code})
	require.True(t, customErrors.IsInvalidCode(err))
}

func TestAccountService_ResendOverwritesPendingCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	oldCode := f.disp.lastCode(t)

	require.NoError(t, f.svc.ResendCode(ctx, dto.ResendCodeDTO{Email: "a@x.com"}))
	newCode := f.disp.lastCode(t)

	if oldCode != newCode {
		err = f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: oldCode})
		require.True(t, customErrors.IsInvalidCode(err))
	}
	require.NoError(t, f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: newCode}))
}

func TestAccountService_ResendUnknownAccount(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ResendCode(context.Background(), dto.ResendCodeDTO{Email: "ghost@x.com"})
	require.True(t, customErrors.IsNotFound(err))
}

func TestAccountService_ResendForActiveAccountAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: f.disp.lastCode(t)}))

	require.NoError(t, f.svc.ResendCode(ctx, dto.ResendCodeDTO{Email: "a@x.com"}))
}

func TestAccountService_LoginFlows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	// right password, unverified account: distinct failure
	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.True(t, customErrors.IsNotVerified(err))

	// wrong password and unknown email are indistinguishable
	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "bad"})
	require.True(t, customErrors.IsInvalidCredentials(err))
	_, err = f.svc.Login(ctx, dto.LoginDTO{Email: "ghost@x.com", Password: "Aa1aaaaa"})
	require.True(t, customErrors.IsInvalidCredentials(err))

	require.NoError(t, f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: f.disp.lastCode(t)}))

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestAccountService_Refresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Verify(ctx, dto.VerifyCodeDTO{Email: "a@x.com", Code: f.disp.lastCode(t)}))
	pair, err := f.svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)

	// an access token is not a refresh token
	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.AccessToken})
	require.True(t, customErrors.IsWrongTokenType(err))

	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: "bad"})
	require.True(t, customErrors.IsInvalidToken(err))
}

func TestAccountService_RegisterSurvivesCodeStoreOutage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mr.Close()

	// the account row stays; the user recovers via resend later
	user, err := f.svc.Register(ctx, dto.RegisterDTO{Email: "a@x.com", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	_, err = f.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
}
