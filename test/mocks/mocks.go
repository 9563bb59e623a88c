package mocks

import (
	"context"
	"time"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
)

// UserRepositoryMock is a lightweight mock for UserRepository
type UserRepositoryMock struct {
	CreateFn               func(ctx context.Context, u *user.User) error
	GetByIDFn              func(ctx context.Context, id int64) (*user.User, error)
	GetByUsernameFn        func(ctx context.Context, username string) (*user.User, error)
	GetByEmailFn           func(ctx context.Context, email string) (*user.User, error)
	GetByUsernameOrEmailFn func(ctx context.Context, username, email string) (*user.User, error)
	UpdateFn               func(ctx context.Context, u *user.User) error
	DeleteFn               func(ctx context.Context, id int64) error
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	if m.GetByUsernameOrEmailFn != nil {
		return m.GetByUsernameOrEmailFn(ctx, username, email)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) Update(ctx context.Context, u *user.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// UserServiceMock is a lightweight mock for UserService
type UserServiceMock struct {
	RegisterFn              func(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
	GetUserFn               func(ctx context.Context, id int64) (*user.User, error)
	UpdateUserFn            func(ctx context.Context, id int64, req *user.UpdateUserRequest) (*user.User, error)
	DeleteUserFn            func(ctx context.Context, id int64) error
	SendVerificationEmailFn func(ctx context.Context, u *user.User) error
	VerifyEmailFn           func(ctx context.Context, token string) (*user.User, error)
}

func (m *UserServiceMock) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, req)
	}
	return &user.User{ID: 1, Username: req.Username, Email: req.Email}, nil
}
func (m *UserServiceMock) GetUser(ctx context.Context, id int64) (*user.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserServiceMock) UpdateUser(ctx context.Context, id int64, req *user.UpdateUserRequest) (*user.User, error) {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, id, req)
	}
	return &user.User{ID: id, Username: req.Username, Email: req.Email}, nil
}
func (m *UserServiceMock) DeleteUser(ctx context.Context, id int64) error {
	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, id)
	}
	return nil
}
func (m *UserServiceMock) SendVerificationEmail(ctx context.Context, u *user.User) error {
	if m.SendVerificationEmailFn != nil {
		return m.SendVerificationEmailFn(ctx, u)
	}
	return nil
}
func (m *UserServiceMock) VerifyEmail(ctx context.Context, token string) (*user.User, error) {
	if m.VerifyEmailFn != nil {
		return m.VerifyEmailFn(ctx, token)
	}
	return nil, user.ErrVerificationToken
}

// AuthServiceMock is a lightweight mock for AuthService
type AuthServiceMock struct {
	LoginFn       func(ctx context.Context, req *auth.LoginRequest) (string, *user.User, error)
	IssueTokenFn  func(u *user.User) (string, error)
	VerifyTokenFn func(tokenString string) (*auth.Claims, error)
}

func (m *AuthServiceMock) Login(ctx context.Context, req *auth.LoginRequest) (string, *user.User, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return "", nil, auth.ErrInvalidCredentials
}
func (m *AuthServiceMock) IssueToken(u *user.User) (string, error) {
	if m.IssueTokenFn != nil {
		return m.IssueTokenFn(u)
	}
	return "token", nil
}
func (m *AuthServiceMock) VerifyToken(tokenString string) (*auth.Claims, error) {
	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(tokenString)
	}
	return nil, auth.ErrTokenInvalid
}

// EmailServiceMock is a lightweight mock for EmailService
type EmailServiceMock struct {
	SendVerificationEmailFn func(ctx context.Context, email, username, token string) error
}

func (m *EmailServiceMock) SendVerificationEmail(ctx context.Context, email, username, token string) error {
	if m.SendVerificationEmailFn != nil {
		return m.SendVerificationEmailFn(ctx, email, username, token)
	}
	return nil
}

// EmailTokenRepositoryMock is a lightweight mock for EmailTokenRepository
type EmailTokenRepositoryMock struct {
	StoreFn   func(ctx context.Context, token string, userID int64, ttl time.Duration) error
	ConsumeFn func(ctx context.Context, token string) (int64, error)
}

func (m *EmailTokenRepositoryMock) Store(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if m.StoreFn != nil {
		return m.StoreFn(ctx, token, userID, ttl)
	}
	return nil
}
func (m *EmailTokenRepositoryMock) Consume(ctx context.Context, token string) (int64, error) {
	if m.ConsumeFn != nil {
		return m.ConsumeFn(ctx, token)
	}
	return 0, user.ErrVerificationToken
}

// RateLimitStoreMock is a lightweight mock for RateLimitStore
type RateLimitStoreMock struct {
	IncrementFn func(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error)
	ResetFn     func(ctx context.Context, key string) error
	ResetAllFn  func(ctx context.Context) error
}

func (m *RateLimitStoreMock) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	if m.IncrementFn != nil {
		return m.IncrementFn(ctx, key, window, now)
	}
	return 1, now, nil
}
func (m *RateLimitStoreMock) Reset(ctx context.Context, key string) error {
	if m.ResetFn != nil {
		return m.ResetFn(ctx, key)
	}
	return nil
}
func (m *RateLimitStoreMock) ResetAll(ctx context.Context) error {
	if m.ResetAllFn != nil {
		return m.ResetAllFn(ctx)
	}
	return nil
}

// RateLimiterMock is a lightweight mock for RateLimiter
type RateLimiterMock struct {
	AdmitFn    func(ctx context.Context, key string) error
	ResetKeyFn func(ctx context.Context, key string) error
	ResetAllFn func(ctx context.Context) error
	UsedKeysFn func() []string
}

func (m *RateLimiterMock) Admit(ctx context.Context, key string) error {
	if m.AdmitFn != nil {
		return m.AdmitFn(ctx, key)
	}
	return nil
}
func (m *RateLimiterMock) ResetKey(ctx context.Context, key string) error {
	if m.ResetKeyFn != nil {
		return m.ResetKeyFn(ctx, key)
	}
	return nil
}
func (m *RateLimiterMock) ResetAll(ctx context.Context) error {
	if m.ResetAllFn != nil {
		return m.ResetAllFn(ctx)
	}
	return nil
}
func (m *RateLimiterMock) UsedKeys() []string {
	if m.UsedKeysFn != nil {
		return m.UsedKeysFn()
	}
	return nil
}
