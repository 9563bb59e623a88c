package ports

import (
	"context"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
)

// UserRepository defines the interface for user data operations. Username and
// email carry uniqueness constraints at the storage layer.
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error)
	Update(ctx context.Context, user *user.User) error
	Delete(ctx context.Context, id int64) error
}

// UserService defines the interface for account business logic.
type UserService interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
	GetUser(ctx context.Context, id int64) (*user.User, error)
	UpdateUser(ctx context.Context, id int64, req *user.UpdateUserRequest) (*user.User, error)
	DeleteUser(ctx context.Context, id int64) error

	// Email verification
	SendVerificationEmail(ctx context.Context, u *user.User) error
	VerifyEmail(ctx context.Context, token string) (*user.User, error)
}
