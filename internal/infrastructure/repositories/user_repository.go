package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
	"github.com/keyfold/user-gatekeeper/internal/core/ports"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/db"
)

// UserRepository implements the user repository interface on Postgres.
// Username and email lookups are case-insensitive; the pipeline normalizes
// inputs to lowercase before they reach here, but stored legacy rows may
// differ in case.
type UserRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *db.Database, logger *logrus.Logger) ports.UserRepository {
	return &UserRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a new user and fills in the generated id and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.DB.QueryRowxContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.EmailVerified,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": u.Username, "email": u.Email}).WithError(err).Error("db: failed to create user")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("db: user created")
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	query := `
		SELECT id, username, email, password_hash, email_verified, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"user_id": id}).Debug("db: user not found by ID")
			}
			return nil, user.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id}).WithError(err).Error("db: failed to get user by ID")
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	query := `
		SELECT id, username, email, password_hash, email_verified, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)`

	err := r.db.DB.GetContext(ctx, &u, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": username}).WithError(err).Error("db: failed to get user by username")
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := `
		SELECT id, username, email, password_hash, email_verified, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)`

	err := r.db.DB.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Error("db: failed to get user by email")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// GetByUsernameOrEmail finds an account holding either unique value.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	var u user.User
	query := `
		SELECT id, username, email, password_hash, email_verified, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)`

	err := r.db.DB.GetContext(ctx, &u, query, username, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"username": username, "email": email}).WithError(err).Error("db: failed to get user by username or email")
		}
		return nil, fmt.Errorf("failed to get user by username or email: %w", err)
	}

	return &u, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, email_verified = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.EmailVerified, u.UpdatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID}).WithError(err).Error("db: failed to update user")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID}).Debug("db: update affected 0 rows - user not found")
		}
		return user.ErrNotFound
	}

	return nil
}

// Delete deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id}).WithError(err).Error("db: failed to delete user")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": id}).Debug("db: delete affected 0 rows - user not found")
		}
		return user.ErrNotFound
	}

	return nil
}
