package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
	"github.com/keyfold/user-gatekeeper/internal/core/ports"
)

const verificationTokenTTL = 24 * time.Hour

type UserService struct {
	repo           ports.UserRepository
	emailService   ports.EmailService
	emailTokenRepo ports.EmailTokenRepository
	logger         *logrus.Logger
}

func NewUserService(repo ports.UserRepository, emailService ports.EmailService, emailTokenRepo ports.EmailTokenRepository, logger *logrus.Logger) ports.UserService {
	return &UserService{
		repo:           repo,
		emailService:   emailService,
		emailTokenRepo: emailTokenRepo,
		logger:         logger,
	}
}

// Register creates an account. Username and email arrive already normalized
// by the pipeline; uniqueness is checked across both fields together.
func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	existing, err := s.repo.GetByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, user.ErrDuplicate
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &user.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  string(hashedPassword),
		EmailVerified: false,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Verification mail failures never fail registration.
	if err := s.SendVerificationEmail(ctx, newUser); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id": newUser.ID,
				"email":   newUser.Email,
			}).WithError(err).Warn("failed to send verification email")
		}
	}

	return newUser, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateUser applies the non-empty fields of req to the account. Username and
// email moves are rejected when another account already holds the value.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *user.UpdateUserRequest) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		existing, err := s.repo.GetByUsername(ctx, req.Username)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, user.ErrUsernameTaken
		}
		u.Username = req.Username
	}

	if req.Email != "" {
		existing, err := s.repo.GetByEmail(ctx, req.Email)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, user.ErrEmailTaken
		}
		u.Email = req.Email
	}

	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hashedPassword)
	}

	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SendVerificationEmail stores a fresh one-shot token and mails the
// verification link.
func (s *UserService) SendVerificationEmail(ctx context.Context, u *user.User) error {
	if s.emailService == nil || s.emailTokenRepo == nil {
		return nil
	}

	token := uuid.NewString()
	if err := s.emailTokenRepo.Store(ctx, token, u.ID, verificationTokenTTL); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	return s.emailService.SendVerificationEmail(ctx, u.Email, u.Username, token)
}

// VerifyEmail consumes the token and marks the bound account verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*user.User, error) {
	if s.emailTokenRepo == nil {
		return nil, user.ErrVerificationToken
	}

	userID, err := s.emailTokenRepo.Consume(ctx, token)
	if err != nil {
		return nil, user.ErrVerificationToken
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.EmailVerified = true
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
