package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	config "github.com/keyfold/user-gatekeeper/configs"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
	"github.com/keyfold/user-gatekeeper/internal/core/ports"
)

type AuthService struct {
	userRepo      ports.UserRepository
	jwtConfig     *config.JWTConfig
	signingMethod jwt.SigningMethod
	logger        *logrus.Logger
}

func NewAuthService(userRepo ports.UserRepository, jwtConfig *config.JWTConfig, logger *logrus.Logger) *AuthService {
	method := jwt.GetSigningMethod(jwtConfig.Algorithm)
	if method == nil {
		method = jwt.SigningMethodHS512
	}
	return &AuthService{
		userRepo:      userRepo,
		jwtConfig:     jwtConfig,
		signingMethod: method,
		logger:        logger,
	}
}

// Login checks credentials against the stored hash and issues a token.
// user.ErrNotFound and auth.ErrInvalidCredentials are reported distinctly;
// the handler presents both under the same client message.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (string, *user.User, error) {
	foundUser, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, user.ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(foundUser.PasswordHash), []byte(req.Password)); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": foundUser.ID}).Debug("login rejected: password mismatch")
		}
		return "", nil, auth.ErrInvalidCredentials
	}

	token, err := s.IssueToken(foundUser)
	if err != nil {
		return "", nil, err
	}
	return token, foundUser, nil
}

// IssueToken signs an identity token carrying id, username, audience and
// issuer claims.
func (s *AuthService) IssueToken(u *user.User) (string, error) {
	now := time.Now()

	claims := &auth.Claims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", u.ID),
			Audience:  jwt.ClaimStrings{s.jwtConfig.Audience},
			Issuer:    s.jwtConfig.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(s.signingMethod, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, expiry, audience and issuer. The parser is
// pinned to the configured signing algorithm; a token that verifies under any
// other algorithm is rejected as invalid. Expiry is reported distinctly so
// clients can tell a stale session from a tampered one.
func (s *AuthService) VerifyToken(tokenString string) (*auth.Claims, error) {
	if tokenString == "" {
		return nil, auth.ErrNoToken
	}

	claims := &auth.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	},
		jwt.WithValidMethods([]string{s.signingMethod.Alg()}),
		jwt.WithAudience(s.jwtConfig.Audience),
		jwt.WithIssuer(s.jwtConfig.Issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		// Signature is verified before claims, so an expired error implies
		// the token was authentically ours.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, auth.ErrTokenExpired
		}
		return nil, auth.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, auth.ErrTokenInvalid
	}
	return claims, nil
}
