package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded, verified identity of a request. It exists only for
// the lifetime of one request and is never persisted or cached.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Sentinel errors produced by token verification. The auth middleware maps
// them onto the client-facing gatekeeper errors.
var (
	ErrNoToken      = errors.New("no token provided")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// ErrInvalidCredentials covers a wrong password for an existing account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginRequest represents the credentials supplied to the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
