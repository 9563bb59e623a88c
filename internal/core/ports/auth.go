package ports

import (
	"context"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
)

// AuthService establishes and verifies request identity.
type AuthService interface {
	// Login checks credentials and issues a signed token on success.
	// A missing account and a wrong password are reported distinctly so the
	// handler can choose status codes; both carry the same client message.
	Login(ctx context.Context, req *auth.LoginRequest) (string, *user.User, error)

	// IssueToken signs an identity token for the given user.
	IssueToken(u *user.User) (string, error)

	// VerifyToken checks signature, expiry, audience and issuer, returning
	// decoded claims or one of the auth sentinel errors. Stateless and safe
	// for concurrent use.
	VerifyToken(tokenString string) (*auth.Claims, error)
}
