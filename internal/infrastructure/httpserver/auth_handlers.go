package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
)

// Auth handlers
func (s *Server) register(c echo.Context) error {
	var req user.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return gate.BadRequest("Invalid JSON payload")
	}

	created, err := s.userService.Register(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return gate.BadRequest("username or email is already used")
		}
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":       created.ID,
		"username": created.Username,
	})
}

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return gate.BadRequest("Invalid JSON payload")
	}

	token, _, err := s.authSvc.Login(c.Request().Context(), &req)
	if err != nil {
		// An unknown account and a wrong password carry the same client
		// message; only the status differs.
		if errors.Is(err, user.ErrNotFound) {
			return gate.NotFound("Invalid credentials!")
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return gate.Unauthorized("Invalid credentials!")
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     s.config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.config.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
	})
}

func (s *Server) editUser(c echo.Context) error {
	claims, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}

	var req user.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return gate.BadRequest("Invalid JSON payload")
	}

	updated, err := s.userService.UpdateUser(c.Request().Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			return gate.NotFound("Account can't be found!")
		case errors.Is(err, user.ErrUsernameTaken):
			return gate.BadRequest("Username already taken")
		case errors.Is(err, user.ErrEmailTaken):
			return gate.BadRequest("Email already in use")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user": map[string]interface{}{
			"id":       updated.ID,
			"username": updated.Username,
			"email":    updated.Email,
		},
	})
}

func (s *Server) deleteUser(c echo.Context) error {
	claims, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}

	if err := s.userService.DeleteUser(c.Request().Context(), claims.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return gate.NotFound("Account can't be found!")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully",
	})
}

func (s *Server) verifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return gate.BadRequest("Verification token is required")
	}

	verified, err := s.userService.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, user.ErrVerificationToken) {
			return gate.BadRequest("Verification token is invalid or expired")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Email verified successfully",
		"username": verified.Username,
	})
}
