package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
	gatehttp "github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver"
	"github.com/keyfold/user-gatekeeper/test/mocks"
)

func newTestServer(t *testing.T, deps gatehttp.ServerDeps) *httptest.Server {
	t.Helper()
	if deps.RateLimiter == nil {
		deps.RateLimiter = &mocks.RateLimiterMock{}
	}
	if deps.AuthService == nil {
		deps.AuthService = &mocks.AuthServiceMock{}
	}
	if deps.UserService == nil {
		deps.UserService = &mocks.UserServiceMock{}
	}
	cfg := &gatehttp.ServerConfig{
		Host:             "127.0.0.1",
		Port:             "0",
		ReadTimeout:      time.Second,
		WriteTimeout:     time.Second,
		IdleTimeout:      time.Second,
		Environment:      "test",
		BodyLimit:        "64K",
		CookieName:       "token",
		NormalizedFields: []string{"username", "email"},
		TokenTTL:         time.Hour,
	}
	srv := gatehttp.NewServer(cfg, logrus.New(), deps)
	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)
	return ts
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Errors  []struct {
		Msg   string `json:"msg"`
		Field string `json:"field"`
	} `json:"errors"`
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var b []byte
	if body != nil {
		var err error
		b, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func TestRegister_Created(t *testing.T) {
	userMock := &mocks.UserServiceMock{
		RegisterFn: func(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
			require.Equal(t, "alice1", req.Username)
			require.Equal(t, "alice@example.com", req.Email)
			return &user.User{ID: 1, Username: req.Username, Email: req.Email}, nil
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/register",
		map[string]string{"username": "Alice1", "email": "Alice@Example.com", "password": "Password1"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, float64(1), out["id"])
	require.Equal(t, "alice1", out["username"])
}

func TestRegister_Duplicate(t *testing.T) {
	userMock := &mocks.UserServiceMock{
		RegisterFn: func(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
			return nil, user.ErrDuplicate
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice1", "email": "alice@example.com", "password": "Password1"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "error", env.Status)
	require.Equal(t, "username or email is already used", env.Message)
	require.Empty(t, env.Errors)
}

func TestRegister_ValidationEnvelope(t *testing.T) {
	ts := newTestServer(t, gatehttp.ServerDeps{})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/register",
		map[string]string{"username": "bad name!", "email": "nope", "password": "short"}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "error", env.Status)
	require.Equal(t, "Validation failed", env.Message)
	require.NotEmpty(t, env.Errors)
	for _, e := range env.Errors {
		require.NotEmpty(t, e.Msg)
		require.NotEmpty(t, e.Field)
	}
}

func TestRegister_MalformedBody(t *testing.T) {
	ts := newTestServer(t, gatehttp.ServerDeps{})

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/auth/register", bytes.NewReader([]byte(`{"username":`)))
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Equal(t, "Invalid JSON payload", env.Message)
}

func TestRegister_OversizedBody(t *testing.T) {
	ts := newTestServer(t, gatehttp.ServerDeps{})

	big := map[string]string{"username": "alice1", "email": "alice@example.com", "password": strings.Repeat("P4ss", 20000)}
	resp, body := doJSON(t, ts, http.MethodPost, "/auth/register", big, "")
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "error", env.Status)
	require.Equal(t, "Payload too large", env.Message)
}

func TestLogin_UnknownUser(t *testing.T) {
	authMock := &mocks.AuthServiceMock{
		LoginFn: func(ctx context.Context, req *auth.LoginRequest) (string, *user.User, error) {
			return "", nil, user.ErrNotFound
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{AuthService: authMock})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/login",
		map[string]string{"username": "ghost", "password": "Password1"}, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "Invalid credentials!", env.Message)
}

func TestLogin_WrongPassword(t *testing.T) {
	authMock := &mocks.AuthServiceMock{
		LoginFn: func(ctx context.Context, req *auth.LoginRequest) (string, *user.User, error) {
			return "", nil, auth.ErrInvalidCredentials
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{AuthService: authMock})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice1", "password": "Wrong1pass"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "Invalid credentials!", env.Message)
}

func TestLogin_SuccessSetsCookie(t *testing.T) {
	authMock := &mocks.AuthServiceMock{
		LoginFn: func(ctx context.Context, req *auth.LoginRequest) (string, *user.User, error) {
			require.Equal(t, "alice1", req.Username)
			return "signed-token", &user.User{ID: 1, Username: req.Username}, nil
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{AuthService: authMock})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/login",
		map[string]string{"username": "Alice1", "password": "Password1"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "Login successful", out["message"])

	var tokenCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	require.Equal(t, "signed-token", tokenCookie.Value)
	require.True(t, tokenCookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, tokenCookie.SameSite)
	require.Equal(t, int(time.Hour.Seconds()), tokenCookie.MaxAge)
}

func TestEdit_FullPipeline(t *testing.T) {
	authMock := &mocks.AuthServiceMock{
		VerifyTokenFn: func(tokenString string) (*auth.Claims, error) {
			if tokenString != "good-token" {
				return nil, auth.ErrTokenInvalid
			}
			return &auth.Claims{UserID: 3, Username: "alice1"}, nil
		},
	}
	userMock := &mocks.UserServiceMock{
		UpdateUserFn: func(ctx context.Context, id int64, req *user.UpdateUserRequest) (*user.User, error) {
			require.Equal(t, int64(3), id)
			return &user.User{ID: id, Username: req.Username, Email: "alice@example.com"}, nil
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{AuthService: authMock, UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodPut, "/auth/edit",
		map[string]any{"id": 3, "username": "newname1"}, "good-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Message string `json:"message"`
		User    struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "User updated successfully", out.Message)
	require.Equal(t, int64(3), out.User.ID)
	require.Equal(t, "newname1", out.User.Username)
}

func TestEdit_ForeignAccountForbidden(t *testing.T) {
	authMock := &mocks.AuthServiceMock{
		VerifyTokenFn: func(tokenString string) (*auth.Claims, error) {
			return &auth.Claims{UserID: 3, Username: "alice1"}, nil
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{AuthService: authMock})

	resp, body := doJSON(t, ts, http.MethodPut, "/auth/edit",
		map[string]any{"id": 4, "username": "newname1"}, "good-token")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "You not authorized to update this user.", env.Message)
}

func TestEdit_NoToken(t *testing.T) {
	ts := newTestServer(t, gatehttp.ServerDeps{})

	resp, body := doJSON(t, ts, http.MethodPut, "/auth/edit",
		map[string]any{"id": 3, "username": "newname1"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "No token provided", env.Message)
}

func TestEdit_UsernameTaken(t *testing.T) {
	authMock := &mocks.AuthServiceMock{
		VerifyTokenFn: func(tokenString string) (*auth.Claims, error) {
			return &auth.Claims{UserID: 3, Username: "alice1"}, nil
		},
	}
	userMock := &mocks.UserServiceMock{
		UpdateUserFn: func(ctx context.Context, id int64, req *user.UpdateUserRequest) (*user.User, error) {
			return nil, user.ErrUsernameTaken
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{AuthService: authMock, UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodPut, "/auth/edit",
		map[string]any{"id": 3, "username": "taken1"}, "good-token")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "Username already taken", env.Message)
}

func TestDelete_Success(t *testing.T) {
	deleted := int64(0)
	authMock := &mocks.AuthServiceMock{
		VerifyTokenFn: func(tokenString string) (*auth.Claims, error) {
			return &auth.Claims{UserID: 9, Username: "dave"}, nil
		},
	}
	userMock := &mocks.UserServiceMock{
		DeleteUserFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{AuthService: authMock, UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodDelete, "/auth/delete",
		map[string]any{"id": 9}, "good-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int64(9), deleted)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "User deleted successfully", out["message"])
}

func TestVerifyEmail_BadToken(t *testing.T) {
	userMock := &mocks.UserServiceMock{
		VerifyEmailFn: func(ctx context.Context, token string) (*user.User, error) {
			return nil, user.ErrVerificationToken
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodGet, "/auth/verify-email?token=stale", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "Verification token is invalid or expired", env.Message)
}

func TestVerifyEmail_Success(t *testing.T) {
	userMock := &mocks.UserServiceMock{
		VerifyEmailFn: func(ctx context.Context, token string) (*user.User, error) {
			require.Equal(t, "tok-9", token)
			return &user.User{ID: 9, Username: "dave", EmailVerified: true}, nil
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodGet, "/auth/verify-email?token=tok-9", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "Email verified successfully", out["message"])
}

func TestRateLimited_Envelope(t *testing.T) {
	limiter := &mocks.RateLimiterMock{
		AdmitFn: func(ctx context.Context, key string) error {
			return gate.TooManyRequests("Too many requests, please try again later")
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{RateLimiter: limiter})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice1", "password": "Password1"}, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "error", env.Status)
	require.Equal(t, "Too many requests, please try again later", env.Message)
}

func TestInternalErrorScrubbed(t *testing.T) {
	userMock := &mocks.UserServiceMock{
		RegisterFn: func(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
			return nil, io.ErrUnexpectedEOF
		},
	}
	ts := newTestServer(t, gatehttp.ServerDeps{UserService: userMock})

	resp, body := doJSON(t, ts, http.MethodPost, "/auth/register",
		map[string]string{"username": "alice1", "email": "alice@example.com", "password": "Password1"}, "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "Internal server error", env.Message)
	require.NotContains(t, string(body), io.ErrUnexpectedEOF.Error())
}
