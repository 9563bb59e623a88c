package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	config "github.com/keyfold/user-gatekeeper/configs"
	"github.com/keyfold/user-gatekeeper/internal/application/services"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/user"
	"github.com/keyfold/user-gatekeeper/internal/core/ports"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/repositories"
	"github.com/keyfold/user-gatekeeper/test/mocks"
)

// memoryUserRepo is an in-memory UserRepository backing the end-to-end
// pipeline tests, so the full request path runs without Postgres.
type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: make(map[int64]*user.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, user.ErrNotFound
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *memoryUserRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *memoryUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type PipelineSuite struct {
	suite.Suite
	ts      *httptest.Server
	repo    *memoryUserRepo
	limiter *services.RateLimiterService
}

func (s *PipelineSuite) SetupTest() {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	s.repo = newMemoryUserRepo()
	s.limiter = services.NewRateLimiterService(
		repositories.NewRateLimitMemoryRepository(),
		&services.RateLimiterConfig{Window: time.Minute, MaxRequests: 10},
		logger,
	)

	jwtCfg := &config.JWTConfig{
		Secret:    "integration-secret",
		TokenTTL:  time.Hour,
		Audience:  "user-gatekeeper",
		Issuer:    "user-gatekeeper",
		Algorithm: "HS512",
	}
	authService := services.NewAuthService(s.repo, jwtCfg, logger)
	userService := services.NewUserService(s.repo, &mocks.EmailServiceMock{}, &mocks.EmailTokenRepositoryMock{}, logger)

	srv := httpserver.NewServer(&httpserver.ServerConfig{
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
	}, logger, httpserver.ServerDeps{
		UserService:    userService,
		AuthService:    authService,
		RateLimiter:    s.limiter,
		HealthCheckers: []ports.HealthChecker{},
	})

	s.ts = httptest.NewServer(srv.Echo())
}

func (s *PipelineSuite) TearDownTest() {
	s.ts.Close()
}

func (s *PipelineSuite) doJSON(method, path string, body any, token string) (*http.Response, map[string]any) {
	var b []byte
	if body != nil {
		var err error
		b, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req, err := http.NewRequest(method, s.ts.URL+path, bytes.NewReader(b))
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	out := map[string]any{}
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (s *PipelineSuite) register(username, email, password string) (*http.Response, map[string]any) {
	return s.doJSON(http.MethodPost, "/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, "")
}

func (s *PipelineSuite) TestRegisterThenDuplicate() {
	resp, body := s.register("alice1", "alice@example.com", "Password1")
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal(float64(1), body["id"])
	s.Equal("alice1", body["username"])

	// Same username, different case: normalization collapses them.
	resp, body = s.register("ALICE1", "other@example.com", "Password1")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("username or email is already used", body["message"])
}

func (s *PipelineSuite) TestLoginEditDeleteLifecycle() {
	resp, _ := s.register("bob1", "bob@example.com", "Password1")
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, body := s.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": "Bob1", "password": "Password1",
	}, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Login successful", body["message"])

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			token = c.Value
		}
	}
	s.Require().NotEmpty(token)

	resp, body = s.doJSON(http.MethodPut, "/auth/edit", map[string]any{
		"id": 1, "email": "bob2@example.com",
	}, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("User updated successfully", body["message"])

	// Editing somebody else's row is forbidden even with a valid session.
	resp, body = s.doJSON(http.MethodPut, "/auth/edit", map[string]any{
		"id": 2, "email": "evil@example.com",
	}, token)
	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("You not authorized to update this user.", body["message"])

	resp, body = s.doJSON(http.MethodDelete, "/auth/delete", map[string]any{"id": 1}, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("User deleted successfully", body["message"])

	// The account really is gone.
	resp, _ = s.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": "bob1", "password": "Password1",
	}, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *PipelineSuite) TestWrongCredentials() {
	resp, _ := s.register("carol1", "carol@example.com", "Password1")
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, body := s.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": "carol1", "password": "Wrongpass1",
	}, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("Invalid credentials!", body["message"])

	resp, body = s.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody1", "password": "Password1",
	}, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("Invalid credentials!", body["message"])
}

func (s *PipelineSuite) TestEleventhRequestRateLimited() {
	for i := 0; i < 10; i++ {
		resp, _ := s.doJSON(http.MethodPost, "/auth/login", map[string]string{
			"username": "ghost1", "password": "Password1",
		}, "")
		s.Equal(http.StatusNotFound, resp.StatusCode, "request %d should pass the limiter", i+1)
	}

	resp, body := s.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": "ghost1", "password": "Password1",
	}, "")
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Equal("Too many requests, please try again later", body["message"])

	// Clearing the client's bucket readmits immediately.
	for _, key := range s.limiter.UsedKeys() {
		s.Require().NoError(s.limiter.ResetKey(context.Background(), key))
	}
	resp, _ = s.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": "ghost1", "password": "Password1",
	}, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *PipelineSuite) doRawJSON(path, raw string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodPost, s.ts.URL+path, bytes.NewReader([]byte(raw)))
	s.Require().NoError(err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	out := map[string]any{}
	rawBody, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(rawBody) > 0 {
		s.Require().NoError(json.Unmarshal(rawBody, &out))
	}
	return resp, out
}

func (s *PipelineSuite) TestMalformedBodyRejectedBeforeQuota() {
	// Broken payloads never reach the limiter, so they neither consume
	// quota nor get masked by it once the quota is gone.
	resp, body := s.doRawJSON("/auth/login", `{"username": "broken`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid JSON payload", body["message"])
	s.Empty(s.limiter.UsedKeys())

	for i := 0; i < 10; i++ {
		resp, _ := s.doJSON(http.MethodPost, "/auth/login", map[string]string{
			"username": "ghost1", "password": "Password1",
		}, "")
		s.Equal(http.StatusNotFound, resp.StatusCode, "request %d should pass the limiter", i+1)
	}

	resp, body = s.doRawJSON("/auth/login", `{"username": "broken`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid JSON payload", body["message"])

	resp, body = s.doJSON(http.MethodPost, "/auth/login", map[string]string{
		"username": "ghost1", "password": "Password1",
	}, "")
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Equal("Too many requests, please try again later", body["message"])
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}
