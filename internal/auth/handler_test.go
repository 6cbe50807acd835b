package auth_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/marginboard/marginboard/internal/auth"
	"github.com/marginboard/marginboard/internal/shared"
	"github.com/marginboard/marginboard/internal/view"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, user auth.User) (*auth.User, error) {
	if s.user != nil && s.user.Username == user.Username {
		return nil, shared.ErrUsernameTaken
	}
	user.ID = 1
	s.user = &user
	return s.user, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	handler := auth.NewHandler(slog.Default(), auth.NewService(repo), templates, sessionManager, csrfManager)
	return handler, sessionManager
}

func TestLoginPage(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatalf("expected login form in body")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: &auth.User{ID: 1, Username: "alice", PasswordHash: string(hashed)}})

	postData := url.Values{}
	postData.Set("username", "alice")
	postData.Set("password", "wrongpass")

	postReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(postData.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sess, err := sessionManager.Load(context.Background(), postReq)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(postReq.Context(), sess)
	postReq = postReq.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, postReq)
	if err := sessionManager.Commit(ctx, res, postReq, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid username or password") {
		t.Fatalf("expected error message in response")
	}
	if sess.User() != "" {
		t.Fatalf("session must stay anonymous after failed login")
	}
}

func TestLoginSuccess(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: &auth.User{ID: 1, Username: "alice", PasswordHash: string(hashed), Nickname: "Ally"}})

	postData := url.Values{}
	postData.Set("username", "alice")
	postData.Set("password", "correctpass")

	postReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(postData.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sess, err := sessionManager.Load(context.Background(), postReq)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(postReq.Context(), sess)
	postReq = postReq.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, postReq)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %q", loc)
	}
	if sess.User() != "alice" {
		t.Fatalf("expected session user alice, got %q", sess.User())
	}
	if sess.Nickname() != "Ally" {
		t.Fatalf("expected nickname Ally, got %q", sess.Nickname())
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: &auth.User{ID: 1, Username: "alice", PasswordHash: "x"}})

	postData := url.Values{}
	postData.Set("username", "alice")
	postData.Set("password", "longenough")

	postReq := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(postData.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sess, err := sessionManager.Load(context.Background(), postReq)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(postReq.Context(), sess)
	postReq = postReq.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.HandleRegisterForTest(res, postReq)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "already taken") {
		t.Fatalf("expected duplicate username message in response")
	}
}
