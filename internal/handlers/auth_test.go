package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emporia-shop/emporia-backend/internal/handlers"
	"github.com/emporia-shop/emporia-backend/internal/middleware"
	"github.com/emporia-shop/emporia-backend/internal/models"
	"github.com/emporia-shop/emporia-backend/internal/services"
	"github.com/emporia-shop/emporia-backend/pkg/utils"
)

type memoryUserStore struct {
	users map[string]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[string]*models.User{}}
}

func (s *memoryUserStore) CreateUser(ctx context.Context, user *models.User) error {
	if _, exists := s.users[user.UserName]; exists {
		return services.ErrDuplicateUsername
	}
	copied := *user
	s.users[user.UserName] = &copied
	return nil
}

func (s *memoryUserStore) FindByUsername(ctx context.Context, userName string) (*models.User, error) {
	user, ok := s.users[userName]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	copied := *user
	copied.LoginHistory = append([]models.LoginEvent{}, user.LoginHistory...)
	return &copied, nil
}

func (s *memoryUserStore) AppendLoginEvent(ctx context.Context, userName string, event models.LoginEvent) error {
	user, ok := s.users[userName]
	if !ok {
		return services.ErrUserNotFound
	}
	user.LoginHistory = append(user.LoginHistory, event)
	return nil
}

func newAuthRouter(t *testing.T) (*chi.Mux, *memoryUserStore) {
	t.Helper()

	store := newMemoryUserStore()
	auth := services.NewAuthService(store, utils.BcryptHasher{Cost: 4})
	sessions := services.NewSessionManager("test-secret", time.Hour, 15*time.Minute, "session", false)
	handler := handlers.NewAuthHandler(auth, sessions)

	r := chi.NewRouter()
	r.Post("/api/auth/register", handler.Register)
	r.Post("/api/auth/login", handler.Login)
	r.Post("/api/auth/logout", handler.Logout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(sessions, "/login"))
		r.Get("/api/auth/me", handler.Me)
		r.Get("/api/auth/history", handler.History)
	})
	return r, store
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registerBody(userName, password, confirmation string) map[string]string {
	return map[string]string{
		"userName":  userName,
		"password":  password,
		"password2": confirmation,
		"email":     userName + "@x.com",
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := postJSON(t, r, "/api/auth/register", registerBody("alice", "p1", "p1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, r, "/api/auth/login", map[string]string{"userName": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)

	var resp handlers.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	user := resp.User.(map[string]interface{})
	assert.Equal(t, "alice", user["userName"])
	assert.Len(t, user["loginHistory"], 1)
}

func TestRegisterPasswordMismatchRejected(t *testing.T) {
	r, store := newAuthRouter(t)

	rec := postJSON(t, r, "/api/auth/register", registerBody("bob", "p1", "p2"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.users)
}

func TestRegisterDuplicateUsernameConflict(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := postJSON(t, r, "/api/auth/register", registerBody("alice", "p1", "p1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, r, "/api/auth/register", registerBody("alice", "p2", "p2"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	r, store := newAuthRouter(t)

	rec := postJSON(t, r, "/api/auth/register", registerBody("alice", "p1", "p1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, r, "/api/auth/login", map[string]string{"userName": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, r, "/api/auth/login", map[string]string{"userName": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Failed attempt records nothing.
	assert.Len(t, store.users["alice"].LoginHistory, 1)
}

func TestLoginUnknownUserSameStatusAsWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := postJSON(t, r, "/api/auth/login", map[string]string{"userName": "ghost", "password": "p1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestHistoryGatedAndServedFromSession(t *testing.T) {
	r, _ := newAuthRouter(t)

	// Without a session: redirected, not served, not an error.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/history", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Register, log in, then fetch history with the session cookie.
	postRec := postJSON(t, r, "/api/auth/register", registerBody("alice", "p1", "p1"))
	require.Equal(t, http.StatusCreated, postRec.Code)
	loginRec := postJSON(t, r, "/api/auth/login", map[string]string{"userName": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, loginRec.Code)
	cookies := loginRec.Result().Cookies()
	require.Len(t, cookies, 1)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/history", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp["userName"])
	history := resp["loginHistory"].([]interface{})
	require.Len(t, history, 1)
	event := history[0].(map[string]interface{})
	assert.Equal(t, "test-agent", event["userAgent"])
}

func TestLogoutClearsSession(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := postJSON(t, r, "/api/auth/register", registerBody("alice", "p1", "p1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	loginRec := postJSON(t, r, "/api/auth/login", map[string]string{"userName": "alice", "password": "p1"})
	require.Equal(t, http.StatusOK, loginRec.Code)
	sessionCookie := loginRec.Result().Cookies()[0]

	logoutRec := postJSON(t, r, "/api/auth/logout", map[string]string{}, sessionCookie)
	require.Equal(t, http.StatusOK, logoutRec.Code)

	cleared := logoutRec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Negative(t, cleared[0].MaxAge)
}
