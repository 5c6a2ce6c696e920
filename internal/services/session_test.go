package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emporia-shop/emporia-backend/internal/models"
)

func testIdentity() *models.IdentitySnapshot {
	return &models.IdentitySnapshot{
		UserName: "alice",
		Email:    "a@x.com",
		LoginHistory: []models.LoginEvent{
			{DateTime: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), UserAgent: "UA1"},
		},
	}
}

func newTestSessionManager() *SessionManager {
	return NewSessionManager("test-secret", 2*time.Minute, time.Minute, "session", false)
}

// issueCookie mints a session and returns the cookie it set.
func issueCookie(t *testing.T, m *SessionManager, identity *models.IdentitySnapshot) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, identity))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionIssueAndLoad(t *testing.T) {
	m := newTestSessionManager()
	cookie := issueCookie(t, m, testIdentity())

	assert.Equal(t, "session", cookie.Name)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	identity, expiresAt, err := m.Load(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.UserName)
	assert.Equal(t, "a@x.com", identity.Email)
	require.Len(t, identity.LoginHistory, 1)
	assert.Equal(t, "UA1", identity.LoginHistory[0].UserAgent)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), expiresAt, 5*time.Second)
}

func TestSessionLoadWithoutCookieIsAnonymous(t *testing.T) {
	m := newTestSessionManager()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, _, err := m.Load(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionTamperedTokenIsAnonymous(t *testing.T) {
	m := newTestSessionManager()
	cookie := issueCookie(t, m, testIdentity())

	// Flip the signature segment.
	parts := strings.Split(cookie.Value, ".")
	require.Len(t, parts, 3)
	parts[2] = "forged" + parts[2]
	cookie.Value = strings.Join(parts, ".")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, _, err := m.Load(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionGarbageTokenIsAnonymousNotAPanic(t *testing.T) {
	m := newTestSessionManager()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "!!not a jwt!!"})

	_, _, err := m.Load(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionWrongSecretIsAnonymous(t *testing.T) {
	m := newTestSessionManager()
	cookie := issueCookie(t, m, testIdentity())

	other := NewSessionManager("different-secret", 2*time.Minute, time.Minute, "session", false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, _, err := other.Load(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionExpiresWithoutActivity(t *testing.T) {
	m := newTestSessionManager()

	issuedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }
	cookie := issueCookie(t, m, testIdentity())

	// Three minutes later, past the two-minute duration.
	m.now = func() time.Time { return issuedAt.Add(3 * time.Minute) }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, _, err := m.Load(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionTouchSlidesExpiryInsideActiveWindow(t *testing.T) {
	m := newTestSessionManager()

	issuedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }
	cookie := issueCookie(t, m, testIdentity())

	// 90s in: 30s remain, inside the one-minute active window.
	m.now = func() time.Time { return issuedAt.Add(90 * time.Second) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	identity, expiresAt, err := m.Load(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Touch(rec, identity, expiresAt)

	renewed := rec.Result().Cookies()
	require.Len(t, renewed, 1, "cookie should be re-issued inside the active window")

	// The renewed session is valid past the original expiry. With continued
	// activity renewal repeats without a cap.
	m.now = func() time.Time { return issuedAt.Add(3 * time.Minute) }
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(renewed[0])

	_, renewedExpiry, err := m.Load(req)
	require.NoError(t, err)
	assert.True(t, renewedExpiry.After(issuedAt.Add(2*time.Minute)))
}

func TestSessionTouchDoesNothingOutsideActiveWindow(t *testing.T) {
	m := newTestSessionManager()

	issuedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issuedAt }
	cookie := issueCookie(t, m, testIdentity())

	// 10s in: 110s remain, more than the one-minute active window.
	m.now = func() time.Time { return issuedAt.Add(10 * time.Second) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	identity, expiresAt, err := m.Load(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Touch(rec, identity, expiresAt)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionClear(t *testing.T) {
	m := newTestSessionManager()

	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSessionSnapshotIsPointInTime(t *testing.T) {
	m := newTestSessionManager()

	identity := testIdentity()
	cookie := issueCookie(t, m, identity)

	// Mutating the source snapshot after issuance doesn't affect the session.
	identity.Email = "changed@x.com"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	loaded, _, err := m.Load(req)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", loaded.Email)
}
