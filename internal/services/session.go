package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emporia-shop/emporia-backend/internal/models"
)

// ErrNoSession covers every way a request can be anonymous: no cookie, a
// forged or corrupted token, or an expired one. Callers treat them all the
// same.
var ErrNoSession = errors.New("no valid session")

// sessionClaims carries the identity snapshot inside the signed cookie. The
// server keeps no session table; the cookie is the session.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserName     string              `json:"userName"`
	Email        string              `json:"email"`
	LoginHistory []models.LoginEvent `json:"loginHistory"`
}

// SessionManager issues and resolves signed session cookies.
type SessionManager struct {
	secret         []byte
	duration       time.Duration
	activeDuration time.Duration
	cookieName     string
	secureCookie   bool
	now            func() time.Time
}

func NewSessionManager(secret string, duration, activeDuration time.Duration, cookieName string, secureCookie bool) *SessionManager {
	return &SessionManager{
		secret:         []byte(secret),
		duration:       duration,
		activeDuration: activeDuration,
		cookieName:     cookieName,
		secureCookie:   secureCookie,
		now:            time.Now,
	}
}

// Issue mints a signed session bound to the identity and sets it as an
// HttpOnly cookie expiring after the configured duration.
func (m *SessionManager) Issue(w http.ResponseWriter, identity *models.IdentitySnapshot) error {
	now := m.now()
	expires := now.Add(m.duration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserName:     identity.UserName,
		Email:        identity.Email,
		LoginHistory: identity.LoginHistory,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load resolves the request's session cookie to an identity and its expiry.
// Absent, forged, and expired cookies all return ErrNoSession.
func (m *SessionManager) Load(r *http.Request) (*models.IdentitySnapshot, time.Time, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, time.Time{}, ErrNoSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.ExpiresAt == nil {
		return nil, time.Time{}, ErrNoSession
	}

	identity := &models.IdentitySnapshot{
		UserName:     claims.UserName,
		Email:        claims.Email,
		LoginHistory: claims.LoginHistory,
	}
	return identity, claims.ExpiresAt.Time, nil
}

// Touch re-issues the cookie when less than the active duration remains,
// sliding the expiry forward. Renewal has no hard cap: a session stays alive
// for as long as requests keep arriving inside the window.
func (m *SessionManager) Touch(w http.ResponseWriter, identity *models.IdentitySnapshot, expiresAt time.Time) {
	if m.now().Add(m.activeDuration).After(expiresAt) {
		// The current cookie stays valid until expiresAt either way.
		_ = m.Issue(w, identity)
	}
}

// Clear terminates the session immediately by expiring the cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
