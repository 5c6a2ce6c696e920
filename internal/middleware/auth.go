package middleware

import (
	"context"
	"net/http"

	"github.com/emporia-shop/emporia-backend/internal/models"
	"github.com/emporia-shop/emporia-backend/internal/services"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity returns the authenticated identity placed on the request context
// by RequireLogin.
func Identity(ctx context.Context) (*models.IdentitySnapshot, bool) {
	identity, ok := ctx.Value(identityKey).(*models.IdentitySnapshot)
	return identity, ok
}

// RequireLogin gates a route behind a valid session. Anonymous requests get
// a navigational redirect to the login page, not an error status; forged and
// expired cookies count as anonymous. Requests inside the session's active
// window slide its expiry forward.
func RequireLogin(sessions *services.SessionManager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, expiresAt, err := sessions.Load(r)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			sessions.Touch(w, identity, expiresAt)

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
