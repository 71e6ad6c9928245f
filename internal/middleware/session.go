// Package middleware holds the session gate wrapped around every route
// that needs an authenticated user.
package middleware

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/internal/utils"
)

// Gate resolves the session cookie once and exposes the two failure
// presentations the routes need: pages redirect to the login form,
// data endpoints answer 401.
type Gate struct {
	Sessions *session.Manager
}

func NewGate(sessions *session.Manager) *Gate {
	return &Gate{Sessions: sessions}
}

// RequirePage redirects unauthenticated requests to /login.
func (g *Gate) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Sessions.FromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
	})
}

// RequireAPI rejects unauthenticated requests with a 401 JSON body.
func (g *Gate) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Sessions.FromRequest(r)
		if err != nil {
			utils.JSONError(w, http.StatusUnauthorized, "not authorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
	})
}
