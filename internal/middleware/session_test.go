package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pulseboard/pulseboard/internal/session"
)

func newGate() (*Gate, *session.Manager) {
	m := session.NewManager("test-secret", time.Hour)
	return NewGate(m), m
}

func sessionCookie(t *testing.T, m *session.Manager, id session.Identity) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	if err := m.Issue(rec, id); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestRequirePageRedirectsWithoutSession(t *testing.T) {
	gate, _ := newGate()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler ran without a session")
	})

	rec := httptest.NewRecorder()
	gate.RequirePage(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want /login", loc)
	}
}

func TestRequireAPIRejectsWithoutSession(t *testing.T) {
	gate, _ := newGate()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler ran without a session")
	})

	rec := httptest.NewRecorder()
	gate.RequireAPI(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/create_post", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGatePassesIdentityThrough(t *testing.T) {
	gate, m := newGate()
	want := session.Identity{UserID: 7, Username: "alice"}

	for _, wrap := range []func(http.Handler) http.Handler{gate.RequirePage, gate.RequireAPI} {
		var got session.Identity
		var ok bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok = session.FromContext(r.Context())
		})

		r := httptest.NewRequest(http.MethodGet, "/feed", nil)
		r.AddCookie(sessionCookie(t, m, want))

		rec := httptest.NewRecorder()
		wrap(next).ServeHTTP(rec, r)

		if !ok {
			t.Fatal("identity missing from context")
		}
		if got != want {
			t.Errorf("identity = %+v, want %+v", got, want)
		}
	}
}
