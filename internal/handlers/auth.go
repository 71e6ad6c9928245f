package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/internal/store"
)

// Index renders the landing page, or sends logged-in users straight to
// their feed.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, "/feed", http.StatusSeeOther)
		return
	}
	h.render(w, r, "index.html", pageData{})
}

// RegisterPage renders the registration form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", pageData{})
}

// Register creates a new account from the posted form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		session.SetFlash(w, "Invalid form submission")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	_, err := h.Users.Register(r.Context(), username, email, password)
	switch {
	case err == nil:
		session.SetFlash(w, "Registration successful. Please login.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, store.ErrMissingFields),
		errors.Is(err, store.ErrDuplicateUsername),
		errors.Is(err, store.ErrDuplicateEmail):
		session.SetFlash(w, capitalize(err.Error()))
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	default:
		log.Printf("handlers: register: %v", err)
		session.SetFlash(w, "Something went wrong")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	}
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", pageData{})
}

// Login verifies the posted credentials and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		session.SetFlash(w, "Invalid form submission")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, store.ErrInvalidCredentials) {
			log.Printf("handlers: login: %v", err)
		}
		// same message for unknown user and wrong password
		session.SetFlash(w, "Invalid username or password")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := session.Identity{UserID: user.ID, Username: user.Username}
	if err := h.Sessions.Issue(w, id); err != nil {
		log.Printf("handlers: issue session: %v", err)
		session.SetFlash(w, "Something went wrong")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session.SetFlash(w, "Login successful")
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

// Logout clears the session unconditionally.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	session.SetFlash(w, "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
