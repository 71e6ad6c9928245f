package handlers

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pulseboard/pulseboard/internal/middleware"
)

// Routes wires every page and API route onto a chi router. Kept apart
// from main so tests can mount the full application in-process.
func Routes(h *Handler, gate *middleware.Gate) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Public
	r.Get("/", h.Index)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	// Protected pages: redirect to login without a session
	r.Group(func(r chi.Router) {
		r.Use(gate.RequirePage)

		r.Get("/feed", h.Feed)
		r.Get("/profile/{username}", h.Profile)
	})

	// Protected data endpoints: 401 without a session
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAPI)

		r.Post("/create_post", h.CreatePost)
		r.Get("/ws", h.ServeWS)
	})

	return r
}
