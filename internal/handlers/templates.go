package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/pulseboard/pulseboard/internal/models"
	"github.com/pulseboard/pulseboard/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// pageData is what every page template receives.
type pageData struct {
	Flash    string
	Identity *session.Identity
	Profile  *models.User
	Posts    []models.FeedPost
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	data.Flash = session.PopFlash(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("handlers: render %s: %v", name, err)
	}
}
