package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pulseboard/pulseboard/internal/hub"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/internal/store"
	"github.com/pulseboard/pulseboard/internal/utils"
)

// Feed renders the most recent posts for the logged-in user.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())

	posts, err := h.Posts.Feed(r.Context(), h.FeedLimit)
	if err != nil {
		log.Printf("handlers: feed: %v", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "feed.html", pageData{Identity: &id, Posts: posts})
}

// Profile renders one author's posts, newest first.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())
	username := chi.URLParam(r, "username")

	user, err := h.Users.FindByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("handlers: profile: %v", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	posts, err := h.Posts.ByAuthor(r.Context(), user.Username)
	if err != nil {
		log.Printf("handlers: profile posts: %v", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "profile.html", pageData{Identity: &id, Profile: &user, Posts: posts})
}

type createPostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type createPostResp struct {
	Success bool            `json:"success"`
	Post    hub.PostPayload `json:"post"`
}

// CreatePost persists a post for the session user and then broadcasts
// it. The broadcast is best effort: by that point the row is committed,
// so a delivery failure only means some subscribers catch up on their
// next snapshot.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var req createPostReq
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid form")
			return
		}
		req.Title = r.FormValue("title")
		req.Content = r.FormValue("content")
	}

	var title *string
	if req.Title != "" {
		title = &req.Title
	}

	post, err := h.Posts.Create(r.Context(), id.UserID, id.Username, title, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrEmptyContent) {
			utils.JSONError(w, http.StatusBadRequest, "Post content cannot be empty")
			return
		}
		log.Printf("handlers: create post: %v", err)
		utils.JSONError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	payload := hub.NewPostPayload(post)
	h.Hub.Publish(hub.EventNewPost, payload)

	utils.JSON(w, http.StatusOK, createPostResp{Success: true, Post: payload})
}
