package handlers

import (
	"github.com/pulseboard/pulseboard/internal/hub"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/internal/store"
)

// Handler bundles the stores, session manager, and hub every route
// needs.
type Handler struct {
	Users     *store.UserStore
	Posts     *store.PostStore
	Sessions  *session.Manager
	Hub       *hub.Hub
	FeedLimit int
}

func NewHandler(users *store.UserStore, posts *store.PostStore, sessions *session.Manager, h *hub.Hub, feedLimit int) *Handler {
	if feedLimit <= 0 {
		feedLimit = store.DefaultFeedLimit
	}
	return &Handler{
		Users:     users,
		Posts:     posts,
		Sessions:  sessions,
		Hub:       h,
		FeedLimit: feedLimit,
	}
}
