package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pulseboard/pulseboard/internal/hub"
	"github.com/pulseboard/pulseboard/internal/session"
	"github.com/pulseboard/pulseboard/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cookie auth, same-origin pages only; the session gate already ran.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an authenticated request to a websocket and hands
// the connection to the hub. The subscriber is acknowledged with a
// connection_response and from then on receives every new_post event
// published while it stays connected.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("handlers: websocket upgrade: %v", err)
		return
	}

	client := hub.NewClient(conn, h.Hub, id, r.RemoteAddr)
	client.Queue(hub.EventStatus, map[string]string{"status": "connected"})
	h.Hub.Register(client)
}
