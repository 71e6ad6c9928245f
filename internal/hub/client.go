package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pulseboard/pulseboard/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one live websocket subscriber. The hub owns registration
// and teardown; the client runs its own read and write pumps.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
	identity session.Identity
	addr     string
	closed   bool
}

// NewClient wraps an upgraded connection together with the identity it
// authenticated with.
func NewClient(conn *websocket.Conn, h *Hub, identity session.Identity, addr string) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		hub:      h,
		identity: identity,
		addr:     addr,
	}
}

// Identity returns the session identity the client connected with.
func (c *Client) Identity() session.Identity {
	return c.identity
}

// Queue buffers an event for this client alone. Used for the connect
// acknowledgment before the pumps are running; drops the event if the
// buffer is somehow already full or the hub has dropped the client.
func (c *Client) Queue(event string, data any) {
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("hub: marshal %s event: %v", event, err)
		return
	}
	c.hub.queue(c, raw)
}

// readPump consumes client frames until the connection drops. The only
// meaningful client event is request_feed; everything else is ignored.
func (c *Client) readPump() {
	defer func() {
		// once the hub has stopped, nobody drains unregister
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("hub: close after read from %s: %v", c.addr, err)
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) && !isExpectedCloseError(err) {
				log.Printf("hub: read error from %s: %v", c.addr, err)
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("hub: invalid frame from %s: %v", c.addr, err)
			continue
		}

		if msg.Event == EventRequestFeed {
			c.sendFeedSnapshot()
		}
	}
}

// sendFeedSnapshot answers a request_feed pull with the current feed.
func (c *Client) sendFeedSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	posts, err := c.hub.feed.Feed(ctx, c.hub.feedLimit)
	if err != nil {
		log.Printf("hub: feed snapshot for %s: %v", c.addr, err)
		return
	}

	payload := make([]PostPayload, 0, len(posts))
	for _, p := range posts {
		payload = append(payload, NewPostPayload(p))
	}

	raw, err := json.Marshal(Envelope{Event: EventFeedUpdate, Data: payload})
	if err != nil {
		log.Printf("hub: marshal feed snapshot: %v", err)
		return
	}

	// goes through the hub so the send is ordered against channel
	// close; a full buffer just means the client can ask again
	c.hub.trySend(c, raw)
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("hub: close after write to %s: %v", c.addr, err)
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel; say goodbye
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("hub: write to %s: %v", c.addr, err)
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
