// Package hub fans out feed events to every connected websocket client.
// Delivery is best effort: a post is durably stored before it is
// published here, and a subscriber that misses an event backfills by
// requesting a fresh feed snapshot.
package hub

import (
	"context"
	"strings"

	"github.com/pulseboard/pulseboard/internal/models"
)

// Event names on the wire.
const (
	EventNewPost     = "new_post"
	EventFeedUpdate  = "feed_update"
	EventStatus      = "connection_response"
	EventRequestFeed = "request_feed"
)

// Envelope is the JSON frame exchanged over the websocket in both
// directions: an event name plus its payload.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// PostPayload is the client-facing shape of a post, shared by new_post
// events and feed_update snapshots.
type PostPayload struct {
	ID        int64  `json:"id"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// NewPostPayload converts a stored post into its wire shape.
func NewPostPayload(p models.FeedPost) PostPayload {
	payload := PostPayload{
		ID:        p.ID,
		Content:   p.Content,
		Username:  p.Username,
		Timestamp: p.FormattedTime(),
	}
	if p.Title != nil {
		payload.Title = *p.Title
	}
	return payload
}

// FeedSource supplies the snapshot sent in response to request_feed.
// The post store satisfies it.
type FeedSource interface {
	Feed(ctx context.Context, limit int) ([]models.FeedPost, error)
}

// isExpectedCloseError checks if an error is expected during connection
// closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
