package models

import "time"

type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     *string   `db:"title" json:"title,omitempty"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// FeedPost is a Post joined with its author's username, the shape every
// read path and broadcast payload is built from.
type FeedPost struct {
	ID        int64     `db:"id" json:"id"`
	Title     *string   `db:"title" json:"title,omitempty"`
	Content   string    `db:"content" json:"content"`
	Username  string    `db:"username" json:"username"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// FormattedTime renders the timestamp the way pages and websocket
// payloads display it.
func (p FeedPost) FormattedTime() string {
	return p.Timestamp.Format("2006-01-02 15:04")
}
