package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pulseboard/pulseboard/internal/models"
)

// DefaultFeedLimit is how many posts a feed snapshot returns when the
// caller does not say otherwise.
const DefaultFeedLimit = 20

type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

// Create persists a post for the given author and returns it fully
// materialized, username included, ready to broadcast. The timestamp is
// assigned here, not by the client.
func (s *PostStore) Create(ctx context.Context, userID int64, username string, title *string, content string) (models.FeedPost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.FeedPost{}, ErrEmptyContent
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			title = nil
		} else {
			title = &t
		}
	}

	post := models.Post{
		UserID:    userID,
		Title:     title,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	id, err := s.insert(ctx, post)
	if err != nil {
		return models.FeedPost{}, fmt.Errorf("store: insert post: %w", err)
	}

	return models.FeedPost{
		ID:        id,
		Title:     post.Title,
		Content:   post.Content,
		Username:  username,
		Timestamp: post.Timestamp,
	}, nil
}

func (s *PostStore) insert(ctx context.Context, p models.Post) (int64, error) {
	if s.db.DriverName() == "pgx" {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
			INSERT INTO posts (title, content, timestamp, user_id)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`), p.Title, p.Content, p.Timestamp, p.UserID).Scan(&id)
		return id, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (title, content, timestamp, user_id)
		VALUES (?, ?, ?, ?)
	`, p.Title, p.Content, p.Timestamp, p.UserID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Feed returns the most recent posts, newest first. Equal timestamps
// fall back to id order so the sequence is deterministic.
func (s *PostStore) Feed(ctx context.Context, limit int) ([]models.FeedPost, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	posts := []models.FeedPost{}
	err := s.db.SelectContext(ctx, &posts, s.db.Rebind(`
		SELECT p.id, p.title, p.content, p.timestamp, u.username
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.timestamp DESC, p.id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("store: load feed: %w", err)
	}
	return posts, nil
}

// ByAuthor returns one user's posts, newest first. Unknown usernames
// are an ErrUserNotFound, not an empty feed.
func (s *PostStore) ByAuthor(ctx context.Context, username string) ([]models.FeedPost, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`), username)
	if err != nil {
		return nil, fmt.Errorf("store: check author: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	posts := []models.FeedPost{}
	err = s.db.SelectContext(ctx, &posts, s.db.Rebind(`
		SELECT p.id, p.title, p.content, p.timestamp, u.username
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE u.username = ?
		ORDER BY p.timestamp DESC, p.id DESC
	`), username)
	if err != nil {
		return nil, fmt.Errorf("store: load author posts: %w", err)
	}
	return posts, nil
}
