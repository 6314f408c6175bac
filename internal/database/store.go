package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Archive defines the data access surface for the published-post archive.
type Archive interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SavePost inserts an archive row for a freshly published post.
	SavePost(ctx context.Context, post *PublishedPost) error

	// RecentPosts returns up to limit most recently published posts.
	RecentPosts(ctx context.Context, limit int) ([]*PublishedPost, error)

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

type sqlxArchive struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewArchive creates an Archive backed by sqlx.
func NewArchive(db *sqlx.DB, logger *slog.Logger) Archive {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxArchive{
		db:     db,
		logger: logger.With("component", "archive"),
	}
}

func (a *sqlxArchive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *sqlxArchive) SavePost(ctx context.Context, post *PublishedPost) error {
	if post == nil {
		return fmt.Errorf("cannot archive nil post")
	}
	if post.ChatID == 0 {
		return fmt.Errorf("archived post must have a non-zero chat_id")
	}
	if post.Text == "" {
		return fmt.Errorf("archived post must have non-empty text")
	}
	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO published_posts (chat_id, text, original_text, image_size, published_at)
        VALUES (:chat_id, :text, :original_text, :image_size, :published_at);
    `

	result, err := a.db.NamedExecContext(ctx, query, post)
	if err != nil {
		a.logger.ErrorContext(ctx, "Error archiving post", "chat_id", post.ChatID, "error", err)
		return fmt.Errorf("failed to archive post (chat %d): %w", post.ChatID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		post.ID = uint(id)
	}

	a.logger.DebugContext(ctx, "Post archived", "chat_id", post.ChatID, "post_id", post.ID)
	return nil
}

func (a *sqlxArchive) RecentPosts(ctx context.Context, limit int) ([]*PublishedPost, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}

	query := `
        SELECT id, chat_id, text, original_text, image_size, published_at
        FROM published_posts
        ORDER BY published_at DESC, id DESC
        LIMIT ?;
    `

	var posts []*PublishedPost
	if err := a.db.SelectContext(ctx, &posts, query, limit); err != nil {
		a.logger.ErrorContext(ctx, "Error listing archived posts", "error", err)
		return nil, fmt.Errorf("failed to list archived posts: %w", err)
	}
	return posts, nil
}

func (a *sqlxArchive) RunMaintenance(ctx context.Context) error {
	start := time.Now()

	if _, err := a.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("failed to vacuum archive: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		return fmt.Errorf("failed to analyze archive: %w", err)
	}

	a.logger.InfoContext(ctx, "Archive maintenance completed", "duration", time.Since(start))
	return nil
}
