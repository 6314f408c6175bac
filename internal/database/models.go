package database

import "time"

// PublishedPost is the archive row written each time a post is delivered to
// the target channel. The image itself is not archived, only its size; the
// archive is an audit trail, not a content store.
type PublishedPost struct {
	ID           uint      `db:"id"`
	ChatID       int64     `db:"chat_id"`
	Text         string    `db:"text"`
	OriginalText string    `db:"original_text"`
	ImageSize    int       `db:"image_size"`
	PublishedAt  time.Time `db:"published_at"`
}
