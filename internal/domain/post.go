package domain

import (
	"time"
)

// Post is a published photo with its metadata. The image bytes live in
// object storage under ImageKey; the record only carries the reference.
type Post struct {
	ID        int64     `json:"id"` // Assigned by the database
	Caption   string    `json:"caption"`
	Tags      string    `json:"tags"` // Opaque comma-separated text
	Location  string    `json:"location"`
	Likes     int       `json:"likes"`
	ImageKey  string    `json:"imageKey"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"` // FK to User.ID, cascade on delete
}

// PostWithAuthor is a Post joined with the owning user's display name,
// as returned by the listing query.
type PostWithAuthor struct {
	Post
	AuthorName string `json:"authorName"`
}
