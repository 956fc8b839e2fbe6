package postgres

import (
	"context"
	"fmt"
	"time"

	"snapverse/internal/domain"
	"snapverse/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// postRepository implements repository.PostRepository over Postgres.
type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a Postgres-backed post repository.
func NewPostRepository(pool *pgxpool.Pool) repository.PostRepository {
	return &postRepository{pool: pool}
}

// Create inserts the post record in a single statement and returns the
// database-assigned id. The insert either commits every column or
// nothing; there is no partial-record path.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO posts (caption, tags, location, likes, image_key, created_at, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, post.Caption, post.Tags, post.Location, post.Likes, post.ImageKey, post.CreatedAt, post.UserID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	post.ID = id
	return id, nil
}

// ListWithAuthors returns every post joined with its author's display
// name, in store order. Not paginated.
func (r *postRepository) ListWithAuthors(ctx context.Context) ([]domain.PostWithAuthor, error) {
	rows, err := r.pool.Query(ctx, `
SELECT p.id, p.caption, p.tags, p.location, p.likes, p.image_key, p.created_at, p.user_id, COALESCE(u.name, '')
FROM posts p
LEFT JOIN users u ON u.id = p.user_id
`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.PostWithAuthor
	for rows.Next() {
		var p domain.PostWithAuthor
		if err := rows.Scan(&p.ID, &p.Caption, &p.Tags, &p.Location, &p.Likes,
			&p.ImageKey, &p.CreatedAt, &p.UserID, &p.AuthorName); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}
