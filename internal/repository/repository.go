package repository

import (
	"context"

	"snapverse/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// PostRepository defines the interface for interacting with post data.
// Create inserts the whole record at once and returns the assigned id;
// there is no partial-insert path.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (int64, error)
	ListWithAuthors(ctx context.Context) ([]domain.PostWithAuthor, error)
}
