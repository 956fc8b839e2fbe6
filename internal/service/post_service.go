package service

import (
	"context"
	"errors"
	"io"
	"log"

	"snapverse/internal/domain"
	"snapverse/internal/repository"
	"snapverse/internal/storage"
	"snapverse/internal/upload"
)

// --- Error Definitions ---
var (
	ErrStorageUnavailable = errors.New("failed to store image")
	ErrPersistenceFailed  = errors.New("failed to save post")
)

// PostService runs the ingestion side of post creation: it takes an
// already validated upload, writes the image to the blob store, and
// then persists the post record referencing it. Stages run strictly in
// that order and nothing is retried or rolled back.
type PostService interface {
	CreatePost(ctx context.Context, principal *domain.User, payload *upload.ValidatedUpload) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]domain.PostWithAuthor, error)
	// StoreImage writes just the image and returns its key, without
	// creating a post record.
	StoreImage(ctx context.Context, file upload.FilePart) (string, error)
	// OpenImage streams a stored image back by key. Missing keys fail
	// with storage.ErrObjectNotFound.
	OpenImage(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// postService implements the PostService interface.
type postService struct {
	postRepo repository.PostRepository
	blobs    storage.ObjectStorage
}

// NewPostService creates a new instance of postService. Both stores are
// injected so tests can substitute fakes.
func NewPostService(postRepo repository.PostRepository, blobs storage.ObjectStorage) PostService {
	return &postService{
		postRepo: postRepo,
		blobs:    blobs,
	}
}

// CreatePost stores the image and then the post record. If the record
// insert fails after the blob write succeeded, the blob stays behind as
// an orphan for out-of-band cleanup; its key is logged so it can be
// found.
func (s *postService) CreatePost(ctx context.Context, principal *domain.User, payload *upload.ValidatedUpload) (*domain.Post, error) {
	key := upload.NewObjectKey(payload.File.Filename)

	if err := s.blobs.Put(ctx, key, payload.File.Data, payload.File.ContentType); err != nil {
		log.Printf("ERROR: Blob write failed for key '%s': %v", key, err)
		return nil, ErrStorageUnavailable
	}

	post := &domain.Post{
		Caption:  payload.Caption,
		Tags:     payload.Tags,
		Location: payload.Location,
		ImageKey: key,
		UserID:   principal.ID,
	}
	if _, err := s.postRepo.Create(ctx, post); err != nil {
		log.Printf("ERROR: Post insert failed for user '%s', orphaned blob '%s': %v", principal.ID, key, err)
		return nil, ErrPersistenceFailed
	}
	return post, nil
}

// ListPosts returns every post joined with its author's display name.
func (s *postService) ListPosts(ctx context.Context) ([]domain.PostWithAuthor, error) {
	return s.postRepo.ListWithAuthors(ctx)
}

// StoreImage writes the image under a fresh key and returns the key.
func (s *postService) StoreImage(ctx context.Context, file upload.FilePart) (string, error) {
	key := upload.NewObjectKey(file.Filename)
	if err := s.blobs.Put(ctx, key, file.Data, file.ContentType); err != nil {
		log.Printf("ERROR: Blob write failed for key '%s': %v", key, err)
		return "", ErrStorageUnavailable
	}
	return key, nil
}

// OpenImage returns a reader over the stored image and its content type.
func (s *postService) OpenImage(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.blobs.Open(ctx, key)
}
