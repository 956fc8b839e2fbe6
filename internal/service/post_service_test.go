package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"snapverse/internal/domain"
	"snapverse/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakePostRepo struct {
	posts    []domain.Post
	nextID   int64
	failWith error
}

func (f *fakePostRepo) Create(ctx context.Context, post *domain.Post) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.nextID++
	post.ID = f.nextID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	f.posts = append(f.posts, *post)
	return post.ID, nil
}

func (f *fakePostRepo) ListWithAuthors(ctx context.Context) ([]domain.PostWithAuthor, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]domain.PostWithAuthor, len(f.posts))
	for i, p := range f.posts {
		out[i] = domain.PostWithAuthor{Post: p, AuthorName: "tester"}
	}
	return out, nil
}

type fakeBlobStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	failPut      error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.failPut != nil {
		return f.failPut
	}
	f.objects[key] = append([]byte(nil), data...)
	f.contentTypes[key] = contentType
	return nil
}

func (f *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), f.contentTypes[key], nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func validPayload() *upload.ValidatedUpload {
	return &upload.ValidatedUpload{
		Caption:  "sunset",
		Tags:     "nature,sky",
		Location: "beach",
		File: upload.FilePart{
			Filename:    "a.png",
			ContentType: "image/png",
			Data:        bytes.Repeat([]byte{0x1}, 500),
		},
	}
}

// --- Tests ---

func TestCreatePostStoresBlobThenRecord(t *testing.T) {
	repo := &fakePostRepo{}
	blobs := newFakeBlobStore()
	svc := NewPostService(repo, blobs)
	principal := &domain.User{ID: "u1", Name: "Alice"}

	post, err := svc.CreatePost(context.Background(), principal, validPayload())
	require.NoError(t, err)

	assert.Equal(t, "u1", post.UserID)
	assert.Equal(t, "sunset", post.Caption)
	assert.Equal(t, "nature,sky", post.Tags)
	assert.Equal(t, "beach", post.Location)
	assert.Zero(t, post.Likes)

	require.Len(t, repo.posts, 1)
	assert.Equal(t, post.ImageKey, repo.posts[0].ImageKey)

	data, ok := blobs.objects[post.ImageKey]
	require.True(t, ok, "blob must be stored under the record's image key")
	assert.Len(t, data, 500)
	assert.Equal(t, "image/png", blobs.contentTypes[post.ImageKey])
}

func TestCreatePostStorageFailure(t *testing.T) {
	repo := &fakePostRepo{}
	blobs := newFakeBlobStore()
	blobs.failPut = errors.New("disk full")
	svc := NewPostService(repo, blobs)

	_, err := svc.CreatePost(context.Background(), &domain.User{ID: "u1"}, validPayload())
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	// Nothing was persisted on either side.
	assert.Empty(t, repo.posts)
	assert.Empty(t, blobs.objects)
}

func TestCreatePostInsertFailureLeavesOrphanBlob(t *testing.T) {
	repo := &fakePostRepo{failWith: errors.New("foreign key violation")}
	blobs := newFakeBlobStore()
	svc := NewPostService(repo, blobs)

	_, err := svc.CreatePost(context.Background(), &domain.User{ID: "gone"}, validPayload())
	assert.ErrorIs(t, err, ErrPersistenceFailed)

	// No record, but the blob stays behind; cleanup is out-of-band.
	assert.Empty(t, repo.posts)
	assert.Len(t, blobs.objects, 1)
}

func TestCreatePostTwiceProducesDistinctKeys(t *testing.T) {
	repo := &fakePostRepo{}
	blobs := newFakeBlobStore()
	svc := NewPostService(repo, blobs)
	principal := &domain.User{ID: "u1"}

	first, err := svc.CreatePost(context.Background(), principal, validPayload())
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // keys are millisecond-timestamped
	second, err := svc.CreatePost(context.Background(), principal, validPayload())
	require.NoError(t, err)

	assert.NotEqual(t, first.ImageKey, second.ImageKey)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, blobs.objects, 2)
}

func TestStoreImage(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewPostService(&fakePostRepo{}, blobs)

	key, err := svc.StoreImage(context.Background(), upload.FilePart{
		Filename:    "My Pic.JPG",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg"),
	})
	require.NoError(t, err)
	assert.Contains(t, key, "my_pic.jpg")

	reader, contentType, err := svc.OpenImage(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), got)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestListPosts(t *testing.T) {
	repo := &fakePostRepo{}
	svc := NewPostService(repo, newFakeBlobStore())

	_, err := svc.CreatePost(context.Background(), &domain.User{ID: "u1"}, validPayload())
	require.NoError(t, err)

	posts, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "tester", posts[0].AuthorName)
	assert.Equal(t, "sunset", posts[0].Caption)
}
