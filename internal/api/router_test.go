package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"snapverse/internal/domain"
	"snapverse/internal/service"
	"snapverse/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

// stubAuthService resolves one fixed token to one fixed user. Register
// and Login are unused by these tests.
type stubAuthService struct {
	token string
	user  *domain.User
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return "", nil, errors.New("not implemented")
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == s.token {
		u := *s.user
		return &u, nil
	}
	return nil, service.ErrInvalidSession
}

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
	f.posts = append(f.posts, *post)
	return post.ID, nil
}

func (f *fakePostRepo) ListWithAuthors(ctx context.Context) ([]domain.PostWithAuthor, error) {
	out := make([]domain.PostWithAuthor, len(f.posts))
	for i, p := range f.posts {
		out[i] = domain.PostWithAuthor{Post: p, AuthorName: "Alice"}
	}
	return out, nil
}

type fakeBlobStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.objects[key] = append([]byte(nil), data...)
	f.contentTypes[key] = contentType
	return nil
}

func (f *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), f.contentTypes[key], nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

// --- Test env ---

type testEnv struct {
	router *gin.Engine
	repo   *fakePostRepo
	blobs  *fakeBlobStore
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &fakePostRepo{}
	blobs := newFakeBlobStore()
	auth := &stubAuthService{
		token: "good-token",
		user:  &domain.User{ID: "u1", Name: "Alice", Email: "alice@example.com"},
	}
	postService := service.NewPostService(repo, blobs)

	router := gin.New()
	SetupRoutes(router, auth, postService, time.Hour, 0)

	return &testEnv{router: router, repo: repo, blobs: blobs, token: "good-token"}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// postMultipart builds an authenticated multipart POST.
func (e *testEnv) postMultipart(path string, fields map[string]string, filename, contentType string, data []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		_ = w.WriteField(name, value)
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, _ := w.CreatePart(h)
		_, _ = part.Write(data)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: e.token})
	return req
}

var postFields = map[string]string{
	"caption":  "sunset",
	"tags":     "nature,sky",
	"location": "beach",
}

// --- Tests ---

func TestCreatePostSuccess(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", postFields, "a.png", "image/png", bytes.Repeat([]byte{0x1}, 500))
	rec := env.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())

	require.Len(t, env.repo.posts, 1)
	post := env.repo.posts[0]
	assert.Equal(t, "u1", post.UserID)
	assert.Equal(t, "sunset", post.Caption)
	assert.Equal(t, "nature,sky", post.Tags)
	assert.Equal(t, "beach", post.Location)
	assert.Contains(t, env.blobs.objects, post.ImageKey)
}

func TestCreatePostBearerHeaderAlsoAccepted(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", postFields, "a.png", "image/png", []byte("x"))
	req.Header.Del("Cookie")
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := env.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreatePostUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", postFields, "a.png", "image/png", []byte("x"))
	req.Header.Del("Cookie")
	rec := env.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "Unauthorized"}`, rec.Body.String())

	// The gate short-circuits before any pipeline stage runs.
	assert.Empty(t, env.repo.posts)
	assert.Empty(t, env.blobs.objects)
}

func TestCreatePostInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", postFields, "a.png", "image/png", []byte("x"))
	req.Header.Del("Cookie")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	rec := env.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.repo.posts)
}

func TestCreatePostDisallowedImageType(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", postFields, "a.bmp", "image/bmp", []byte("bmp"))
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "JPEG, PNG, or GIF")

	// Rejection happens before any side effect.
	assert.Empty(t, env.repo.posts)
	assert.Empty(t, env.blobs.objects)
}

func TestCreatePostOversizedImage(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", postFields, "big.png", "image/png", bytes.Repeat([]byte{0x1}, 2*1024*1024+1))
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "2MB or smaller")
	assert.Empty(t, env.blobs.objects)
}

func TestCreatePostMissingImage(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", postFields, "", "", nil)
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "An image file is required")
	assert.Empty(t, env.repo.posts)
	assert.Empty(t, env.blobs.objects)
}

func TestCreatePostMissingFieldsListedIndividually(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/posts", map[string]string{"caption": "c"}, "a.png", "image/png", []byte("x"))
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tags")
	assert.Contains(t, rec.Body.String(), "location")
}

func TestCreatePostNoBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: env.token})
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No form data provided")
}

func TestCreatePostPersistenceFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.repo.failWith = errors.New(`insert post: ERROR: insert or update on table "posts" violates foreign key constraint`)

	req := env.postMultipart("/api/posts", postFields, "a.png", "image/png", []byte("x"))
	rec := env.do(req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal cause strings never reach the response body.
	assert.JSONEq(t, `{"error": "Something went wrong"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "foreign key")

	// The already written blob stays behind as an orphan.
	assert.Len(t, env.blobs.objects, 1)
	assert.Empty(t, env.repo.posts)
}

func TestListPosts(t *testing.T) {
	env := newTestEnv(t)

	create := env.postMultipart("/api/posts", postFields, "a.png", "image/png", []byte("x"))
	require.Equal(t, http.StatusCreated, env.do(create).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: env.token})
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"caption":"sunset"`)
	assert.Contains(t, body, `"author":{"name":"Alice"}`)
}

func TestListPostsRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := env.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadAndFetchImage(t *testing.T) {
	env := newTestEnv(t)

	req := env.postMultipart("/api/upload", nil, "Pic One.PNG", "image/png", []byte("png-bytes"))
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"url":"/uploads/`)
	assert.Contains(t, body, "pic_one.png")

	// Fetch it back through the public prefix, no session needed.
	var key string
	for k := range env.blobs.objects {
		key = k
	}
	get := httptest.NewRequest(http.MethodGet, "/uploads/"+key, nil)
	getRec := env.do(get)
	assert.Equal(t, http.StatusOK, getRec.Code)
	assert.Equal(t, "png-bytes", getRec.Body.String())
	assert.Equal(t, "image/png", getRec.Header().Get("Content-Type"))
}

func TestFetchMissingImage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/uploads/123-nope.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzIsOpen(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
