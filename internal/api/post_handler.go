package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"snapverse/internal/domain"
	"snapverse/internal/service"
	"snapverse/internal/storage"
	"snapverse/internal/upload"

	"github.com/gin-gonic/gin"
)

// requiredPostFields are the text fields every create-post body must
// carry alongside the image.
var requiredPostFields = []string{"caption", "tags", "location"}

// PostHandler holds the post service dependency.
type PostHandler struct {
	postService service.PostService
	maxFileSize int64
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService service.PostService, maxFileSize int64) *PostHandler {
	return &PostHandler{postService: postService, maxFileSize: maxFileSize}
}

// --- Response Structs ---

type PostAuthor struct {
	Name string `json:"name"`
}

type PostResponse struct {
	ID        int64      `json:"id"`
	Caption   string     `json:"caption"`
	Tags      string     `json:"tags"`
	Location  string     `json:"location"`
	Likes     int        `json:"likes"`
	ImageKey  string     `json:"imageKey"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    PostAuthor `json:"author"`
}

type UploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// --- Handler Methods ---

// CreatePost godoc
// @Summary Create a post
// @Description Accepts a multipart body with caption, tags, location, and one image, stores the image, and creates the post.
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} gin.H "Post created"
// @Failure 400 {object} gin.H "Malformed body or failed validation"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	principal, err := getUserFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from session")
		return
	}

	raw, err := upload.Decode(c.Request, requiredPostFields...)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, decodeErrorMessage(err))
		return
	}

	payload, err := upload.Validate(raw, h.maxFileSize)
	if err != nil {
		// The validation error message carries only the first failing
		// reason.
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.postService.CreatePost(c.Request.Context(), principal, payload); err != nil {
		// Storage and persistence detail is logged by the service; the
		// caller only sees a generic message.
		abortWithError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// ListPosts godoc
// @Summary List posts
// @Description Returns every post with its author's display name.
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PostResponse "List of posts"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Failed to list posts: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if posts == nil {
		c.JSON(http.StatusOK, []PostResponse{})
		return
	}
	c.JSON(http.StatusOK, MapPostsToResponse(posts))
}

// UploadImage godoc
// @Summary Upload an image
// @Description Stores a single image without creating a post and returns its key and public URL.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UploadResponse "Stored image"
// @Failure 400 {object} gin.H "Malformed body or failed validation"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /upload [post]
func (h *PostHandler) UploadImage(c *gin.Context) {
	raw, err := upload.Decode(c.Request)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, decodeErrorMessage(err))
		return
	}
	if raw.File == nil {
		abortWithError(c, http.StatusBadRequest, "An image file is required")
		return
	}
	if err := upload.ValidateImage(raw.File, h.maxFileSize); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.postService.StoreImage(c.Request.Context(), *raw.File)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Error uploading file")
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Filename: key,
		URL:      "/uploads/" + key,
	})
}

// GetImage godoc
// @Summary Fetch a stored image
// @Description Streams a stored image by its key.
// @Tags Uploads
// @Produce image/*
// @Param key path string true "Object key"
// @Success 200 {file} binary "Image bytes"
// @Failure 404 {object} gin.H "Not found"
// @Router /uploads/{key} [get]
func (h *PostHandler) GetImage(c *gin.Context) {
	key := c.Param("key")
	reader, contentType, err := h.postService.OpenImage(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			abortWithError(c, http.StatusNotFound, "Not found")
			return
		}
		log.Printf("ERROR: Failed to open image '%s': %v", key, err)
		abortWithError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Printf("ERROR: Failed to stream image '%s': %v", key, err)
	}
}

// decodeErrorMessage maps decoder failures to the client-facing text.
func decodeErrorMessage(err error) string {
	var missing *upload.MissingFieldsError
	if errors.As(err, &missing) {
		return missing.Error()
	}
	return "No form data provided"
}

// MapPostsToResponse converts joined post rows to response DTOs.
func MapPostsToResponse(posts []domain.PostWithAuthor) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = PostResponse{
			ID:        p.ID,
			Caption:   p.Caption,
			Tags:      p.Tags,
			Location:  p.Location,
			Likes:     p.Likes,
			ImageKey:  p.ImageKey,
			CreatedAt: p.CreatedAt,
			Author:    PostAuthor{Name: p.AuthorName},
		}
	}
	return out
}
