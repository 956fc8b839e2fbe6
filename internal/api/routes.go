package api

import (
	"net/http"
	"time"

	"snapverse/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires handlers onto the router. Everything under /api is
// session-gated except the /api/auth endpoints; /healthz and the public
// /uploads prefix are open.
func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	postService service.PostService,
	sessionMaxAge time.Duration,
	maxFileSize int64,
) {
	authHandler := NewAuthHandler(authService, sessionMaxAge)
	postHandler := NewPostHandler(postService, maxFileSize)

	sessionMiddleware := SessionMiddleware(authService)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Stored images are public once their generated key is known.
	router.GET("/uploads/:key", postHandler.GetImage)

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}
	}

	protected := apiGroup.Group("")
	protected.Use(sessionMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.POST("/posts", postHandler.CreatePost)
		protected.GET("/posts", postHandler.ListPosts)
		protected.POST("/upload", postHandler.UploadImage)
	}
}
