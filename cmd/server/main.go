package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snapverse/internal/api"
	"snapverse/internal/config"
	"snapverse/internal/repository/postgres"
	"snapverse/internal/service"
	"snapverse/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Snapverse API
// @version 1.0
// @description Photo-sharing backend: session-gated post ingestion and listing.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	log.Println("Starting Snapverse Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	pool, err := postgres.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to Postgres: %v", err)
	}
	defer func() {
		log.Println("Closing Postgres pool...")
		pool.Close()
	}()
	log.Println("Database connection established.")

	// --- Ensure Schema ---
	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 1*time.Minute)
	err = postgres.EnsureSchema(schemaCtx, pool)
	cancelSchema()
	if err != nil {
		log.Fatalf("FATAL: Could not ensure database schema: %v", err)
	}

	// --- Initialize Storage ---
	log.Println("Initializing blob storage...")
	var blobs storage.ObjectStorage
	switch cfg.Storage.Driver {
	case "s3":
		blobs, err = storage.NewS3Storage(cfg.Storage.S3)
	case "local", "":
		blobs, err = storage.NewLocalStorage(cfg.Storage.Path)
	default:
		log.Fatalf("FATAL: Unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize blob storage: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := postgres.NewUserRepository(pool)
	postRepo := postgres.NewPostRepository(pool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	postService := service.NewPostService(postRepo, blobs)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, authService, postService, cfg.JWT.Expiration, cfg.Upload.MaxFileSize)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give in-flight requests five seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
