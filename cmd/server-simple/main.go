package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/admin"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/api"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/auth"
	memoryrepo "github.com/angeloghiotto/bcms-backend/pkg/bcms/repo/memory"
	memorystorage "github.com/angeloghiotto/bcms-backend/pkg/bcms/storage/memory"
)

// Development server with zero external dependencies: in-memory
// repository, in-memory blob storage, and a pre-seeded admin account.
// All data is lost on restart. Use cmd/server for anything real.

const (
	devAdminEmail    = "admin@example.com"
	devAdminPassword = "password123"
)

func main() {
	// Initialize repository (in-memory for development)
	repo := memoryrepo.New()

	// Seed the admin account so the API is usable immediately
	if err := seedAdmin(context.Background(), repo); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	// Create the content service
	svc, err := bcms.New(
		bcms.WithRepository(repo),
		bcms.WithBlobStore(memorystorage.New()),
		bcms.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	router := api.NewRouter(svc, admin.New(repo), api.RouterConfig{
		AllowedOrigins: []string{"*"},
	})

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Development server starting on port %s", port)
		log.Printf("All data is in-memory and lost on restart")
		log.Printf("Login with %s / %s", devAdminEmail, devAdminPassword)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func seedAdmin(ctx context.Context, repo bcms.Repository) error {
	hash, err := auth.HashPassword(devAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return repo.CreateUser(ctx, &bcms.User{
		ID:           uuid.New(),
		Name:         "Dev Admin",
		Email:        devAdminEmail,
		PasswordHash: hash,
		Admin:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
