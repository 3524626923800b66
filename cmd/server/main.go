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

	"github.com/joho/godotenv"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms/api"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/config"
)

func main() {
	// Load .env file if present; environment variables win either way
	_ = godotenv.Load()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.DatabaseType == "postgres" {
		if err := config.PingPostgres(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to reach database: %v", err)
		}
	}

	// Apply pending migrations when DATABASE_MIGRATE=true
	if err := cfg.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Build services from configuration
	svc, adminSvc, err := cfg.BuildServices(logger)
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	router := api.NewRouter(svc, adminSvc, api.RouterConfig{
		AllowedOrigins: cfg.CORSOrigins(),
	})

	// Create HTTP server instance
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("BCMS server starting on port %s (env: %s)", cfg.Port, cfg.Environment)
		log.Printf("Database backend: %s", cfg.DatabaseType)
		log.Printf("Storage backend: %s", cfg.StorageBackend)

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

// newLogger builds the application logger: JSON output in production,
// human-readable text everywhere else.
func newLogger(cfg *config.ServerConfig) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
