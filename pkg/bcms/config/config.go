// Package config loads server configuration from the environment and
// builds the service and its backends from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/admin"
	repomemory "github.com/angeloghiotto/bcms-backend/pkg/bcms/repo/memory"
	repopg "github.com/angeloghiotto/bcms-backend/pkg/bcms/repo/postgres"
	fsstorage "github.com/angeloghiotto/bcms-backend/pkg/bcms/storage/fs"
	memorystorage "github.com/angeloghiotto/bcms-backend/pkg/bcms/storage/memory"
	s3storage "github.com/angeloghiotto/bcms-backend/pkg/bcms/storage/s3"
)

// ServerConfig represents server configuration for the bcms service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration
	DatabaseType    string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"
	DatabaseURL     string `env:"DATABASE_URL" env-default:""`
	DatabaseMigrate bool   `env:"DATABASE_MIGRATE" env-default:"false"`

	// Storage configuration
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"memory"` // "memory", "fs", "s3"
	FSBaseDir      string `env:"FS_BASE_DIR" env-default:"./data/storage"`
	FSURLPrefix    string `env:"FS_URL_PREFIX" env-default:""`

	S3Region                 string `env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket                 string `env:"S3_BUCKET" env-default:""`
	S3AccessKeyID            string `env:"S3_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey        string `env:"S3_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint               string `env:"S3_ENDPOINT" env-default:""`
	S3UseSSL                 bool   `env:"S3_USE_SSL" env-default:"true"`
	S3UsePathStyle           bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3PublicBaseURL          string `env:"S3_PUBLIC_BASE_URL" env-default:""`
	S3CreateBucketIfNotExist bool   `env:"S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`

	// Auth and scoping
	AuthTokenTTL time.Duration `env:"AUTH_TOKEN_TTL" env-default:"720h"`
	ScopeSource  string        `env:"SCOPE_SOURCE" env-default:"default_client"` // "default_client", "first_association"

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Load reads configuration from the environment and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.StorageBackend {
	case "memory", "fs":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("s3_bucket is required when using s3 storage")
		}
	default:
		return errors.New("storage_backend must be 'memory', 'fs' or 's3'")
	}

	switch bcms.ScopeSource(c.ScopeSource) {
	case bcms.ScopeSourceDefaultClient, bcms.ScopeSourceFirstAssociation:
	default:
		return errors.New("scope_source must be 'default_client' or 'first_association'")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// CORSOrigins returns the configured allowed origins as a list.
func (c *ServerConfig) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// MigrateDatabase applies pending schema migrations when the server is
// configured to do so. It is a no-op for the memory database.
func (c *ServerConfig) MigrateDatabase() error {
	if !c.DatabaseMigrate || c.DatabaseType != "postgres" {
		return nil
	}
	return repopg.Migrate(c.DatabaseURL)
}

// BuildServices creates the content service and the admin statistics
// service from the server configuration. Both share one repository.
func (c *ServerConfig) BuildServices(logger *slog.Logger) (bcms.Service, admin.Service, error) {
	repo, err := c.BuildRepository()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.BuildBlobStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	svc, err := bcms.New(
		bcms.WithRepository(repo),
		bcms.WithBlobStore(store),
		bcms.WithEventSink(bcms.NewLoggingEventSink(logger)),
		bcms.WithTokenTTL(c.AuthTokenTTL),
		bcms.WithScopeSource(bcms.ScopeSource(c.ScopeSource)),
		bcms.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, admin.New(repo), nil
}

// BuildRepository creates a Repository based on the configuration
func (c *ServerConfig) BuildRepository() (bcms.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres so misconfiguration
// surfaces at boot instead of on the first request.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// BuildBlobStore creates a BlobStore based on the configuration
func (c *ServerConfig) BuildBlobStore() (bcms.BlobStore, error) {
	switch c.StorageBackend {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FSBaseDir,
			URLPrefix: c.FSURLPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3Region,
			Bucket:                 c.S3Bucket,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               c.S3Endpoint,
			UseSSL:                 c.S3UseSSL,
			UsePathStyle:           c.S3UsePathStyle,
			PublicBaseURL:          c.S3PublicBaseURL,
			CreateBucketIfNotExist: c.S3CreateBucketIfNotExist,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageBackend)
	}
}
