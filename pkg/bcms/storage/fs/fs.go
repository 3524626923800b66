// Package fs provides a filesystem-backed blob store. Object keys map
// directly to paths under the configured base directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// Backend is a filesystem implementation of the bcms.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // Public URL prefix the base directory is served under
}

// New creates a new filesystem storage backend
func New(config Config) (bcms.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// Upload writes the object to the filesystem
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	filePath := filepath.Join(b.baseDir, key)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Download opens the object from the filesystem
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(b.baseDir, key))
	if os.IsNotExist(err) {
		return nil, errors.New("object not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the object from the filesystem
func (b *Backend) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(b.baseDir, key))
	if os.IsNotExist(err) {
		return errors.New("object not found")
	} else if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored object. The filesystem
// backend can only produce one when a URL prefix is configured, since
// the files are served by whatever fronts the base directory.
func (b *Backend) URL(key string) (string, error) {
	if b.urlPrefix == "" {
		return "", errors.New("filesystem backend has no URL prefix configured")
	}
	return b.urlPrefix + "/" + key, nil
}
