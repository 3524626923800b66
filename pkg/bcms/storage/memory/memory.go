// Package memory provides an in-memory blob store for tests and
// development runs.
package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// Backend is an in-memory implementation of the bcms.BlobStore interface
type Backend struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
}

// New creates a new in-memory storage backend
func New() bcms.BlobStore {
	return &Backend{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// Upload stores the object directly in memory
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.contentTypes[key] = contentType
	return nil
}

// Download returns the stored object
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the stored object
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return errors.New("object not found")
	}
	delete(b.objects, key)
	return nil
}

// URL returns a memory pseudo-URL. Nothing serves it; it only keeps
// stored rows well formed in development.
func (b *Backend) URL(key string) (string, error) {
	return "memory://" + key, nil
}
