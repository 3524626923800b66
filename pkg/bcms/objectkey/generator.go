// Package objectkey generates blob-store keys for uploaded files.
package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for blob key generation strategies.
type Generator interface {
	// GenerateKey creates a key under the given namespace. The filename
	// is advisory; implementations must guarantee uniqueness themselves.
	GenerateKey(namespace, filename string) string
}

// UUIDGenerator produces {namespace}/{uuid}_{filename} keys. The uuid
// makes every key unique; the sanitized original filename keeps keys
// readable in bucket listings.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) GenerateKey(namespace, filename string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	if filename == "" {
		return fmt.Sprintf("%s/%s", namespace, id)
	}
	return fmt.Sprintf("%s/%s_%s", namespace, id, sanitizeFilename(filename))
}

// CustomFuncGenerator allows callers to provide their own key generation
// function.
type CustomFuncGenerator struct {
	GenerateFunc func(namespace, filename string) string
}

func (g *CustomFuncGenerator) GenerateKey(namespace, filename string) string {
	return g.GenerateFunc(namespace, filename)
}

func sanitizeFilename(filename string) string {
	// Replace problematic characters for key and filesystem compatibility
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}
