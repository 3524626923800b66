package bcms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrClientNotFound indicates a client was not found
	ErrClientNotFound = errors.New("client not found")

	// ErrPostNotFound indicates a post was not found or is out of the caller's scope
	ErrPostNotFound = errors.New("post not found")

	// ErrCategoryNotFound indicates a post category was not found or is out of the caller's scope
	ErrCategoryNotFound = errors.New("post category not found")

	// ErrTokenNotFound indicates a bearer token was not found
	ErrTokenNotFound = errors.New("token not found")

	// ErrEmailTaken indicates the email is already registered
	ErrEmailTaken = errors.New("email already taken")

	// ErrIncorrectCredentials is the generic login failure. It never
	// distinguishes an unknown email from a wrong password.
	ErrIncorrectCredentials = errors.New("incorrect credentials")

	// ErrUnauthenticated indicates the request carries no valid bearer token
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates an admin-only operation was attempted by a non-admin
	ErrForbidden = errors.New("forbidden")

	// ErrNoClientAssociation indicates a non-admin caller has no client to scope to
	ErrNoClientAssociation = errors.New("user has no client association")

	// ErrDuplicateAssociation indicates the client-user pair already exists
	ErrDuplicateAssociation = errors.New("user already attached to client")

	// ErrAssociationNotFound indicates the client-user pair does not exist
	ErrAssociationNotFound = errors.New("user not attached to client")

	// ErrStorageNotConfigured indicates an image operation was attempted
	// with no blob store wired
	ErrStorageNotConfigured = errors.New("blob storage not configured")
)

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// EntityError wraps a failure of an operation on a specific entity.
type EntityError struct {
	Entity string
	ID     uuid.UUID
	Op     string
	Err    error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s operation %s failed for %s %s: %v", e.Entity, e.Op, e.Entity, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failure of a blob store operation.
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
