package bcms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms/objectkey"
)

// Service is the main interface for the content-management API. Every
// operation past the public auth flows takes the caller's Identity
// explicitly; authorization and client scoping happen inside the service,
// not in the transport layer.
type Service interface {
	// Auth flows
	Register(ctx context.Context, req RegisterRequest) (*User, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, error)
	Logout(ctx context.Context, ident Identity) error
	Authenticate(ctx context.Context, token string) (Identity, error)
	CurrentUser(ctx context.Context, ident Identity) (*User, error)

	// User operations (admin)
	ListUsers(ctx context.Context, ident Identity, page Pagination) ([]*User, int64, error)
	CreateUser(ctx context.Context, ident Identity, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, ident Identity, id uuid.UUID) (*User, error)
	UpdateUser(ctx context.Context, ident Identity, id uuid.UUID, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, ident Identity, id uuid.UUID) error
	SearchUsers(ctx context.Context, ident Identity, req SearchUsersRequest) ([]*User, error)

	// Client operations (admin)
	ListClients(ctx context.Context, ident Identity, page Pagination) ([]*Client, int64, error)
	CreateClient(ctx context.Context, ident Identity, req CreateClientRequest) (*Client, error)
	GetClient(ctx context.Context, ident Identity, id uuid.UUID) (*Client, error)
	UpdateClient(ctx context.Context, ident Identity, id uuid.UUID, req UpdateClientRequest) (*Client, error)
	DeleteClient(ctx context.Context, ident Identity, id uuid.UUID) error
	ListClientUsers(ctx context.Context, ident Identity, clientID uuid.UUID) ([]*User, error)
	AttachUser(ctx context.Context, ident Identity, clientID, userID uuid.UUID) (*Client, *User, error)
	DetachUser(ctx context.Context, ident Identity, clientID, userID uuid.UUID) error

	// Post category operations (client-scoped)
	ListCategories(ctx context.Context, ident Identity, page Pagination, filters CategoryFilters) ([]*PostCategory, int64, error)
	CreateCategory(ctx context.Context, ident Identity, req CreateCategoryRequest) (*PostCategory, error)
	GetCategory(ctx context.Context, ident Identity, id uuid.UUID) (*PostCategory, error)
	UpdateCategory(ctx context.Context, ident Identity, id uuid.UUID, req UpdateCategoryRequest) (*PostCategory, error)
	DeleteCategory(ctx context.Context, ident Identity, id uuid.UUID) error

	// Post operations (client-scoped)
	ListPosts(ctx context.Context, ident Identity, page Pagination, filters PostFilters) ([]*Post, int64, error)
	CreatePost(ctx context.Context, ident Identity, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, ident Identity, id uuid.UUID) (*Post, error)
	UpdatePost(ctx context.Context, ident Identity, id uuid.UUID, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, ident Identity, id uuid.UUID) error
}

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	eventSink  EventSink
	authorizer *Authorizer
	keys       objectkey.Generator
	tokenTTL   time.Duration
	logger     *slog.Logger

	scopeSource ScopeSource
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob store used for image uploads. Without one,
// image uploads fail with ErrStorageNotConfigured; URL-only image fields
// still work.
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithTokenTTL sets the lifetime of issued bearer tokens. Zero means
// tokens never expire.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.tokenTTL = ttl
	}
}

// WithScopeSource selects how a non-admin caller's client scope is
// resolved. The default is ScopeSourceDefaultClient.
func WithScopeSource(src ScopeSource) Option {
	return func(s *service) {
		s.scopeSource = src
	}
}

// WithObjectKeyGenerator sets the strategy for blob key generation.
func WithObjectKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink:   NewNoopEventSink(),
		keys:        objectkey.NewUUIDGenerator(),
		scopeSource: ScopeSourceDefaultClient,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.authorizer = NewAuthorizer(s.repository, s.scopeSource)

	return s, nil
}

// fireEvent runs an event callback and logs a failure without surfacing it.
func (s *service) fireEvent(ctx context.Context, name string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "event sink failed", "event", name, "error", err)
	}
}
