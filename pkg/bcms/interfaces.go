package bcms

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence interface for all entities. Implementations
// must enforce association uniqueness themselves so concurrent attaches of
// the same pair fail with ErrDuplicateAssociation rather than racing, and
// must preserve association insertion order.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, page Pagination) ([]*User, int64, error)
	SearchUsersByEmail(ctx context.Context, email string, limit int) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context) (int64, error)

	// Client operations
	CreateClient(ctx context.Context, client *Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, page Pagination) ([]*Client, int64, error)
	UpdateClient(ctx context.Context, client *Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	CountClients(ctx context.Context) (int64, error)

	// Association operations. Insertion order defines the "first"
	// associated client of a user.
	AttachUserToClient(ctx context.Context, clientID, userID uuid.UUID) (*Association, error)
	DetachUserFromClient(ctx context.Context, clientID, userID uuid.UUID) error
	ListClientUsers(ctx context.Context, clientID uuid.UUID) ([]*User, error)
	ListUserClients(ctx context.Context, userID uuid.UUID) ([]*Client, error)

	// Post category operations
	CreateCategory(ctx context.Context, category *PostCategory) error
	GetCategory(ctx context.Context, id uuid.UUID) (*PostCategory, error)
	ListCategories(ctx context.Context, page Pagination, filters CategoryFilters) ([]*PostCategory, int64, error)
	UpdateCategory(ctx context.Context, category *PostCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CountCategories(ctx context.Context) (int64, error)

	// Post operations
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context, page Pagination, filters PostFilters) ([]*Post, int64, error)
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	CountPosts(ctx context.Context) (int64, error)
	CountPostsByClient(ctx context.Context) (map[uuid.UUID]int64, error)

	// Token operations
	CreateToken(ctx context.Context, token *Token) error
	GetTokenByDigest(ctx context.Context, digest string) (*Token, error)
	DeleteToken(ctx context.Context, id uuid.UUID) error
	TouchToken(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

// BlobStore is the object-storage interface for uploaded images. URL
// derives the public URL for a stored key; backends without a public
// address return an error.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) (string, error)
}

// EventSink receives notifications after successful mutations. Sink
// failures are logged and never fail the operation that fired them.
type EventSink interface {
	UserRegistered(ctx context.Context, user *User) error
	PostCreated(ctx context.Context, post *Post) error
	PostUpdated(ctx context.Context, post *Post) error
	PostDeleted(ctx context.Context, postID uuid.UUID) error
	CategoryCreated(ctx context.Context, category *PostCategory) error
	CategoryDeleted(ctx context.Context, categoryID uuid.UUID) error
}
