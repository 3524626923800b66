package bcms

import (
	"time"

	"github.com/google/uuid"
)

// Pagination defaults applied to every list operation.
const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// User is an account that can authenticate against the API. Admin users
// manage users and clients and see every tenant; non-admin users operate
// inside a single client scope.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Admin           bool       `json:"admin"`
	DefaultClientID *uuid.UUID `json:"default_client_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Client is a tenant: the owner of posts and post categories.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Website   string    `json:"website,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zip_code,omitempty"`
	Country   string    `json:"country,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostCategory groups posts inside one client.
type PostCategory struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post is an article written by a user for a client. ImageKey records the
// blob key of an uploaded image at write time so replacement and cleanup
// never have to parse the public URL; it is not serialized.
type Post struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ClientID       uuid.UUID `json:"client_id"`
	PostCategoryID uuid.UUID `json:"post_category_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url,omitempty"`
	ImageKey       string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Association is a client-user membership row. Insertion order is
// preserved and observable: it defines the "first" associated client.
type Association struct {
	ClientID  uuid.UUID `json:"client_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Token is a bearer credential. Only the SHA-256 digest of the secret is
// stored; the plaintext exists once, in the issue response.
type Token struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Digest     string     `json:"-"`
	Name       string     `json:"name,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Expired reports whether the token has an expiry in the past.
func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Identity is the authenticated caller for a single request. It is
// resolved once by the auth middleware and passed explicitly into every
// service call; there is no ambient current-user state.
type Identity struct {
	UserID          uuid.UUID
	Admin           bool
	DefaultClientID *uuid.UUID
	TokenID         uuid.UUID
}

// Pagination selects a page of a list result.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Normalize clamps the pagination to valid bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset is the row offset for the normalized page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// PageMeta describes the page a list response carries.
type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPageMeta computes page metadata for a normalized pagination and a
// total row count.
func NewPageMeta(p Pagination, total int64) PageMeta {
	n := p.Normalize()
	pages := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return PageMeta{Page: n.Page, PerPage: n.PerPage, Total: total, TotalPages: pages}
}

// PostFilters are the equality filters accepted by post listing.
// Nil fields are ignored.
type PostFilters struct {
	ClientID *uuid.UUID
	UserID   *uuid.UUID
}

// CategoryFilters are the equality filters accepted by category listing.
type CategoryFilters struct {
	ClientID *uuid.UUID
}
