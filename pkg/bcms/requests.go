package bcms

import (
	"errors"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Request DTOs. Validate methods run before any persistence; rule
// violations surface as 422 field errors keyed by json name.

// Field length caps shared across requests.
const (
	maxNameLen    = 255
	maxEmailLen   = 255
	maxPhoneLen   = 50
	maxURLLen     = 2048
	maxAddressLen = 255
	maxTitleLen   = 255
	maxNotesLen   = 65535
)

// RegisterRequest contains parameters for self-service registration.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLen)),
		validation.Field(&r.Email, validation.Required, is.Email, validation.Length(3, maxEmailLen)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.PasswordConfirmation, validation.Required, validation.By(func(interface{}) error {
			if r.PasswordConfirmation != r.Password {
				return errors.New("does not match password")
			}
			return nil
		})),
	)
}

// LoginRequest contains credentials for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// CreateUserRequest contains parameters for creating a user (admin).
type CreateUserRequest struct {
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	Admin           bool       `json:"admin"`
	DefaultClientID *uuid.UUID `json:"default_client_id"`
}

func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLen)),
		validation.Field(&r.Email, validation.Required, is.Email, validation.Length(3, maxEmailLen)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

// UpdateUserRequest contains the partial fields of a user update. Nil
// fields are left unchanged.
type UpdateUserRequest struct {
	Name            *string    `json:"name"`
	Email           *string    `json:"email"`
	Password        *string    `json:"password"`
	Admin           *bool      `json:"admin"`
	DefaultClientID *uuid.UUID `json:"default_client_id"`
}

func (r *UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, maxNameLen)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email, validation.Length(3, maxEmailLen)),
		validation.Field(&r.Password, validation.Length(8, 72)),
	)
}

// SearchUsersRequest contains parameters for the email substring search.
type SearchUsersRequest struct {
	Email string `json:"email"`
	Limit int    `json:"limit"`
}

func (r *SearchUsersRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, validation.Length(1, maxEmailLen)),
	)
}

// CreateClientRequest contains parameters for creating a client (admin).
type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
	Notes   string `json:"notes"`
}

func (r *CreateClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLen)),
		validation.Field(&r.Email, is.Email, validation.Length(0, maxEmailLen)),
		validation.Field(&r.Phone, validation.Length(0, maxPhoneLen)),
		validation.Field(&r.Website, is.URL, validation.Length(0, maxURLLen)),
		validation.Field(&r.Address, validation.Length(0, maxAddressLen)),
		validation.Field(&r.City, validation.Length(0, maxNameLen)),
		validation.Field(&r.State, validation.Length(0, maxNameLen)),
		validation.Field(&r.ZipCode, validation.Length(0, maxPhoneLen)),
		validation.Field(&r.Country, validation.Length(0, maxNameLen)),
		validation.Field(&r.Notes, validation.Length(0, maxNotesLen)),
	)
}

// UpdateClientRequest contains the partial fields of a client update.
type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Website *string `json:"website"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zip_code"`
	Country *string `json:"country"`
	Notes   *string `json:"notes"`
}

func (r *UpdateClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, maxNameLen)),
		validation.Field(&r.Email, is.Email, validation.Length(0, maxEmailLen)),
		validation.Field(&r.Phone, validation.Length(0, maxPhoneLen)),
		validation.Field(&r.Website, is.URL, validation.Length(0, maxURLLen)),
		validation.Field(&r.Address, validation.Length(0, maxAddressLen)),
		validation.Field(&r.City, validation.Length(0, maxNameLen)),
		validation.Field(&r.State, validation.Length(0, maxNameLen)),
		validation.Field(&r.ZipCode, validation.Length(0, maxPhoneLen)),
		validation.Field(&r.Country, validation.Length(0, maxNameLen)),
		validation.Field(&r.Notes, validation.Length(0, maxNotesLen)),
	)
}

// CreateCategoryRequest contains parameters for creating a post category.
// ClientID is required for admin callers and ignored for scoped callers,
// whose categories always land in their own client.
type CreateCategoryRequest struct {
	Name     string     `json:"name"`
	ClientID *uuid.UUID `json:"client_id"`
}

func (r *CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLen)),
	)
}

// UpdateCategoryRequest contains the partial fields of a category update.
type UpdateCategoryRequest struct {
	Name *string `json:"name"`
}

func (r *UpdateCategoryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, maxNameLen)),
	)
}

// ImageUpload is an image file attached to a post create or update.
// Size must be the exact byte size of the upload; the content type is
// sniffed from the data, not trusted from the request.
type ImageUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// CreatePostRequest contains parameters for creating a post. Exactly one
// of Image and ImageURL may be set; ClientID is admin-only.
type CreatePostRequest struct {
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	PostCategoryID uuid.UUID    `json:"post_category_id"`
	ClientID       *uuid.UUID   `json:"client_id"`
	ImageURL       string       `json:"image_url"`
	Image          *ImageUpload `json:"-"`
}

func (r *CreatePostRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.PostCategoryID, validation.Required),
		validation.Field(&r.ImageURL, is.URL, validation.Length(0, maxURLLen)),
	)
}

// UpdatePostRequest contains the partial fields of a post update.
type UpdatePostRequest struct {
	Title          *string      `json:"title"`
	Content        *string      `json:"content"`
	PostCategoryID *uuid.UUID   `json:"post_category_id"`
	ImageURL       *string      `json:"image_url"`
	Image          *ImageUpload `json:"-"`
}

func (r *UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLen)),
		validation.Field(&r.Content, validation.NilOrNotEmpty),
		validation.Field(&r.ImageURL, is.URL, validation.Length(0, maxURLLen)),
	)
}
