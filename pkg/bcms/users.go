package bcms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms/auth"
)

// User operations. All of them are admin-only.

// Search defaults applied when the request leaves the limit unset.
const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// CurrentUser returns the authenticated caller's own record. It is the
// one user lookup that doesn't require admin.
func (s *service) CurrentUser(ctx context.Context, ident Identity) (*User, error) {
	if ident.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	return s.repository.GetUser(ctx, ident.UserID)
}

func (s *service) ListUsers(ctx context.Context, ident Identity, page Pagination) ([]*User, int64, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, 0, err
	}
	return s.repository.ListUsers(ctx, page.Normalize())
}

func (s *service) CreateUser(ctx context.Context, ident Identity, req CreateUserRequest) (*User, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repository.GetUserByEmail(ctx, email); err == nil {
		return nil, NewValidationError("email", "has already been taken")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	if req.DefaultClientID != nil {
		if _, err := s.repository.GetClient(ctx, *req.DefaultClientID); err != nil {
			if errors.Is(err, ErrClientNotFound) {
				return nil, NewValidationError("default_client_id", "client not found")
			}
			return nil, fmt.Errorf("checking default client: %w", err)
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Admin:        req.Admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, NewValidationError("email", "has already been taken")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	// A default client is also an association; attach sets the default.
	if req.DefaultClientID != nil {
		if _, _, err := s.AttachUser(ctx, ident, *req.DefaultClientID, user.ID); err != nil {
			return nil, fmt.Errorf("attaching default client: %w", err)
		}
		user.DefaultClientID = req.DefaultClientID
	}

	return user, nil
}

func (s *service) GetUser(ctx context.Context, ident Identity, id uuid.UUID) (*User, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	return s.repository.GetUser(ctx, id)
}

func (s *service) UpdateUser(ctx context.Context, ident Identity, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	user, err := s.repository.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if _, err := s.repository.GetUserByEmail(ctx, email); err == nil {
				return nil, NewValidationError("email", "has already been taken")
			} else if !errors.Is(err, ErrUserNotFound) {
				return nil, fmt.Errorf("checking email: %w", err)
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.Admin != nil {
		user.Admin = *req.Admin
	}
	if req.DefaultClientID != nil {
		clients, err := s.repository.ListUserClients(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("listing user clients: %w", err)
		}
		var found bool
		for _, c := range clients {
			if c.ID == *req.DefaultClientID {
				found = true
				break
			}
		}
		if !found {
			return nil, NewValidationError("default_client_id", "user is not attached to this client")
		}
		user.DefaultClientID = req.DefaultClientID
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, NewValidationError("email", "has already been taken")
		}
		return nil, &EntityError{Entity: "user", ID: id, Op: "update", Err: err}
	}
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, ident Identity, id uuid.UUID) error {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return err
	}
	if _, err := s.repository.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.repository.DeleteUser(ctx, id); err != nil {
		return &EntityError{Entity: "user", ID: id, Op: "delete", Err: err}
	}
	return nil
}

// SearchUsers finds users by case-insensitive email substring. Backs the
// admin association picker.
func (s *service) SearchUsers(ctx context.Context, ident Identity, req SearchUsersRequest) ([]*User, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repository.SearchUsersByEmail(ctx, normalizeEmail(req.Email), limit)
}
