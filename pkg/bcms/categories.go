package bcms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Post category operations. Non-admin callers act inside their resolved
// client scope; admins see every client and may filter by one.

func (s *service) ListCategories(ctx context.Context, ident Identity, page Pagination, filters CategoryFilters) ([]*PostCategory, int64, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionList, ResourcePostCategory)
	if err != nil {
		return nil, 0, err
	}
	if dec.Scoped {
		scope := dec.ClientID
		filters.ClientID = &scope
	}
	return s.repository.ListCategories(ctx, page.Normalize(), filters)
}

func (s *service) CreateCategory(ctx context.Context, ident Identity, req CreateCategoryRequest) (*PostCategory, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionCreate, ResourcePostCategory)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	// Scoped callers always create in their own client; any supplied
	// client_id is ignored. Admins must name the client.
	var clientID uuid.UUID
	if dec.Scoped {
		clientID = dec.ClientID
	} else {
		if req.ClientID == nil {
			return nil, NewValidationError("client_id", "is required")
		}
		clientID = *req.ClientID
	}
	if _, err := s.repository.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, ErrClientNotFound) {
			return nil, NewValidationError("client_id", "client not found")
		}
		return nil, fmt.Errorf("checking client: %w", err)
	}

	now := time.Now().UTC()
	category := &PostCategory{
		ID:        uuid.New(),
		ClientID:  clientID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repository.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("creating post category: %w", err)
	}

	s.fireEvent(ctx, "category.created", func() error { return s.eventSink.CategoryCreated(ctx, category) })

	return category, nil
}

func (s *service) GetCategory(ctx context.Context, ident Identity, id uuid.UUID) (*PostCategory, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionRead, ResourcePostCategory)
	if err != nil {
		return nil, err
	}
	return s.findCategoryInScope(ctx, dec, id)
}

func (s *service) UpdateCategory(ctx context.Context, ident Identity, id uuid.UUID, req UpdateCategoryRequest) (*PostCategory, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionUpdate, ResourcePostCategory)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	category, err := s.findCategoryInScope(ctx, dec, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}

	category.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateCategory(ctx, category); err != nil {
		return nil, &EntityError{Entity: "post_category", ID: id, Op: "update", Err: err}
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, ident Identity, id uuid.UUID) error {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionDelete, ResourcePostCategory)
	if err != nil {
		return err
	}

	if _, err := s.findCategoryInScope(ctx, dec, id); err != nil {
		return err
	}

	if err := s.repository.DeleteCategory(ctx, id); err != nil {
		return &EntityError{Entity: "post_category", ID: id, Op: "delete", Err: err}
	}

	s.fireEvent(ctx, "category.deleted", func() error { return s.eventSink.CategoryDeleted(ctx, id) })

	return nil
}

// findCategoryInScope loads a category and hides rows outside the
// decision's scope: the caller gets the same ErrCategoryNotFound whether
// the id does not exist or belongs to another client.
func (s *service) findCategoryInScope(ctx context.Context, dec Decision, id uuid.UUID) (*PostCategory, error) {
	category, err := s.repository.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dec.Allows(category.ClientID) {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}
