package bcms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client operations and client-user associations. All admin-only.

func (s *service) ListClients(ctx context.Context, ident Identity, page Pagination) ([]*Client, int64, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, 0, err
	}
	return s.repository.ListClients(ctx, page.Normalize())
}

func (s *service) CreateClient(ctx context.Context, ident Identity, req CreateClientRequest) (*Client, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	now := time.Now().UTC()
	client := &Client{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     normalizeEmail(req.Email),
		Phone:     req.Phone,
		Website:   req.Website,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repository.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

func (s *service) GetClient(ctx context.Context, ident Identity, id uuid.UUID) (*Client, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	return s.repository.GetClient(ctx, id)
}

func (s *service) UpdateClient(ctx context.Context, ident Identity, id uuid.UUID, req UpdateClientRequest) (*Client, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	client, err := s.repository.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Website != nil {
		client.Website = *req.Website
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.State != nil {
		client.State = *req.State
	}
	if req.ZipCode != nil {
		client.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		client.Country = *req.Country
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	client.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateClient(ctx, client); err != nil {
		return nil, &EntityError{Entity: "client", ID: id, Op: "update", Err: err}
	}
	return client, nil
}

func (s *service) DeleteClient(ctx context.Context, ident Identity, id uuid.UUID) error {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return err
	}
	if _, err := s.repository.GetClient(ctx, id); err != nil {
		return err
	}
	if err := s.repository.DeleteClient(ctx, id); err != nil {
		return &EntityError{Entity: "client", ID: id, Op: "delete", Err: err}
	}
	return nil
}

func (s *service) ListClientUsers(ctx context.Context, ident Identity, clientID uuid.UUID) ([]*User, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if _, err := s.repository.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repository.ListClientUsers(ctx, clientID)
}

// AttachUser associates a user with a client. The pair is unique: a second
// attach of the same pair fails with ErrDuplicateAssociation. The user's
// first association becomes their default client.
func (s *service) AttachUser(ctx context.Context, ident Identity, clientID, userID uuid.UUID) (*Client, *User, error) {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return nil, nil, err
	}

	client, err := s.repository.GetClient(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.repository.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.repository.AttachUserToClient(ctx, clientID, userID); err != nil {
		return nil, nil, err
	}

	if user.DefaultClientID == nil {
		user.DefaultClientID = &clientID
		user.UpdatedAt = time.Now().UTC()
		if err := s.repository.UpdateUser(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("setting default client: %w", err)
		}
	}

	return client, user, nil
}

// DetachUser removes a client-user association. Detaching an absent pair
// is ErrAssociationNotFound. When the detached client was the user's
// default, the default moves to the next remaining association, if any.
func (s *service) DetachUser(ctx context.Context, ident Identity, clientID, userID uuid.UUID) error {
	if err := s.authorizer.RequireAdmin(ident); err != nil {
		return err
	}

	if _, err := s.repository.GetClient(ctx, clientID); err != nil {
		return err
	}
	user, err := s.repository.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repository.DetachUserFromClient(ctx, clientID, userID); err != nil {
		return err
	}

	if user.DefaultClientID != nil && *user.DefaultClientID == clientID {
		clients, err := s.repository.ListUserClients(ctx, userID)
		if err != nil {
			return fmt.Errorf("listing user clients: %w", err)
		}
		user.DefaultClientID = nil
		if len(clients) > 0 {
			user.DefaultClientID = &clients[0].ID
		}
		user.UpdatedAt = time.Now().UTC()
		if err := s.repository.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("clearing default client: %w", err)
		}
	}

	return nil
}
