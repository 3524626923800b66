package bcms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ScopeSource selects how a non-admin caller's client scope is resolved.
type ScopeSource string

// Scope source constants (typed).
const (
	// ScopeSourceDefaultClient scopes to the user's default_client_id,
	// falling back to the first associated client when no default is set.
	ScopeSourceDefaultClient ScopeSource = "default_client"

	// ScopeSourceFirstAssociation always scopes to the first associated
	// client in association insertion order.
	ScopeSourceFirstAssociation ScopeSource = "first_association"
)

// Action is the operation being authorized.
type Action string

// Action constants (typed).
const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceType is the kind of resource being authorized.
type ResourceType string

// Resource type constants (typed).
const (
	ResourceUser         ResourceType = "user"
	ResourceClient       ResourceType = "client"
	ResourceAssociation  ResourceType = "association"
	ResourcePost         ResourceType = "post"
	ResourcePostCategory ResourceType = "post_category"
)

// Decision is the outcome of an allowed authorization. A scoped decision
// bounds the caller to a single client; the zero value is an unscoped
// allow. Denials are returned as errors (ErrForbidden,
// ErrNoClientAssociation) rather than a decision.
type Decision struct {
	ClientID uuid.UUID
	Scoped   bool
}

// Allows reports whether a row owned by clientID is inside the decision's
// scope.
func (d Decision) Allows(clientID uuid.UUID) bool {
	return !d.Scoped || d.ClientID == clientID
}

// Authorizer decides, per request, which records a caller may see or
// mutate. Admin-only resource types require the admin flag; client-scoped
// resource types resolve non-admin callers to exactly one client id that
// constrains every row they can reach. The same scope applies to reads,
// writes, and creates, so a caller can never address a row outside their
// client, and misses outside the scope are indistinguishable from rows
// that do not exist.
type Authorizer struct {
	repo        Repository
	scopeSource ScopeSource
}

// NewAuthorizer creates an authorizer over the given repository.
func NewAuthorizer(repo Repository, src ScopeSource) *Authorizer {
	if src == "" {
		src = ScopeSourceDefaultClient
	}
	return &Authorizer{repo: repo, scopeSource: src}
}

// Authorize decides whether the caller may perform action on the given
// resource type and, for scoped resources, computes the client scope.
func (a *Authorizer) Authorize(ctx context.Context, ident Identity, action Action, resource ResourceType) (Decision, error) {
	switch resource {
	case ResourceUser, ResourceClient, ResourceAssociation:
		if err := a.RequireAdmin(ident); err != nil {
			return Decision{}, err
		}
		return Decision{}, nil
	case ResourcePost, ResourcePostCategory:
		return a.ResolveScope(ctx, ident)
	default:
		return Decision{}, ErrForbidden
	}
}

// RequireAdmin denies with ErrForbidden unless the caller is an admin.
func (a *Authorizer) RequireAdmin(ident Identity) error {
	if !ident.Admin {
		return ErrForbidden
	}
	return nil
}

// ResolveScope computes the caller's client scope for scoped resources.
// Admins are unscoped. A non-admin with no resolvable client is denied
// with ErrNoClientAssociation.
func (a *Authorizer) ResolveScope(ctx context.Context, ident Identity) (Decision, error) {
	if ident.Admin {
		return Decision{}, nil
	}

	if a.scopeSource == ScopeSourceDefaultClient && ident.DefaultClientID != nil {
		return Decision{ClientID: *ident.DefaultClientID, Scoped: true}, nil
	}

	clients, err := a.repo.ListUserClients(ctx, ident.UserID)
	if err != nil {
		return Decision{}, fmt.Errorf("resolving client scope: %w", err)
	}
	if len(clients) == 0 {
		return Decision{}, ErrNoClientAssociation
	}
	return Decision{ClientID: clients[0].ID, Scoped: true}, nil
}
