// Package memory provides an in-memory bcms.Repository. It backs unit
// tests and development runs; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

type assocKey struct {
	clientID uuid.UUID
	userID   uuid.UUID
}

// Repository implements bcms.Repository using in-memory storage.
// Associations live in an insertion-ordered slice so "first associated
// client" is well defined, with a set alongside for uniqueness.
type Repository struct {
	mu             sync.RWMutex
	users          map[uuid.UUID]*bcms.User
	usersByEmail   map[string]uuid.UUID
	clients        map[uuid.UUID]*bcms.Client
	categories     map[uuid.UUID]*bcms.PostCategory
	posts          map[uuid.UUID]*bcms.Post
	tokens         map[uuid.UUID]*bcms.Token
	tokensByDigest map[string]uuid.UUID
	associations   []*bcms.Association
	associationSet map[assocKey]struct{}
}

// New creates a new in-memory repository.
func New() bcms.Repository {
	return &Repository{
		users:          make(map[uuid.UUID]*bcms.User),
		usersByEmail:   make(map[string]uuid.UUID),
		clients:        make(map[uuid.UUID]*bcms.Client),
		categories:     make(map[uuid.UUID]*bcms.PostCategory),
		posts:          make(map[uuid.UUID]*bcms.Post),
		tokens:         make(map[uuid.UUID]*bcms.Token),
		tokensByDigest: make(map[string]uuid.UUID),
		associationSet: make(map[assocKey]struct{}),
	}
}

// copyUser clones a user including the default-client pointer so callers
// can't reach stored state.
func copyUser(u *bcms.User) *bcms.User {
	c := *u
	if u.DefaultClientID != nil {
		id := *u.DefaultClientID
		c.DefaultClientID = &id
	}
	return &c
}

func copyToken(t *bcms.Token) *bcms.Token {
	c := *t
	if t.LastUsedAt != nil {
		at := *t.LastUsedAt
		c.LastUsedAt = &at
	}
	if t.ExpiresAt != nil {
		at := *t.ExpiresAt
		c.ExpiresAt = &at
	}
	return &c
}

// newestFirst orders by created_at descending with the id as a stable
// tie break for rows created in the same instant.
func newestFirst(aCreated, bCreated time.Time, aID, bID uuid.UUID) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID.String() > bID.String()
}

func paginate[T any](items []T, page bcms.Pagination) []T {
	n := page.Normalize()
	offset := n.Offset()
	if offset >= len(items) {
		return nil
	}
	end := offset + n.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *bcms.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return bcms.ErrEmailTaken
	}

	r.users[user.ID] = copyUser(user)
	r.usersByEmail[user.Email] = user.ID
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*bcms.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, bcms.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*bcms.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[email]
	if !exists {
		return nil, bcms.ErrUserNotFound
	}
	return copyUser(r.users[id]), nil
}

func (r *Repository) ListUsers(ctx context.Context, page bcms.Pagination) ([]*bcms.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*bcms.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool {
		return newestFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})
	return paginate(all, page), int64(len(all)), nil
}

func (r *Repository) SearchUsersByEmail(ctx context.Context, email string, limit int) ([]*bcms.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(email)
	var matches []*bcms.User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Email), needle) {
			matches = append(matches, copyUser(u))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Email < matches[j].Email })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *bcms.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.users[user.ID]
	if !exists {
		return bcms.ErrUserNotFound
	}

	if current.Email != user.Email {
		if _, taken := r.usersByEmail[user.Email]; taken {
			return bcms.ErrEmailTaken
		}
		delete(r.usersByEmail, current.Email)
		r.usersByEmail[user.Email] = user.ID
	}

	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return bcms.ErrUserNotFound
	}

	delete(r.usersByEmail, user.Email)
	delete(r.users, id)
	r.removeAssociationsLocked(func(a *bcms.Association) bool { return a.UserID == id })

	for tid, t := range r.tokens {
		if t.UserID == id {
			delete(r.tokensByDigest, t.Digest)
			delete(r.tokens, tid)
		}
	}
	for pid, p := range r.posts {
		if p.UserID == id {
			delete(r.posts, pid)
		}
	}
	return nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// Client operations

func (r *Repository) CreateClient(ctx context.Context, client *bcms.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientCopy := *client
	r.clients[client.ID] = &clientCopy
	return nil
}

func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*bcms.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[id]
	if !exists {
		return nil, bcms.ErrClientNotFound
	}
	clientCopy := *client
	return &clientCopy, nil
}

func (r *Repository) ListClients(ctx context.Context, page bcms.Pagination) ([]*bcms.Client, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*bcms.Client, 0, len(r.clients))
	for _, c := range r.clients {
		clientCopy := *c
		all = append(all, &clientCopy)
	}
	sort.Slice(all, func(i, j int) bool {
		return newestFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})
	return paginate(all, page), int64(len(all)), nil
}

func (r *Repository) UpdateClient(ctx context.Context, client *bcms.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[client.ID]; !exists {
		return bcms.ErrClientNotFound
	}
	clientCopy := *client
	r.clients[client.ID] = &clientCopy
	return nil
}

func (r *Repository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[id]; !exists {
		return bcms.ErrClientNotFound
	}

	delete(r.clients, id)
	r.removeAssociationsLocked(func(a *bcms.Association) bool { return a.ClientID == id })

	for pid, p := range r.posts {
		if p.ClientID == id {
			delete(r.posts, pid)
		}
	}
	for cid, c := range r.categories {
		if c.ClientID == id {
			delete(r.categories, cid)
		}
	}
	for _, u := range r.users {
		if u.DefaultClientID != nil && *u.DefaultClientID == id {
			u.DefaultClientID = nil
		}
	}
	return nil
}

func (r *Repository) CountClients(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.clients)), nil
}

// Association operations

func (r *Repository) AttachUserToClient(ctx context.Context, clientID, userID uuid.UUID) (*bcms.Association, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[clientID]; !exists {
		return nil, bcms.ErrClientNotFound
	}
	if _, exists := r.users[userID]; !exists {
		return nil, bcms.ErrUserNotFound
	}

	key := assocKey{clientID: clientID, userID: userID}
	if _, exists := r.associationSet[key]; exists {
		return nil, bcms.ErrDuplicateAssociation
	}

	assoc := &bcms.Association{
		ClientID:  clientID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	r.associations = append(r.associations, assoc)
	r.associationSet[key] = struct{}{}

	assocCopy := *assoc
	return &assocCopy, nil
}

func (r *Repository) DetachUserFromClient(ctx context.Context, clientID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := assocKey{clientID: clientID, userID: userID}
	if _, exists := r.associationSet[key]; !exists {
		return bcms.ErrAssociationNotFound
	}

	r.removeAssociationsLocked(func(a *bcms.Association) bool {
		return a.ClientID == clientID && a.UserID == userID
	})
	return nil
}

func (r *Repository) ListClientUsers(ctx context.Context, clientID uuid.UUID) ([]*bcms.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*bcms.User
	for _, a := range r.associations {
		if a.ClientID != clientID {
			continue
		}
		if u, exists := r.users[a.UserID]; exists {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *Repository) ListUserClients(ctx context.Context, userID uuid.UUID) ([]*bcms.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var clients []*bcms.Client
	for _, a := range r.associations {
		if a.UserID != userID {
			continue
		}
		if c, exists := r.clients[a.ClientID]; exists {
			clientCopy := *c
			clients = append(clients, &clientCopy)
		}
	}
	return clients, nil
}

// removeAssociationsLocked drops every association matching the predicate
// while preserving the order of the rest. Callers hold the write lock.
func (r *Repository) removeAssociationsLocked(match func(*bcms.Association) bool) {
	kept := r.associations[:0]
	for _, a := range r.associations {
		if match(a) {
			delete(r.associationSet, assocKey{clientID: a.ClientID, userID: a.UserID})
			continue
		}
		kept = append(kept, a)
	}
	r.associations = kept
}

// Post category operations

func (r *Repository) CreateCategory(ctx context.Context, category *bcms.PostCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	categoryCopy := *category
	r.categories[category.ID] = &categoryCopy
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*bcms.PostCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.categories[id]
	if !exists {
		return nil, bcms.ErrCategoryNotFound
	}
	categoryCopy := *category
	return &categoryCopy, nil
}

func (r *Repository) ListCategories(ctx context.Context, page bcms.Pagination, filters bcms.CategoryFilters) ([]*bcms.PostCategory, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*bcms.PostCategory
	for _, c := range r.categories {
		if filters.ClientID != nil && c.ClientID != *filters.ClientID {
			continue
		}
		categoryCopy := *c
		all = append(all, &categoryCopy)
	}
	sort.Slice(all, func(i, j int) bool {
		return newestFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})
	return paginate(all, page), int64(len(all)), nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *bcms.PostCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[category.ID]; !exists {
		return bcms.ErrCategoryNotFound
	}
	categoryCopy := *category
	r.categories[category.ID] = &categoryCopy
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[id]; !exists {
		return bcms.ErrCategoryNotFound
	}

	delete(r.categories, id)
	for pid, p := range r.posts {
		if p.PostCategoryID == id {
			delete(r.posts, pid)
		}
	}
	return nil
}

func (r *Repository) CountCategories(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.categories)), nil
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *bcms.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	postCopy := *post
	r.posts[post.ID] = &postCopy
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*bcms.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, bcms.ErrPostNotFound
	}
	postCopy := *post
	return &postCopy, nil
}

func (r *Repository) ListPosts(ctx context.Context, page bcms.Pagination, filters bcms.PostFilters) ([]*bcms.Post, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*bcms.Post
	for _, p := range r.posts {
		if filters.ClientID != nil && p.ClientID != *filters.ClientID {
			continue
		}
		if filters.UserID != nil && p.UserID != *filters.UserID {
			continue
		}
		postCopy := *p
		all = append(all, &postCopy)
	}
	sort.Slice(all, func(i, j int) bool {
		return newestFirst(all[i].CreatedAt, all[j].CreatedAt, all[i].ID, all[j].ID)
	})
	return paginate(all, page), int64(len(all)), nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *bcms.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; !exists {
		return bcms.ErrPostNotFound
	}
	postCopy := *post
	r.posts[post.ID] = &postCopy
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return bcms.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *Repository) CountPosts(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.posts)), nil
}

func (r *Repository) CountPostsByClient(ctx context.Context) (map[uuid.UUID]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uuid.UUID]int64)
	for _, p := range r.posts {
		counts[p.ClientID]++
	}
	return counts, nil
}

// Token operations

func (r *Repository) CreateToken(ctx context.Context, token *bcms.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token.ID] = copyToken(token)
	r.tokensByDigest[token.Digest] = token.ID
	return nil
}

func (r *Repository) GetTokenByDigest(ctx context.Context, digest string) (*bcms.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.tokensByDigest[digest]
	if !exists {
		return nil, bcms.ErrTokenNotFound
	}
	return copyToken(r.tokens[id]), nil
}

func (r *Repository) DeleteToken(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, exists := r.tokens[id]
	if !exists {
		return bcms.ErrTokenNotFound
	}
	delete(r.tokensByDigest, token.Digest)
	delete(r.tokens, id)
	return nil
}

func (r *Repository) TouchToken(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, exists := r.tokens[id]
	if !exists {
		return bcms.ErrTokenNotFound
	}
	token.LastUsedAt = &usedAt
	return nil
}
