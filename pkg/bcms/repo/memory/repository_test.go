package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/repo/memory"
)

func newUser(email string, createdAt time.Time) *bcms.User {
	return &bcms.User{
		ID:           uuid.New(),
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func newClient(name string, createdAt time.Time) *bcms.Client {
	return &bcms.Client{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMemoryRepository_UserOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("CreateAndGet", func(t *testing.T) {
		user := newUser("create@example.com", now)
		require.NoError(t, repo.CreateUser(ctx, user))

		got, err := repo.GetUser(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)

		byEmail, err := repo.GetUserByEmail(ctx, "create@example.com")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("GetUser_NotFound", func(t *testing.T) {
		user, err := repo.GetUser(ctx, uuid.New())
		assert.Nil(t, user)
		assert.ErrorIs(t, err, bcms.ErrUserNotFound)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		err := repo.CreateUser(ctx, newUser("create@example.com", now))
		assert.ErrorIs(t, err, bcms.ErrEmailTaken)
	})

	t.Run("UpdateReindexesEmail", func(t *testing.T) {
		user := newUser("before@example.com", now)
		require.NoError(t, repo.CreateUser(ctx, user))

		user.Email = "after@example.com"
		require.NoError(t, repo.UpdateUser(ctx, user))

		_, err := repo.GetUserByEmail(ctx, "before@example.com")
		assert.ErrorIs(t, err, bcms.ErrUserNotFound)

		got, err := repo.GetUserByEmail(ctx, "after@example.com")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("UpdateEmailCollision", func(t *testing.T) {
		user := newUser("collider@example.com", now)
		require.NoError(t, repo.CreateUser(ctx, user))

		user.Email = "after@example.com"
		assert.ErrorIs(t, repo.UpdateUser(ctx, user), bcms.ErrEmailTaken)
	})

	t.Run("ReturnedCopiesAreIsolated", func(t *testing.T) {
		user := newUser("isolated@example.com", now)
		require.NoError(t, repo.CreateUser(ctx, user))

		got, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		got.Name = "mutated"

		again, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "isolated@example.com", again.Name)
	})
}

func TestMemoryRepository_ListOrdering(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Now().UTC()

	// Distinct timestamps, created out of order.
	for i, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		user := newUser(fmt.Sprintf("user%d@example.com", i), base.Add(offset))
		require.NoError(t, repo.CreateUser(ctx, user))
	}

	users, total, err := repo.ListUsers(ctx, bcms.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 3)

	for i := 0; i < len(users)-1; i++ {
		assert.True(t, !users[i].CreatedAt.Before(users[i+1].CreatedAt),
			"expected newest first, got %v before %v", users[i].CreatedAt, users[i+1].CreatedAt)
	}
}

func TestMemoryRepository_Pagination(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 7; i++ {
		client := newClient(fmt.Sprintf("Client %d", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.CreateClient(ctx, client))
	}

	page1, total, err := repo.ListClients(ctx, bcms.Pagination{Page: 1, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Len(t, page1, 3)

	page3, _, err := repo.ListClients(ctx, bcms.Pagination{Page: 3, PerPage: 3})
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	beyond, _, err := repo.ListClients(ctx, bcms.Pagination{Page: 9, PerPage: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	// Pages do not overlap.
	page2, _, err := repo.ListClients(ctx, bcms.Pagination{Page: 2, PerPage: 3})
	require.NoError(t, err)
	seen := map[uuid.UUID]bool{}
	for _, c := range append(append(page1, page2...), page3...) {
		assert.False(t, seen[c.ID], "client %s appeared twice", c.ID)
		seen[c.ID] = true
	}
}

func TestMemoryRepository_Associations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	user := newUser("member@example.com", now)
	require.NoError(t, repo.CreateUser(ctx, user))

	clientA := newClient("A", now)
	clientB := newClient("B", now)
	require.NoError(t, repo.CreateClient(ctx, clientA))
	require.NoError(t, repo.CreateClient(ctx, clientB))

	t.Run("AttachValidatesBothSides", func(t *testing.T) {
		_, err := repo.AttachUserToClient(ctx, uuid.New(), user.ID)
		assert.ErrorIs(t, err, bcms.ErrClientNotFound)

		_, err = repo.AttachUserToClient(ctx, clientA.ID, uuid.New())
		assert.ErrorIs(t, err, bcms.ErrUserNotFound)
	})

	t.Run("InsertionOrderIsPreserved", func(t *testing.T) {
		_, err := repo.AttachUserToClient(ctx, clientB.ID, user.ID)
		require.NoError(t, err)
		_, err = repo.AttachUserToClient(ctx, clientA.ID, user.ID)
		require.NoError(t, err)

		clients, err := repo.ListUserClients(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, clients, 2)
		assert.Equal(t, clientB.ID, clients[0].ID, "first attached client must come first")
		assert.Equal(t, clientA.ID, clients[1].ID)
	})

	t.Run("DuplicateAttach", func(t *testing.T) {
		_, err := repo.AttachUserToClient(ctx, clientA.ID, user.ID)
		assert.ErrorIs(t, err, bcms.ErrDuplicateAssociation)
	})

	t.Run("DetachPreservesOrderOfRest", func(t *testing.T) {
		require.NoError(t, repo.DetachUserFromClient(ctx, clientB.ID, user.ID))

		clients, err := repo.ListUserClients(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.Equal(t, clientA.ID, clients[0].ID)
	})

	t.Run("DetachMissing", func(t *testing.T) {
		err := repo.DetachUserFromClient(ctx, clientB.ID, user.ID)
		assert.ErrorIs(t, err, bcms.ErrAssociationNotFound)
	})

	t.Run("ReattachAfterDetachGoesToTheBack", func(t *testing.T) {
		_, err := repo.AttachUserToClient(ctx, clientB.ID, user.ID)
		require.NoError(t, err)

		clients, err := repo.ListUserClients(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, clients, 2)
		assert.Equal(t, clientA.ID, clients[0].ID)
		assert.Equal(t, clientB.ID, clients[1].ID)
	})
}

func TestMemoryRepository_Cascades(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	seed := func(t *testing.T) (bcms.Repository, *bcms.User, *bcms.Client, *bcms.PostCategory, *bcms.Post) {
		repo := memory.New()
		user := newUser("author@example.com", now)
		require.NoError(t, repo.CreateUser(ctx, user))
		client := newClient("Client", now)
		require.NoError(t, repo.CreateClient(ctx, client))
		_, err := repo.AttachUserToClient(ctx, client.ID, user.ID)
		require.NoError(t, err)

		category := &bcms.PostCategory{ID: uuid.New(), ClientID: client.ID, Name: "Cat", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.CreateCategory(ctx, category))

		post := &bcms.Post{
			ID: uuid.New(), UserID: user.ID, ClientID: client.ID, PostCategoryID: category.ID,
			Title: "T", Content: "C", CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.CreatePost(ctx, post))
		return repo, user, client, category, post
	}

	t.Run("DeleteUserDropsPostsTokensAssociations", func(t *testing.T) {
		repo, user, client, _, post := seed(t)

		token := &bcms.Token{ID: uuid.New(), UserID: user.ID, Digest: "digest-1", CreatedAt: now}
		require.NoError(t, repo.CreateToken(ctx, token))

		require.NoError(t, repo.DeleteUser(ctx, user.ID))

		_, err := repo.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, bcms.ErrPostNotFound)

		_, err = repo.GetTokenByDigest(ctx, "digest-1")
		assert.ErrorIs(t, err, bcms.ErrTokenNotFound)

		users, err := repo.ListClientUsers(ctx, client.ID)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("DeleteClientDropsOwnedRowsAndDefaults", func(t *testing.T) {
		repo, user, client, category, post := seed(t)

		user.DefaultClientID = &client.ID
		require.NoError(t, repo.UpdateUser(ctx, user))

		require.NoError(t, repo.DeleteClient(ctx, client.ID))

		_, err := repo.GetCategory(ctx, category.ID)
		assert.ErrorIs(t, err, bcms.ErrCategoryNotFound)
		_, err = repo.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, bcms.ErrPostNotFound)

		refreshed, err := repo.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, refreshed.DefaultClientID)
	})

	t.Run("DeleteCategoryDropsItsPosts", func(t *testing.T) {
		repo, _, client, category, post := seed(t)

		other := &bcms.PostCategory{ID: uuid.New(), ClientID: client.ID, Name: "Other", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.CreateCategory(ctx, other))

		require.NoError(t, repo.DeleteCategory(ctx, category.ID))

		_, err := repo.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, bcms.ErrPostNotFound)

		_, err = repo.GetCategory(ctx, other.ID)
		assert.NoError(t, err)
	})
}

func TestMemoryRepository_Tokens(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	user := newUser("tokens@example.com", now)
	require.NoError(t, repo.CreateUser(ctx, user))

	token := &bcms.Token{ID: uuid.New(), UserID: user.ID, Digest: "abc123", Name: "login", CreatedAt: now}
	require.NoError(t, repo.CreateToken(ctx, token))

	t.Run("LookupByDigest", func(t *testing.T) {
		got, err := repo.GetTokenByDigest(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, token.ID, got.ID)
		assert.Equal(t, user.ID, got.UserID)
	})

	t.Run("UnknownDigest", func(t *testing.T) {
		_, err := repo.GetTokenByDigest(ctx, "missing")
		assert.ErrorIs(t, err, bcms.ErrTokenNotFound)
	})

	t.Run("Touch", func(t *testing.T) {
		usedAt := now.Add(time.Minute)
		require.NoError(t, repo.TouchToken(ctx, token.ID, usedAt))

		got, err := repo.GetTokenByDigest(ctx, "abc123")
		require.NoError(t, err)
		require.NotNil(t, got.LastUsedAt)
		assert.True(t, got.LastUsedAt.Equal(usedAt))
	})

	t.Run("DeleteRemovesDigestIndex", func(t *testing.T) {
		require.NoError(t, repo.DeleteToken(ctx, token.ID))

		_, err := repo.GetTokenByDigest(ctx, "abc123")
		assert.ErrorIs(t, err, bcms.ErrTokenNotFound)

		assert.ErrorIs(t, repo.DeleteToken(ctx, token.ID), bcms.ErrTokenNotFound)
	})
}

func TestMemoryRepository_CountPostsByClient(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()

	user := newUser("author@example.com", now)
	require.NoError(t, repo.CreateUser(ctx, user))

	clientA := newClient("A", now)
	clientB := newClient("B", now)
	require.NoError(t, repo.CreateClient(ctx, clientA))
	require.NoError(t, repo.CreateClient(ctx, clientB))

	category := &bcms.PostCategory{ID: uuid.New(), ClientID: clientA.ID, Name: "Cat", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateCategory(ctx, category))

	for i, clientID := range []uuid.UUID{clientA.ID, clientA.ID, clientB.ID} {
		post := &bcms.Post{
			ID: uuid.New(), UserID: user.ID, ClientID: clientID, PostCategoryID: category.ID,
			Title: fmt.Sprintf("Post %d", i), Content: "C", CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.CreatePost(ctx, post))
	}

	counts, err := repo.CountPostsByClient(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[clientA.ID])
	assert.Equal(t, int64(1), counts[clientB.ID])
}
