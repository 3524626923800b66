package bcms_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

func TestAttachUser(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	admin := adminIdentity()

	clientA := seedClient(t, svc, "Client A")
	clientB := seedClient(t, svc, "Client B")
	user := seedUser(t, svc, "member@example.com")

	t.Run("FirstAttachSetsDefaultClient", func(t *testing.T) {
		client, attached, err := svc.AttachUser(ctx, admin, clientA.ID, user.ID)
		require.NoError(t, err)
		assert.Equal(t, clientA.ID, client.ID)
		require.NotNil(t, attached.DefaultClientID)
		assert.Equal(t, clientA.ID, *attached.DefaultClientID)
	})

	t.Run("SecondAttachKeepsDefault", func(t *testing.T) {
		_, attached, err := svc.AttachUser(ctx, admin, clientB.ID, user.ID)
		require.NoError(t, err)
		require.NotNil(t, attached.DefaultClientID)
		assert.Equal(t, clientA.ID, *attached.DefaultClientID)
	})

	t.Run("DuplicatePair", func(t *testing.T) {
		_, _, err := svc.AttachUser(ctx, admin, clientA.ID, user.ID)
		assert.ErrorIs(t, err, bcms.ErrDuplicateAssociation)
	})

	t.Run("UnknownClient", func(t *testing.T) {
		_, _, err := svc.AttachUser(ctx, admin, uuid.New(), user.ID)
		assert.ErrorIs(t, err, bcms.ErrClientNotFound)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, _, err := svc.AttachUser(ctx, admin, clientA.ID, uuid.New())
		assert.ErrorIs(t, err, bcms.ErrUserNotFound)
	})

	t.Run("ListClientUsers", func(t *testing.T) {
		users, err := svc.ListClientUsers(ctx, admin, clientA.ID)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, user.ID, users[0].ID)
	})
}

func TestDetachUser(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	admin := adminIdentity()

	clientA := seedClient(t, svc, "Client A")
	clientB := seedClient(t, svc, "Client B")
	user := seedUser(t, svc, "member@example.com")

	_, _, err := svc.AttachUser(ctx, admin, clientA.ID, user.ID)
	require.NoError(t, err)
	_, _, err = svc.AttachUser(ctx, admin, clientB.ID, user.ID)
	require.NoError(t, err)

	t.Run("DefaultMovesToNextAssociation", func(t *testing.T) {
		err := svc.DetachUser(ctx, admin, clientA.ID, user.ID)
		require.NoError(t, err)

		refreshed, err := svc.GetUser(ctx, admin, user.ID)
		require.NoError(t, err)
		require.NotNil(t, refreshed.DefaultClientID)
		assert.Equal(t, clientB.ID, *refreshed.DefaultClientID)
	})

	t.Run("LastDetachClearsDefault", func(t *testing.T) {
		err := svc.DetachUser(ctx, admin, clientB.ID, user.ID)
		require.NoError(t, err)

		refreshed, err := svc.GetUser(ctx, admin, user.ID)
		require.NoError(t, err)
		assert.Nil(t, refreshed.DefaultClientID)
	})

	t.Run("AbsentPair", func(t *testing.T) {
		err := svc.DetachUser(ctx, admin, clientA.ID, user.ID)
		assert.ErrorIs(t, err, bcms.ErrAssociationNotFound)
	})

	t.Run("UnknownClient", func(t *testing.T) {
		err := svc.DetachUser(ctx, admin, uuid.New(), user.ID)
		assert.ErrorIs(t, err, bcms.ErrClientNotFound)
	})
}

func TestDetachKeepsUnrelatedDefault(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	admin := adminIdentity()

	clientA := seedClient(t, svc, "Client A")
	clientB := seedClient(t, svc, "Client B")
	user := seedUser(t, svc, "member@example.com")

	_, _, err := svc.AttachUser(ctx, admin, clientA.ID, user.ID)
	require.NoError(t, err)
	_, _, err = svc.AttachUser(ctx, admin, clientB.ID, user.ID)
	require.NoError(t, err)

	// Detaching a non-default client leaves the default alone.
	require.NoError(t, svc.DetachUser(ctx, admin, clientB.ID, user.ID))

	refreshed, err := svc.GetUser(ctx, admin, user.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.DefaultClientID)
	assert.Equal(t, clientA.ID, *refreshed.DefaultClientID)
}

func TestDeleteClientDropsMemberships(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	admin := adminIdentity()

	clientA := seedClient(t, svc, "Client A")
	clientB := seedClient(t, svc, "Client B")
	user := seedUser(t, svc, "member@example.com")

	_, _, err := svc.AttachUser(ctx, admin, clientA.ID, user.ID)
	require.NoError(t, err)
	_, _, err = svc.AttachUser(ctx, admin, clientB.ID, user.ID)
	require.NoError(t, err)

	category := seedCategory(t, svc, clientA.ID, "Doomed")
	post := seedPost(t, svc, clientA.ID, category.ID, "Doomed Post")

	require.NoError(t, svc.DeleteClient(ctx, admin, clientA.ID))

	t.Run("ClientGone", func(t *testing.T) {
		_, err := svc.GetClient(ctx, admin, clientA.ID)
		assert.ErrorIs(t, err, bcms.ErrClientNotFound)
	})

	t.Run("OwnedRowsGone", func(t *testing.T) {
		_, err := svc.GetCategory(ctx, admin, category.ID)
		assert.ErrorIs(t, err, bcms.ErrCategoryNotFound)

		_, err = svc.GetPost(ctx, admin, post.ID)
		assert.ErrorIs(t, err, bcms.ErrPostNotFound)
	})

	t.Run("UserSurvivesAndScopesToRemainingClient", func(t *testing.T) {
		refreshed, err := svc.GetUser(ctx, admin, user.ID)
		require.NoError(t, err)

		// The dangling default is gone; scope resolution falls back to
		// the remaining association.
		category, err := svc.CreateCategory(ctx, identityOf(refreshed), bcms.CreateCategoryRequest{Name: "Fresh"})
		require.NoError(t, err)
		assert.Equal(t, clientB.ID, category.ClientID)
	})
}
