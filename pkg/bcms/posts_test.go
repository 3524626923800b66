package bcms_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
	"github.com/angeloghiotto/bcms-backend/pkg/bcms/repo/memory"
	memorystorage "github.com/angeloghiotto/bcms-backend/pkg/bcms/storage/memory"
)

// countingStore wraps a BlobStore and counts writes and deletes.
type countingStore struct {
	inner   bcms.BlobStore
	uploads atomic.Int64
	deletes atomic.Int64

	failDelete bool
}

func newCountingStore() *countingStore {
	return &countingStore{inner: memorystorage.New()}
}

func (c *countingStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	c.uploads.Add(1)
	return c.inner.Upload(ctx, key, reader, contentType)
}

func (c *countingStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return c.inner.Download(ctx, key)
}

func (c *countingStore) Delete(ctx context.Context, key string) error {
	c.deletes.Add(1)
	if c.failDelete {
		return errors.New("simulated delete failure")
	}
	return c.inner.Delete(ctx, key)
}

func (c *countingStore) URL(key string) (string, error) {
	return c.inner.URL(key)
}

func newServiceWithStore(t *testing.T, store bcms.BlobStore) bcms.Service {
	t.Helper()
	opts := []bcms.Option{bcms.WithRepository(memory.New())}
	if store != nil {
		opts = append(opts, bcms.WithBlobStore(store))
	}
	svc, err := bcms.New(opts...)
	require.NoError(t, err)
	return svc
}

// pngUpload builds a small upload whose bytes sniff as image/png.
func pngUpload() *bcms.ImageUpload {
	data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 64)...)
	return &bcms.ImageUpload{
		Filename: "photo.png",
		Size:     int64(len(data)),
		Reader:   bytes.NewReader(data),
	}
}

func TestCreatePostWithImage(t *testing.T) {
	store := newCountingStore()
	svc := newServiceWithStore(t, store)
	ctx := context.Background()

	client := seedClient(t, svc, "Client")
	category := seedCategory(t, svc, client.ID, "Photos")
	member := seedMember(t, svc, client.ID, "author@example.com")

	upload := pngUpload()
	post, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
		Title:          "With Image",
		Content:        "body",
		PostCategoryID: category.ID,
		Image:          upload,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ImageKey)
	assert.Equal(t, "memory://"+post.ImageKey, post.ImageURL)
	assert.Equal(t, int64(1), store.uploads.Load())

	// The stored blob round-trips.
	reader, err := store.Download(ctx, post.ImageKey)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), upload.Size)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestCreatePostWithImageURL(t *testing.T) {
	store := newCountingStore()
	svc := newServiceWithStore(t, store)
	ctx := context.Background()

	client := seedClient(t, svc, "Client")
	category := seedCategory(t, svc, client.ID, "Links")
	member := seedMember(t, svc, client.ID, "author@example.com")

	post, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
		Title:          "Hotlinked",
		Content:        "body",
		PostCategoryID: category.ID,
		ImageURL:       "https://cdn.example.com/banner.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/banner.jpg", post.ImageURL)
	assert.Empty(t, post.ImageKey)
	assert.Equal(t, int64(0), store.uploads.Load())
}

func TestImageUploadValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Oversized", func(t *testing.T) {
		store := newCountingStore()
		svc := newServiceWithStore(t, store)
		client := seedClient(t, svc, "Client")
		category := seedCategory(t, svc, client.ID, "Photos")
		member := seedMember(t, svc, client.ID, "author@example.com")

		upload := pngUpload()
		upload.Size = bcms.MaxImageBytes + 1

		_, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
			Title:          "Too Big",
			Content:        "body",
			PostCategoryID: category.ID,
			Image:          upload,
		})
		require.Error(t, err)

		var verr *bcms.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "image")

		// Rejected before any blob write.
		assert.Equal(t, int64(0), store.uploads.Load())
	})

	t.Run("WrongContentType", func(t *testing.T) {
		store := newCountingStore()
		svc := newServiceWithStore(t, store)
		client := seedClient(t, svc, "Client")
		category := seedCategory(t, svc, client.ID, "Photos")
		member := seedMember(t, svc, client.ID, "author@example.com")

		data := []byte("definitely not an image, just plain text content here")
		_, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
			Title:          "Not An Image",
			Content:        "body",
			PostCategoryID: category.ID,
			Image: &bcms.ImageUpload{
				Filename: "notes.txt",
				Size:     int64(len(data)),
				Reader:   bytes.NewReader(data),
			},
		})
		require.Error(t, err)

		var verr *bcms.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "image")
		assert.Equal(t, int64(0), store.uploads.Load())
	})

	t.Run("SpoofedContentTypeIsSniffed", func(t *testing.T) {
		// A .png filename around text bytes still fails: the type comes
		// from the data.
		store := newCountingStore()
		svc := newServiceWithStore(t, store)
		client := seedClient(t, svc, "Client")
		category := seedCategory(t, svc, client.ID, "Photos")
		member := seedMember(t, svc, client.ID, "author@example.com")

		data := []byte("<html><body>gotcha</body></html>")
		_, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
			Title:          "Spoofed",
			Content:        "body",
			PostCategoryID: category.ID,
			Image: &bcms.ImageUpload{
				Filename: "image.png",
				Size:     int64(len(data)),
				Reader:   bytes.NewReader(data),
			},
		})
		require.Error(t, err)

		var verr *bcms.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "image")
	})

	t.Run("NoStorageConfigured", func(t *testing.T) {
		svc := newServiceWithStore(t, nil)
		client := seedClient(t, svc, "Client")
		category := seedCategory(t, svc, client.ID, "Photos")
		member := seedMember(t, svc, client.ID, "author@example.com")

		_, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
			Title:          "No Store",
			Content:        "body",
			PostCategoryID: category.ID,
			Image:          pngUpload(),
		})
		assert.ErrorIs(t, err, bcms.ErrStorageNotConfigured)
	})
}

func TestUpdatePostImage(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, store *countingStore) (bcms.Service, bcms.Identity, *bcms.Post) {
		svc := newServiceWithStore(t, store)
		client := seedClient(t, svc, "Client")
		category := seedCategory(t, svc, client.ID, "Photos")
		member := seedMember(t, svc, client.ID, "author@example.com")

		post, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
			Title:          "Original",
			Content:        "body",
			PostCategoryID: category.ID,
			Image:          pngUpload(),
		})
		require.NoError(t, err)
		require.NotEmpty(t, post.ImageKey)
		return svc, member, post
	}

	t.Run("ReplacementDeletesOldBlob", func(t *testing.T) {
		store := newCountingStore()
		svc, member, post := setup(t, store)
		oldKey := post.ImageKey

		updated, err := svc.UpdatePost(ctx, member, post.ID, bcms.UpdatePostRequest{
			Image: pngUpload(),
		})
		require.NoError(t, err)
		assert.NotEqual(t, oldKey, updated.ImageKey)
		assert.Equal(t, int64(2), store.uploads.Load())
		assert.Equal(t, int64(1), store.deletes.Load())

		_, err = store.Download(ctx, oldKey)
		assert.Error(t, err, "replaced blob should be gone")

		_, err = store.Download(ctx, updated.ImageKey)
		assert.NoError(t, err)
	})

	t.Run("SwitchingToURLDropsBlob", func(t *testing.T) {
		store := newCountingStore()
		svc, member, post := setup(t, store)
		oldKey := post.ImageKey

		url := "https://cdn.example.com/external.jpg"
		updated, err := svc.UpdatePost(ctx, member, post.ID, bcms.UpdatePostRequest{
			ImageURL: &url,
		})
		require.NoError(t, err)
		assert.Equal(t, url, updated.ImageURL)
		assert.Empty(t, updated.ImageKey)

		_, err = store.Download(ctx, oldKey)
		assert.Error(t, err)
	})

	t.Run("DeleteFailureDoesNotFailUpdate", func(t *testing.T) {
		store := newCountingStore()
		store.failDelete = true
		svc, member, post := setup(t, store)

		updated, err := svc.UpdatePost(ctx, member, post.ID, bcms.UpdatePostRequest{
			Image: pngUpload(),
		})
		require.NoError(t, err)
		assert.NotEqual(t, post.ImageKey, updated.ImageKey)

		// The row points at the replacement even though cleanup failed.
		got, err := svc.GetPost(ctx, member, post.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.ImageURL, got.ImageURL)
	})
}

func TestDeletePostRemovesBlob(t *testing.T) {
	store := newCountingStore()
	svc := newServiceWithStore(t, store)
	ctx := context.Background()

	client := seedClient(t, svc, "Client")
	category := seedCategory(t, svc, client.ID, "Photos")
	member := seedMember(t, svc, client.ID, "author@example.com")

	post, err := svc.CreatePost(ctx, member, bcms.CreatePostRequest{
		Title:          "Short Lived",
		Content:        "body",
		PostCategoryID: category.ID,
		Image:          pngUpload(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, member, post.ID))

	_, err = svc.GetPost(ctx, member, post.ID)
	assert.ErrorIs(t, err, bcms.ErrPostNotFound)

	_, err = store.Download(ctx, post.ImageKey)
	assert.Error(t, err, "blob should be removed with the post")
}

func TestDeleteCategoryCascadesPosts(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	client := seedClient(t, svc, "Client")
	category := seedCategory(t, svc, client.ID, "Doomed")
	keep := seedCategory(t, svc, client.ID, "Kept")

	doomed := seedPost(t, svc, client.ID, category.ID, "Doomed Post")
	kept := seedPost(t, svc, client.ID, keep.ID, "Kept Post")

	require.NoError(t, svc.DeleteCategory(ctx, adminIdentity(), category.ID))

	_, err := svc.GetPost(ctx, adminIdentity(), doomed.ID)
	assert.ErrorIs(t, err, bcms.ErrPostNotFound)

	got, err := svc.GetPost(ctx, adminIdentity(), kept.ID)
	assert.NoError(t, err)
	assert.Equal(t, kept.ID, got.ID)
}

func TestListPostsByAuthor(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	client := seedClient(t, svc, "Client")
	category := seedCategory(t, svc, client.ID, "Posts")
	alice := seedMember(t, svc, client.ID, "alice@example.com")
	bob := seedMember(t, svc, client.ID, "bob@example.com")

	for _, ident := range []bcms.Identity{alice, alice, bob} {
		_, err := svc.CreatePost(ctx, ident, bcms.CreatePostRequest{
			Title:          "Post",
			Content:        "body",
			PostCategoryID: category.ID,
		})
		require.NoError(t, err)
	}

	posts, total, err := svc.ListPosts(ctx, adminIdentity(), bcms.Pagination{}, bcms.PostFilters{UserID: &alice.UserID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, p := range posts {
		assert.Equal(t, alice.UserID, p.UserID)
	}
}
