package bcms

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Post operations. Scoping follows the same engine as post categories:
// non-admin callers read and write only rows of their resolved client.

// Image upload constraints. The content type is sniffed from the file
// data, never trusted from the request.
const (
	MaxImageBytes = 10 << 20

	postImageNamespace = "posts"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *service) ListPosts(ctx context.Context, ident Identity, page Pagination, filters PostFilters) ([]*Post, int64, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionList, ResourcePost)
	if err != nil {
		return nil, 0, err
	}
	if dec.Scoped {
		scope := dec.ClientID
		filters.ClientID = &scope
	}
	return s.repository.ListPosts(ctx, page.Normalize(), filters)
}

func (s *service) CreatePost(ctx context.Context, ident Identity, req CreatePostRequest) (*Post, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionCreate, ResourcePost)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

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

	if err := s.checkPostCategory(ctx, req.PostCategoryID, clientID); err != nil {
		return nil, err
	}

	imageURL, imageKey := req.ImageURL, ""
	if req.Image != nil {
		imageURL, imageKey, err = s.storeImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	post := &Post{
		ID:             uuid.New(),
		UserID:         ident.UserID,
		ClientID:       clientID,
		PostCategoryID: req.PostCategoryID,
		Title:          req.Title,
		Content:        req.Content,
		ImageURL:       imageURL,
		ImageKey:       imageKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repository.CreatePost(ctx, post); err != nil {
		// The row never existed; don't leave its blob behind.
		s.deleteBlob(ctx, imageKey)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.fireEvent(ctx, "post.created", func() error { return s.eventSink.PostCreated(ctx, post) })

	return post, nil
}

func (s *service) GetPost(ctx context.Context, ident Identity, id uuid.UUID) (*Post, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionRead, ResourcePost)
	if err != nil {
		return nil, err
	}
	return s.findPostInScope(ctx, dec, id)
}

func (s *service) UpdatePost(ctx context.Context, ident Identity, id uuid.UUID, req UpdatePostRequest) (*Post, error) {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionUpdate, ResourcePost)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	post, err := s.findPostInScope(ctx, dec, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.PostCategoryID != nil {
		if err := s.checkPostCategory(ctx, *req.PostCategoryID, post.ClientID); err != nil {
			return nil, err
		}
		post.PostCategoryID = *req.PostCategoryID
	}

	oldKey := post.ImageKey
	switch {
	case req.Image != nil:
		url, key, err := s.storeImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
		post.ImageKey = key
	case req.ImageURL != nil:
		post.ImageURL = *req.ImageURL
		post.ImageKey = ""
	}

	post.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdatePost(ctx, post); err != nil {
		if post.ImageKey != oldKey {
			s.deleteBlob(ctx, post.ImageKey)
		}
		return nil, &EntityError{Entity: "post", ID: id, Op: "update", Err: err}
	}

	// The old blob is unreferenced once the row points at the new image.
	// Deletion is best effort and never fails the update.
	if oldKey != "" && post.ImageKey != oldKey {
		s.deleteBlob(ctx, oldKey)
	}

	s.fireEvent(ctx, "post.updated", func() error { return s.eventSink.PostUpdated(ctx, post) })

	return post, nil
}

func (s *service) DeletePost(ctx context.Context, ident Identity, id uuid.UUID) error {
	dec, err := s.authorizer.Authorize(ctx, ident, ActionDelete, ResourcePost)
	if err != nil {
		return err
	}

	post, err := s.findPostInScope(ctx, dec, id)
	if err != nil {
		return err
	}

	if err := s.repository.DeletePost(ctx, id); err != nil {
		return &EntityError{Entity: "post", ID: id, Op: "delete", Err: err}
	}

	s.deleteBlob(ctx, post.ImageKey)

	s.fireEvent(ctx, "post.deleted", func() error { return s.eventSink.PostDeleted(ctx, id) })

	return nil
}

// findPostInScope loads a post and hides rows outside the decision's
// scope: the caller gets the same ErrPostNotFound whether the id does not
// exist or belongs to another client.
func (s *service) findPostInScope(ctx context.Context, dec Decision, id uuid.UUID) (*Post, error) {
	post, err := s.repository.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dec.Allows(post.ClientID) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// checkPostCategory verifies the category exists and belongs to the
// post's client. Both failures are 422 field errors: the category id came
// from the request body, not the URL.
func (s *service) checkPostCategory(ctx context.Context, categoryID, clientID uuid.UUID) error {
	category, err := s.repository.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return NewValidationError("post_category_id", "post category not found")
		}
		return fmt.Errorf("checking post category: %w", err)
	}
	if category.ClientID != clientID {
		return NewValidationError("post_category_id", "post category belongs to another client")
	}
	return nil
}

// storeImage validates and uploads a post image, returning the public URL
// and the blob key. Constraint failures happen before any blob write.
func (s *service) storeImage(ctx context.Context, img *ImageUpload) (string, string, error) {
	if img.Size > MaxImageBytes {
		return "", "", NewValidationError("image", "must not be larger than 10 MiB")
	}

	reader := bufio.NewReader(img.Reader)
	head, err := reader.Peek(512)
	if err != nil && err != io.EOF {
		return "", "", fmt.Errorf("reading image: %w", err)
	}
	contentType := http.DetectContentType(head)
	if _, ok := allowedImageTypes[contentType]; !ok {
		return "", "", NewValidationError("image", "must be a jpeg, png, gif, or webp image")
	}

	if s.blobStore == nil {
		return "", "", ErrStorageNotConfigured
	}

	key := s.keys.GenerateKey(postImageNamespace, img.Filename)
	if err := s.blobStore.Upload(ctx, key, io.LimitReader(reader, MaxImageBytes), contentType); err != nil {
		return "", "", &StorageError{Key: key, Op: "upload", Err: err}
	}

	url, err := s.blobStore.URL(key)
	if err != nil {
		s.deleteBlob(ctx, key)
		return "", "", &StorageError{Key: key, Op: "url", Err: err}
	}
	return url, key, nil
}

// deleteBlob removes a stored blob best effort. Failures are logged and
// swallowed so storage trouble never fails the surrounding operation.
func (s *service) deleteBlob(ctx context.Context, key string) {
	if key == "" || s.blobStore == nil {
		return
	}
	if err := s.blobStore.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "deleting blob failed", "key", key, "error", err)
	}
}
