package bcms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms/auth"
)

// Auth flows. Tokens are opaque: the repository stores only the SHA-256
// digest, and the plaintext is returned exactly once from Register and
// Login.

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", asValidationError(err)
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repository.GetUserByEmail(ctx, email); err == nil {
		return nil, "", NewValidationError("email", "has already been taken")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, "", NewValidationError("email", "has already been taken")
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID, "register")
	if err != nil {
		return nil, "", err
	}

	s.fireEvent(ctx, "user.registered", func() error { return s.eventSink.UserRegistered(ctx, user) })

	return user, token, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", asValidationError(err)
	}

	user, err := s.repository.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same cost and same error as a wrong password.
			auth.CheckDummy(req.Password)
			return nil, "", ErrIncorrectCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", ErrIncorrectCredentials
	}

	token, err := s.issueToken(ctx, user.ID, "login")
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout revokes the token that authenticated the current request. Other
// tokens of the same user stay valid.
func (s *service) Logout(ctx context.Context, ident Identity) error {
	if ident.TokenID == uuid.Nil {
		return ErrUnauthenticated
	}
	if err := s.repository.DeleteToken(ctx, ident.TokenID); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// Authenticate resolves a plaintext bearer token into the caller's
// Identity. Unknown, revoked, and expired tokens are all
// ErrUnauthenticated.
func (s *service) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}

	t, err := s.repository.GetTokenByDigest(ctx, auth.Digest(token))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("looking up token: %w", err)
	}

	now := time.Now().UTC()
	if t.Expired(now) {
		return Identity{}, ErrUnauthenticated
	}

	user, err := s.repository.GetUser(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("loading token user: %w", err)
	}

	if err := s.repository.TouchToken(ctx, t.ID, now); err != nil {
		s.logger.WarnContext(ctx, "touching token failed", "token_id", t.ID, "error", err)
	}

	return Identity{
		UserID:          user.ID,
		Admin:           user.Admin,
		DefaultClientID: user.DefaultClientID,
		TokenID:         t.ID,
	}, nil
}

func (s *service) issueToken(ctx context.Context, userID uuid.UUID, name string) (string, error) {
	plaintext, digest, err := auth.NewSecret()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	t := &Token{
		ID:        uuid.New(),
		UserID:    userID,
		Digest:    digest,
		Name:      name,
		CreatedAt: now,
	}
	if s.tokenTTL > 0 {
		expires := now.Add(s.tokenTTL)
		t.ExpiresAt = &expires
	}

	if err := s.repository.CreateToken(ctx, t); err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}
	return plaintext, nil
}
