// Package admin provides cross-tenant operational views over the
// repository: counts and per-client breakdowns for monitoring and the
// operations CLI.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// Service defines the interface for administrative statistics. These
// operations bypass client scoping; callers must already be authorized as
// admins.
type Service interface {
	GetStatistics(ctx context.Context) (*Statistics, error)
}

// Statistics is an aggregated snapshot across every client.
type Statistics struct {
	Users          int64            `json:"users"`
	Clients        int64            `json:"clients"`
	Posts          int64            `json:"posts"`
	PostCategories int64            `json:"post_categories"`
	PostsByClient  map[string]int64 `json:"posts_by_client"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// New creates a Service over the given repository.
func New(repo bcms.Repository) Service {
	return &service{repo: repo}
}

type service struct {
	repo bcms.Repository
}

func (s *service) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{GeneratedAt: time.Now().UTC()}

	var err error
	if stats.Users, err = s.repo.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if stats.Clients, err = s.repo.CountClients(ctx); err != nil {
		return nil, fmt.Errorf("counting clients: %w", err)
	}
	if stats.Posts, err = s.repo.CountPosts(ctx); err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	if stats.PostCategories, err = s.repo.CountCategories(ctx); err != nil {
		return nil, fmt.Errorf("counting post categories: %w", err)
	}

	byClient, err := s.repo.CountPostsByClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting posts by client: %w", err)
	}
	stats.PostsByClient = make(map[string]int64, len(byClient))
	for clientID, n := range byClient {
		stats.PostsByClient[clientID.String()] = n
	}

	return stats, nil
}
