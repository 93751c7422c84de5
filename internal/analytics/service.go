package analytics

import (
	"context"
	"fmt"
	"time"

	"stagepass/internal/shared/config"
	"stagepass/pkg/cache"

	"github.com/google/uuid"
)

// Service serves analytics read models, cached briefly so dashboard polling
// does not hammer the aggregates.
type Service interface {
	GetDashboardAnalytics(ctx context.Context) (*DashboardAnalytics, error)
	GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error)
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
}

func NewService(repo Repository, cacheService cache.Service, cfg *config.Config) Service {
	return &service{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cfg.Redis.AnalyticsCacheTTL,
	}
}

func (s *service) GetDashboardAnalytics(ctx context.Context) (*DashboardAnalytics, error) {
	var dashboard DashboardAnalytics

	if s.cache == nil {
		return s.repo.GetDashboardAnalytics(ctx)
	}

	err := s.cache.GetOrSet(ctx, "analytics:dashboard", s.cacheTTL, func() (interface{}, error) {
		return s.repo.GetDashboardAnalytics(ctx)
	}, &dashboard)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard analytics: %w", err)
	}
	return &dashboard, nil
}

func (s *service) GetEventAnalytics(ctx context.Context, eventID uuid.UUID) (*EventAnalytics, error) {
	var analytics EventAnalytics

	if s.cache == nil {
		return s.repo.GetEventAnalytics(ctx, eventID)
	}

	err := s.cache.GetOrSet(ctx, "analytics:event:"+eventID.String(), s.cacheTTL, func() (interface{}, error) {
		return s.repo.GetEventAnalytics(ctx, eventID)
	}, &analytics)
	if err != nil {
		return nil, fmt.Errorf("failed to get event analytics: %w", err)
	}
	return &analytics, nil
}
