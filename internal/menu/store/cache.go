package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"menuapi/internal/menu/metrics"
	"menuapi/internal/menu/models"
	"menuapi/pkg/domain"
	"menuapi/pkg/platform/sentinel"
)

// Backend is the store a CachedStore reads through to.
type Backend interface {
	Search(ctx context.Context, name string) ([]*models.Menu, error)
	SearchPaged(ctx context.Context, name string, page, pageSize int) ([]*models.Menu, int, error)
	FindByID(ctx context.Context, id domain.MenuID) (*models.Menu, error)
	FindByName(ctx context.Context, name string, exclude domain.MenuID) (*models.Menu, error)
	Create(ctx context.Context, m *models.Menu) error
	Update(ctx context.Context, m *models.Menu) error
	Delete(ctx context.Context, id domain.MenuID) error
	Ping(ctx context.Context) error
}

// CachedStore caches FindByID in Redis and evicts on update and delete.
// Redis errors are logged and never fail a request.
type CachedStore struct {
	Backend
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewCached(next Backend, client *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *CachedStore {
	return &CachedStore{
		Backend: next,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

func cacheKey(id domain.MenuID) string {
	return fmt.Sprintf("menu:%d", id)
}

func (s *CachedStore) FindByID(ctx context.Context, id domain.MenuID) (*models.Menu, error) {
	raw, err := s.client.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var m models.Menu
		if jerr := json.Unmarshal(raw, &m); jerr == nil {
			s.metrics.IncrementCacheLookup("hit")
			return &m, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cached menu", "menu_id", id.Int())
	case errors.Is(err, redis.Nil):
		s.metrics.IncrementCacheLookup("miss")
	default:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "menu cache read failed", "menu_id", id.Int(), "error", err)
	}

	m, err := s.Backend.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(m); err == nil {
		if err := s.client.Set(ctx, cacheKey(id), raw, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "menu cache write failed", "menu_id", id.Int(), "error", err)
		}
	}
	return m, nil
}

func (s *CachedStore) Update(ctx context.Context, m *models.Menu) error {
	if err := s.Backend.Update(ctx, m); err != nil {
		return err
	}
	s.evict(ctx, m.ID)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, id domain.MenuID) error {
	if err := s.Backend.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

// Ping checks both Redis and the backend.
func (s *CachedStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis: %w", sentinel.ErrUnavailable, err)
	}
	return s.Backend.Ping(ctx)
}

func (s *CachedStore) evict(ctx context.Context, id domain.MenuID) {
	if err := s.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		s.logger.WarnContext(ctx, "menu cache eviction failed", "menu_id", id.Int(), "error", err)
	}
}
