package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const cacheKey = "oswork:settings:v1"

// Repository provides settings persistence.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, in UpdateInput) (Settings, error)
}

// Service serves the global settings row. Reads go through a short-lived
// Redis cache because the commission rate is consulted on every order
// computation; cache failures fall back to the database.
type Service struct {
	repo     Repository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewService constructs a settings service. cache may be nil, which disables
// caching entirely.
func NewService(repo Repository, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Get returns the current settings, defaulting when no row exists yet.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Settings{CommissionRate: DefaultCommissionRate}, nil
		}
		return Settings{}, err
	}

	s.toCache(ctx, stored)
	return stored, nil
}

// CommissionRate returns the rate in effect right now.
func (s *Service) CommissionRate(ctx context.Context) (decimal.Decimal, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if current.CommissionRate.IsZero() {
		return DefaultCommissionRate, nil
	}
	return current.CommissionRate, nil
}

// Update applies a partial update and invalidates the cache.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Settings, error) {
	if err := in.Validate(); err != nil {
		return Settings{}, err
	}
	updated, err := s.repo.Upsert(ctx, in)
	if err != nil {
		return Settings{}, err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Warn("settings cache invalidation failed", slog.Any("error", err))
		}
	}
	return updated, nil
}

func (s *Service) fromCache(ctx context.Context) (Settings, bool) {
	if s.cache == nil {
		return Settings{}, false
	}
	payload, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("settings cache read failed", slog.Any("error", err))
		}
		return Settings{}, false
	}
	var cached Settings
	if err := json.Unmarshal(payload, &cached); err != nil {
		return Settings{}, false
	}
	return cached, true
}

func (s *Service) toCache(ctx context.Context, current Settings) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(current)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("settings cache write failed", slog.Any("error", err))
	}
}
