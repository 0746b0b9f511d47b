package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider searches a city gazetteer.
type Provider interface {
	SearchCities(ctx context.Context, opts SearchOptions) (*SearchResult, error)
	Name() string
}

// CacheMetrics receives cache hit and miss events.
type CacheMetrics interface {
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the city search service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// CacheTTL is how long identical searches are served from memory.
	// Default: 10 minutes.
	CacheTTL time.Duration

	// DefaultCities is used when a search leaves Cities empty.
	// Default: cities1000.
	DefaultCities string

	// DefaultMaxRows caps results when a search leaves MaxRows zero.
	// Default: 10.
	DefaultMaxRows int

	// Metrics is optional.
	Metrics CacheMetrics
}

// Service validates and caches city searches.
type Service struct {
	provider      Provider
	logger        zerolog.Logger
	cacheTTL      time.Duration
	defaultCities string
	defaultRows   int
	metrics       CacheMetrics

	mu    sync.RWMutex
	cache map[string]cachedResult
}

type cachedResult struct {
	result    *SearchResult
	expiresAt time.Time
}

// NewService creates a city search service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.DefaultCities == "" {
		cfg.DefaultCities = Cities1000
	}
	if cfg.DefaultMaxRows == 0 {
		cfg.DefaultMaxRows = 10
	}

	return &Service{
		provider:      cfg.Provider,
		logger:        cfg.Logger,
		cacheTTL:      cfg.CacheTTL,
		defaultCities: cfg.DefaultCities,
		defaultRows:   cfg.DefaultMaxRows,
		metrics:       cfg.Metrics,
		cache:         make(map[string]cachedResult),
	}
}

// Search returns cities whose name starts with opts.NameStartsWith.
func (s *Service) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	opts.NameStartsWith = strings.TrimSpace(opts.NameStartsWith)
	if opts.NameStartsWith == "" {
		return nil, ErrEmptyQuery
	}
	if opts.Cities == "" {
		opts.Cities = s.defaultCities
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = s.defaultRows
	}

	key := fmt.Sprintf("%s|%s|%d", strings.ToLower(opts.NameStartsWith), opts.Cities, opts.MaxRows)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		s.recordCache(true)
		return cached.result, nil
	}
	s.recordCache(false)

	result, err := s.provider.SearchCities(ctx, opts)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		s.logger.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Str("prefix", opts.NameStartsWith).
			Msg("city search failed")
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	s.mu.Lock()
	s.evictExpired()
	s.cache[key] = cachedResult{result: result, expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return result, nil
}

func (s *Service) recordCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit(s.provider.Name(), "search")
		return
	}
	s.metrics.RecordCacheMiss(s.provider.Name(), "search")
}

// evictExpired drops stale entries. Callers hold the write lock.
func (s *Service) evictExpired() {
	if len(s.cache) < 500 {
		return
	}
	now := time.Now()
	for k, v := range s.cache {
		if now.After(v.expiresAt) {
			delete(s.cache, k)
		}
	}
}

// CacheSize returns the number of cached searches.
func (s *Service) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
