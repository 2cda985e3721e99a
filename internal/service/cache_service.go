package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type invalidationQueue interface {
	Enqueue(pattern string) error
}

// CacheService caches list pages and records cache metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
	retries    invalidationQueue
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// ListKey identifies one page of one list. The predicate already carries the
// caller's scope, so two callers share an entry only when they see the same
// records.
func ListKey(list string, pred listquery.Predicate, req listquery.PageRequest) string {
	sum := sha256.Sum256([]byte(pred.Key()))
	return fmt.Sprintf("%s%s:%s:%d:%d", listPrefix, list, hex.EncodeToString(sum[:12]), req.Page, req.Limit)
}

// ListPattern matches every cached page of a list.
func ListPattern(list string) string {
	return listPrefix + list + ":*"
}

const listPrefix = "list:"

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// UseRetryQueue hands failed invalidations to queue instead of dropping them.
func (s *CacheService) UseRetryQueue(queue invalidationQueue) {
	s.retries = queue
}

// InvalidationHandler deletes one pattern; it is the job handler of the retry queue.
func (s *CacheService) InvalidationHandler() jobs.Handler[string] {
	return func(ctx context.Context, pattern string) error {
		if !s.Enabled() {
			return nil
		}
		return s.repo.DeleteByPattern(ctx, pattern)
	}
}

// Invalidate removes cached values for the provided pattern. A failure is
// queued for retry when a retry queue is attached.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	err := s.repo.DeleteByPattern(ctx, pattern)
	if err == nil {
		return nil
	}
	s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	if s.retries != nil {
		if qErr := s.retries.Enqueue(pattern); qErr != nil {
			s.logger.Error("cache invalidate retry not queued", zap.String("pattern", pattern), zap.Error(qErr))
		}
	}
	return err
}
