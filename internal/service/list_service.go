package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type scopeResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims, audience Audience, childID string) (listquery.Predicate, error)
}

// ListRequest is the raw query of one list call. Filters holds every query
// parameter; keys the list does not recognise are ignored.
type ListRequest struct {
	Filters map[string]string
	Page    string
	Limit   string
	ChildID string
}

// ListOptions tunes every list service.
type ListOptions struct {
	Limits       listquery.Limits
	QueryTimeout time.Duration
	CacheTTL     time.Duration
}

// ListDefinition describes one list type: what it accepts, how it is ordered
// and what it summarises.
type ListDefinition[T any, S any] struct {
	Name      string
	Spec      *listquery.Spec
	Sort      listquery.Sort
	Audience  Audience
	Aggregate listquery.AggregateFunc[T, S]
}

// ListService answers one list type for any authenticated caller.
type ListService[T any, S any] struct {
	def     ListDefinition[T, S]
	source  listquery.Source[T]
	scopes  scopeResolver
	cache   *CacheService
	metrics *MetricsService
	opts    ListOptions
	logger  *zap.Logger
}

// NewListService constructs a list service. cache and metrics may be nil.
func NewListService[T any, S any](def ListDefinition[T, S], source listquery.Source[T], scopes scopeResolver, cache *CacheService, metrics *MetricsService, opts ListOptions, logger *zap.Logger) *ListService[T, S] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListService[T, S]{def: def, source: source, scopes: scopes, cache: cache, metrics: metrics, opts: opts, logger: logger}
}

// Name returns the list name used for cache keys and metrics.
func (s *ListService[T, S]) Name() string {
	return s.def.Name
}

// FilterKeys lists the query parameters the list recognises.
func (s *ListService[T, S]) FilterKeys() []string {
	return s.def.Spec.Keys()
}

// List returns one page of the caller's records with statistics over every
// record matching the filters. The boolean reports a cache hit.
func (s *ListService[T, S]) List(ctx context.Context, claims *models.JWTClaims, req ListRequest) (*listquery.Result[T, S], bool, error) {
	pred, err := s.predicate(ctx, claims, req)
	if err != nil {
		s.observe(err, 0)
		return nil, false, err
	}
	page, err := s.opts.Limits.Parse(req.Page, req.Limit)
	if err != nil {
		s.observe(err, 0)
		return nil, false, err
	}

	key := ListKey(s.def.Name, pred, page)
	var cached listquery.Result[T, S]
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		s.metrics.ObserveList(s.def.Name, "cached", cached.Pagination.TotalItems)
		return &cached, true, nil
	}

	runCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	result, err := listquery.Run(runCtx, s.source, pred, s.def.Sort, page, s.def.Aggregate)
	if err != nil {
		s.logFailure(err, pred)
		s.observe(err, 0)
		return nil, false, err
	}
	s.observe(nil, result.Pagination.TotalItems)

	_ = s.cache.Set(ctx, key, result, s.opts.CacheTTL)
	return result, false, nil
}

// All returns up to max matching records in list order together with the
// statistics of the whole filtered set.
func (s *ListService[T, S]) All(ctx context.Context, claims *models.JWTClaims, req ListRequest, max int) ([]T, S, error) {
	var stats S
	pred, err := s.predicate(ctx, claims, req)
	if err != nil {
		return nil, stats, err
	}

	runCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if s.def.Aggregate != nil {
		stats, err = s.def.Aggregate(runCtx, s.source, pred)
		if err != nil {
			err = listquery.StoreError(err, "failed to compute statistics")
			s.logFailure(err, pred)
			return nil, stats, err
		}
	}
	rows, err := listquery.All(runCtx, s.source, pred, s.def.Sort, max)
	if err != nil {
		s.logFailure(err, pred)
		return nil, stats, err
	}
	return rows, stats, nil
}

// Invalidate drops every cached page of the list.
func (s *ListService[T, S]) Invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, ListPattern(s.def.Name))
}

func (s *ListService[T, S]) predicate(ctx context.Context, claims *models.JWTClaims, req ListRequest) (listquery.Predicate, error) {
	scope, err := s.scopes.Resolve(ctx, claims, s.def.Audience, req.ChildID)
	if err != nil {
		return listquery.Predicate{}, err
	}
	return s.def.Spec.Build(scope, req.Filters)
}

func (s *ListService[T, S]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.QueryTimeout)
}

func (s *ListService[T, S]) logFailure(err error, pred listquery.Predicate) {
	fields := []zap.Field{zap.String("list", s.def.Name), zap.String("predicate", pred.Key()), zap.Error(err)}
	switch {
	case appErrors.HasCode(err, appErrors.ErrScopeViolation):
		s.logger.Error("list query reached the store without a scope", fields...)
	case appErrors.HasCode(err, appErrors.ErrStoreUnavailable):
		s.logger.Error("list query failed", fields...)
	default:
		s.logger.Warn("list query rejected", fields...)
	}
}

func (s *ListService[T, S]) observe(err error, matching int) {
	if err == nil {
		s.metrics.ObserveList(s.def.Name, "ok", matching)
		return
	}
	s.metrics.ObserveList(s.def.Name, appErrors.FromError(err).Code, 0)
}
