package listquery

import (
	"context"
	"errors"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// Sort is the per-list order. Ties always break on FieldID ascending so page
// boundaries are stable across identical requests.
type Sort struct {
	Field Field
	Desc  bool
}

// Source evaluates predicates against one record collection. Implementations
// never mutate records.
type Source[T any] interface {
	Count(ctx context.Context, pred Predicate) (int, error)
	Find(ctx context.Context, pred Predicate, sort Sort, offset, limit int) ([]T, error)
	CountBy(ctx context.Context, pred Predicate, field Field) (map[string]int, error)
	// SumBy groups by group and returns one sum per field, in field order.
	SumBy(ctx context.Context, pred Predicate, group Field, fields ...Field) (map[string][]float64, error)
}

// AggregateFunc derives statistics from the full filtered set.
type AggregateFunc[T any, S any] func(ctx context.Context, src Source[T], pred Predicate) (S, error)

// Result is one page plus statistics over every matching record.
type Result[T any, S any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
	Statistics S          `json:"statistics"`
}

// Run executes the list contract. The count, the page and the statistics are
// separate reads and may disagree slightly under concurrent writes. Nothing is
// returned unless every read succeeded and ctx is still live.
func Run[T any, S any](ctx context.Context, src Source[T], pred Predicate, sort Sort, req PageRequest, aggregate AggregateFunc[T, S]) (*Result[T, S], error) {
	if !pred.Scoped() {
		return nil, appErrors.ErrScopeViolation
	}
	if req.Page < 1 || req.Limit < 1 {
		return nil, appErrors.Clone(appErrors.ErrInvalidPagination, "page and limit must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, StoreError(err, "request cancelled")
	}

	var stats S
	if aggregate != nil {
		var err error
		stats, err = aggregate(ctx, src, pred)
		if err != nil {
			return nil, StoreError(err, "failed to compute statistics")
		}
	}

	total, err := src.Count(ctx, pred)
	if err != nil {
		return nil, StoreError(err, "failed to count records")
	}

	items := []T{}
	if PageLen(req, total) > 0 {
		rows, err := src.Find(ctx, pred, sort, req.Offset(), req.Limit)
		if err != nil {
			return nil, StoreError(err, "failed to load records")
		}
		if rows != nil {
			items = rows
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, StoreError(err, "request cancelled")
	}
	return &Result[T, S]{Items: items, Pagination: NewPagination(req, total), Statistics: stats}, nil
}

// All returns every matching record up to max, in sort order.
func All[T any](ctx context.Context, src Source[T], pred Predicate, sort Sort, max int) ([]T, error) {
	if !pred.Scoped() {
		return nil, appErrors.ErrScopeViolation
	}
	rows, err := src.Find(ctx, pred, sort, 0, max)
	if err != nil {
		return nil, StoreError(err, "failed to load records")
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// StoreError keeps typed errors and classifies everything else as an
// unavailable store.
func StoreError(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
}
