package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-portal-api/internal/listquery"
)

// QueryObserver receives the duration of every store round trip.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// Table maps list fields onto a SQL relation. Select must produce columns
// matching the db tags of the record type read through it.
type Table struct {
	Name    string
	From    string
	Select  string
	Columns map[listquery.Field]string
}

func (t Table) column(field listquery.Field) (string, error) {
	col, ok := t.Columns[field]
	if !ok {
		return "", fmt.Errorf("%s: unsupported field %q", t.Name, field)
	}
	return col, nil
}

// SQLSource evaluates list predicates against PostgreSQL.
type SQLSource[T any] struct {
	db       *sqlx.DB
	table    Table
	observer QueryObserver
}

// NewSQLSource constructs a SQL backed list source. observer may be nil.
func NewSQLSource[T any](db *sqlx.DB, table Table, observer QueryObserver) *SQLSource[T] {
	return &SQLSource[T]{db: db, table: table, observer: observer}
}

func (s *SQLSource[T]) observe(op string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveDBQuery(s.table.Name+"."+op, time.Since(start))
	}
}

func (s *SQLSource[T]) where(pred listquery.Predicate) (string, []interface{}, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	for _, cond := range pred.Conditions() {
		col, err := s.table.column(cond.Field)
		if err != nil {
			return "", nil, err
		}
		switch cond.Op {
		case listquery.OpIn:
			values, ok := cond.Value.([]string)
			if !ok {
				return "", nil, fmt.Errorf("%s: %s IN expects a string list", s.table.Name, cond.Field)
			}
			conditions = append(conditions, fmt.Sprintf("%s = ANY($%d)", col, len(args)+1))
			args = append(args, pq.Array(values))
		case listquery.OpEq, listquery.OpGte, listquery.OpLte, listquery.OpLt:
			conditions = append(conditions, fmt.Sprintf("%s %s $%d", col, cond.Op, len(args)+1))
			args = append(args, cond.Value)
		default:
			return "", nil, fmt.Errorf("%s: unsupported operator %s", s.table.Name, cond.Op)
		}
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, nil
}

// Count returns the number of matching rows.
func (s *SQLSource[T]) Count(ctx context.Context, pred listquery.Predicate) (int, error) {
	defer s.observe("count", time.Now())
	where, args, err := s.where(pred)
	if err != nil {
		return 0, err
	}
	var total int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", s.table.From, where)
	if err := s.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table.Name, err)
	}
	return total, nil
}

// Find returns one window of matching rows ordered by sort, then id.
func (s *SQLSource[T]) Find(ctx context.Context, pred listquery.Predicate, sort listquery.Sort, offset, limit int) ([]T, error) {
	defer s.observe("find", time.Now())
	where, args, err := s.where(pred)
	if err != nil {
		return nil, err
	}
	sortCol, err := s.table.column(sort.Field)
	if err != nil {
		return nil, err
	}
	idCol, err := s.table.column(listquery.FieldID)
	if err != nil {
		return nil, err
	}
	order := "ASC"
	if sort.Desc {
		order = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY %s %s, %s ASC LIMIT %d OFFSET %d",
		s.table.Select, s.table.From, where, sortCol, order, idCol, limit, offset)

	var rows []T
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table.Name, err)
	}
	return rows, nil
}

type bucketCount struct {
	Bucket string `db:"bucket"`
	Total  int    `db:"total"`
}

func (s *SQLSource[T]) bucket(field listquery.Field) (string, error) {
	col, err := s.table.column(field)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("COALESCE(NULLIF(%s, ''), '%s')", col, listquery.UnknownBucket), nil
}

// CountBy counts matching rows per value of field. Null and empty values are
// reported under the unknown bucket.
func (s *SQLSource[T]) CountBy(ctx context.Context, pred listquery.Predicate, field listquery.Field) (map[string]int, error) {
	defer s.observe("count_by_"+string(field), time.Now())
	where, args, err := s.where(pred)
	if err != nil {
		return nil, err
	}
	bucket, err := s.bucket(field)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s AS bucket, COUNT(*) AS total FROM %s %s GROUP BY 1", bucket, s.table.From, where)

	var rows []bucketCount
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("group %s by %s: %w", s.table.Name, field, err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Bucket] += row.Total
	}
	return counts, nil
}

// SumBy sums each of fields per value of group.
func (s *SQLSource[T]) SumBy(ctx context.Context, pred listquery.Predicate, group listquery.Field, fields ...listquery.Field) (map[string][]float64, error) {
	defer s.observe("sum_by_"+string(group), time.Now())
	where, args, err := s.where(pred)
	if err != nil {
		return nil, err
	}
	bucket, err := s.bucket(group)
	if err != nil {
		return nil, err
	}
	sums := make([]string, len(fields))
	for i, field := range fields {
		col, err := s.table.column(field)
		if err != nil {
			return nil, err
		}
		sums[i] = fmt.Sprintf("COALESCE(SUM(%s), 0)::float8", col)
	}
	query := fmt.Sprintf("SELECT %s AS bucket, %s FROM %s %s GROUP BY 1", bucket, strings.Join(sums, ", "), s.table.From, where)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum %s by %s: %w", s.table.Name, group, err)
	}
	defer rows.Close()

	out := make(map[string][]float64)
	for rows.Next() {
		var key string
		values := make([]float64, len(fields))
		dest := make([]interface{}, 0, len(fields)+1)
		dest = append(dest, &key)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s sums: %w", s.table.Name, err)
		}
		out[key] = values
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s sums: %w", s.table.Name, err)
	}
	return out, nil
}
