package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// memSource evaluates predicates over an in-memory slice.
type memSource[T any] struct {
	rows []T
	get  func(T, listquery.Field) interface{}
	err  error

	mu    sync.Mutex
	finds int
}

func (m *memSource[T]) match(rec T, pred listquery.Predicate) bool {
	for _, c := range pred.Conditions() {
		v := m.get(rec, c.Field)
		switch c.Op {
		case listquery.OpEq:
			if fmt.Sprint(v) != fmt.Sprint(c.Value) {
				return false
			}
		case listquery.OpIn:
			if !containsString(c.Value.([]string), fmt.Sprint(v)) {
				return false
			}
		case listquery.OpGte:
			if v.(time.Time).Before(c.Value.(time.Time)) {
				return false
			}
		case listquery.OpLte:
			if v.(time.Time).After(c.Value.(time.Time)) {
				return false
			}
		case listquery.OpLt:
			if !v.(time.Time).Before(c.Value.(time.Time)) {
				return false
			}
		}
	}
	return true
}

func (m *memSource[T]) filtered(pred listquery.Predicate) []T {
	var out []T
	for _, rec := range m.rows {
		if m.match(rec, pred) {
			out = append(out, rec)
		}
	}
	return out
}

func (m *memSource[T]) Count(_ context.Context, pred listquery.Predicate) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.filtered(pred)), nil
}

func (m *memSource[T]) Find(_ context.Context, pred listquery.Predicate, order listquery.Sort, offset, limit int) ([]T, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.finds++
	m.mu.Unlock()
	rows := m.filtered(pred)
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(m.get(rows[i], order.Field), m.get(rows[j], order.Field))
		if c != 0 {
			if order.Desc {
				return c > 0
			}
			return c < 0
		}
		return fmt.Sprint(m.get(rows[i], listquery.FieldID)) < fmt.Sprint(m.get(rows[j], listquery.FieldID))
	})
	if offset >= len(rows) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (m *memSource[T]) CountBy(_ context.Context, pred listquery.Predicate, field listquery.Field) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[string]int{}
	for _, rec := range m.filtered(pred) {
		counts[listquery.BucketKey(fmt.Sprint(m.get(rec, field)))]++
	}
	return counts, nil
}

func (m *memSource[T]) SumBy(_ context.Context, pred listquery.Predicate, group listquery.Field, fields ...listquery.Field) (map[string][]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[string][]float64{}
	for _, rec := range m.filtered(pred) {
		key := listquery.BucketKey(fmt.Sprint(m.get(rec, group)))
		if out[key] == nil {
			out[key] = make([]float64, len(fields))
		}
		for i, f := range fields {
			out[key][i] += m.get(rec, f).(float64)
		}
	}
	return out, nil
}

func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case int:
		return av - b.(int)
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func attendanceField(r models.AttendanceRecord, f listquery.Field) interface{} {
	switch f {
	case listquery.FieldID:
		return r.ID
	case listquery.FieldTeacherID:
		return r.TeacherID
	case listquery.FieldStudentID:
		return r.StudentID
	case listquery.FieldSubject:
		return r.Subject
	case listquery.FieldStatus:
		return string(r.Status)
	case listquery.FieldDate:
		return r.Date
	case listquery.FieldClassGrade:
		return r.ClassGrade
	case listquery.FieldClassSection:
		return r.ClassSection
	}
	return nil
}

func submissionField(r models.SubmissionRecord, f listquery.Field) interface{} {
	switch f {
	case listquery.FieldID:
		return r.ID
	case listquery.FieldTeacherID:
		return r.TeacherID
	case listquery.FieldStudentID:
		return r.StudentID
	case listquery.FieldSubject:
		return r.Subject
	case listquery.FieldStatus:
		return string(r.Status)
	case listquery.FieldSubmittedAt:
		return r.SubmittedAt
	case listquery.FieldClassGrade:
		return r.ClassGrade
	case listquery.FieldClassSection:
		return r.ClassSection
	case listquery.FieldEarnedPoints:
		if r.EarnedPoints == nil {
			return 0.0
		}
		return *r.EarnedPoints
	case listquery.FieldTotalPoints:
		return r.TotalPoints
	}
	return nil
}

func contentField(r models.ContentRecord, f listquery.Field) interface{} {
	switch f {
	case listquery.FieldID:
		return r.ID
	case listquery.FieldTeacherID:
		return r.TeacherID
	case listquery.FieldSubject:
		return r.Subject
	case listquery.FieldType:
		return string(r.Type)
	case listquery.FieldCreatedAt:
		return r.CreatedAt
	case listquery.FieldClassGrade:
		return r.ClassGrade
	case listquery.FieldClassSection:
		return r.ClassSection
	}
	return nil
}

func scheduleField(r models.ScheduleRecord, f listquery.Field) interface{} {
	switch f {
	case listquery.FieldID:
		return r.ID
	case listquery.FieldTeacherID:
		return r.TeacherID
	case listquery.FieldSubject:
		return r.Subject
	case listquery.FieldDay:
		return r.Day
	case listquery.FieldDayIndex:
		return r.DayIndex
	case listquery.FieldClassGrade:
		return r.ClassGrade
	case listquery.FieldClassSection:
		return r.ClassSection
	}
	return nil
}

type fakeDirectory struct {
	classes  map[string]models.StudentClass
	children map[string][]string
	err      error
}

func (f *fakeDirectory) ClassOf(_ context.Context, studentID string) (*models.StudentClass, error) {
	if f.err != nil {
		return nil, f.err
	}
	class, ok := f.classes[studentID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &class, nil
}

func (f *fakeDirectory) ChildrenOf(_ context.Context, parentID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.children[parentID], nil
}

func newDirectory() *fakeDirectory {
	return &fakeDirectory{
		classes: map[string]models.StudentClass{
			"s1": {StudentID: "s1", FullName: "Budi", ClassGrade: "10", ClassSection: "A"},
			"s2": {StudentID: "s2", FullName: "Siti", ClassGrade: "11", ClassSection: "B"},
			"s3": {StudentID: "s3", FullName: "Rina", ClassGrade: "10", ClassSection: "A"},
		},
		children: map[string][]string{
			"p1": {"s1", "s2"},
			"p2": {"s3"},
		},
	}
}

// memCache is a CacheRepository storing JSON in a map.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.deleted = append(c.deleted, pattern)
	return nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.calls++
}

func claimsFor(role models.UserRole, id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: role, FullName: "User " + id}
}
