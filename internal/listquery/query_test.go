package listquery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type testRecord struct {
	ID        string
	TeacherID string
	Subject   string
	Status    string
	Date      time.Time
}

func (r testRecord) get(f Field) interface{} {
	switch f {
	case FieldID:
		return r.ID
	case FieldTeacherID:
		return r.TeacherID
	case FieldSubject:
		return r.Subject
	case FieldStatus:
		return r.Status
	case FieldDate:
		return r.Date
	}
	return nil
}

type memSource struct {
	rows     []testRecord
	err      error
	finds    int
	countErr error
}

func (m *memSource) match(pred Predicate) []testRecord {
	out := []testRecord{}
	for _, r := range m.rows {
		ok := true
		for _, c := range pred.Conditions() {
			if !matches(r.get(c.Field), c) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func matches(v interface{}, c Condition) bool {
	switch c.Op {
	case OpEq:
		return v == c.Value
	case OpIn:
		for _, candidate := range c.Value.([]string) {
			if v == candidate {
				return true
			}
		}
		return false
	case OpGte:
		return !v.(time.Time).Before(c.Value.(time.Time))
	case OpLte:
		return !v.(time.Time).After(c.Value.(time.Time))
	case OpLt:
		return v.(time.Time).Before(c.Value.(time.Time))
	}
	return false
}

func (m *memSource) Count(_ context.Context, pred Predicate) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.match(pred)), nil
}

func (m *memSource) Find(_ context.Context, pred Predicate, s Sort, offset, limit int) ([]testRecord, error) {
	m.finds++
	if m.err != nil {
		return nil, m.err
	}
	rows := m.match(pred)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Date.Equal(b.Date) {
			if s.Desc {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (m *memSource) CountBy(_ context.Context, pred Predicate, field Field) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]int{}
	for _, r := range m.match(pred) {
		out[BucketKey(fmt.Sprint(r.get(field)))]++
	}
	return out, nil
}

func (m *memSource) SumBy(context.Context, Predicate, Field, ...Field) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}

type testStats struct {
	Total          int
	ByStatus       map[string]int
	AttendanceRate string
}

func testAggregate(ctx context.Context, src Source[testRecord], pred Predicate) (testStats, error) {
	counts, err := src.CountBy(ctx, pred, FieldStatus)
	if err != nil {
		return testStats{}, err
	}
	byStatus := Breakdown(counts)
	total := SumCounts(byStatus)
	return testStats{Total: total, ByStatus: byStatus, AttendanceRate: AttendanceRate(byStatus["present"], total)}, nil
}

func attendanceFixture() *memSource {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	statuses := []string{"present", "present", "absent", "present", "late", "present", "absent", "present", "present", "present"}
	rows := make([]testRecord, len(statuses))
	for i, st := range statuses {
		subject := "Math"
		if i%2 == 1 {
			subject = "Art"
		}
		rows[i] = testRecord{
			ID:        fmt.Sprintf("rec-%02d", i),
			TeacherID: "teacher-1",
			Subject:   subject,
			Status:    st,
			// pairs share a date so ordering relies on the id tie-break
			Date: day.AddDate(0, 0, i/2),
		}
	}
	rows = append(rows, testRecord{ID: "other", TeacherID: "teacher-2", Subject: "Math", Status: "absent", Date: day})
	return &memSource{rows: rows}
}

var byDateDesc = Sort{Field: FieldDate, Desc: true}

func TestRunAttendanceScenario(t *testing.T) {
	src := attendanceFixture()
	pred := Scope(Eq(FieldTeacherID, "teacher-1"))

	res, err := Run(context.Background(), src, pred, byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	require.NoError(t, err)

	assert.Equal(t, "70%", res.Statistics.AttendanceRate)
	assert.Equal(t, 7, res.Statistics.ByStatus["present"])
	assert.Equal(t, 2, res.Statistics.ByStatus["absent"])
	assert.Equal(t, 1, res.Statistics.ByStatus["late"])
	assert.Equal(t, 0, res.Statistics.ByStatus["excused"])
	assert.Equal(t, 10, res.Pagination.TotalItems)
	assert.Len(t, res.Items, 10)
}

func TestRunStatisticsIndependentOfPaging(t *testing.T) {
	src := attendanceFixture()
	pred := Scope(Eq(FieldTeacherID, "teacher-1"))

	small, err := Run(context.Background(), src, pred, byDateDesc, PageRequest{Page: 2, Limit: 3}, testAggregate)
	require.NoError(t, err)
	large, err := Run(context.Background(), src, pred, byDateDesc, PageRequest{Page: 1, Limit: 50}, testAggregate)
	require.NoError(t, err)

	assert.Equal(t, large.Statistics, small.Statistics)
	assert.Len(t, small.Items, 3)
	assert.Len(t, large.Items, 10)
}

func TestRunIsIdempotent(t *testing.T) {
	src := attendanceFixture()
	pred := Scope(Eq(FieldTeacherID, "teacher-1"))
	req := PageRequest{Page: 2, Limit: 4}

	first, err := Run(context.Background(), src, pred, byDateDesc, req, testAggregate)
	require.NoError(t, err)
	second, err := Run(context.Background(), src, pred, byDateDesc, req, testAggregate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunPagesPartitionTheSet(t *testing.T) {
	src := attendanceFixture()
	pred := Scope(Eq(FieldTeacherID, "teacher-1"))

	seen := map[string]bool{}
	for page := 1; page <= 4; page++ {
		res, err := Run(context.Background(), src, pred, byDateDesc, PageRequest{Page: page, Limit: 3}, testAggregate)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Pagination.TotalPages)
		for _, item := range res.Items {
			assert.False(t, seen[item.ID], "duplicate %s", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestRunEmptyFilterMatchesAbsentFilter(t *testing.T) {
	src := attendanceFixture()
	scope := Scope(Eq(FieldTeacherID, "teacher-1"))

	withEmpty, err := testSpec.Build(scope, map[string]string{"subject": ""})
	require.NoError(t, err)
	res, err := Run(context.Background(), src, withEmpty, byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Pagination.TotalItems)

	math, err := testSpec.Build(scope, map[string]string{"subject": "Math"})
	require.NoError(t, err)
	res, err = Run(context.Background(), src, math, byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Pagination.TotalItems)
	assert.Equal(t, 5, res.Statistics.Total)
}

func TestRunOutOfRangePage(t *testing.T) {
	src := &memSource{rows: attendanceFixture().rows[:5]}

	res, err := Run(context.Background(), src, Unrestricted(), byDateDesc, PageRequest{Page: 3, Limit: 10}, testAggregate)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 1, res.Pagination.TotalPages)
	assert.Equal(t, 3, res.Pagination.CurrentPage)
	assert.Zero(t, src.finds)
}

func TestRunEmptySet(t *testing.T) {
	src := &memSource{}

	res, err := Run(context.Background(), src, Unrestricted(), byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pagination.TotalPages)
	assert.Equal(t, 0, res.Pagination.TotalItems)
	assert.Empty(t, res.Items)
	assert.Equal(t, "0%", res.Statistics.AttendanceRate)
}

func TestRunRequiresScope(t *testing.T) {
	_, err := Run(context.Background(), attendanceFixture(), Predicate{}, byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrScopeViolation))
}

func TestRunStoreFailureIsNotZeroStatistics(t *testing.T) {
	src := attendanceFixture()
	src.err = errors.New("connection refused")

	res, err := Run(context.Background(), src, Unrestricted(), byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	assert.Nil(t, res)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStoreUnavailable))
}

func TestRunCountFailure(t *testing.T) {
	src := attendanceFixture()
	src.countErr = errors.New("timeout")

	_, err := Run(context.Background(), src, Unrestricted(), byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStoreUnavailable))
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, attendanceFixture(), Unrestricted(), byDateDesc, PageRequest{Page: 1, Limit: 10}, testAggregate)
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestAllReturnsSortedRows(t *testing.T) {
	rows, err := All[testRecord](context.Background(), attendanceFixture(), Scope(Eq(FieldTeacherID, "teacher-1")), byDateDesc, 100)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, "rec-08", rows[0].ID)
	assert.Equal(t, "rec-09", rows[1].ID)
}
