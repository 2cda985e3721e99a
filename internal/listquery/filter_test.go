package listquery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

var testSpec = NewSpec(
	Param{Key: "subject", Field: FieldSubject, Kind: KindText},
	Param{Key: "status", Field: FieldStatus, Kind: KindEnum, Allowed: []string{"present", "absent", "late", "excused"}},
	Param{Key: "startDate", Field: FieldDate, Kind: KindDateFrom},
	Param{Key: "endDate", Field: FieldDate, Kind: KindDateTo},
)

func TestSpecBuildAndsPresentFilters(t *testing.T) {
	scope := Scope(Eq(FieldTeacherID, "teacher-1"))

	pred, err := testSpec.Build(scope, map[string]string{"subject": "Math", "status": "Present"})
	require.NoError(t, err)

	conds := pred.Conditions()
	require.Len(t, conds, 3)
	assert.Equal(t, Eq(FieldTeacherID, "teacher-1"), conds[0])
	assert.Equal(t, Eq(FieldSubject, "Math"), conds[1])
	assert.Equal(t, Eq(FieldStatus, "present"), conds[2])
	assert.True(t, pred.Scoped())
}

func TestSpecBuildEmptyValueIsAbsent(t *testing.T) {
	scope := Scope(Eq(FieldTeacherID, "teacher-1"))

	withEmpty, err := testSpec.Build(scope, map[string]string{"subject": "", "status": "  "})
	require.NoError(t, err)
	without, err := testSpec.Build(scope, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, without.Conditions(), withEmpty.Conditions())
	assert.Len(t, without.Conditions(), 1)
}

func TestSpecBuildIgnoresUnknownKeys(t *testing.T) {
	pred, err := testSpec.Build(Unrestricted(), map[string]string{"teacherId": "someone-else", "foo": "bar"})
	require.NoError(t, err)
	assert.Empty(t, pred.Conditions())
}

func TestSpecBuildRejectsUnscopedPredicate(t *testing.T) {
	_, err := testSpec.Build(Predicate{}, map[string]string{"subject": "Math"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrScopeViolation))
}

func TestSpecBuildRejectsUnknownStatus(t *testing.T) {
	_, err := testSpec.Build(Unrestricted(), map[string]string{"status": "sleeping"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidFilter))
}

func TestSpecBuildRejectsMalformedDate(t *testing.T) {
	_, err := testSpec.Build(Unrestricted(), map[string]string{"startDate": "2024-13-45"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidFilter))
}

func TestSpecBuildDateRangeInclusive(t *testing.T) {
	pred, err := testSpec.Build(Unrestricted(), map[string]string{"startDate": "2024-03-01", "endDate": "2024-03-31"})
	require.NoError(t, err)

	conds := pred.Conditions()
	require.Len(t, conds, 2)
	assert.Equal(t, OpGte, conds[0].Op)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), conds[0].Value)
	assert.Equal(t, OpLt, conds[1].Op)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), conds[1].Value)
}

func TestSpecBuildHalfOpenRange(t *testing.T) {
	pred, err := testSpec.Build(Unrestricted(), map[string]string{"endDate": "2024-03-31T12:00:00Z"})
	require.NoError(t, err)

	conds := pred.Conditions()
	require.Len(t, conds, 1)
	assert.Equal(t, OpLte, conds[0].Op)
}

func TestSpecBuildSameDayRange(t *testing.T) {
	_, err := testSpec.Build(Unrestricted(), map[string]string{"startDate": "2024-03-05T10:00:00Z", "endDate": "2024-03-05"})
	require.NoError(t, err)
}

func TestSpecBuildRejectsInvertedRange(t *testing.T) {
	_, err := testSpec.Build(Unrestricted(), map[string]string{"startDate": "2024-03-10", "endDate": "2024-03-01"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidFilter))
}

func TestPredicateAndDoesNotAlias(t *testing.T) {
	base := Scope(Eq(FieldStudentID, "s1"))
	a := base.And(Eq(FieldSubject, "Math"))
	b := base.And(Eq(FieldSubject, "Art"))

	assert.Len(t, base.Conditions(), 1)
	assert.Equal(t, "Math", a.Conditions()[1].Value)
	assert.Equal(t, "Art", b.Conditions()[1].Value)
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestPredicateKeyQuotesValues(t *testing.T) {
	scope := Scope(Eq(FieldTeacherID, "teacher-1"))

	separate, err := testSpec.Build(scope, map[string]string{"subject": "Math", "status": "present"})
	require.NoError(t, err)
	joined, err := testSpec.Build(scope, map[string]string{"subject": "Math&status=present"})
	require.NoError(t, err)

	assert.NotEqual(t, separate.Key(), joined.Key())
	assert.Equal(t, `teacher_id="teacher-1"&subject="Math"&status="present"`, separate.Key())
}

func TestPredicateKeyKeepsFractionalSeconds(t *testing.T) {
	whole := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := Unrestricted().And(Condition{Field: FieldDate, Op: OpGte, Value: whole})
	b := Unrestricted().And(Condition{Field: FieldDate, Op: OpGte, Value: whole.Add(500 * time.Millisecond)})

	assert.NotEqual(t, a.Key(), b.Key())
}
