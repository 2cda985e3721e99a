// Package listquery implements the paginated, filtered and aggregated list
// contract shared by every list endpoint: a filter spec turns request
// parameters into a scoped predicate, a source evaluates it, the pager slices
// one page and the aggregator derives statistics from the whole filtered set.
package listquery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// Field names a logical record field. Sources map fields to columns or keys.
type Field string

const (
	FieldID           Field = "id"
	FieldTeacherID    Field = "teacher_id"
	FieldStudentID    Field = "student_id"
	FieldSubject      Field = "subject"
	FieldStatus       Field = "status"
	FieldType         Field = "type"
	FieldDate         Field = "date"
	FieldClassGrade   Field = "class_grade"
	FieldClassSection Field = "class_section"
	FieldDay          Field = "day"
	FieldDayIndex     Field = "day_index"
	FieldSubmittedAt  Field = "submitted_at"
	FieldCreatedAt    Field = "created_at"
	FieldEarnedPoints Field = "earned_points"
	FieldTotalPoints  Field = "total_points"
)

// Op is a comparison operator understood by every source.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGte
	OpLte
	OpLt
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpIn:
		return "IN"
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	case OpLt:
		return "<"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Condition is a single field comparison. For OpIn the value is a []string.
type Condition struct {
	Field Field
	Op    Op
	Value interface{}
}

// Eq builds an equality condition.
func Eq(field Field, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// In builds a membership condition.
func In(field Field, values []string) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

// Predicate is the conjunction of its conditions. Only predicates derived
// from Scope or Unrestricted may reach a source.
type Predicate struct {
	conds  []Condition
	scoped bool
}

// Scope returns a predicate restricted to the caller's visible records.
func Scope(conds ...Condition) Predicate {
	return Predicate{conds: append([]Condition(nil), conds...), scoped: true}
}

// Unrestricted is the explicit scope of school-wide viewers.
func Unrestricted() Predicate {
	return Predicate{scoped: true}
}

// And returns a new predicate with the extra conditions appended.
func (p Predicate) And(conds ...Condition) Predicate {
	out := make([]Condition, 0, len(p.conds)+len(conds))
	out = append(out, p.conds...)
	out = append(out, conds...)
	return Predicate{conds: out, scoped: p.scoped}
}

// Conditions returns a copy of the conditions.
func (p Predicate) Conditions() []Condition {
	return append([]Condition(nil), p.conds...)
}

// Scoped reports whether the predicate carries a server-side scope.
func (p Predicate) Scoped() bool {
	return p.scoped
}

// Key renders a stable textual form, used for cache keys. Values are quoted
// so no filter value can reproduce the separators of another predicate.
func (p Predicate) Key() string {
	parts := make([]string, len(p.conds))
	for i, c := range p.conds {
		parts[i] = fmt.Sprintf("%s%s%s", c.Field, c.Op, formatValue(c.Value))
	}
	return strings.Join(parts, "&")
}

func formatValue(v interface{}) string {
	switch typed := v.(type) {
	case time.Time:
		return strconv.Quote(typed.UTC().Format(time.RFC3339Nano))
	case []string:
		quoted := make([]string, len(typed))
		for i, s := range typed {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ",") + "]"
	default:
		return strconv.Quote(fmt.Sprint(typed))
	}
}

// Kind tells the spec how to parse a parameter value.
type Kind int

const (
	KindText Kind = iota
	KindEnum
	KindDateFrom
	KindDateTo
)

// Param binds a request key to a record field.
type Param struct {
	Key     string
	Field   Field
	Kind    Kind
	Allowed []string
}

// Spec is the ordered set of parameters recognised by one list type.
type Spec struct {
	params []Param
}

// NewSpec builds a spec. Parameter order fixes condition order.
func NewSpec(params ...Param) *Spec {
	return &Spec{params: append([]Param(nil), params...)}
}

// Keys lists recognised request keys.
func (s *Spec) Keys() []string {
	keys := make([]string, len(s.params))
	for i, p := range s.params {
		keys[i] = p.Key
	}
	return keys
}

const dateLayout = "2006-01-02"

// Build ANDs every present, non-empty recognised parameter onto scope.
// Unknown keys are ignored. Values are trimmed; an empty value is the same as
// an absent key.
func (s *Spec) Build(scope Predicate, values map[string]string) (Predicate, error) {
	if !scope.Scoped() {
		return Predicate{}, appErrors.ErrScopeViolation
	}
	pred := scope
	var from *time.Time
	var to *Condition
	for _, param := range s.params {
		raw := strings.TrimSpace(values[param.Key])
		if raw == "" {
			continue
		}
		switch param.Kind {
		case KindText:
			pred = pred.And(Eq(param.Field, raw))
		case KindEnum:
			value := strings.ToLower(raw)
			if !contains(param.Allowed, value) {
				return Predicate{}, appErrors.Clone(appErrors.ErrInvalidFilter, fmt.Sprintf("%s must be one of %s", param.Key, strings.Join(param.Allowed, ", ")))
			}
			pred = pred.And(Eq(param.Field, value))
		case KindDateFrom:
			start, _, err := parseDate(raw)
			if err != nil {
				return Predicate{}, appErrors.Wrap(err, appErrors.ErrInvalidFilter.Code, appErrors.ErrInvalidFilter.Status, fmt.Sprintf("invalid %s", param.Key))
			}
			from = &start
			pred = pred.And(Condition{Field: param.Field, Op: OpGte, Value: start})
		case KindDateTo:
			end, dateOnly, err := parseDate(raw)
			if err != nil {
				return Predicate{}, appErrors.Wrap(err, appErrors.ErrInvalidFilter.Code, appErrors.ErrInvalidFilter.Status, fmt.Sprintf("invalid %s", param.Key))
			}
			cond := Condition{Field: param.Field, Op: OpLte, Value: end}
			if dateOnly {
				// a bare date covers that whole day
				cond = Condition{Field: param.Field, Op: OpLt, Value: end.AddDate(0, 0, 1)}
			}
			to = &cond
			pred = pred.And(cond)
		}
	}
	if from != nil && to != nil && !withinUpper(*from, *to) {
		return Predicate{}, appErrors.Clone(appErrors.ErrInvalidFilter, "startDate must not be after endDate")
	}
	return pred, nil
}

func withinUpper(t time.Time, upper Condition) bool {
	bound := upper.Value.(time.Time)
	if upper.Op == OpLt {
		return t.Before(bound)
	}
	return !t.After(bound)
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", raw)
	}
	return t.UTC(), false, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
