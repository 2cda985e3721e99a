package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/models"
)

// List names, also used as cache namespaces and metric labels.
const (
	ListAttendance  = "attendance"
	ListContent     = "content"
	ListSubmissions = "submissions"
	ListSchedules   = "schedules"
)

// Query parameters shared by the lists.
const (
	ParamSubject      = "subject"
	ParamStatus       = "status"
	ParamType         = "type"
	ParamDay          = "day"
	ParamStartDate    = "startDate"
	ParamEndDate      = "endDate"
	ParamClassGrade   = "classGrade"
	ParamClassSection = "classSection"
)

type (
	AttendanceListService = ListService[models.AttendanceRecord, models.AttendanceStatistics]
	ContentListService    = ListService[models.ContentRecord, models.ContentStatistics]
	SubmissionListService = ListService[models.SubmissionRecord, models.SubmissionStatistics]
	ScheduleListService   = ListService[models.ScheduleRecord, models.ScheduleStatistics]
)

func classParams() []listquery.Param {
	return []listquery.Param{
		{Key: ParamClassGrade, Field: listquery.FieldClassGrade, Kind: listquery.KindText},
		{Key: ParamClassSection, Field: listquery.FieldClassSection, Kind: listquery.KindText},
	}
}

func dateParams(field listquery.Field) []listquery.Param {
	return []listquery.Param{
		{Key: ParamStartDate, Field: field, Kind: listquery.KindDateFrom},
		{Key: ParamEndDate, Field: field, Kind: listquery.KindDateTo},
	}
}

func specOf(groups ...[]listquery.Param) *listquery.Spec {
	var params []listquery.Param
	for _, group := range groups {
		params = append(params, group...)
	}
	return listquery.NewSpec(params...)
}

// AttendanceList describes the attendance list.
func AttendanceList() ListDefinition[models.AttendanceRecord, models.AttendanceStatistics] {
	return ListDefinition[models.AttendanceRecord, models.AttendanceStatistics]{
		Name: ListAttendance,
		Spec: specOf(
			[]listquery.Param{
				{Key: ParamSubject, Field: listquery.FieldSubject, Kind: listquery.KindText},
				{Key: ParamStatus, Field: listquery.FieldStatus, Kind: listquery.KindEnum, Allowed: models.AttendanceStatuses()},
			},
			dateParams(listquery.FieldDate),
			classParams(),
		),
		Sort:      listquery.Sort{Field: listquery.FieldDate, Desc: true},
		Audience:  AudienceStudent,
		Aggregate: aggregateAttendance,
	}
}

// ContentList describes the announcements, assignments and quizzes list.
func ContentList() ListDefinition[models.ContentRecord, models.ContentStatistics] {
	return ListDefinition[models.ContentRecord, models.ContentStatistics]{
		Name: ListContent,
		Spec: specOf(
			[]listquery.Param{
				{Key: ParamSubject, Field: listquery.FieldSubject, Kind: listquery.KindText},
				{Key: ParamType, Field: listquery.FieldType, Kind: listquery.KindEnum, Allowed: models.ContentTypes()},
			},
			dateParams(listquery.FieldCreatedAt),
			classParams(),
		),
		Sort:      listquery.Sort{Field: listquery.FieldCreatedAt, Desc: true},
		Audience:  AudienceClass,
		Aggregate: aggregateContent,
	}
}

// SubmissionList describes the submissions list.
func SubmissionList() ListDefinition[models.SubmissionRecord, models.SubmissionStatistics] {
	return ListDefinition[models.SubmissionRecord, models.SubmissionStatistics]{
		Name: ListSubmissions,
		Spec: specOf(
			[]listquery.Param{
				{Key: ParamSubject, Field: listquery.FieldSubject, Kind: listquery.KindText},
				{Key: ParamStatus, Field: listquery.FieldStatus, Kind: listquery.KindEnum, Allowed: models.SubmissionStatuses()},
			},
			dateParams(listquery.FieldSubmittedAt),
			classParams(),
		),
		Sort:      listquery.Sort{Field: listquery.FieldSubmittedAt, Desc: true},
		Audience:  AudienceStudent,
		Aggregate: aggregateSubmissions,
	}
}

// ScheduleList describes the weekly timetable list.
func ScheduleList() ListDefinition[models.ScheduleRecord, models.ScheduleStatistics] {
	return ListDefinition[models.ScheduleRecord, models.ScheduleStatistics]{
		Name: ListSchedules,
		Spec: specOf(
			[]listquery.Param{
				{Key: ParamSubject, Field: listquery.FieldSubject, Kind: listquery.KindText},
				{Key: ParamDay, Field: listquery.FieldDay, Kind: listquery.KindEnum, Allowed: models.Weekdays},
			},
			classParams(),
		),
		Sort:      listquery.Sort{Field: listquery.FieldDayIndex},
		Audience:  AudienceClass,
		Aggregate: aggregateSchedules,
	}
}

// countBy runs one CountBy per field concurrently.
func countBy[T any](ctx context.Context, src listquery.Source[T], pred listquery.Predicate, fields ...listquery.Field) ([]map[string]int, error) {
	out := make([]map[string]int, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		i, field := i, field
		g.Go(func() error {
			counts, err := src.CountBy(gctx, pred, field)
			if err != nil {
				return err
			}
			out[i] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func aggregateAttendance(ctx context.Context, src listquery.Source[models.AttendanceRecord], pred listquery.Predicate) (models.AttendanceStatistics, error) {
	groups, err := countBy(ctx, src, pred, listquery.FieldStatus, listquery.FieldSubject)
	if err != nil {
		return models.AttendanceStatistics{}, err
	}
	byStatus := listquery.Breakdown(groups[0])
	total := listquery.SumCounts(byStatus)
	present := byStatus[string(models.AttendanceStatusPresent)]
	return models.AttendanceStatistics{
		Total:          total,
		Present:        present,
		Absent:         byStatus[string(models.AttendanceStatusAbsent)],
		Late:           byStatus[string(models.AttendanceStatusLate)],
		Excused:        byStatus[string(models.AttendanceStatusExcused)],
		AttendanceRate: listquery.AttendanceRate(present, total),
		BySubject:      listquery.Breakdown(groups[1]),
	}, nil
}

func aggregateContent(ctx context.Context, src listquery.Source[models.ContentRecord], pred listquery.Predicate) (models.ContentStatistics, error) {
	groups, err := countBy(ctx, src, pred, listquery.FieldType, listquery.FieldSubject)
	if err != nil {
		return models.ContentStatistics{}, err
	}
	byType := listquery.StatusBreakdown(groups[0], models.ContentTypes()...)
	return models.ContentStatistics{
		Total:     listquery.SumCounts(byType),
		ByType:    byType,
		BySubject: listquery.Breakdown(groups[1]),
	}, nil
}

func aggregateSubmissions(ctx context.Context, src listquery.Source[models.SubmissionRecord], pred listquery.Predicate) (models.SubmissionStatistics, error) {
	var (
		groups []map[string]int
		sums   map[string][]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = countBy(gctx, src, pred, listquery.FieldStatus, listquery.FieldSubject)
		return err
	})
	g.Go(func() error {
		graded := pred.And(listquery.Eq(listquery.FieldStatus, string(models.SubmissionStatusGraded)))
		var err error
		sums, err = src.SumBy(gctx, graded, listquery.FieldSubject, listquery.FieldEarnedPoints, listquery.FieldTotalPoints)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.SubmissionStatistics{}, err
	}

	points := make(map[string]listquery.Sums, len(sums))
	for subject, values := range sums {
		if len(values) == 2 {
			points[subject] = listquery.Sums{Earned: values[0], Total: values[1]}
		}
	}
	byStatus := listquery.StatusBreakdown(groups[0], models.SubmissionStatuses()...)
	return models.SubmissionStatistics{
		Total:            listquery.SumCounts(byStatus),
		ByStatus:         byStatus,
		BySubject:        listquery.Breakdown(groups[1]),
		AverageBySubject: listquery.GradeAverages(points),
	}, nil
}

func aggregateSchedules(ctx context.Context, src listquery.Source[models.ScheduleRecord], pred listquery.Predicate) (models.ScheduleStatistics, error) {
	groups, err := countBy(ctx, src, pred, listquery.FieldDay, listquery.FieldSubject)
	if err != nil {
		return models.ScheduleStatistics{}, err
	}
	byDay := listquery.Breakdown(groups[0])
	return models.ScheduleStatistics{
		Total:     listquery.SumCounts(byDay),
		ByDay:     byDay,
		BySubject: listquery.Breakdown(groups[1]),
	}, nil
}
