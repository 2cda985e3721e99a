package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type listService[T any, S any] interface {
	FilterKeys() []string
	List(ctx context.Context, claims *models.JWTClaims, req service.ListRequest) (*listquery.Result[T, S], bool, error)
}

// ListHandler serves the four portal lists.
type ListHandler struct {
	attendance  listService[models.AttendanceRecord, models.AttendanceStatistics]
	content     listService[models.ContentRecord, models.ContentStatistics]
	submissions listService[models.SubmissionRecord, models.SubmissionStatistics]
	schedules   listService[models.ScheduleRecord, models.ScheduleStatistics]
}

// NewListHandler constructs the handler.
func NewListHandler(
	attendance listService[models.AttendanceRecord, models.AttendanceStatistics],
	content listService[models.ContentRecord, models.ContentStatistics],
	submissions listService[models.SubmissionRecord, models.SubmissionStatistics],
	schedules listService[models.ScheduleRecord, models.ScheduleStatistics],
) *ListHandler {
	return &ListHandler{attendance: attendance, content: content, submissions: submissions, schedules: schedules}
}

// Attendance godoc
// @Summary List attendance records with statistics
// @Tags Lists
// @Produce json
// @Param subject query string false "Subject"
// @Param status query string false "present, absent, late or excused"
// @Param startDate query string false "From date (YYYY-MM-DD)"
// @Param endDate query string false "To date (YYYY-MM-DD), inclusive"
// @Param classGrade query string false "Class grade"
// @Param classSection query string false "Class section"
// @Param studentId query string false "Linked student (parents only)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param itemsPerPage query int false "Page size, used when limit is absent"
// @Success 200 {object} response.ListBody
// @Router /attendance [get]
func (h *ListHandler) Attendance(c *gin.Context) {
	serveList(c, h.attendance)
}

// Content godoc
// @Summary List announcements, assignments and quizzes
// @Tags Lists
// @Produce json
// @Param subject query string false "Subject"
// @Param type query string false "announcement, assignment or quiz"
// @Param startDate query string false "Created from (YYYY-MM-DD)"
// @Param endDate query string false "Created to (YYYY-MM-DD), inclusive"
// @Param studentId query string false "Linked student (parents only)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param itemsPerPage query int false "Page size, used when limit is absent"
// @Success 200 {object} response.ListBody
// @Router /content [get]
func (h *ListHandler) Content(c *gin.Context) {
	serveList(c, h.content)
}

// Submissions godoc
// @Summary List submissions with grade averages
// @Tags Lists
// @Produce json
// @Param subject query string false "Subject"
// @Param status query string false "submitted, late or graded"
// @Param startDate query string false "Submitted from (YYYY-MM-DD)"
// @Param endDate query string false "Submitted to (YYYY-MM-DD), inclusive"
// @Param studentId query string false "Linked student (parents only)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param itemsPerPage query int false "Page size, used when limit is absent"
// @Success 200 {object} response.ListBody
// @Router /submissions [get]
func (h *ListHandler) Submissions(c *gin.Context) {
	serveList(c, h.submissions)
}

// Schedules godoc
// @Summary List the weekly timetable
// @Tags Lists
// @Produce json
// @Param subject query string false "Subject"
// @Param day query string false "monday to sunday"
// @Param studentId query string false "Linked student (parents only)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param itemsPerPage query int false "Page size, used when limit is absent"
// @Success 200 {object} response.ListBody
// @Router /schedules [get]
func (h *ListHandler) Schedules(c *gin.Context) {
	serveList(c, h.schedules)
}

func serveList[T any, S any](c *gin.Context, svc listService[T, S]) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, cacheHit, err := svc.List(c.Request.Context(), claims, listRequest(c, svc.FilterKeys()))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.List(c, response.ListBody{
		Items:      result.Items,
		Pagination: result.Pagination,
		Statistics: result.Statistics,
		Meta:       middleware.ExtractMeta(c),
	})
}
