package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type fakeListSrv[T any, S any] struct {
	keys    []string
	result  *listquery.Result[T, S]
	hit     bool
	err     error
	lastReq service.ListRequest
}

func (f *fakeListSrv[T, S]) FilterKeys() []string {
	return f.keys
}

func (f *fakeListSrv[T, S]) List(_ context.Context, _ *models.JWTClaims, req service.ListRequest) (*listquery.Result[T, S], bool, error) {
	f.lastReq = req
	return f.result, f.hit, f.err
}

type listHandlerFixture struct {
	attendance  *fakeListSrv[models.AttendanceRecord, models.AttendanceStatistics]
	content     *fakeListSrv[models.ContentRecord, models.ContentStatistics]
	submissions *fakeListSrv[models.SubmissionRecord, models.SubmissionStatistics]
	schedules   *fakeListSrv[models.ScheduleRecord, models.ScheduleStatistics]
	handler     *ListHandler
}

func newListHandlerFixture() *listHandlerFixture {
	f := &listHandlerFixture{
		attendance:  &fakeListSrv[models.AttendanceRecord, models.AttendanceStatistics]{keys: []string{"subject", "status", "startDate", "endDate"}},
		content:     &fakeListSrv[models.ContentRecord, models.ContentStatistics]{},
		submissions: &fakeListSrv[models.SubmissionRecord, models.SubmissionStatistics]{},
		schedules:   &fakeListSrv[models.ScheduleRecord, models.ScheduleStatistics]{},
	}
	f.handler = NewListHandler(f.attendance, f.content, f.submissions, f.schedules)
	return f
}

func listContext(target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestListHandlerAttendance(t *testing.T) {
	f := newListHandlerFixture()
	f.attendance.result = &listquery.Result[models.AttendanceRecord, models.AttendanceStatistics]{
		Items:      []models.AttendanceRecord{{ID: "a1", Status: models.AttendanceStatusPresent}},
		Pagination: listquery.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 21, ItemsPerPage: 10},
		Statistics: models.AttendanceStatistics{Total: 21, Present: 15, AttendanceRate: "71%"},
	}
	f.attendance.hit = true

	c, rec := listContext("/attendance?status=present&page=2&limit=10&studentId=s2&sort=date&startDate=2024-03-01", &models.JWTClaims{UserID: "p1", Role: models.RoleParent})
	f.handler.Attendance(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get(middleware.CacheHeader))
	assert.Equal(t, service.ListRequest{
		Filters: map[string]string{"status": "present", "startDate": "2024-03-01"},
		Page:    "2",
		Limit:   "10",
		ChildID: "s2",
	}, f.attendance.lastReq)

	var body struct {
		Items      []map[string]interface{} `json:"items"`
		Pagination listquery.Pagination     `json:"pagination"`
		Statistics map[string]interface{}   `json:"statistics"`
		Meta       map[string]interface{}   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Items, 1)
	assert.Equal(t, 21, body.Pagination.TotalItems)
	assert.Equal(t, "71%", body.Statistics["attendanceRate"])
	assert.Equal(t, true, body.Meta["cache_hit"])
}

func TestListHandlerItemsPerPageFallback(t *testing.T) {
	f := newListHandlerFixture()
	f.content.result = &listquery.Result[models.ContentRecord, models.ContentStatistics]{Items: []models.ContentRecord{}}
	claims := &models.JWTClaims{UserID: "s1", Role: models.RoleStudent}

	c, _ := listContext("/content?itemsPerPage=25", claims)
	f.handler.Content(c)
	assert.Equal(t, "25", f.content.lastReq.Limit)

	c, _ = listContext("/content?limit=50&itemsPerPage=25", claims)
	f.handler.Content(c)
	assert.Equal(t, "50", f.content.lastReq.Limit)
}

func TestListHandlerEmptyPage(t *testing.T) {
	f := newListHandlerFixture()
	f.schedules.result = &listquery.Result[models.ScheduleRecord, models.ScheduleStatistics]{
		Items:      []models.ScheduleRecord{},
		Pagination: listquery.Pagination{CurrentPage: 1, ItemsPerPage: 10},
	}

	c, rec := listContext("/schedules", &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})
	f.handler.Schedules(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get(middleware.CacheHeader))
	assert.Contains(t, rec.Body.String(), `"items":[]`)
	assert.Contains(t, rec.Body.String(), `"totalPages":0`)
}

func TestListHandlerErrors(t *testing.T) {
	f := newListHandlerFixture()

	c, rec := listContext("/content", nil)
	f.handler.Content(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.submissions.err = appErrors.Clone(appErrors.ErrInvalidFilter, "status must be one of submitted, late, graded")
	c, rec = listContext("/submissions?status=lost", &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})
	f.handler.Submissions(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_FILTER")

	f.submissions.err = appErrors.ErrStoreUnavailable
	c, rec = listContext("/submissions", &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})
	f.handler.Submissions(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
