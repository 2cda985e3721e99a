package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type attendanceRecorder interface {
	Record(ctx context.Context, claims *models.JWTClaims, req service.RecordAttendanceRequest) (*models.AttendanceRecord, error)
}

type attendanceExporter interface {
	ExportAttendance(ctx context.Context, claims *models.JWTClaims, req service.ListRequest, format string) (*service.ExportFile, error)
}

// AttendanceHandler records attendance and exports the attendance list.
type AttendanceHandler struct {
	recorder   attendanceRecorder
	exporter   attendanceExporter
	filterKeys []string
}

// NewAttendanceHandler constructs the handler. filterKeys are the attendance
// list filters, honoured by the export as well.
func NewAttendanceHandler(recorder attendanceRecorder, exporter attendanceExporter, filterKeys []string) *AttendanceHandler {
	return &AttendanceHandler{recorder: recorder, exporter: exporter, filterKeys: filterKeys}
}

// Record godoc
// @Summary Record an attendance mark
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance mark"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.recorder.Record(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Export godoc
// @Summary Export the filtered attendance list
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "present, absent, late or excused"
// @Param startDate query string false "From date (YYYY-MM-DD)"
// @Param endDate query string false "To date (YYYY-MM-DD), inclusive"
// @Param studentId query string false "Linked student (parents only)"
// @Success 200 {file} file
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	file, err := h.exporter.ExportAttendance(c.Request.Context(), claims, listRequest(c, h.filterKeys), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
