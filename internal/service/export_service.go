package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type attendanceReader interface {
	All(ctx context.Context, claims *models.JWTClaims, req ListRequest, max int) ([]models.AttendanceRecord, models.AttendanceStatistics, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders the caller's filtered attendance as CSV or PDF.
type ExportService struct {
	attendance attendanceReader
	csv        csvRenderer
	pdf        pdfRenderer
	maxRows    int
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the default exporters.
func NewExportService(attendance attendanceReader, maxRows int, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		attendance: attendance,
		csv:        csv,
		pdf:        pdf,
		maxRows:    maxRows,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var attendanceHeaders = []string{"Date", "Student", "Subject", "Class", "Status", "Notes"}

// ExportAttendance renders every record the attendance list would return for
// the same request, up to the configured row cap.
func (s *ExportService) ExportAttendance(ctx context.Context, claims *models.JWTClaims, req ListRequest, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, stats, err := s.attendance.All(ctx, claims, req, s.maxRows)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: attendanceHeaders,
		Summary: []string{
			fmt.Sprintf("Records: %d", stats.Total),
			fmt.Sprintf("Present: %d  Absent: %d  Late: %d  Excused: %d", stats.Present, stats.Absent, stats.Late, stats.Excused),
			fmt.Sprintf("Attendance rate: %s", stats.AttendanceRate),
		},
		Rows: make([]map[string]string, 0, len(rows)),
	}
	if stats.Total > len(rows) {
		dataset.Summary = append(dataset.Summary, fmt.Sprintf("Showing the first %d records", len(rows)))
	}
	for _, row := range rows {
		notes := ""
		if row.Notes != nil {
			notes = *row.Notes
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    row.Date.Format("2006-01-02"),
			"Student": row.StudentName,
			"Subject": row.Subject,
			"Class":   strings.TrimSpace(row.ClassGrade + " " + row.ClassSection),
			"Status":  string(row.Status),
			"Notes":   notes,
		})
	}

	stamp := s.now().Format("20060102-150405")
	file := &ExportFile{Rows: len(rows)}
	switch format {
	case FormatPDF:
		file.Data, err = s.pdf.Render(dataset, "Attendance report")
		file.ContentType = "application/pdf"
		file.Filename = fmt.Sprintf("attendance-%s.pdf", stamp)
	default:
		file.Data, err = s.csv.Render(dataset)
		file.ContentType = "text/csv"
		file.Filename = fmt.Sprintf("attendance-%s.csv", stamp)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("attendance exported", zap.String("format", format), zap.Int("rows", file.Rows))
	return file, nil
}
