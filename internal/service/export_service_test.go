package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

type stubAttendanceReader struct {
	rows    []models.AttendanceRecord
	stats   models.AttendanceStatistics
	err     error
	lastMax int
}

func (s *stubAttendanceReader) All(ctx context.Context, claims *models.JWTClaims, req ListRequest, max int) ([]models.AttendanceRecord, models.AttendanceStatistics, error) {
	s.lastMax = max
	return s.rows, s.stats, s.err
}

type failingPDF struct{}

func (failingPDF) Render(export.Dataset, string) ([]byte, error) {
	return nil, errors.New("font missing")
}

func exportFixture() *stubAttendanceReader {
	note := "doctor's letter"
	return &stubAttendanceReader{
		rows: []models.AttendanceRecord{
			{ID: "a1", StudentName: "Budi", Subject: "Math", ClassGrade: "10", ClassSection: "A", Date: day(4), Status: models.AttendanceStatusExcused, Notes: &note},
			{ID: "a2", StudentName: "Budi", Subject: "Math", ClassGrade: "10", ClassSection: "A", Date: day(3), Status: models.AttendanceStatusPresent},
		},
		stats: models.AttendanceStatistics{Total: 3, Present: 2, Excused: 1, AttendanceRate: "67%"},
	}
}

func TestExportServiceCSV(t *testing.T) {
	reader := exportFixture()
	svc := NewExportService(reader, 2, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, time.March, 5, 7, 30, 0, 0, time.UTC) }

	file, err := svc.ExportAttendance(context.Background(), claimsFor(models.RoleTeacher, "t1"), ListRequest{}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, reader.lastMax)
	assert.Equal(t, "attendance-20240305-073000.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, 2, file.Rows)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Student,Subject,Class,Status,Notes", lines[0])
	assert.Equal(t, "2024-03-04,Budi,Math,10 A,excused,doctor's letter", lines[1])
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(exportFixture(), 0, nil, nil, nil)

	file, err := svc.ExportAttendance(context.Background(), claimsFor(models.RoleAdmin, "a1"), ListRequest{}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceErrors(t *testing.T) {
	ctx := context.Background()
	claims := claimsFor(models.RoleAdmin, "a1")

	svc := NewExportService(exportFixture(), 0, nil, nil, nil)
	_, err := svc.ExportAttendance(ctx, claims, ListRequest{}, "xlsx")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	reader := exportFixture()
	reader.err = appErrors.Clone(appErrors.ErrInvalidFilter, "invalid startDate")
	svc = NewExportService(reader, 0, nil, nil, nil)
	_, err = svc.ExportAttendance(ctx, claims, ListRequest{}, "csv")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidFilter))

	svc = NewExportService(exportFixture(), 0, nil, nil, failingPDF{})
	_, err = svc.ExportAttendance(ctx, claims, ListRequest{}, "pdf")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal))
}
