package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type attendanceWriter interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
}

type listInvalidator interface {
	Invalidate(ctx context.Context)
}

// RecordAttendanceRequest marks one student for one lesson day. TeacherID is
// only read from admins; teachers always record under their own id.
type RecordAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	TeacherID string  `json:"teacher_id"`
	Subject   string  `json:"subject" validate:"required,max=100"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// AttendanceService records attendance marks.
type AttendanceService struct {
	repo      attendanceWriter
	students  studentDirectory
	list      listInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service. list may be nil.
func NewAttendanceService(repo attendanceWriter, students studentDirectory, list listInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, students: students, list: list, validator: validate, logger: logger}
	registerValidation(svc.validator, logger, "attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// Record stores or replaces a mark and returns the stored record.
func (s *AttendanceService) Record(ctx context.Context, claims *models.JWTClaims, req RecordAttendanceRequest) (*models.AttendanceRecord, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	teacherID := claims.UserID
	if claims.Role.SchoolWide() {
		teacherID = strings.TrimSpace(req.TeacherID)
		if teacherID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher_id is required")
		}
	} else if claims.Role != models.RoleTeacher {
		return nil, appErrors.ErrForbidden
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance date")
	}

	student, err := s.students.ClassOf(ctx, req.StudentID)
	if err != nil {
		return nil, storeOrTyped(err, "failed to load student")
	}

	record := &models.AttendanceRecord{
		StudentID:    student.StudentID,
		StudentName:  student.FullName,
		TeacherID:    teacherID,
		Subject:      strings.TrimSpace(req.Subject),
		ClassGrade:   student.ClassGrade,
		ClassSection: student.ClassSection,
		Date:         date.UTC(),
		Status:       models.AttendanceStatus(strings.ToLower(req.Status)),
		Notes:        req.Notes,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, storeOrTyped(err, "failed to record attendance")
	}
	s.logger.Info("attendance recorded",
		zap.String("attendance_id", record.ID),
		zap.String("student_id", record.StudentID),
		zap.String("status", string(record.Status)),
	)

	if s.list != nil {
		s.list.Invalidate(ctx)
	}
	return record, nil
}

// registerValidation adds a custom tag to v. A rejected registration is a
// programming error, so it stops the process at construction.
func registerValidation(v *validator.Validate, logger *zap.Logger, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		logger.Fatal("register validation", zap.String("tag", tag), zap.Error(err))
	}
}
