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

type submissionRepository interface {
	Create(ctx context.Context, submission *models.SubmissionRecord) error
	FindByID(ctx context.Context, id string) (*models.SubmissionRecord, error)
	Grade(ctx context.Context, submission *models.SubmissionRecord) error
}

// SubmitWorkRequest hands in an answer to an assignment or quiz.
type SubmitWorkRequest struct {
	ContentID string `json:"content_id" validate:"required"`
	Answer    string `json:"answer" validate:"required,max=20000"`
}

// GradeSubmissionRequest grades a submission out of its content's points.
type GradeSubmissionRequest struct {
	EarnedPoints *float64 `json:"earned_points" validate:"required,gte=0"`
	Feedback     *string  `json:"feedback" validate:"omitempty,max=2000"`
}

// SubmissionService handles handing in and grading work.
type SubmissionService struct {
	repo      submissionRepository
	contents  contentRepository
	students  studentDirectory
	list      listInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionService constructs the service. list may be nil.
func NewSubmissionService(repo submissionRepository, contents contentRepository, students studentDirectory, list listInvalidator, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		repo:      repo,
		contents:  contents,
		students:  students,
		list:      list,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit records the calling student's answer. Work handed in after the due
// date is stored as late.
func (s *SubmissionService) Submit(ctx context.Context, claims *models.JWTClaims, req SubmitWorkRequest) (*models.SubmissionRecord, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students submit work")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	content, err := s.contents.FindByID(ctx, req.ContentID)
	if err != nil {
		return nil, storeOrTyped(err, "failed to load content")
	}
	if !content.Type.Gradable() || content.TotalPoints == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "announcements do not accept submissions")
	}
	student, err := s.students.ClassOf(ctx, claims.UserID)
	if err != nil {
		return nil, storeOrTyped(err, "failed to load student")
	}
	if student.ClassGrade != content.ClassGrade || student.ClassSection != content.ClassSection {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "content is not addressed to your class")
	}

	submittedAt := s.now()
	status := models.SubmissionStatusSubmitted
	if content.DueDate != nil && submittedAt.After(*content.DueDate) {
		status = models.SubmissionStatusLate
	}
	submission := &models.SubmissionRecord{
		ContentID:    content.ID,
		ContentTitle: content.Title,
		StudentID:    student.StudentID,
		StudentName:  student.FullName,
		TeacherID:    content.TeacherID,
		Subject:      content.Subject,
		ClassGrade:   content.ClassGrade,
		ClassSection: content.ClassSection,
		Status:       status,
		Answer:       req.Answer,
		TotalPoints:  *content.TotalPoints,
		SubmittedAt:  submittedAt,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, storeOrTyped(err, "failed to store submission")
	}
	s.logger.Info("work submitted", zap.String("submission_id", submission.ID), zap.String("status", string(status)))

	if s.list != nil {
		s.list.Invalidate(ctx)
	}
	return submission, nil
}

// Grade records the points earned. Only the teacher who owns the content, or
// an admin, may grade, and points may not exceed the content's total.
func (s *SubmissionService) Grade(ctx context.Context, claims *models.JWTClaims, id string, req GradeSubmissionRequest) (*models.SubmissionRecord, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	submission, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, storeOrTyped(err, "failed to load submission")
	}
	if !claims.Role.SchoolWide() && submission.TeacherID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another teacher")
	}
	if *req.EarnedPoints > submission.TotalPoints {
		return nil, appErrors.Clone(appErrors.ErrValidation, "earned_points must not exceed total points")
	}

	gradedAt := s.now()
	submission.Status = models.SubmissionStatusGraded
	submission.EarnedPoints = req.EarnedPoints
	submission.Feedback = req.Feedback
	submission.GradedAt = &gradedAt
	if err := s.repo.Grade(ctx, submission); err != nil {
		return nil, storeOrTyped(err, "failed to grade submission")
	}
	s.logger.Info("submission graded", zap.String("submission_id", submission.ID), zap.Float64("earned_points", *req.EarnedPoints))

	if s.list != nil {
		s.list.Invalidate(ctx)
	}
	return submission, nil
}

// storeOrTyped keeps typed errors such as not found and conflict and reports
// anything else as an unavailable store.
func storeOrTyped(err error, message string) error {
	if appErrors.HasCode(err, appErrors.ErrNotFound) || appErrors.HasCode(err, appErrors.ErrConflict) || appErrors.HasCode(err, appErrors.ErrForbidden) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
}
