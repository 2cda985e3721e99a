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

type contentRepository interface {
	Create(ctx context.Context, content *models.ContentRecord) error
	FindByID(ctx context.Context, id string) (*models.ContentRecord, error)
}

// PublishContentRequest describes an announcement, assignment or quiz.
// Assignments and quizzes carry the points they are graded out of.
type PublishContentRequest struct {
	Type         string     `json:"type" validate:"required,content_type"`
	Title        string     `json:"title" validate:"required,max=200"`
	Body         string     `json:"body" validate:"max=10000"`
	Subject      string     `json:"subject" validate:"required,max=100"`
	ClassGrade   string     `json:"class_grade" validate:"required,max=20"`
	ClassSection string     `json:"class_section" validate:"required,max=20"`
	DueDate      *time.Time `json:"due_date"`
	TotalPoints  *float64   `json:"total_points" validate:"omitempty,gt=0"`
}

// ContentService publishes class content.
type ContentService struct {
	repo      contentRepository
	list      listInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs the service. list may be nil.
func NewContentService(repo contentRepository, list listInvalidator, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ContentService{repo: repo, list: list, validator: validate, logger: logger}
	registerValidation(svc.validator, logger, "content_type", func(fl validator.FieldLevel) bool {
		return models.ContentType(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// Publish stores new content authored by the calling teacher.
func (s *ContentService) Publish(ctx context.Context, claims *models.JWTClaims, req PublishContentRequest) (*models.ContentRecord, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers publish content")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}

	contentType := models.ContentType(strings.ToLower(req.Type))
	if contentType.Gradable() {
		if req.TotalPoints == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "total_points is required for assignments and quizzes")
		}
	} else if req.TotalPoints != nil || req.DueDate != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "announcements carry no due date or points")
	}

	content := &models.ContentRecord{
		TeacherID:    claims.UserID,
		TeacherName:  claims.FullName,
		Type:         contentType,
		Title:        strings.TrimSpace(req.Title),
		Body:         req.Body,
		Subject:      strings.TrimSpace(req.Subject),
		ClassGrade:   strings.TrimSpace(req.ClassGrade),
		ClassSection: strings.TrimSpace(req.ClassSection),
		DueDate:      req.DueDate,
		TotalPoints:  req.TotalPoints,
	}
	if err := s.repo.Create(ctx, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to publish content")
	}
	s.logger.Info("content published", zap.String("content_id", content.ID), zap.String("type", string(content.Type)))

	if s.list != nil {
		s.list.Invalidate(ctx)
	}
	return content, nil
}
