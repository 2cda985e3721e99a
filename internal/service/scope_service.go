package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/listquery"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type studentDirectory interface {
	ClassOf(ctx context.Context, studentID string) (*models.StudentClass, error)
	ChildrenOf(ctx context.Context, parentID string) ([]string, error)
}

// Audience tells the scope resolver how records relate to students.
type Audience int

const (
	// AudienceStudent lists records that belong to one student.
	AudienceStudent Audience = iota
	// AudienceClass lists records addressed to a whole class.
	AudienceClass
)

// ScopeService turns authenticated claims into the always-applied scope of a
// list query. Nothing in the request body or query can widen it; a parent's
// child selection is only honoured after it is checked against the
// guardianship records.
type ScopeService struct {
	students studentDirectory
	logger   *zap.Logger
}

// NewScopeService constructs a ScopeService.
func NewScopeService(students studentDirectory, logger *zap.Logger) *ScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{students: students, logger: logger}
}

// Resolve returns the scope predicate for claims. childID is the parent's
// optional child selection and is ignored for every other role.
func (s *ScopeService) Resolve(ctx context.Context, claims *models.JWTClaims, audience Audience, childID string) (listquery.Predicate, error) {
	if claims == nil || claims.UserID == "" {
		return listquery.Predicate{}, appErrors.ErrUnauthorized
	}
	switch {
	case claims.Role.SchoolWide():
		return listquery.Unrestricted(), nil
	case claims.Role == models.RoleTeacher:
		return listquery.Scope(listquery.Eq(listquery.FieldTeacherID, claims.UserID)), nil
	case claims.Role == models.RoleStudent:
		if audience == AudienceStudent {
			return listquery.Scope(listquery.Eq(listquery.FieldStudentID, claims.UserID)), nil
		}
		return s.classScope(ctx, claims.UserID)
	case claims.Role == models.RoleParent:
		return s.parentScope(ctx, claims.UserID, audience, childID)
	default:
		s.logger.Warn("list requested by unsupported role", zap.String("user_id", claims.UserID), zap.String("role", string(claims.Role)))
		return listquery.Predicate{}, appErrors.ErrForbidden
	}
}

func (s *ScopeService) parentScope(ctx context.Context, parentID string, audience Audience, childID string) (listquery.Predicate, error) {
	children, err := s.students.ChildrenOf(ctx, parentID)
	if err != nil {
		return listquery.Predicate{}, listquery.StoreError(err, "failed to load linked students")
	}
	if childID != "" && !containsString(children, childID) {
		s.logger.Warn("parent selected a student they are not linked to", zap.String("parent_id", parentID), zap.String("student_id", childID))
		return listquery.Predicate{}, appErrors.Clone(appErrors.ErrForbidden, "student is not linked to this account")
	}

	if audience == AudienceStudent {
		if childID != "" {
			return listquery.Scope(listquery.Eq(listquery.FieldStudentID, childID)), nil
		}
		return listquery.Scope(listquery.In(listquery.FieldStudentID, children)), nil
	}

	if childID == "" {
		switch len(children) {
		case 0:
			return listquery.Predicate{}, appErrors.Clone(appErrors.ErrForbidden, "no students are linked to this account")
		case 1:
			childID = children[0]
		default:
			return listquery.Predicate{}, appErrors.Clone(appErrors.ErrInvalidFilter, "studentId is required when more than one student is linked")
		}
	}
	return s.classScope(ctx, childID)
}

func (s *ScopeService) classScope(ctx context.Context, studentID string) (listquery.Predicate, error) {
	class, err := s.students.ClassOf(ctx, studentID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			return listquery.Predicate{}, appErrors.Clone(appErrors.ErrForbidden, "student has no class placement")
		}
		return listquery.Predicate{}, listquery.StoreError(err, "failed to load class placement")
	}
	return listquery.Scope(
		listquery.Eq(listquery.FieldClassGrade, class.ClassGrade),
		listquery.Eq(listquery.FieldClassSection, class.ClassSection),
	), nil
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
