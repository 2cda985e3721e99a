package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// StudentRepository answers class placement and guardianship lookups used to
// scope list queries.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ClassOf returns the student's current class.
func (r *StudentRepository) ClassOf(ctx context.Context, studentID string) (*models.StudentClass, error) {
	query := `SELECT id AS student_id, full_name, class_grade, class_section FROM students WHERE id = $1`
	var class models.StudentClass
	if err := r.db.GetContext(ctx, &class, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("get student class: %w", err)
	}
	return &class, nil
}

// ChildrenOf lists the students a parent is guardian of.
func (r *StudentRepository) ChildrenOf(ctx context.Context, parentID string) ([]string, error) {
	query := `SELECT student_id FROM student_guardians WHERE parent_id = $1 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, parentID); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return ids, nil
}
