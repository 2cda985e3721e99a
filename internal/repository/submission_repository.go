package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const uniqueViolation = "23505"

// SubmissionRepository persists student submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission. A student submits at most once per content.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.SubmissionRecord) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	query := `INSERT INTO submissions (id, content_id, student_id, status, answer, submitted_at)
        VALUES (:id, :content_id, :student_id, :status, :answer, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return appErrors.Clone(appErrors.ErrConflict, "content already submitted")
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// FindByID returns one submission with its content details.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.SubmissionRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE sb.id = $1", SubmissionTable.Select, SubmissionTable.From)
	var submission models.SubmissionRecord
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &submission, nil
}

// Grade stores the grade and marks the submission graded.
func (r *SubmissionRepository) Grade(ctx context.Context, submission *models.SubmissionRecord) error {
	query := `UPDATE submissions SET status = :status, earned_points = :earned_points, feedback = :feedback, graded_at = :graded_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, submission)
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("grade submission rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	return nil
}
