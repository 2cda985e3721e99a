package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// ContentRepository persists announcements, assignments and quizzes.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs a ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a content record.
func (r *ContentRepository) Create(ctx context.Context, content *models.ContentRecord) error {
	now := time.Now().UTC()
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	content.CreatedAt = now
	content.UpdatedAt = now

	query := `INSERT INTO contents (id, teacher_id, type, title, body, subject, class_grade, class_section, due_date, total_points, created_at, updated_at)
        VALUES (:id, :teacher_id, :type, :title, :body, :subject, :class_grade, :class_section, :due_date, :total_points, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

// FindByID returns one content record.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.ContentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE c.id = $1", ContentTable.Select, ContentTable.From)
	var content models.ContentRecord
	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &content, nil
}
