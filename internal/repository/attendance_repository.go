package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// AttendanceRepository persists attendance marks in PostgreSQL.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records a mark. A second mark for the same student, subject and day
// replaces the first.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `INSERT INTO attendance_records (id, student_id, teacher_id, subject, class_grade, class_section, date, status, notes, created_at, updated_at)
        VALUES (:id, :student_id, :teacher_id, :subject, :class_grade, :class_section, :date, :status, :notes, :created_at, :updated_at)
        ON CONFLICT (student_id, subject, date) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, teacher_id = EXCLUDED.teacher_id, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&record.ID, &record.CreatedAt); err != nil {
			return fmt.Errorf("scan attendance id: %w", err)
		}
	}
	return rows.Err()
}
