package models

import "time"

// SubmissionStatus tracks a submission through grading.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusLate      SubmissionStatus = "late"
	SubmissionStatusGraded    SubmissionStatus = "graded"
)

// SubmissionStatuses lists every supported status.
func SubmissionStatuses() []string {
	return []string{string(SubmissionStatusSubmitted), string(SubmissionStatusLate), string(SubmissionStatusGraded)}
}

// Valid returns true when the status is supported.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusLate, SubmissionStatusGraded:
		return true
	default:
		return false
	}
}

// SubmissionRecord is a student's work on an assignment or quiz. EarnedPoints
// and GradedAt are set once the status is graded.
type SubmissionRecord struct {
	ID           string           `db:"id" bson:"_id" json:"id"`
	ContentID    string           `db:"content_id" bson:"content_id" json:"content_id"`
	ContentTitle string           `db:"content_title" bson:"content_title" json:"content_title"`
	StudentID    string           `db:"student_id" bson:"student_id" json:"student_id"`
	StudentName  string           `db:"student_name" bson:"student_name" json:"student_name"`
	TeacherID    string           `db:"teacher_id" bson:"teacher_id" json:"teacher_id"`
	Subject      string           `db:"subject" bson:"subject" json:"subject"`
	ClassGrade   string           `db:"class_grade" bson:"class_grade" json:"class_grade"`
	ClassSection string           `db:"class_section" bson:"class_section" json:"class_section"`
	Status       SubmissionStatus `db:"status" bson:"status" json:"status"`
	Answer       string           `db:"answer" bson:"answer" json:"answer"`
	EarnedPoints *float64         `db:"earned_points" bson:"earned_points,omitempty" json:"earned_points,omitempty"`
	TotalPoints  float64          `db:"total_points" bson:"total_points" json:"total_points"`
	Feedback     *string          `db:"feedback" bson:"feedback,omitempty" json:"feedback,omitempty"`
	SubmittedAt  time.Time        `db:"submitted_at" bson:"submitted_at" json:"submitted_at"`
	GradedAt     *time.Time       `db:"graded_at" bson:"graded_at,omitempty" json:"graded_at,omitempty"`
}

// SubmissionStatistics summarises a filtered submission set. AverageBySubject
// only covers graded submissions.
type SubmissionStatistics struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"byStatus"`
	BySubject        map[string]int `json:"bySubject"`
	AverageBySubject map[string]int `json:"averageBySubject"`
}
