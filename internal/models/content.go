package models

import "time"

// ContentType distinguishes the items a teacher publishes to a class.
type ContentType string

const (
	ContentTypeAnnouncement ContentType = "announcement"
	ContentTypeAssignment   ContentType = "assignment"
	ContentTypeQuiz         ContentType = "quiz"
)

// ContentTypes lists every supported type.
func ContentTypes() []string {
	return []string{string(ContentTypeAnnouncement), string(ContentTypeAssignment), string(ContentTypeQuiz)}
}

// Valid returns true when the type is supported.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeAnnouncement, ContentTypeAssignment, ContentTypeQuiz:
		return true
	default:
		return false
	}
}

// Gradable reports whether students submit work against the content.
func (t ContentType) Gradable() bool {
	return t == ContentTypeAssignment || t == ContentTypeQuiz
}

// ContentRecord is an announcement, assignment or quiz addressed to a class.
// DueDate and TotalPoints are set for gradable content only.
type ContentRecord struct {
	ID           string      `db:"id" bson:"_id" json:"id"`
	TeacherID    string      `db:"teacher_id" bson:"teacher_id" json:"teacher_id"`
	TeacherName  string      `db:"teacher_name" bson:"teacher_name" json:"teacher_name"`
	Type         ContentType `db:"type" bson:"type" json:"type"`
	Title        string      `db:"title" bson:"title" json:"title"`
	Body         string      `db:"body" bson:"body" json:"body"`
	Subject      string      `db:"subject" bson:"subject" json:"subject"`
	ClassGrade   string      `db:"class_grade" bson:"class_grade" json:"class_grade"`
	ClassSection string      `db:"class_section" bson:"class_section" json:"class_section"`
	DueDate      *time.Time  `db:"due_date" bson:"due_date,omitempty" json:"due_date,omitempty"`
	TotalPoints  *float64    `db:"total_points" bson:"total_points,omitempty" json:"total_points,omitempty"`
	CreatedAt    time.Time   `db:"created_at" bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" bson:"updated_at" json:"updated_at"`
}

// ContentStatistics summarises a filtered content set.
type ContentStatistics struct {
	Total     int            `json:"total"`
	ByType    map[string]int `json:"byType"`
	BySubject map[string]int `json:"bySubject"`
}
