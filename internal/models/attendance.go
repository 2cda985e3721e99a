package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// AttendanceStatuses lists every supported status.
func AttendanceStatuses() []string {
	return []string{
		string(AttendanceStatusPresent),
		string(AttendanceStatusAbsent),
		string(AttendanceStatusLate),
		string(AttendanceStatusExcused),
	}
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's mark for one lesson day.
type AttendanceRecord struct {
	ID           string           `db:"id" bson:"_id" json:"id"`
	StudentID    string           `db:"student_id" bson:"student_id" json:"student_id"`
	StudentName  string           `db:"student_name" bson:"student_name" json:"student_name"`
	TeacherID    string           `db:"teacher_id" bson:"teacher_id" json:"teacher_id"`
	Subject      string           `db:"subject" bson:"subject" json:"subject"`
	ClassGrade   string           `db:"class_grade" bson:"class_grade" json:"class_grade"`
	ClassSection string           `db:"class_section" bson:"class_section" json:"class_section"`
	Date         time.Time        `db:"date" bson:"date" json:"date"`
	Status       AttendanceStatus `db:"status" bson:"status" json:"status"`
	Notes        *string          `db:"notes" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time        `db:"created_at" bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" bson:"updated_at" json:"updated_at"`
}

// AttendanceStatistics summarises a filtered attendance set.
type AttendanceStatistics struct {
	Total          int            `json:"total"`
	Present        int            `json:"present"`
	Absent         int            `json:"absent"`
	Late           int            `json:"late"`
	Excused        int            `json:"excused"`
	AttendanceRate string         `json:"attendanceRate"`
	BySubject      map[string]int `json:"bySubject"`
}
