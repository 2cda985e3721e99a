package repository

import "github.com/noah-isme/school-portal-api/internal/listquery"

// MongoDB collection names.
const (
	CollectionAttendance  = "attendance_records"
	CollectionContents    = "contents"
	CollectionSubmissions = "submissions"
	CollectionSchedules   = "schedules"
	CollectionStudents    = "students"
)

// AttendanceTable reads attendance marks with the student's name.
var AttendanceTable = Table{
	Name:   "attendance",
	From:   "attendance_records a JOIN students s ON s.id = a.student_id",
	Select: "a.id, a.student_id, s.full_name AS student_name, a.teacher_id, a.subject, a.class_grade, a.class_section, a.date, a.status, a.notes, a.created_at, a.updated_at",
	Columns: map[listquery.Field]string{
		listquery.FieldID:           "a.id",
		listquery.FieldTeacherID:    "a.teacher_id",
		listquery.FieldStudentID:    "a.student_id",
		listquery.FieldSubject:      "a.subject",
		listquery.FieldStatus:       "a.status",
		listquery.FieldDate:         "a.date",
		listquery.FieldClassGrade:   "a.class_grade",
		listquery.FieldClassSection: "a.class_section",
	},
}

// ContentTable reads published class content with the author's name.
var ContentTable = Table{
	Name:   "content",
	From:   "contents c JOIN teachers t ON t.id = c.teacher_id",
	Select: "c.id, c.teacher_id, t.full_name AS teacher_name, c.type, c.title, c.body, c.subject, c.class_grade, c.class_section, c.due_date, c.total_points, c.created_at, c.updated_at",
	Columns: map[listquery.Field]string{
		listquery.FieldID:           "c.id",
		listquery.FieldTeacherID:    "c.teacher_id",
		listquery.FieldSubject:      "c.subject",
		listquery.FieldType:         "c.type",
		listquery.FieldClassGrade:   "c.class_grade",
		listquery.FieldClassSection: "c.class_section",
		listquery.FieldCreatedAt:    "c.created_at",
	},
}

// SubmissionTable reads submissions joined to the content they answer.
var SubmissionTable = Table{
	Name: "submissions",
	From: "submissions sb JOIN contents c ON c.id = sb.content_id JOIN students s ON s.id = sb.student_id",
	Select: "sb.id, sb.content_id, c.title AS content_title, sb.student_id, s.full_name AS student_name, c.teacher_id, c.subject, c.class_grade, c.class_section, " +
		"sb.status, sb.answer, sb.earned_points, COALESCE(c.total_points, 0) AS total_points, sb.feedback, sb.submitted_at, sb.graded_at",
	Columns: map[listquery.Field]string{
		listquery.FieldID:           "sb.id",
		listquery.FieldTeacherID:    "c.teacher_id",
		listquery.FieldStudentID:    "sb.student_id",
		listquery.FieldSubject:      "c.subject",
		listquery.FieldStatus:       "sb.status",
		listquery.FieldClassGrade:   "c.class_grade",
		listquery.FieldClassSection: "c.class_section",
		listquery.FieldSubmittedAt:  "sb.submitted_at",
		listquery.FieldEarnedPoints: "sb.earned_points",
		listquery.FieldTotalPoints:  "COALESCE(c.total_points, 0)",
	},
}

// ScheduleTable reads weekly lesson slots with the teacher's name.
var ScheduleTable = Table{
	Name:   "schedules",
	From:   "schedules sc JOIN teachers t ON t.id = sc.teacher_id",
	Select: "sc.id, sc.teacher_id, t.full_name AS teacher_name, sc.subject, sc.class_grade, sc.class_section, sc.day, sc.day_index, sc.start_time, sc.end_time, sc.room",
	Columns: map[listquery.Field]string{
		listquery.FieldID:           "sc.id",
		listquery.FieldTeacherID:    "sc.teacher_id",
		listquery.FieldSubject:      "sc.subject",
		listquery.FieldDay:          "sc.day",
		listquery.FieldDayIndex:     "sc.day_index",
		listquery.FieldClassGrade:   "sc.class_grade",
		listquery.FieldClassSection: "sc.class_section",
	},
}
