package models

import "strings"

// Weekdays in timetable order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayIndex returns 1 for monday through 7 for sunday, 0 when unknown.
func WeekdayIndex(day string) int {
	day = strings.ToLower(strings.TrimSpace(day))
	for i, d := range Weekdays {
		if d == day {
			return i + 1
		}
	}
	return 0
}

// ScheduleRecord is one weekly lesson slot.
type ScheduleRecord struct {
	ID           string `db:"id" bson:"_id" json:"id"`
	TeacherID    string `db:"teacher_id" bson:"teacher_id" json:"teacher_id"`
	TeacherName  string `db:"teacher_name" bson:"teacher_name" json:"teacher_name"`
	Subject      string `db:"subject" bson:"subject" json:"subject"`
	ClassGrade   string `db:"class_grade" bson:"class_grade" json:"class_grade"`
	ClassSection string `db:"class_section" bson:"class_section" json:"class_section"`
	Day          string `db:"day" bson:"day" json:"day"`
	DayIndex     int    `db:"day_index" bson:"day_index" json:"-"`
	StartTime    string `db:"start_time" bson:"start_time" json:"start_time"`
	EndTime      string `db:"end_time" bson:"end_time" json:"end_time"`
	Room         string `db:"room" bson:"room" json:"room"`
}

// ScheduleStatistics summarises a filtered schedule set.
type ScheduleStatistics struct {
	Total     int            `json:"total"`
	ByDay     map[string]int `json:"byDay"`
	BySubject map[string]int `json:"bySubject"`
}
