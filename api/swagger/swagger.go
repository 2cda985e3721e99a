package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Portal API",
        "description": "Scoped, filtered and paginated lists with statistics for the school portals",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Lists", "description": "Scoped record lists with statistics"},
        {"name": "Attendance", "description": "Attendance marks and exports"},
        {"name": "Content", "description": "Announcements, assignments and quizzes"},
        {"name": "Submissions", "description": "Handing in and grading work"},
        {"name": "System", "description": "Health and metrics"}
    ],
    "parameters": {
        "page": {"name": "page", "in": "query", "type": "integer", "description": "Page, default 1"},
        "limit": {"name": "limit", "in": "query", "type": "integer", "description": "Page size, default 10, at most 100"},
        "itemsPerPage": {"name": "itemsPerPage", "in": "query", "type": "integer", "description": "Page size, used when limit is absent"},
        "subject": {"name": "subject", "in": "query", "type": "string"},
        "classGrade": {"name": "classGrade", "in": "query", "type": "string"},
        "classSection": {"name": "classSection", "in": "query", "type": "string"},
        "startDate": {"name": "startDate", "in": "query", "type": "string", "description": "YYYY-MM-DD or RFC3339"},
        "endDate": {"name": "endDate", "in": "query", "type": "string", "description": "YYYY-MM-DD (whole day) or RFC3339"},
        "studentId": {"name": "studentId", "in": "query", "type": "string", "description": "Linked student, parents only"}
    },
    "paths": {
        "/attendance": {
            "get": {
                "tags": ["Lists"],
                "summary": "List attendance records",
                "parameters": [
                    {"$ref": "#/parameters/subject"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["present", "absent", "late", "excused"]},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/classGrade"},
                    {"$ref": "#/parameters/classSection"},
                    {"$ref": "#/parameters/studentId"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"},
                    {"$ref": "#/parameters/itemsPerPage"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AttendanceList"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Record store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Record an attendance mark",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export the filtered attendance list",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"$ref": "#/parameters/subject"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["present", "absent", "late", "excused"]},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/studentId"}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}}
                }
            }
        },
        "/content": {
            "get": {
                "tags": ["Lists"],
                "summary": "List announcements, assignments and quizzes",
                "parameters": [
                    {"$ref": "#/parameters/subject"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["announcement", "assignment", "quiz"]},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/classGrade"},
                    {"$ref": "#/parameters/classSection"},
                    {"$ref": "#/parameters/studentId"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"},
                    {"$ref": "#/parameters/itemsPerPage"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ContentList"}}
                }
            },
            "post": {
                "tags": ["Content"],
                "summary": "Publish content",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishContentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions": {
            "get": {
                "tags": ["Lists"],
                "summary": "List submissions with grade averages",
                "parameters": [
                    {"$ref": "#/parameters/subject"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["submitted", "late", "graded"]},
                    {"$ref": "#/parameters/startDate"},
                    {"$ref": "#/parameters/endDate"},
                    {"$ref": "#/parameters/classGrade"},
                    {"$ref": "#/parameters/classSection"},
                    {"$ref": "#/parameters/studentId"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"},
                    {"$ref": "#/parameters/itemsPerPage"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SubmissionList"}}
                }
            },
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit work",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitWorkRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/{id}/grade": {
            "put": {
                "tags": ["Submissions"],
                "summary": "Grade a submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeSubmissionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Lists"],
                "summary": "List the weekly timetable",
                "parameters": [
                    {"$ref": "#/parameters/subject"},
                    {"name": "day", "in": "query", "type": "string", "enum": ["monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"]},
                    {"$ref": "#/parameters/classGrade"},
                    {"$ref": "#/parameters/classSection"},
                    {"$ref": "#/parameters/studentId"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"},
                    {"$ref": "#/parameters/itemsPerPage"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ScheduleList"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated request, cache and store metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "itemsPerPage": {"type": "integer"}
            }
        },
        "Counts": {
            "type": "object",
            "additionalProperties": {"type": "integer"}
        },
        "AttendanceStatistics": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "present": {"type": "integer"},
                "absent": {"type": "integer"},
                "late": {"type": "integer"},
                "excused": {"type": "integer"},
                "attendanceRate": {"type": "string", "example": "70%"},
                "bySubject": {"$ref": "#/definitions/Counts"}
            }
        },
        "ContentStatistics": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "byType": {"$ref": "#/definitions/Counts"},
                "bySubject": {"$ref": "#/definitions/Counts"}
            }
        },
        "SubmissionStatistics": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "byStatus": {"$ref": "#/definitions/Counts"},
                "bySubject": {"$ref": "#/definitions/Counts"},
                "averageBySubject": {"$ref": "#/definitions/Counts"}
            }
        },
        "ScheduleStatistics": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "byDay": {"$ref": "#/definitions/Counts"},
                "bySubject": {"$ref": "#/definitions/Counts"}
            }
        },
        "AttendanceList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "statistics": {"$ref": "#/definitions/AttendanceStatistics"},
                "meta": {"type": "object"}
            }
        },
        "ContentList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "statistics": {"$ref": "#/definitions/ContentStatistics"},
                "meta": {"type": "object"}
            }
        },
        "SubmissionList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "statistics": {"$ref": "#/definitions/SubmissionStatistics"},
                "meta": {"type": "object"}
            }
        },
        "ScheduleList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "statistics": {"$ref": "#/definitions/ScheduleStatistics"},
                "meta": {"type": "object"}
            }
        },
        "RecordAttendanceRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "teacher_id": {"type": "string", "description": "Admins only"},
                "subject": {"type": "string"},
                "date": {"type": "string", "example": "2024-03-04"},
                "status": {"type": "string", "enum": ["present", "absent", "late", "excused"]},
                "notes": {"type": "string"}
            },
            "required": ["student_id", "subject", "date", "status"]
        },
        "PublishContentRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["announcement", "assignment", "quiz"]},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "subject": {"type": "string"},
                "class_grade": {"type": "string"},
                "class_section": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"},
                "total_points": {"type": "number"}
            },
            "required": ["type", "title", "subject", "class_grade", "class_section"]
        },
        "SubmitWorkRequest": {
            "type": "object",
            "properties": {
                "content_id": {"type": "string"},
                "answer": {"type": "string"}
            },
            "required": ["content_id", "answer"]
        },
        "GradeSubmissionRequest": {
            "type": "object",
            "properties": {
                "earned_points": {"type": "number"},
                "feedback": {"type": "string"}
            },
            "required": ["earned_points"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
