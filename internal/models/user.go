package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleTeacher    UserRole = "TEACHER"
	RoleStudent    UserRole = "STUDENT"
	RoleParent     UserRole = "PARENT"
)

// SchoolWide reports whether the role sees every record of the school.
func (r UserRole) SchoolWide() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// StudentClass places a student in a class.
type StudentClass struct {
	StudentID    string `db:"student_id" bson:"_id" json:"student_id"`
	FullName     string `db:"full_name" bson:"full_name" json:"full_name"`
	ClassGrade   string `db:"class_grade" bson:"class_grade" json:"class_grade"`
	ClassSection string `db:"class_section" bson:"class_section" json:"class_section"`
}
