package models

import "time"

// UserID uniquely identifies a user.
type UserID int64

// StudentID uniquely identifies a student record. Students are linked to a
// user account and optionally to a parent's user account.
type StudentID int64

// UserRole determines which dashboard a user sees and which alerts reach
// them via role broadcast.
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleTeacher UserRole = "teacher"
	UserRoleParent  UserRole = "parent"
	UserRoleAdmin   UserRole = "admin"
	UserRoleMentor  UserRole = "mentor"
)

// UserStatus indicates whether a user may act in the system.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is an account in the directory. Registration and profile management
// happen outside this service; the fields here are what the alert engine
// and dashboards need.
type User struct {
	ID        UserID     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Student links a student user to their enrolment data and their parent.
type Student struct {
	ID           StudentID `json:"id"`
	UserID       UserID    `json:"user_id"`
	ParentUserID *UserID   `json:"parent_user_id,omitempty"`
	GradeLevel   string    `json:"grade_level,omitempty"`
	BusStop      string    `json:"bus_stop,omitempty"`
	// AttendanceRate and AverageGrade are percentages maintained by the
	// academic ingest jobs; the alert producers read them as guards.
	AttendanceRate float64   `json:"attendance_rate"`
	AverageGrade   float64   `json:"average_grade"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionToken maps a bearer token to an acting user. Token issuance is
// administrative glue; a real deployment fronts this with an identity
// provider.
type SessionToken struct {
	ID         int64      `json:"id"`
	UserID     UserID     `json:"user_id"`
	Token      string     `json:"token,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// CreateUserRequest defines the payload for creating a user.
type CreateUserRequest struct {
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// CreateStudentRequest defines the payload for enrolling a student.
type CreateStudentRequest struct {
	UserID         UserID  `json:"user_id"`
	ParentUserID   *UserID `json:"parent_user_id,omitempty"`
	GradeLevel     string  `json:"grade_level,omitempty"`
	BusStop        string  `json:"bus_stop,omitempty"`
	AttendanceRate float64 `json:"attendance_rate"`
	AverageGrade   float64 `json:"average_grade"`
}

// ValidUserRole reports whether the given role is one of the known role
// tags.
func ValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleStudent, UserRoleTeacher, UserRoleParent, UserRoleAdmin, UserRoleMentor:
		return true
	default:
		return false
	}
}
