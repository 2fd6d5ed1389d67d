package models

import "time"

// Role is a user's permission tier governing stream visibility.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleStaff     Role = "Staff"
	RoleTeacher   Role = "Teacher"
	RoleProfessor Role = "Professor"
	RoleHOD       Role = "HOD"
)

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleTeacher, RoleProfessor, RoleHOD:
		return true
	default:
		return false
	}
}

// User represents a registered account. Users are created at registration
// and never deleted; only the password hash is mutated on reset.
type User struct {
	Username       string    `json:"username"`
	PasswordHash   string    `json:"passwordHash"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Department     string    `json:"department"`
	Role           Role      `json:"role"`
	EmployeeID     string    `json:"employeeId"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	RegisteredDate time.Time `json:"registeredDate"`
}

// FullName joins first and last name for display and mail templates.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RecentLogin records a past login, username only. Stored oldest first.
type RecentLogin struct {
	Username  string    `json:"username"`
	LoginDate time.Time `json:"loginDate"`
}
