// Package access derives per-stream visibility from a user's role and
// department. The policy is a pure function of its inputs; nothing here is
// persisted or cached.
package access

import "github.com/campushq/attendly/internal/models"

// departmentStreams maps an academic department to the streams its
// teaching staff may manage. Administrative departments map to none.
var departmentStreams = map[string][]models.Stream{
	"BCA":            {models.StreamBCA},
	"BBA":            {models.StreamBBA},
	"PMIR":           {models.StreamPMIR},
	"Administration": {},
	"Management":     {},
}

// Streams returns the set of streams a user may view and edit. Admin and
// Staff see every known stream; teaching roles see their department's
// streams; anything else sees none.
func Streams(role models.Role, department string) []models.Stream {
	switch role {
	case models.RoleAdmin, models.RoleStaff:
		return models.KnownStreams()
	case models.RoleTeacher, models.RoleProfessor, models.RoleHOD:
		streams, ok := departmentStreams[department]
		if !ok {
			return nil
		}
		return streams
	default:
		return nil
	}
}

// CanAccess reports whether the user may view or edit the given stream.
func CanAccess(user models.User, stream models.Stream) bool {
	for _, s := range Streams(user.Role, user.Department) {
		if s == stream {
			return true
		}
	}
	return false
}

// FilterStudents narrows a student list to those the user may see. Admin
// and Staff get the full list unfiltered. No ordering guarantee is made;
// callers sort for display.
func FilterStudents(students []models.Student, user models.User) []models.Student {
	if user.Role == models.RoleAdmin || user.Role == models.RoleStaff {
		return students
	}
	accessible := Streams(user.Role, user.Department)
	filtered := make([]models.Student, 0, len(students))
	for _, student := range students {
		for _, s := range accessible {
			if student.Stream == s {
				filtered = append(filtered, student)
				break
			}
		}
	}
	return filtered
}
