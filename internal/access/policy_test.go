package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campushq/attendly/internal/models"
)

func TestStreams(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		department string
		want       []models.Stream
	}{
		{"admin sees everything", models.RoleAdmin, "Administration", models.KnownStreams()},
		{"staff sees everything", models.RoleStaff, "Management", models.KnownStreams()},
		{"teacher bound to department", models.RoleTeacher, "BBA", []models.Stream{models.StreamBBA}},
		{"professor bound to department", models.RoleProfessor, "BCA", []models.Stream{models.StreamBCA}},
		{"hod bound to department", models.RoleHOD, "PMIR", []models.Stream{models.StreamPMIR}},
		{"teacher in administration sees none", models.RoleTeacher, "Administration", []models.Stream{}},
		{"teacher in unknown department sees none", models.RoleTeacher, "Physics", nil},
		{"unknown role sees none", models.Role("Janitor"), "BCA", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streams(tt.role, tt.department))
		})
	}
}

func TestCanAccess(t *testing.T) {
	bbaTeacher := models.User{Role: models.RoleTeacher, Department: "BBA"}
	assert.True(t, CanAccess(bbaTeacher, models.StreamBBA))
	assert.False(t, CanAccess(bbaTeacher, models.StreamBCA))
	assert.False(t, CanAccess(bbaTeacher, models.StreamPMIR))

	admin := models.User{Role: models.RoleAdmin, Department: "Administration"}
	for _, stream := range models.KnownStreams() {
		assert.True(t, CanAccess(admin, stream))
	}
}

func TestFilterStudents(t *testing.T) {
	students := []models.Student{
		{ID: "BCA024-001", Stream: models.StreamBCA},
		{ID: "BBA024-001", Stream: models.StreamBBA},
		{ID: "PMIR024-001", Stream: models.StreamPMIR},
	}

	admin := models.User{Role: models.RoleAdmin, Department: "Administration"}
	assert.Len(t, FilterStudents(students, admin), 3)

	teacher := models.User{Role: models.RoleTeacher, Department: "BBA"}
	filtered := FilterStudents(students, teacher)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "BBA024-001", filtered[0].ID)

	clerk := models.User{Role: models.RoleTeacher, Department: "Administration"}
	assert.Empty(t, FilterStudents(students, clerk))
}
