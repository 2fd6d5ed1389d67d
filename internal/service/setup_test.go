package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushq/attendly/internal/models"
	"github.com/campushq/attendly/internal/repository"
	"github.com/campushq/attendly/pkg/kvstore"
)

var (
	adminUser   = models.User{Username: "admin", Role: models.RoleAdmin, Department: "Administration"}
	bbaTeacher  = models.User{Username: "bbateacher", Role: models.RoleTeacher, Department: "BBA"}
	deskClerk   = models.User{Username: "clerk", Role: models.RoleTeacher, Department: "Administration"}
	staffMember = models.User{Username: "staff", Role: models.RoleStaff, Department: "Management"}
)

// failingStore wraps a memory store and fails Save for selected keys,
// exercising rollback paths.
type failingStore struct {
	*kvstore.Memory
	failKeys map[string]bool
}

func newFailingStore() *failingStore {
	return &failingStore{Memory: kvstore.NewMemory(), failKeys: make(map[string]bool)}
}

func (f *failingStore) Save(ctx context.Context, key string, blob []byte) error {
	if f.failKeys[key] {
		return fmt.Errorf("simulated write failure for %s", key)
	}
	return f.Memory.Save(ctx, key, blob)
}

type fixture struct {
	store     *failingStore
	directory *repository.Directory
	ledger    *repository.Ledger
	students  *StudentService
	marks     *AttendanceService
	reports   *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFailingStore()
	directory := repository.NewDirectory(store, nil)
	ledger := repository.NewLedger(store, nil)
	return &fixture{
		store:     store,
		directory: directory,
		ledger:    ledger,
		students:  NewStudentService(directory, ledger, nil, nil, nil),
		marks:     NewAttendanceService(ledger, directory, nil, nil),
		reports:   NewReportService(directory, ledger, nil, nil, nil),
	}
}

func (f *fixture) addStudent(t *testing.T, name string, stream models.Stream, year, roll int) models.Student {
	t.Helper()
	student, err := f.students.Add(context.Background(), adminUser, AddStudentRequest{
		Name:       name,
		Stream:     stream,
		Year:       year,
		RollNumber: roll,
	})
	require.NoError(t, err)
	return *student
}

func (f *fixture) mark(t *testing.T, date, id string, status models.Status) {
	t.Helper()
	require.NoError(t, f.marks.Mark(context.Background(), adminUser, date, id, status))
}
