package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/repository"
	"github.com/straye-as/attendance-api/internal/seed"
	"github.com/straye-as/attendance-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefault(t *testing.T) {
	roster, err := seed.Default()
	require.NoError(t, err)

	require.Len(t, roster.Students, 5)
	assert.Equal(t, "ST001", roster.Students[0].ID)
	assert.Equal(t, "Alice Johnson", roster.Students[0].Name)
	assert.Equal(t, domain.DepartmentCSE, roster.Students[0].Department)
	assert.Equal(t, "2024-03-01", roster.Students[4].DateAdded)
	assert.Empty(t, roster.Classes)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad id", yaml: "students:\n  - {id: S1, name: A, department: CSE}\n"},
		{name: "duplicate id", yaml: "students:\n  - {id: ST001, name: A, department: CSE}\n  - {id: ST001, name: B, department: CSE}\n"},
		{name: "missing name", yaml: "students:\n  - {id: ST001, name: ' ', department: CSE}\n"},
		{name: "bad department", yaml: "students:\n  - {id: ST001, name: A, department: MECH}\n"},
		{name: "bad date", yaml: "students:\n  - {id: ST001, name: A, department: CSE, dateAdded: 15-01-2024}\n"},
		{name: "duplicate class", yaml: "classes:\n  - {name: Maths, department: EC}\n  - {name: maths, department: EC}\n"},
		{name: "unknown key", yaml: "lecturers: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	roster, err := seed.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, roster.Students)
}

func TestStudentSeq(t *testing.T) {
	seq, err := seed.StudentSeq("ST042")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)

	seq, err = seed.StudentSeq("ST1200")
	require.NoError(t, err)
	assert.Equal(t, 1200, seq)

	_, err = seed.StudentSeq("ST42")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := "students:\n  - id: ST010\n    name: Jo March\n    department: EI\nclasses:\n  - name: Control Systems\n    department: EI\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	roster, err := seed.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, roster.Students, 1)
	require.Len(t, roster.Classes, 1)

	_, err = seed.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoader_Apply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	loader := seed.NewLoader(studentRepo, classRepo, time.UTC, func() time.Time { return now }, zap.NewNop())
	ctx := context.Background()

	roster, err := seed.Default()
	require.NoError(t, err)
	roster.Classes = append(roster.Classes, seed.ClassEntry{Name: "Circuits", Department: domain.DepartmentEEE})

	result, err := loader.Apply(ctx, roster)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Students)
	assert.Equal(t, 1, result.Classes)

	student, err := studentRepo.GetByID(ctx, "ST002")
	require.NoError(t, err)
	assert.Equal(t, "Bob Smith", student.Name)
	assert.True(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Equal(student.DateAdded))

	next, err := studentRepo.NextSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, next)

	again, err := loader.Apply(ctx, roster)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Students)
	assert.Equal(t, 0, again.Classes)
}
