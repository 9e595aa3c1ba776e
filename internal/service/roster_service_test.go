package service_test

import (
	"context"
	"testing"

	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/straye-as/attendance-api/internal/service"
	"github.com/straye-as/attendance-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStudentID(t *testing.T) {
	assert.Equal(t, "ST001", service.FormatStudentID(1))
	assert.Equal(t, "ST042", service.FormatStudentID(42))
	assert.Equal(t, "ST1000", service.FormatStudentID(1000))
}

func TestRosterService_AddStudent(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudents(t)
	ctx := context.Background()

	student, err := env.roster.AddStudent(ctx, &domain.CreateStudentRequest{
		Name:       "  Frank Miller  ",
		Department: domain.DepartmentEI,
	})
	require.NoError(t, err)

	assert.Equal(t, "ST004", student.ID)
	assert.Equal(t, "Frank Miller", student.Name)
	assert.Equal(t, domain.DepartmentEI, student.Department)
	assert.True(t, testNow.Equal(student.DateAdded))

	got, err := env.roster.GetStudent(ctx, "ST004")
	require.NoError(t, err)
	assert.Equal(t, student.Name, got.Name)

	notifications, err := env.notifications.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notifications.Items, 1)
	assert.Contains(t, notifications.Items[0].Message, "Frank Miller")
}

func TestRosterService_AddStudent_IDsFollowHighestSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.roster.AddStudent(ctx, &domain.CreateStudentRequest{Name: "One", Department: domain.DepartmentCSE})
	require.NoError(t, err)
	second, err := env.roster.AddStudent(ctx, &domain.CreateStudentRequest{Name: "Two", Department: domain.DepartmentCSE})
	require.NoError(t, err)

	assert.Equal(t, "ST001", first.ID)
	assert.Equal(t, "ST002", second.ID)
}

func TestRosterService_AddStudent_Invalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.roster.AddStudent(ctx, &domain.CreateStudentRequest{Name: "   ", Department: domain.DepartmentCSE})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = env.roster.AddStudent(ctx, &domain.CreateStudentRequest{Name: "Zed", Department: "MECH"})
	assert.ErrorIs(t, err, service.ErrInvalidDepartment)
}

func TestRosterService_GetStudent_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.roster.GetStudent(context.Background(), "ST999")
	assert.ErrorIs(t, err, service.ErrStudentNotFound)
}

func TestRosterService_ListStudents(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudents(t)
	ctx := context.Background()

	all, err := env.roster.ListStudents(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// sorted by department, then name
	assert.Equal(t, "ST001", all[0].ID)
	assert.Equal(t, "ST003", all[1].ID)
	assert.Equal(t, "ST002", all[2].ID)

	byName, err := env.roster.ListStudents(ctx, "CAROL", nil)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "ST003", byName[0].ID)

	byID, err := env.roster.ListStudents(ctx, "st002", nil)
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Bob Smith", byID[0].Name)

	testutil.CreateTestStudent(t, env.db, 4, "Émile Zola", domain.DepartmentEC)
	for _, search := range []string{"émile", "Émile", "ÉMILE", "zola"} {
		accented, err := env.roster.ListStudents(ctx, search, nil)
		require.NoError(t, err)
		require.Len(t, accented, 1, search)
		assert.Equal(t, "ST004", accented[0].ID)
	}

	cse, err := env.roster.GetStudentsByDepartment(ctx, domain.DepartmentCSE)
	require.NoError(t, err)
	assert.Len(t, cse, 2)

	none, err := env.roster.ListStudents(ctx, "100%", nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	invalid := domain.Department("ME")
	_, err = env.roster.ListStudents(ctx, "", &invalid)
	assert.ErrorIs(t, err, service.ErrInvalidDepartment)
}

func TestRosterService_AddClass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	class, err := env.roster.AddClass(ctx, &domain.CreateClassRequest{Name: " Data Structures ", Department: domain.DepartmentCSE})
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", class.Name)
	assert.NotEmpty(t, class.ID)

	_, err = env.roster.AddClass(ctx, &domain.CreateClassRequest{Name: "data structures", Department: domain.DepartmentCSE})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = env.roster.AddClass(ctx, &domain.CreateClassRequest{Name: "Data Structures", Department: domain.DepartmentISE})
	require.NoError(t, err)

	_, err = env.roster.AddClass(ctx, &domain.CreateClassRequest{Name: "", Department: domain.DepartmentISE})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	all, err := env.roster.ListClasses(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cse, err := env.roster.GetClassesByDepartment(ctx, domain.DepartmentCSE)
	require.NoError(t, err)
	require.Len(t, cse, 1)
	assert.Equal(t, domain.DepartmentCSE, cse[0].Department)
}
