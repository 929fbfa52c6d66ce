package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegrade/coursegrade-api/internal/models"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

type mockStudentRepo struct {
	students    map[string]*models.Student
	deactivated []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, student := range m.students {
		out = append(out, *student)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.students[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsBySISID(ctx context.Context, sisID string, excludeID string) (bool, error) {
	for _, student := range m.students {
		if student.SISID == sisID && student.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]*models.Student)
	}
	student.ID = "s1"
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentRepo) Deactivate(ctx context.Context, id string) error {
	if student, ok := m.students[id]; ok {
		student.Active = false
	}
	m.deactivated = append(m.deactivated, id)
	return nil
}

func TestStudentCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateStudentRequest{
		SISID:    "1001",
		FullName: "Ada Byron",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
}

func TestStudentCreateDuplicateSISID(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{SISID: "1001", FullName: "Ada Byron"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateStudentRequest{SISID: "1001", FullName: "Another Ada"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestStudentCreateRejectsBadEmail(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil)

	email := "not-an-email"
	_, err := svc.Create(context.Background(), CreateStudentRequest{
		SISID:    "1001",
		FullName: "Ada Byron",
		Email:    &email,
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestStudentUpdate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateStudentRequest{SISID: "1001", FullName: "Ada Byron"})
	require.NoError(t, err)

	section := "B"
	updated, err := svc.Update(context.Background(), created.ID, UpdateStudentRequest{
		SISID:    "1001",
		FullName: "Ada Lovelace",
		Section:  &section,
		Active:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.FullName)
	require.NotNil(t, updated.Section)
	assert.Equal(t, "B", *updated.Section)
}

func TestStudentUpdateUnknownID(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil)

	_, err := svc.Update(context.Background(), "ghost", UpdateStudentRequest{SISID: "1", FullName: "X"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestStudentDeactivateKeepsRecord(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateStudentRequest{SISID: "1001", FullName: "Ada Byron"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))
	assert.Contains(t, repo.deactivated, created.ID)

	loaded, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Active)
}

func TestStudentListPaginationDefaults(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{SISID: "1001", FullName: "Ada Byron"})
	require.NoError(t, err)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
