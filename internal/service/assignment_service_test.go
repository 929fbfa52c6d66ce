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

type mockAssignmentRepo struct {
	assignments map[string]*models.Assignment
	categories  []string
	deleted     []string
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	out := make([]models.Assignment, 0, len(m.assignments))
	for _, assignment := range m.assignments {
		out = append(out, *assignment)
	}
	return out, nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if assignment, ok := m.assignments[id]; ok {
		return assignment, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) Categories(ctx context.Context) ([]string, error) {
	return m.categories, nil
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if m.assignments == nil {
		m.assignments = make(map[string]*models.Assignment)
	}
	assignment.ID = "a1"
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	m.assignments[assignment.ID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.assignments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAssignmentScores struct {
	records []models.ScoreRecord
}

func (m *mockAssignmentScores) ListByAssignment(ctx context.Context, assignmentID string) ([]models.ScoreRecord, error) {
	return m.records, nil
}

func TestAssignmentCreateAndGet(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, &mockAssignmentScores{}, nil, nil)

	hw := "Homework"
	max := 20.0
	created, err := svc.Create(context.Background(), CreateAssignmentRequest{
		Name:      "HW 1",
		Category:  &hw,
		MaxPoints: &max,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	loaded, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "HW 1", loaded.Name)
	require.NotNil(t, loaded.Category)
	assert.Equal(t, "Homework", *loaded.Category)
}

func TestAssignmentCreateRequiresName(t *testing.T) {
	svc := NewAssignmentService(&mockAssignmentRepo{}, &mockAssignmentScores{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateAssignmentRequest{})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAssignmentUpdateUnknownID(t *testing.T) {
	svc := NewAssignmentService(&mockAssignmentRepo{}, &mockAssignmentScores{}, nil, nil)

	_, err := svc.Update(context.Background(), "ghost", UpdateAssignmentRequest{Name: "HW 1"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAssignmentDelete(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, &mockAssignmentScores{}, nil, nil)

	created, err := svc.Create(context.Background(), CreateAssignmentRequest{Name: "HW 1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Contains(t, repo.deleted, created.ID)

	err = svc.Delete(context.Background(), created.ID)
	require.Error(t, err)
}

func TestAssignmentStats(t *testing.T) {
	repo := &mockAssignmentRepo{assignments: map[string]*models.Assignment{
		"a1": {ID: "a1", Name: "Quiz 1"},
	}}
	scores := &mockAssignmentScores{records: []models.ScoreRecord{
		{StudentID: "s1", AssignmentID: "a1", Score: scorePtr(80)},
		{StudentID: "s2", AssignmentID: "a1", Score: scorePtr(90)},
		{StudentID: "s3", AssignmentID: "a1", Score: scorePtr(100)},
		{StudentID: "s4", AssignmentID: "a1", Excused: true},
		{StudentID: "s5", AssignmentID: "a1", Missing: true},
	}}
	svc := NewAssignmentService(repo, scores, nil, nil)

	stats, err := svc.Stats(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Submitted)
	assert.Equal(t, 1, stats.Missing)
	assert.Equal(t, 1, stats.Excused)
	require.NotNil(t, stats.Mean)
	assert.InDelta(t, 90.0, *stats.Mean, 1e-9)
	require.NotNil(t, stats.Median)
	assert.InDelta(t, 90.0, *stats.Median, 1e-9)
}

func TestAssignmentStatsWithoutScores(t *testing.T) {
	repo := &mockAssignmentRepo{assignments: map[string]*models.Assignment{
		"a1": {ID: "a1", Name: "Quiz 1"},
	}}
	svc := NewAssignmentService(repo, &mockAssignmentScores{}, nil, nil)

	stats, err := svc.Stats(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Submitted)
	assert.Nil(t, stats.Mean)
	assert.Nil(t, stats.Median)
}
