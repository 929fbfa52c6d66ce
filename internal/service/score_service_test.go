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

type mockScoreRepo struct {
	records map[string]*models.ScoreRecord
	deleted []string
}

func scoreKey(studentID, assignmentID string) string {
	return studentID + "/" + assignmentID
}

func (m *mockScoreRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]models.ScoreRecord, error) {
	out := make([]models.ScoreRecord, 0)
	for _, record := range m.records {
		if record.AssignmentID == assignmentID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *mockScoreRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ScoreRecord, error) {
	out := make([]models.ScoreRecord, 0)
	for _, record := range m.records {
		if record.StudentID == studentID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *mockScoreRepo) Upsert(ctx context.Context, score *models.ScoreRecord) error {
	if m.records == nil {
		m.records = make(map[string]*models.ScoreRecord)
	}
	m.records[scoreKey(score.StudentID, score.AssignmentID)] = score
	return nil
}

func (m *mockScoreRepo) BulkUpsert(ctx context.Context, scores []models.ScoreRecord) error {
	for i := range scores {
		if err := m.Upsert(ctx, &scores[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockScoreRepo) SetExcused(ctx context.Context, studentID, assignmentID string, excused bool) error {
	if record, ok := m.records[scoreKey(studentID, assignmentID)]; ok {
		record.Excused = excused
	}
	return nil
}

func (m *mockScoreRepo) Delete(ctx context.Context, studentID, assignmentID string) error {
	delete(m.records, scoreKey(studentID, assignmentID))
	m.deleted = append(m.deleted, scoreKey(studentID, assignmentID))
	return nil
}

type mockAssignmentLookup struct {
	assignments map[string]*models.Assignment
}

func (m *mockAssignmentLookup) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if assignment, ok := m.assignments[id]; ok {
		return assignment, nil
	}
	return nil, sql.ErrNoRows
}

type mockInvalidator struct {
	patterns []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func scoreServiceFixture() (*ScoreService, *mockScoreRepo, *mockInvalidator) {
	max := 100.0
	repo := &mockScoreRepo{}
	lookup := &mockAssignmentLookup{assignments: map[string]*models.Assignment{
		"a1": {ID: "a1", Name: "Quiz 1", MaxPoints: &max},
	}}
	cache := &mockInvalidator{}
	return NewScoreService(repo, lookup, cache, nil, nil), repo, cache
}

func TestScoreUpsertDefaultsMaxPoints(t *testing.T) {
	svc, repo, cache := scoreServiceFixture()

	record, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID:    "s1",
		AssignmentID: "a1",
		Score:        scorePtr(87),
	})
	require.NoError(t, err)
	require.NotNil(t, record.MaxPoints)
	assert.Equal(t, 100.0, *record.MaxPoints)
	assert.NotNil(t, record.GradedAt)
	assert.Len(t, repo.records, 1)
	assert.Contains(t, cache.patterns, "grades:summary:*")
}

func TestScoreUpsertMissingWithoutGrade(t *testing.T) {
	svc, _, _ := scoreServiceFixture()

	record, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID:    "s1",
		AssignmentID: "a1",
		Missing:      true,
	})
	require.NoError(t, err)
	assert.Nil(t, record.Score)
	assert.Nil(t, record.GradedAt)
	assert.True(t, record.Missing)
}

func TestScoreUpsertUnknownAssignment(t *testing.T) {
	svc, _, cache := scoreServiceFixture()

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID:    "s1",
		AssignmentID: "ghost",
		Score:        scorePtr(50),
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Empty(t, cache.patterns)
}

func TestScoreUpsertRejectsNegative(t *testing.T) {
	svc, _, _ := scoreServiceFixture()

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID:    "s1",
		AssignmentID: "a1",
		Score:        scorePtr(-1),
	})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScoreBulkUpsert(t *testing.T) {
	svc, repo, cache := scoreServiceFixture()

	count, err := svc.BulkUpsert(context.Background(), BulkScoreRequest{
		Scores: []UpsertScoreRequest{
			{StudentID: "s1", AssignmentID: "a1", Score: scorePtr(80)},
			{StudentID: "s2", AssignmentID: "a1", Score: scorePtr(90)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, repo.records, 2)
	assert.Len(t, cache.patterns, 1)
}

func TestScoreBulkUpsertFailsAtomically(t *testing.T) {
	svc, repo, cache := scoreServiceFixture()

	_, err := svc.BulkUpsert(context.Background(), BulkScoreRequest{
		Scores: []UpsertScoreRequest{
			{StudentID: "s1", AssignmentID: "a1", Score: scorePtr(80)},
			{StudentID: "s2", AssignmentID: "ghost", Score: scorePtr(90)},
		},
	})
	require.Error(t, err)
	assert.Empty(t, repo.records)
	assert.Empty(t, cache.patterns)
}

func TestScoreSetExcusedInvalidatesCache(t *testing.T) {
	svc, repo, cache := scoreServiceFixture()

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID:    "s1",
		AssignmentID: "a1",
		Score:        scorePtr(70),
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetExcused(context.Background(), "s1", "a1", true))
	assert.True(t, repo.records[scoreKey("s1", "a1")].Excused)
	assert.Len(t, cache.patterns, 2)
}

func TestScoreDelete(t *testing.T) {
	svc, repo, cache := scoreServiceFixture()

	_, err := svc.Upsert(context.Background(), UpsertScoreRequest{
		StudentID:    "s1",
		AssignmentID: "a1",
		Score:        scorePtr(70),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "s1", "a1"))
	assert.Empty(t, repo.records)
	assert.Len(t, cache.patterns, 2)
}
