package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegrade/coursegrade-api/internal/grading"
	"github.com/coursegrade/coursegrade-api/internal/models"
	"github.com/coursegrade/coursegrade-api/pkg/config"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

type mockProcessingStudentRepo struct {
	students []models.Student
}

func (m *mockProcessingStudentRepo) ListActive(ctx context.Context) ([]models.Student, error) {
	return m.students, nil
}

type mockProcessingAssignmentRepo struct {
	assignments []models.Assignment
}

func (m *mockProcessingAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	return m.assignments, nil
}

type mockProcessingScoreRepo struct {
	scores []models.ScoreRecord
}

func (m *mockProcessingScoreRepo) ListAll(ctx context.Context) ([]models.ScoreRecord, error) {
	return m.scores, nil
}

type mockProcessingWeightRepo struct {
	weights []models.CategoryWeight
}

func (m *mockProcessingWeightRepo) List(ctx context.Context) ([]models.CategoryWeight, error) {
	return m.weights, nil
}

type mockScaleResolver struct {
	scales map[string]*grading.Scale
}

func (m *mockScaleResolver) Resolver(ctx context.Context, id string) (*grading.Scale, error) {
	if scale, ok := m.scales[id]; ok {
		return scale, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "scale not found")
}

type mockRunRepo struct {
	runs    map[string]*models.ProcessingRun
	results map[string][]models.RunStudentResult
	order   []string
}

func (m *mockRunRepo) Create(ctx context.Context, run *models.ProcessingRun, results []models.RunStudentResult) error {
	if m.runs == nil {
		m.runs = make(map[string]*models.ProcessingRun)
		m.results = make(map[string][]models.RunStudentResult)
	}
	if run.ID == "" {
		run.ID = "run1"
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	m.runs[run.ID] = run
	m.results[run.ID] = results
	m.order = append(m.order, run.ID)
	return nil
}

func (m *mockRunRepo) FindByID(ctx context.Context, id string) (*models.ProcessingRun, error) {
	if run, ok := m.runs[id]; ok {
		return run, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRunRepo) Latest(ctx context.Context) (*models.ProcessingRun, error) {
	if len(m.order) == 0 {
		return nil, sql.ErrNoRows
	}
	return m.runs[m.order[len(m.order)-1]], nil
}

func (m *mockRunRepo) List(ctx context.Context, limit int) ([]models.ProcessingRun, error) {
	out := make([]models.ProcessingRun, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.runs[m.order[i]])
	}
	return out, nil
}

func (m *mockRunRepo) ListResults(ctx context.Context, runID string) ([]models.RunStudentResult, error) {
	return m.results[runID], nil
}

func (m *mockRunRepo) Delete(ctx context.Context, id string) error {
	delete(m.runs, id)
	delete(m.results, id)
	return nil
}

type mockSummaryCache struct {
	entries     map[string]interface{}
	invalidated []string
}

func (m *mockSummaryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	value, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if summary, ok := value.(*RunSummary); ok {
		if target, ok := dest.(*RunSummary); ok {
			*target = *summary
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSummaryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string]interface{})
	}
	m.entries[key] = value
	return nil
}

func (m *mockSummaryCache) Invalidate(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	delete(m.entries, pattern)
	return nil
}

type mockRunMetrics struct {
	students int
	flagged  int
	calls    int
}

func (m *mockRunMetrics) ObserveProcessingRun(students, flagged int, duration time.Duration) {
	m.students = students
	m.flagged = flagged
	m.calls++
}

func scorePtr(v float64) *float64 { return &v }

func processingFixture() (*mockProcessingStudentRepo, *mockProcessingAssignmentRepo, *mockProcessingScoreRepo, *mockProcessingWeightRepo) {
	hw := "Homework"
	exam := "Exam"
	max := 10.0
	students := &mockProcessingStudentRepo{students: []models.Student{
		{ID: "s1", SISID: "1001", FullName: "Ada Byron", Active: true},
		{ID: "s2", SISID: "1002", FullName: "Mary Shelley", Active: true},
	}}
	assignments := &mockProcessingAssignmentRepo{assignments: []models.Assignment{
		{ID: "a1", Name: "HW 1", Category: &hw, MaxPoints: &max},
		{ID: "a2", Name: "HW 2", Category: &hw, MaxPoints: &max},
		{ID: "a3", Name: "Final", Category: &exam, MaxPoints: &max},
	}}
	scores := &mockProcessingScoreRepo{scores: []models.ScoreRecord{
		{StudentID: "s1", AssignmentID: "a1", Score: scorePtr(9), MaxPoints: &max},
		{StudentID: "s1", AssignmentID: "a2", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s1", AssignmentID: "a3", Score: scorePtr(9), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a1", Score: scorePtr(6), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a2", Score: scorePtr(7), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a3", Score: scorePtr(8), MaxPoints: &max},
	}}
	weights := &mockProcessingWeightRepo{weights: []models.CategoryWeight{
		{ID: "w1", Category: "Homework", Weight: 0.4},
		{ID: "w2", Category: "Exam", Weight: 0.6},
	}}
	return students, assignments, scores, weights
}

func newProcessingService(
	students *mockProcessingStudentRepo,
	assignments *mockProcessingAssignmentRepo,
	scores *mockProcessingScoreRepo,
	weights *mockProcessingWeightRepo,
	runs *mockRunRepo,
	cache *mockSummaryCache,
	metrics *mockRunMetrics,
) *ProcessingService {
	defaults := config.GradingConfig{
		OnlyGraded:      false,
		AllowPartial:    false,
		DetectAnomalies: true,
		SummaryCacheTTL: time.Minute,
	}
	return NewProcessingService(students, assignments, scores, weights,
		&mockScaleResolver{}, runs, cache, metrics, nil, nil, defaults)
}

func TestProcessComputesAndPersistsRun(t *testing.T) {
	students, assignments, scores, weights := processingFixture()
	runs := &mockRunRepo{}
	cache := &mockSummaryCache{}
	metrics := &mockRunMetrics{}
	svc := newProcessingService(students, assignments, scores, weights, runs, cache, metrics)

	output, err := svc.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)
	require.NotNil(t, output.Run)
	assert.Equal(t, 2, output.Run.StudentCount)
	assert.InDelta(t, 1.0, output.Run.NormalizationFactor, 1e-9)

	require.Len(t, output.Students, 2)
	// Sorted by name: Ada first. 0.85*0.4 + 0.9*0.6 = 0.88 -> B.
	assert.Equal(t, "Ada Byron", output.Students[0].Name)
	assert.InDelta(t, 0.88, output.Students[0].NormalizedPercent, 1e-9)
	assert.Equal(t, "B", output.Students[0].LetterGrade)
	// Mary: 0.65*0.4 + 0.8*0.6 = 0.74 -> C-.
	assert.Equal(t, "Mary Shelley", output.Students[1].Name)
	assert.InDelta(t, 0.74, output.Students[1].NormalizedPercent, 1e-9)
	assert.Equal(t, "C-", output.Students[1].LetterGrade)

	stored, err := runs.ListResults(context.Background(), output.Run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Ada Byron", stored[0].StudentName)

	assert.Equal(t, 1, metrics.calls)
	assert.Equal(t, 2, metrics.students)
	assert.Contains(t, cache.entries, "grades:summary:latest")
}

func TestProcessRequiresWeightConfiguration(t *testing.T) {
	students, assignments, scores, _ := processingFixture()
	svc := newProcessingService(students, assignments, scores,
		&mockProcessingWeightRepo{}, &mockRunRepo{}, &mockSummaryCache{}, &mockRunMetrics{})

	_, err := svc.Process(context.Background(), ProcessRequest{})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestProcessGradedOnlyOverride(t *testing.T) {
	students, assignments, _, weights := processingFixture()
	max := 10.0
	// Only homework has been graded so far.
	scores := &mockProcessingScoreRepo{scores: []models.ScoreRecord{
		{StudentID: "s1", AssignmentID: "a1", Score: scorePtr(9), MaxPoints: &max},
		{StudentID: "s1", AssignmentID: "a2", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a1", Score: scorePtr(6), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a2", Score: scorePtr(7), MaxPoints: &max},
	}}
	runs := &mockRunRepo{}
	svc := newProcessingService(students, assignments, scores, weights, runs, &mockSummaryCache{}, &mockRunMetrics{})

	onlyGraded := true
	output, err := svc.Process(context.Background(), ProcessRequest{OnlyGraded: &onlyGraded})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, output.Run.NormalizationFactor, 1e-9)
	// s1 homework average is 0.85; normalization scales 0.34 back to 0.85.
	assert.InDelta(t, 0.85, output.Students[0].NormalizedPercent, 1e-9)
	assert.Equal(t, "B-", output.Students[0].LetterGrade)
}

func TestProcessUsesStoredScale(t *testing.T) {
	students, assignments, scores, weights := processingFixture()
	passFail, err := grading.NewScaleFromThresholds([]grading.Threshold{
		{Min: 0, Letter: "Fail"},
		{Min: 0.7, Letter: "Pass"},
	})
	require.NoError(t, err)

	defaults := config.GradingConfig{DetectAnomalies: true, SummaryCacheTTL: time.Minute}
	svc := NewProcessingService(students, assignments, scores, weights,
		&mockScaleResolver{scales: map[string]*grading.Scale{"sc1": passFail}},
		&mockRunRepo{}, &mockSummaryCache{}, &mockRunMetrics{}, nil, nil, defaults)

	scaleID := "sc1"
	output, err := svc.Process(context.Background(), ProcessRequest{ScaleID: &scaleID})
	require.NoError(t, err)
	assert.Equal(t, "Pass", output.Students[0].LetterGrade)
	assert.Equal(t, "Pass", output.Students[1].LetterGrade)
}

func TestProcessUnknownScale(t *testing.T) {
	students, assignments, scores, weights := processingFixture()
	svc := newProcessingService(students, assignments, scores, weights, &mockRunRepo{}, &mockSummaryCache{}, &mockRunMetrics{})

	scaleID := "missing"
	_, err := svc.Process(context.Background(), ProcessRequest{ScaleID: &scaleID})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestLatestSummaryPrefersCache(t *testing.T) {
	students, assignments, scores, weights := processingFixture()
	runs := &mockRunRepo{}
	cache := &mockSummaryCache{}
	svc := newProcessingService(students, assignments, scores, weights, runs, cache, &mockRunMetrics{})

	output, err := svc.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)

	summary, err := svc.LatestSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, output.Run.ID, summary.Run.ID)
	assert.Equal(t, 2, summary.Summary.Count)
}

func TestLatestSummaryRebuildsOnCacheMiss(t *testing.T) {
	students, assignments, scores, weights := processingFixture()
	runs := &mockRunRepo{}
	cache := &mockSummaryCache{}
	svc := newProcessingService(students, assignments, scores, weights, runs, cache, &mockRunMetrics{})

	_, err := svc.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)
	cache.entries = nil

	summary, err := svc.LatestSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Summary.Count)
	assert.NotEmpty(t, summary.Histogram)
	assert.Contains(t, cache.entries, "grades:summary:latest")
}

func TestLatestSummaryWithoutRuns(t *testing.T) {
	students, assignments, scores, weights := processingFixture()
	svc := newProcessingService(students, assignments, scores, weights, &mockRunRepo{}, &mockSummaryCache{}, &mockRunMetrics{})

	_, err := svc.LatestSummary(context.Background())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDeleteRunInvalidatesSummary(t *testing.T) {
	students, assignments, scores, weights := processingFixture()
	runs := &mockRunRepo{}
	cache := &mockSummaryCache{}
	svc := newProcessingService(students, assignments, scores, weights, runs, cache, &mockRunMetrics{})

	output, err := svc.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRun(context.Background(), output.Run.ID))
	assert.Contains(t, cache.invalidated, "grades:summary:latest")

	err = svc.DeleteRun(context.Background(), output.Run.ID)
	require.Error(t, err)
}

func TestFlaggedFiltersAnomalies(t *testing.T) {
	students, assignments, _, weights := processingFixture()
	max := 10.0
	// A wide homework/exam gap flags the second student.
	scores := &mockProcessingScoreRepo{scores: []models.ScoreRecord{
		{StudentID: "s1", AssignmentID: "a1", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s1", AssignmentID: "a2", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s1", AssignmentID: "a3", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a1", Score: scorePtr(10), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a2", Score: scorePtr(9), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a3", Score: scorePtr(5), MaxPoints: &max},
	}}
	runs := &mockRunRepo{}
	svc := newProcessingService(students, assignments, scores, weights, runs, &mockSummaryCache{}, &mockRunMetrics{})

	output, err := svc.Process(context.Background(), ProcessRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Run.FlaggedCount)

	flagged, err := svc.Flagged(context.Background(), output.Run.ID)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "Mary Shelley", flagged[0].StudentName)
	assert.NotEmpty(t, flagged[0].Anomalies)
}

func TestProcessDisableAnomalies(t *testing.T) {
	students, assignments, _, weights := processingFixture()
	max := 10.0
	scores := &mockProcessingScoreRepo{scores: []models.ScoreRecord{
		{StudentID: "s1", AssignmentID: "a1", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s1", AssignmentID: "a2", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s1", AssignmentID: "a3", Score: scorePtr(8), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a1", Score: scorePtr(10), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a2", Score: scorePtr(9), MaxPoints: &max},
		{StudentID: "s2", AssignmentID: "a3", Score: scorePtr(5), MaxPoints: &max},
	}}
	svc := newProcessingService(students, assignments, scores, weights, &mockRunRepo{}, &mockSummaryCache{}, &mockRunMetrics{})

	disabled := false
	output, err := svc.Process(context.Background(), ProcessRequest{DetectAnomalies: &disabled})
	require.NoError(t, err)
	assert.Equal(t, 0, output.Run.FlaggedCount)
	for _, student := range output.Students {
		assert.Empty(t, student.Anomalies)
	}
}
