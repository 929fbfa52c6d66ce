package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/coursegrade/coursegrade-api/internal/grading"
	"github.com/coursegrade/coursegrade-api/internal/models"
	"github.com/coursegrade/coursegrade-api/pkg/config"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

const summaryCacheKey = "grades:summary:latest"

type processingStudentRepository interface {
	ListActive(ctx context.Context) ([]models.Student, error)
}

type processingAssignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
}

type processingScoreRepository interface {
	ListAll(ctx context.Context) ([]models.ScoreRecord, error)
}

type processingWeightRepository interface {
	List(ctx context.Context) ([]models.CategoryWeight, error)
}

type processingScaleResolver interface {
	Resolver(ctx context.Context, id string) (*grading.Scale, error)
}

type runRepository interface {
	Create(ctx context.Context, run *models.ProcessingRun, results []models.RunStudentResult) error
	FindByID(ctx context.Context, id string) (*models.ProcessingRun, error)
	Latest(ctx context.Context) (*models.ProcessingRun, error)
	List(ctx context.Context, limit int) ([]models.ProcessingRun, error)
	ListResults(ctx context.Context, runID string) ([]models.RunStudentResult, error)
	Delete(ctx context.Context, id string) error
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type runMetrics interface {
	ObserveProcessingRun(students, flagged int, duration time.Duration)
}

// ProcessRequest triggers a grade computation. Unset booleans fall back to
// the configured defaults.
type ProcessRequest struct {
	ScaleID         *string `json:"scale_id"`
	ModifiedScaleID *string `json:"modified_scale_id"`
	OnlyGraded      *bool   `json:"only_graded"`
	AllowPartial    *bool   `json:"allow_partial"`
	DetectAnomalies *bool   `json:"detect_anomalies"`
}

// ProcessOutput is the full outcome of a run: the persisted run record plus
// the in-memory engine results for immediate consumption.
type ProcessOutput struct {
	Run       *models.ProcessingRun    `json:"run"`
	Students  []*grading.StudentResult `json:"students"`
	Summary   grading.CohortSummary    `json:"summary"`
	Histogram []grading.LetterCount    `json:"histogram"`
}

// RunSummary is the cached, lightweight view of the latest run.
type RunSummary struct {
	Run       *models.ProcessingRun `json:"run"`
	Summary   grading.CohortSummary `json:"summary"`
	Histogram []grading.LetterCount `json:"histogram"`
}

// ProcessingService orchestrates grade computation runs: it loads the weight
// configuration, roster, catalog and scores, executes the engine, persists
// the outcome and maintains the summary cache.
type ProcessingService struct {
	students    processingStudentRepository
	assignments processingAssignmentRepository
	scores      processingScoreRepository
	weights     processingWeightRepository
	scales      processingScaleResolver
	runs        runRepository
	cache       summaryCache
	metrics     runMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	defaults    config.GradingConfig
}

// NewProcessingService constructs the processing service.
func NewProcessingService(
	students processingStudentRepository,
	assignments processingAssignmentRepository,
	scores processingScoreRepository,
	weights processingWeightRepository,
	scales processingScaleResolver,
	runs runRepository,
	cache summaryCache,
	metrics runMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	defaults config.GradingConfig,
) *ProcessingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessingService{
		students:    students,
		assignments: assignments,
		scores:      scores,
		weights:     weights,
		scales:      scales,
		runs:        runs,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		defaults:    defaults,
	}
}

// Process executes a full grade computation run and persists the outcome.
func (s *ProcessingService) Process(ctx context.Context, req ProcessRequest) (*ProcessOutput, error) {
	started := time.Now()

	onlyGraded := s.defaults.OnlyGraded
	if req.OnlyGraded != nil {
		onlyGraded = *req.OnlyGraded
	}
	allowPartial := s.defaults.AllowPartial
	if req.AllowPartial != nil {
		allowPartial = *req.AllowPartial
	}
	detectAnomalies := s.defaults.DetectAnomalies
	if req.DetectAnomalies != nil {
		detectAnomalies = *req.DetectAnomalies
	}

	cfg, err := s.loadEngineConfig(ctx, allowPartial, onlyGraded)
	if err != nil {
		return nil, err
	}

	scale, err := s.resolveScale(ctx, req.ScaleID)
	if err != nil {
		return nil, err
	}

	opts := []grading.ProcessorOption{}
	if !detectAnomalies {
		opts = append(opts, grading.WithoutAnomalyDetection())
	}
	if len(s.defaults.PlaceholderPatterns) > 0 {
		opts = append(opts, grading.WithPlaceholderPatterns(s.defaults.PlaceholderPatterns))
	}
	if req.ModifiedScaleID != nil {
		modified, err := s.resolveScale(ctx, req.ModifiedScaleID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grading.WithModifiedScale(modified))
	}

	engineAssignments, engineStudents, err := s.loadRunInputs(ctx)
	if err != nil {
		return nil, err
	}

	processor := grading.NewProcessor(cfg, scale, opts...)
	result := processor.Run(engineAssignments, engineStudents)

	sorted := &grading.Result{
		Students:            result.SortedByName(true),
		NormalizationFactor: result.NormalizationFactor,
		ActiveCategories:    result.ActiveCategories,
	}

	run := &models.ProcessingRun{
		ScaleID:             req.ScaleID,
		ModifiedScaleID:     req.ModifiedScaleID,
		OnlyGraded:          onlyGraded,
		AllowPartial:        allowPartial,
		DetectAnomalies:     detectAnomalies,
		NormalizationFactor: sorted.NormalizationFactor,
		StudentCount:        len(sorted.Students),
		FlaggedCount:        len(sorted.Flagged()),
	}

	stored := make([]models.RunStudentResult, 0, len(sorted.Students))
	for _, student := range sorted.Students {
		entry := models.RunStudentResult{
			StudentID:         student.StudentID,
			StudentName:       student.Name,
			RawPercent:        student.RawPercent,
			NormalizedPercent: student.NormalizedPercent,
			LetterGrade:       student.LetterGrade,
			Anomalies:         pq.StringArray(student.Anomalies),
		}
		if student.ModifiedLetterGrade != "" {
			modified := student.ModifiedLetterGrade
			entry.ModifiedLetterGrade = &modified
		}
		stored = append(stored, entry)
	}

	if err := s.runs.Create(ctx, run, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist run")
	}

	output := &ProcessOutput{
		Run:       run,
		Students:  sorted.Students,
		Summary:   sorted.Summary(),
		Histogram: sorted.LetterHistogram(),
	}

	if s.cache != nil {
		summary := &RunSummary{Run: run, Summary: output.Summary, Histogram: output.Histogram}
		if err := s.cache.Set(ctx, summaryCacheKey, summary, s.defaults.SummaryCacheTTL); err != nil {
			s.logger.Warn("failed to cache run summary", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveProcessingRun(run.StudentCount, run.FlaggedCount, time.Since(started))
	}

	s.logger.Info("grade processing run completed",
		zap.String("run_id", run.ID),
		zap.Int("students", run.StudentCount),
		zap.Int("flagged", run.FlaggedCount),
		zap.Float64("normalization_factor", run.NormalizationFactor),
		zap.Duration("duration", time.Since(started)),
	)
	return output, nil
}

// LatestSummary returns the summary of the most recent run, preferring the
// cache and rebuilding from stored results on a miss.
func (s *ProcessingService) LatestSummary(ctx context.Context) (*RunSummary, error) {
	if s.cache != nil {
		var cached RunSummary
		hit, err := s.cache.Get(ctx, summaryCacheKey, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	run, err := s.runs.Latest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no processing run recorded yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest run")
	}
	summary, err := s.summarizeStoredRun(ctx, run)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summaryCacheKey, summary, s.defaults.SummaryCacheTTL); err != nil {
			s.logger.Warn("failed to cache run summary", zap.Error(err))
		}
	}
	return summary, nil
}

// GetRun returns a stored run with its per-student results.
func (s *ProcessingService) GetRun(ctx context.Context, id string) (*models.ProcessingRun, []models.RunStudentResult, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	results, err := s.runs.ListResults(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run results")
	}
	return run, results, nil
}

// ListRuns returns recent runs newest first.
func (s *ProcessingService) ListRuns(ctx context.Context, limit int) ([]models.ProcessingRun, error) {
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list runs")
	}
	return runs, nil
}

// DeleteRun removes a stored run and drops the cached summary, since it may
// describe the deleted run.
func (s *ProcessingService) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.runs.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	if err := s.runs.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete run")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, summaryCacheKey); err != nil {
			s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
		}
	}
	return nil
}

// Flagged returns the anomaly-carrying results of a stored run.
func (s *ProcessingService) Flagged(ctx context.Context, runID string) ([]models.RunStudentResult, error) {
	_, results, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	flagged := make([]models.RunStudentResult, 0)
	for _, result := range results {
		if len(result.Anomalies) > 0 {
			flagged = append(flagged, result)
		}
	}
	return flagged, nil
}

func (s *ProcessingService) loadEngineConfig(ctx context.Context, allowPartial, onlyGraded bool) (*grading.Config, error) {
	stored, err := s.weights.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weights")
	}
	if len(stored) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no category weights configured")
	}
	weights := make(map[string]float64, len(stored))
	drops := make(map[string]int, len(stored))
	for _, item := range stored {
		weights[item.Category] = item.Weight
		if item.DropCount > 0 {
			drops[item.Category] = item.DropCount
		}
	}
	cfg, err := grading.NewConfig(weights, drops, allowPartial, onlyGraded)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, err.Error())
	}
	return cfg, nil
}

func (s *ProcessingService) resolveScale(ctx context.Context, id *string) (*grading.Scale, error) {
	if id == nil || *id == "" {
		return grading.DefaultScale(), nil
	}
	return s.scales.Resolver(ctx, *id)
}

// loadRunInputs assembles the engine's view of the course: the catalog and
// every active student with a score map keyed by assignment ID.
func (s *ProcessingService) loadRunInputs(ctx context.Context) ([]grading.Assignment, []grading.Student, error) {
	assignments, err := s.assignments.List(ctx, models.AssignmentFilter{})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	scores, err := s.scores.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}

	engineAssignments := make([]grading.Assignment, 0, len(assignments))
	for _, a := range assignments {
		item := grading.Assignment{ID: a.ID, Name: a.Name, MaxPoints: a.MaxPoints}
		if a.Category != nil {
			item.Category = *a.Category
		}
		engineAssignments = append(engineAssignments, item)
	}

	scoresByStudent := make(map[string]map[string]grading.Score, len(students))
	for _, record := range scores {
		byAssignment, ok := scoresByStudent[record.StudentID]
		if !ok {
			byAssignment = make(map[string]grading.Score)
			scoresByStudent[record.StudentID] = byAssignment
		}
		byAssignment[record.AssignmentID] = grading.Score{
			AssignmentID: record.AssignmentID,
			Score:        record.Score,
			MaxPoints:    record.MaxPoints,
			Excused:      record.Excused,
			Missing:      record.Missing,
			Late:         record.Late,
		}
	}

	engineStudents := make([]grading.Student, 0, len(students))
	for _, student := range students {
		entry := grading.Student{
			ID:     student.ID,
			Name:   student.FullName,
			SISID:  student.SISID,
			Scores: scoresByStudent[student.ID],
		}
		if student.Email != nil {
			entry.Email = *student.Email
		}
		if entry.Scores == nil {
			entry.Scores = map[string]grading.Score{}
		}
		engineStudents = append(engineStudents, entry)
	}
	return engineAssignments, engineStudents, nil
}

// summarizeStoredRun rebuilds a cohort summary from persisted percentages.
func (s *ProcessingService) summarizeStoredRun(ctx context.Context, run *models.ProcessingRun) (*RunSummary, error) {
	results, err := s.runs.ListResults(ctx, run.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run results")
	}

	rebuilt := &grading.Result{Students: make([]*grading.StudentResult, 0, len(results))}
	for _, result := range results {
		rebuilt.Students = append(rebuilt.Students, &grading.StudentResult{
			StudentID:         result.StudentID,
			Name:              result.StudentName,
			RawPercent:        result.RawPercent,
			NormalizedPercent: result.NormalizedPercent,
			LetterGrade:       result.LetterGrade,
			Anomalies:         result.Anomalies,
		})
	}
	return &RunSummary{
		Run:       run,
		Summary:   rebuilt.Summary(),
		Histogram: rebuilt.LetterHistogram(),
	}, nil
}
