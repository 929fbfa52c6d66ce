package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursegrade/coursegrade-api/internal/models"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

type scoreRepository interface {
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.ScoreRecord, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ScoreRecord, error)
	Upsert(ctx context.Context, score *models.ScoreRecord) error
	BulkUpsert(ctx context.Context, scores []models.ScoreRecord) error
	SetExcused(ctx context.Context, studentID, assignmentID string, excused bool) error
	Delete(ctx context.Context, studentID, assignmentID string) error
}

type scoreAssignmentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
}

type scoreCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// UpsertScoreRequest records or replaces one submission score. A nil Score
// with Missing set records an acknowledged missing submission.
type UpsertScoreRequest struct {
	StudentID    string   `json:"student_id" validate:"required"`
	AssignmentID string   `json:"assignment_id" validate:"required"`
	Score        *float64 `json:"score" validate:"omitempty,gte=0"`
	MaxPoints    *float64 `json:"max_points" validate:"omitempty,gt=0"`
	Excused      bool     `json:"excused"`
	Missing      bool     `json:"missing"`
	Late         bool     `json:"late"`
}

// BulkScoreRequest records a batch of scores in one call.
type BulkScoreRequest struct {
	Scores []UpsertScoreRequest `json:"scores" validate:"required,min=1,dive"`
}

// ScoreService handles submission score use-cases.
type ScoreService struct {
	repo        scoreRepository
	assignments scoreAssignmentLookup
	cache       scoreCacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScoreService constructs the score service.
func NewScoreService(repo scoreRepository, assignments scoreAssignmentLookup, cache scoreCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{repo: repo, assignments: assignments, cache: cache, validator: validate, logger: logger}
}

// ListByAssignment returns the recorded scores for one assignment.
func (s *ScoreService) ListByAssignment(ctx context.Context, assignmentID string) ([]models.ScoreRecord, error) {
	scores, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scores")
	}
	return scores, nil
}

// ListByStudent returns the scores held by one student.
func (s *ScoreService) ListByStudent(ctx context.Context, studentID string) ([]models.ScoreRecord, error) {
	scores, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scores")
	}
	return scores, nil
}

// Upsert validates and stores a single score, defaulting the denominator to
// the assignment's configured maximum when the payload omits it.
func (s *ScoreService) Upsert(ctx context.Context, req UpsertScoreRequest) (*models.ScoreRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	record, err := s.buildRecord(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store score")
	}
	s.invalidateSummaries(ctx)
	return record, nil
}

// BulkUpsert validates and stores a batch of scores.
func (s *ScoreService) BulkUpsert(ctx context.Context, req BulkScoreRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score batch")
	}
	records := make([]models.ScoreRecord, 0, len(req.Scores))
	for _, item := range req.Scores {
		record, err := s.buildRecord(ctx, item)
		if err != nil {
			return 0, err
		}
		records = append(records, *record)
	}
	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store scores")
	}
	s.invalidateSummaries(ctx)
	return len(records), nil
}

// SetExcused flips the excused flag for one (student, assignment) pair.
func (s *ScoreService) SetExcused(ctx context.Context, studentID, assignmentID string, excused bool) error {
	if err := s.repo.SetExcused(ctx, studentID, assignmentID, excused); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update excused flag")
	}
	s.invalidateSummaries(ctx)
	return nil
}

// Delete removes a recorded score.
func (s *ScoreService) Delete(ctx context.Context, studentID, assignmentID string) error {
	if err := s.repo.Delete(ctx, studentID, assignmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete score")
	}
	s.invalidateSummaries(ctx)
	return nil
}

func (s *ScoreService) buildRecord(ctx context.Context, req UpsertScoreRequest) (*models.ScoreRecord, error) {
	assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	maxPoints := req.MaxPoints
	if maxPoints == nil {
		maxPoints = assignment.MaxPoints
	}
	record := &models.ScoreRecord{
		StudentID:    req.StudentID,
		AssignmentID: req.AssignmentID,
		Score:        req.Score,
		MaxPoints:    maxPoints,
		Excused:      req.Excused,
		Missing:      req.Missing,
		Late:         req.Late,
	}
	if req.Score != nil {
		now := time.Now().UTC()
		record.GradedAt = &now
	}
	return record, nil
}

// invalidateSummaries drops cached run summaries after any score mutation so
// the next summary read reflects the new data.
func (s *ScoreService) invalidateSummaries(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "grades:summary:*"); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}
