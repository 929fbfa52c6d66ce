package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursegrade/coursegrade-api/internal/grading"
	"github.com/coursegrade/coursegrade-api/internal/models"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentScoreRepository interface {
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.ScoreRecord, error)
}

// CreateAssignmentRequest holds payload for adding catalog items.
type CreateAssignmentRequest struct {
	Name      string     `json:"name" validate:"required"`
	Category  *string    `json:"category"`
	MaxPoints *float64   `json:"max_points" validate:"omitempty,gt=0"`
	DueAt     *time.Time `json:"due_at"`
	Position  int        `json:"position"`
}

// UpdateAssignmentRequest holds payload for updating catalog items.
type UpdateAssignmentRequest struct {
	Name      string     `json:"name" validate:"required"`
	Category  *string    `json:"category"`
	MaxPoints *float64   `json:"max_points" validate:"omitempty,gt=0"`
	DueAt     *time.Time `json:"due_at"`
	Position  int        `json:"position"`
}

// AssignmentService handles catalog use-cases.
type AssignmentService struct {
	repo      assignmentRepository
	scores    assignmentScoreRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo assignmentRepository, scores assignmentScoreRepository, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, scores: scores, validator: validate, logger: logger}
}

// List returns catalog items matching the filter.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	assignments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Get returns a single catalog item.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Categories returns the distinct category names in use.
func (s *AssignmentService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

// Create adds a catalog item.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment := &models.Assignment{
		Name:      req.Name,
		Category:  req.Category,
		MaxPoints: req.MaxPoints,
		DueAt:     req.DueAt,
		Position:  req.Position,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Update modifies a catalog item.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	assignment.Name = req.Name
	assignment.Category = req.Category
	assignment.MaxPoints = req.MaxPoints
	assignment.DueAt = req.DueAt
	assignment.Position = req.Position
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return assignment, nil
}

// Delete removes a catalog item together with its recorded scores.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

// Stats computes class statistics for one assignment. Students without a
// graded score count as missing; excused students count toward neither side.
func (s *AssignmentService) Stats(ctx context.Context, id string) (*models.AssignmentStats, error) {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.scores.ListByAssignment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}

	stats := &models.AssignmentStats{AssignmentID: assignment.ID, Name: assignment.Name}
	var values []float64
	for _, record := range records {
		switch {
		case record.Excused:
			stats.Excused++
		case record.Score != nil:
			values = append(values, *record.Score)
		default:
			stats.Missing++
		}
	}
	stats.Submitted = len(values)
	if len(values) > 0 {
		mean := grading.Mean(values)
		median := grading.Median(values)
		stats.Mean = &mean
		stats.Median = &median
	}
	return stats, nil
}
