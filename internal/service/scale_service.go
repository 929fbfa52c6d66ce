package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursegrade/coursegrade-api/internal/grading"
	"github.com/coursegrade/coursegrade-api/internal/models"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

type scaleRepository interface {
	List(ctx context.Context) ([]models.GradeScale, error)
	FindByID(ctx context.Context, id string) (*models.GradeScale, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, scale *models.GradeScale) error
	Update(ctx context.Context, scale *models.GradeScale) error
	Delete(ctx context.Context, id string) error
}

// ScaleEntryRequest is one threshold of a scale payload.
type ScaleEntryRequest struct {
	MinPercent float64 `json:"min_percent" validate:"gte=0,lte=1.5"`
	Letter     string  `json:"letter" validate:"required"`
}

// SaveScaleRequest creates or replaces a letter grade scale.
type SaveScaleRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description *string             `json:"description"`
	Entries     []ScaleEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// ScaleService handles letter scale use-cases.
type ScaleService struct {
	repo      scaleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScaleService constructs the scale service.
func NewScaleService(repo scaleRepository, validate *validator.Validate, logger *zap.Logger) *ScaleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScaleService{repo: repo, validator: validate, logger: logger}
}

// List returns all stored scales.
func (s *ScaleService) List(ctx context.Context) ([]models.GradeScale, error) {
	scales, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scales")
	}
	return scales, nil
}

// Get returns a scale with its entries.
func (s *ScaleService) Get(ctx context.Context, id string) (*models.GradeScale, error) {
	scale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scale not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scale")
	}
	return scale, nil
}

// Default returns the built-in scale as a transient model.
func (s *ScaleService) Default() *models.GradeScale {
	thresholds := grading.DefaultScale().Thresholds()
	entries := make([]models.GradeScaleEntry, len(thresholds))
	for i, threshold := range thresholds {
		entries[i] = models.GradeScaleEntry{MinPercent: threshold.Min, Letter: threshold.Letter}
	}
	return &models.GradeScale{Name: "default", Entries: entries}
}

// Create validates and stores a new scale.
func (s *ScaleService) Create(ctx context.Context, req SaveScaleRequest) (*models.GradeScale, error) {
	scale, err := s.buildScale(ctx, req, "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, scale); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scale")
	}
	return scale, nil
}

// Update validates and replaces an existing scale.
func (s *ScaleService) Update(ctx context.Context, id string, req SaveScaleRequest) (*models.GradeScale, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	scale, err := s.buildScale(ctx, req, id)
	if err != nil {
		return nil, err
	}
	scale.ID = id
	if err := s.repo.Update(ctx, scale); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update scale")
	}
	return scale, nil
}

// Delete removes a stored scale.
func (s *ScaleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete scale")
	}
	return nil
}

// Resolver converts a stored scale into an engine resolver.
func (s *ScaleService) Resolver(ctx context.Context, id string) (*grading.Scale, error) {
	stored, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return scaleToResolver(stored)
}

func (s *ScaleService) buildScale(ctx context.Context, req SaveScaleRequest, excludeID string) (*models.GradeScale, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scale payload")
	}
	exists, err := s.repo.ExistsByName(ctx, req.Name, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate scale name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "scale name already used")
	}

	scale := &models.GradeScale{
		Name:        req.Name,
		Description: req.Description,
		Entries:     make([]models.GradeScaleEntry, len(req.Entries)),
	}
	for i, entry := range req.Entries {
		scale.Entries[i] = models.GradeScaleEntry{MinPercent: entry.MinPercent, Letter: entry.Letter}
	}

	// Thresholds must form a usable resolver before anything persists.
	if _, err := scaleToResolver(scale); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidScale.Code, appErrors.ErrInvalidScale.Status, "unusable scale thresholds")
	}
	return scale, nil
}

func scaleToResolver(scale *models.GradeScale) (*grading.Scale, error) {
	thresholds := make([]grading.Threshold, len(scale.Entries))
	for i, entry := range scale.Entries {
		thresholds[i] = grading.Threshold{Min: entry.MinPercent, Letter: entry.Letter}
	}
	return grading.NewScaleFromThresholds(thresholds)
}
