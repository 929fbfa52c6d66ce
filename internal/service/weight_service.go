package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coursegrade/coursegrade-api/internal/grading"
	"github.com/coursegrade/coursegrade-api/internal/models"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

type weightRepository interface {
	List(ctx context.Context) ([]models.CategoryWeight, error)
	Replace(ctx context.Context, weights []models.CategoryWeight) error
}

// CategoryWeightRequest is one category in a weight configuration payload.
type CategoryWeightRequest struct {
	Category  string  `json:"category" validate:"required"`
	Weight    float64 `json:"weight" validate:"gt=0,lte=1"`
	DropCount int     `json:"drop_count" validate:"gte=0"`
}

// SaveWeightsRequest replaces the category weight configuration. AllowPartial
// permits a sum below 1.0 for mid-semester grading.
type SaveWeightsRequest struct {
	Weights      []CategoryWeightRequest `json:"weights" validate:"required,min=1,dive"`
	AllowPartial bool                    `json:"allow_partial"`
}

// WeightService handles the category weight configuration.
type WeightService struct {
	repo      weightRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeightService constructs the weight service.
func NewWeightService(repo weightRepository, validate *validator.Validate, logger *zap.Logger) *WeightService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightService{repo: repo, validator: validate, logger: logger}
}

// List returns the stored configuration.
func (s *WeightService) List(ctx context.Context) ([]models.CategoryWeight, error) {
	weights, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weights")
	}
	return weights, nil
}

// Replace validates the proposed configuration against the engine rules and
// swaps the stored table when it passes.
func (s *WeightService) Replace(ctx context.Context, req SaveWeightsRequest) ([]models.CategoryWeight, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weights payload")
	}

	weightMap := make(map[string]float64, len(req.Weights))
	dropMap := make(map[string]int, len(req.Weights))
	stored := make([]models.CategoryWeight, 0, len(req.Weights))
	for _, item := range req.Weights {
		if _, dup := weightMap[item.Category]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate category: "+item.Category)
		}
		weightMap[item.Category] = item.Weight
		dropMap[item.Category] = item.DropCount
		stored = append(stored, models.CategoryWeight{
			Category:  item.Category,
			Weight:    item.Weight,
			DropCount: item.DropCount,
		})
	}

	if _, err := grading.NewConfig(weightMap, dropMap, req.AllowPartial, true); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, err.Error())
	}

	if err := s.repo.Replace(ctx, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store weights")
	}
	return stored, nil
}
