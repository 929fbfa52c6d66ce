package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursegrade/coursegrade-api/internal/service"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
	"github.com/coursegrade/coursegrade-api/pkg/response"
)

// WeightHandler exposes category weight configuration endpoints.
type WeightHandler struct {
	weights *service.WeightService
}

// NewWeightHandler constructs handler.
func NewWeightHandler(weights *service.WeightService) *WeightHandler {
	return &WeightHandler{weights: weights}
}

// List godoc
// @Summary Current weight configuration
// @Tags Weights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /weights [get]
func (h *WeightHandler) List(c *gin.Context) {
	weights, err := h.weights.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// Replace godoc
// @Summary Replace weight configuration
// @Description Validates that weights sum to 1.0 (or below when allow_partial is set) before storing
// @Tags Weights
// @Accept json
// @Produce json
// @Param payload body service.SaveWeightsRequest true "Weights payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weights [put]
func (h *WeightHandler) Replace(c *gin.Context) {
	var req service.SaveWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	stored, err := h.weights.Replace(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stored, nil)
}
