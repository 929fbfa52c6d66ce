package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursegrade/coursegrade-api/internal/service"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
	"github.com/coursegrade/coursegrade-api/pkg/response"
)

// ScaleHandler exposes letter grade scale endpoints.
type ScaleHandler struct {
	scales *service.ScaleService
}

// NewScaleHandler constructs handler.
func NewScaleHandler(scales *service.ScaleService) *ScaleHandler {
	return &ScaleHandler{scales: scales}
}

// List godoc
// @Summary List grade scales
// @Tags Scales
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scales [get]
func (h *ScaleHandler) List(c *gin.Context) {
	scales, err := h.scales.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scales, nil)
}

// Default godoc
// @Summary Built-in default scale
// @Tags Scales
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scales/default [get]
func (h *ScaleHandler) Default(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.scales.Default(), nil)
}

// Get godoc
// @Summary Get grade scale
// @Tags Scales
// @Produce json
// @Param id path string true "Scale ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scales/{id} [get]
func (h *ScaleHandler) Get(c *gin.Context) {
	scale, err := h.scales.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale, nil)
}

// Create godoc
// @Summary Create grade scale
// @Tags Scales
// @Accept json
// @Produce json
// @Param payload body service.SaveScaleRequest true "Scale payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scales [post]
func (h *ScaleHandler) Create(c *gin.Context) {
	var req service.SaveScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scale, err := h.scales.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, scale)
}

// Update godoc
// @Summary Replace grade scale
// @Tags Scales
// @Accept json
// @Produce json
// @Param id path string true "Scale ID"
// @Param payload body service.SaveScaleRequest true "Scale payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scales/{id} [put]
func (h *ScaleHandler) Update(c *gin.Context) {
	var req service.SaveScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scale, err := h.scales.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale, nil)
}

// Delete godoc
// @Summary Delete grade scale
// @Tags Scales
// @Produce json
// @Param id path string true "Scale ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scales/{id} [delete]
func (h *ScaleHandler) Delete(c *gin.Context) {
	if err := h.scales.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
