package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coursegrade/coursegrade-api/internal/service"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
	"github.com/coursegrade/coursegrade-api/pkg/response"
)

// ProcessingHandler exposes grade computation endpoints.
type ProcessingHandler struct {
	processing *service.ProcessingService
}

// NewProcessingHandler constructs handler.
func NewProcessingHandler(processing *service.ProcessingService) *ProcessingHandler {
	return &ProcessingHandler{processing: processing}
}

// Process godoc
// @Summary Run grade computation
// @Description Computes weighted grades, letters and anomalies for the whole roster and stores the run
// @Tags Processing
// @Accept json
// @Produce json
// @Param payload body service.ProcessRequest false "Processing overrides"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /runs [post]
func (h *ProcessingHandler) Process(c *gin.Context) {
	var req service.ProcessRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	output, err := h.processing.Process(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, output)
}

// Summary godoc
// @Summary Latest run summary
// @Description Cohort statistics and letter histogram of the most recent run
// @Tags Processing
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /runs/summary [get]
func (h *ProcessingHandler) Summary(c *gin.Context) {
	summary, err := h.processing.LatestSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// List godoc
// @Summary List recent runs
// @Tags Processing
// @Produce json
// @Param limit query int false "Maximum runs to return"
// @Success 200 {object} response.Envelope
// @Router /runs [get]
func (h *ProcessingHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	runs, err := h.processing.ListRuns(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}

// Get godoc
// @Summary Get run with per-student results
// @Tags Processing
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /runs/{id} [get]
func (h *ProcessingHandler) Get(c *gin.Context) {
	run, results, err := h.processing.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"run": run, "results": results}, nil)
}

// Flagged godoc
// @Summary Students flagged by anomaly detection
// @Tags Processing
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /runs/{id}/flagged [get]
func (h *ProcessingHandler) Flagged(c *gin.Context) {
	flagged, err := h.processing.Flagged(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flagged, nil)
}

// Delete godoc
// @Summary Delete a stored run
// @Tags Processing
// @Produce json
// @Param id path string true "Run ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /runs/{id} [delete]
func (h *ProcessingHandler) Delete(c *gin.Context) {
	if err := h.processing.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
