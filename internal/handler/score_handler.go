package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coursegrade/coursegrade-api/internal/service"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
	"github.com/coursegrade/coursegrade-api/pkg/response"
)

// ScoreHandler exposes submission score endpoints.
type ScoreHandler struct {
	scores *service.ScoreService
}

// NewScoreHandler constructs handler.
func NewScoreHandler(scores *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// Upsert godoc
// @Summary Record or replace a score
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.UpsertScoreRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores [put]
func (h *ScoreHandler) Upsert(c *gin.Context) {
	var req service.UpsertScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.scores.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// BulkUpsert godoc
// @Summary Record a batch of scores
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.BulkScoreRequest true "Score batch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scores/bulk [put]
func (h *ScoreHandler) BulkUpsert(c *gin.Context) {
	var req service.BulkScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	count, err := h.scores.BulkUpsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"stored": count}, nil)
}

// SetExcused godoc
// @Summary Mark a score excused or not
// @Tags Scores
// @Produce json
// @Param studentId path string true "Student ID"
// @Param assignmentId path string true "Assignment ID"
// @Param excused query bool true "Excused flag"
// @Success 204 {object} response.Envelope
// @Router /scores/{studentId}/{assignmentId}/excused [patch]
func (h *ScoreHandler) SetExcused(c *gin.Context) {
	excused, err := strconv.ParseBool(c.DefaultQuery("excused", "true"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "excused must be a boolean"))
		return
	}
	if err := h.scores.SetExcused(c.Request.Context(), c.Param("studentId"), c.Param("assignmentId"), excused); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a recorded score
// @Tags Scores
// @Produce json
// @Param studentId path string true "Student ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Router /scores/{studentId}/{assignmentId} [delete]
func (h *ScoreHandler) Delete(c *gin.Context) {
	if err := h.scores.Delete(c.Request.Context(), c.Param("studentId"), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
