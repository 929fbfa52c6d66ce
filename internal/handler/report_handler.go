package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/coursegrade/coursegrade-api/internal/service"
	"github.com/coursegrade/coursegrade-api/pkg/response"
)

// ReportHandler exposes downloadable grade reports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// CSV godoc
// @Summary Grade report as CSV
// @Description Renders a run's per-student results; omit runId for the latest run
// @Tags Reports
// @Produce text/csv
// @Param runId query string false "Run ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /reports/grades.csv [get]
func (h *ReportHandler) CSV(c *gin.Context) {
	report, err := h.reports.GradeCSV(c.Request.Context(), c.Query("runId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

// PDF godoc
// @Summary Grade report as PDF
// @Description Renders a printable summary of a run; omit runId for the latest run
// @Tags Reports
// @Produce application/pdf
// @Param runId query string false "Run ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /reports/grades.pdf [get]
func (h *ReportHandler) PDF(c *gin.Context) {
	report, err := h.reports.GradePDF(c.Request.Context(), c.Query("runId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

func serveReport(c *gin.Context, report *service.Report) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(200, report.ContentType, report.Body)
}
