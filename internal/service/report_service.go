package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/coursegrade/coursegrade-api/internal/models"
	"github.com/coursegrade/coursegrade-api/pkg/config"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
	"github.com/coursegrade/coursegrade-api/pkg/export"
)

type reportRunRepository interface {
	FindByID(ctx context.Context, id string) (*models.ProcessingRun, error)
	Latest(ctx context.Context) (*models.ProcessingRun, error)
	ListResults(ctx context.Context, runID string) ([]models.RunStudentResult, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Report is a rendered report document with transfer metadata for the
// HTTP layer.
type Report struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ReportService renders grade runs into downloadable CSV and PDF documents.
type ReportService struct {
	runs   reportRunRepository
	cache  reportCache
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	cfg    config.ReportsConfig
}

// NewReportService constructs the report service.
func NewReportService(runs reportRunRepository, cache reportCache, logger *zap.Logger, cfg config.ReportsConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		runs:   runs,
		cache:  cache,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		cfg:    cfg,
	}
}

// GradeCSV renders the per-student results of a run as a CSV file. An empty
// runID targets the latest run.
func (s *ReportService) GradeCSV(ctx context.Context, runID string) (*Report, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report rendering is disabled")
	}
	run, results, err := s.loadRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("reports:csv:%s", run.ID)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	dataset := export.Dataset{
		Headers: []string{"SIS ID", "Student", "Raw %", "Final %", "Letter", "Modified Letter", "Anomalies"},
		Rows:    make([]map[string]string, 0, len(results)),
	}
	for _, result := range results {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"SIS ID":          result.StudentID,
			"Student":         result.StudentName,
			"Raw %":           fmt.Sprintf("%.2f", result.RawPercent*100),
			"Final %":         fmt.Sprintf("%.2f", result.NormalizedPercent*100),
			"Letter":          result.LetterGrade,
			"Modified Letter": derefOrEmpty(result.ModifiedLetterGrade),
			"Anomalies":       strings.Join(result.Anomalies, "; "),
		})
	}

	body, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
	}
	report := &Report{
		FileName:    fmt.Sprintf("grades-%s.csv", run.CreatedAt.Format("2006-01-02")),
		ContentType: "text/csv",
		Body:        body,
	}
	s.toCache(ctx, cacheKey, report)
	return report, nil
}

// GradePDF renders a run into a printable grade report with a cohort
// overview section followed by the full roster table and an anomaly list.
func (s *ReportService) GradePDF(ctx context.Context, runID string) (*Report, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report rendering is disabled")
	}
	run, results, err := s.loadRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("reports:pdf:%s", run.ID)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	roster := export.Dataset{
		Headers: []string{"Student", "Final %", "Letter"},
		Rows:    make([]map[string]string, 0, len(results)),
	}
	alerts := make([]string, 0)
	for _, result := range results {
		letter := result.LetterGrade
		if result.ModifiedLetterGrade != nil {
			letter = fmt.Sprintf("%s (%s)", letter, *result.ModifiedLetterGrade)
		}
		roster.Rows = append(roster.Rows, map[string]string{
			"Student": result.StudentName,
			"Final %": fmt.Sprintf("%.1f", result.NormalizedPercent*100),
			"Letter":  letter,
		})
		for _, anomaly := range result.Anomalies {
			alerts = append(alerts, fmt.Sprintf("%s: %s", result.StudentName, anomaly))
		}
	}

	sections := []export.Section{
		{
			Title: "Overview",
			Table: export.Dataset{
				Headers: []string{"Metric", "Value"},
				Rows: []map[string]string{
					{"Metric": "Students", "Value": fmt.Sprintf("%d", run.StudentCount)},
					{"Metric": "Flagged", "Value": fmt.Sprintf("%d", run.FlaggedCount)},
					{"Metric": "Normalization factor", "Value": fmt.Sprintf("%.4f", run.NormalizationFactor)},
					{"Metric": "Generated", "Value": run.CreatedAt.Format(time.RFC3339)},
				},
			},
		},
		{
			Title: "Roster",
			Table: roster,
		},
	}
	if len(alerts) > 0 {
		sections = append(sections, export.Section{
			Title:  "Anomalies",
			Table:  export.Dataset{Headers: []string{"Flagged students"}, Rows: []map[string]string{}},
			Alerts: alerts,
		})
	}

	body, err := s.pdf.RenderSections("Course Grade Report", sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
	}
	report := &Report{
		FileName:    fmt.Sprintf("grades-%s.pdf", run.CreatedAt.Format("2006-01-02")),
		ContentType: "application/pdf",
		Body:        body,
	}
	s.toCache(ctx, cacheKey, report)
	return report, nil
}

func (s *ReportService) loadRun(ctx context.Context, runID string) (*models.ProcessingRun, []models.RunStudentResult, error) {
	var (
		run *models.ProcessingRun
		err error
	)
	if runID == "" {
		run, err = s.runs.Latest(ctx)
	} else {
		run, err = s.runs.FindByID(ctx, runID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	results, err := s.runs.ListResults(ctx, run.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run results")
	}
	return run, results, nil
}

func (s *ReportService) fromCache(ctx context.Context, key string) *Report {
	if s.cache == nil {
		return nil
	}
	var cached Report
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		return nil
	}
	return &cached
}

func (s *ReportService) toCache(ctx context.Context, key string, report *Report) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache report", zap.String("key", key), zap.Error(err))
	}
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
