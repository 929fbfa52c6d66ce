package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/coursegrade/coursegrade-api/internal/middleware"
	"github.com/coursegrade/coursegrade-api/internal/models"
	"github.com/coursegrade/coursegrade-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth        *AuthHandler
	Students    *StudentHandler
	Assignments *AssignmentHandler
	Scores      *ScoreHandler
	Scales      *ScaleHandler
	Weights     *WeightHandler
	Processing  *ProcessingHandler
	Reports     *ReportHandler
	Metrics     *MetricsHandler
}

// Register mounts all API routes under the given prefix. Routes that mutate
// the gradebook require the instructor or admin role; assistants get
// read-only access plus score entry.
func Register(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", middleware.JWT(auth), h.Auth.Logout)
		authGroup.POST("/change-password", middleware.JWT(auth), h.Auth.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor, models.RoleAssistant)

	students := protected.Group("/students")
	{
		students.GET("", anyRole, h.Students.List)
		students.GET("/:id", anyRole, h.Students.Get)
		students.GET("/:id/scores", anyRole, h.Students.Scores)
		students.POST("", staff, h.Students.Create)
		students.PUT("/:id", staff, h.Students.Update)
		students.DELETE("/:id", staff, h.Students.Deactivate)
	}

	assignments := protected.Group("/assignments")
	{
		assignments.GET("", anyRole, h.Assignments.List)
		assignments.GET("/categories", anyRole, h.Assignments.Categories)
		assignments.GET("/:id", anyRole, h.Assignments.Get)
		assignments.GET("/:id/stats", anyRole, h.Assignments.Stats)
		assignments.GET("/:id/scores", anyRole, h.Assignments.Scores)
		assignments.POST("", staff, h.Assignments.Create)
		assignments.PUT("/:id", staff, h.Assignments.Update)
		assignments.DELETE("/:id", staff, h.Assignments.Delete)
	}

	scores := protected.Group("/scores")
	{
		scores.PUT("", anyRole, h.Scores.Upsert)
		scores.PUT("/bulk", anyRole, h.Scores.BulkUpsert)
		scores.PATCH("/:studentId/:assignmentId/excused", staff, h.Scores.SetExcused)
		scores.DELETE("/:studentId/:assignmentId", staff, h.Scores.Delete)
	}

	scales := protected.Group("/scales")
	{
		scales.GET("", anyRole, h.Scales.List)
		scales.GET("/default", anyRole, h.Scales.Default)
		scales.GET("/:id", anyRole, h.Scales.Get)
		scales.POST("", staff, h.Scales.Create)
		scales.PUT("/:id", staff, h.Scales.Update)
		scales.DELETE("/:id", staff, h.Scales.Delete)
	}

	weights := protected.Group("/weights")
	{
		weights.GET("", anyRole, h.Weights.List)
		weights.PUT("", staff, h.Weights.Replace)
	}

	runs := protected.Group("/runs")
	{
		runs.POST("", staff, h.Processing.Process)
		runs.GET("", anyRole, h.Processing.List)
		runs.GET("/summary", anyRole, h.Processing.Summary)
		runs.GET("/:id", anyRole, h.Processing.Get)
		runs.GET("/:id/flagged", anyRole, h.Processing.Flagged)
		runs.DELETE("/:id", staff, h.Processing.Delete)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/grades.csv", anyRole, h.Reports.CSV)
		reports.GET("/grades.pdf", anyRole, h.Reports.PDF)
	}

	protected.GET("/metrics/snapshot", staff, h.Metrics.Snapshot)
}
