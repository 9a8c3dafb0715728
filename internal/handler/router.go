package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler served by the roster API.
type Handlers struct {
	Roster  *RosterHandler
	Import  *ImportHandler
	Ledger  *LedgerHandler
	Export  *ExportHandler
	Metrics *MetricsHandler
}

// RegisterRoutes mounts the roster routes under the given group.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/metrics", h.Metrics.Prometheus)
		r.GET("/metrics/summary", h.Metrics.Summary)
	}

	classes := r.Group("/classes")
	classes.GET("", h.Roster.ListClasses)
	classes.POST("", h.Roster.CreateClass)
	classes.DELETE("", h.Roster.Reset)
	classes.DELETE("/:class", h.Roster.DeleteClass)

	classes.GET("/:class/students", h.Roster.ListStudents)
	classes.POST("/:class/students", h.Roster.AddStudent)
	classes.GET("/:class/students/:id", h.Roster.StudentDetail)
	classes.DELETE("/:class/students/:id", h.Roster.RemoveStudent)

	classes.POST("/:class/import", h.Import.Import)

	classes.GET("/:class/attendance", h.Ledger.ClassDay)
	classes.POST("/:class/students/:id/attendance/toggle", h.Ledger.ToggleAttendance)
	classes.GET("/:class/students/:id/attendance", h.Ledger.Attendance)
	classes.POST("/:class/students/:id/behavior", h.Ledger.RecordBehavior)
	classes.GET("/:class/students/:id/behavior", h.Ledger.BehaviorHistory)

	classes.GET("/:class/export", h.Export.ClassExport)
	classes.GET("/:class/students/:id/report", h.Export.StudentReport)

	r.GET("/vocabulary", h.Ledger.Vocabulary)
}
