package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-roster-ledger/internal/dto"
	"github.com/noah-isme/sma-roster-ledger/internal/models"
	"github.com/noah-isme/sma-roster-ledger/internal/service"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/response"
)

type attendanceService interface {
	Toggle(ctx context.Context, className, studentID, date string) (*service.ToggleAttendanceResult, error)
	Ledger(ctx context.Context, className, studentID, date string) (*service.StudentAttendance, error)
	ClassDay(ctx context.Context, className, date string) (*models.DayRoll, error)
}

type behaviorService interface {
	Record(ctx context.Context, className, studentID string, req service.RecordBehaviorRequest) (*service.RecordBehaviorResult, error)
	History(ctx context.Context, className, studentID string) (*service.BehaviorHistory, error)
	Vocabulary() models.Vocabulary
}

// LedgerHandler exposes attendance and behaviour endpoints.
type LedgerHandler struct {
	attendance attendanceService
	behavior   behaviorService
}

// NewLedgerHandler builds a new handler.
func NewLedgerHandler(attendance attendanceService, behavior behaviorService) *LedgerHandler {
	return &LedgerHandler{attendance: attendance, behavior: behavior}
}

// ToggleAttendance godoc
// @Summary Flip a student's attendance on a date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param class path string true "Class name"
// @Param id path string true "Student ID"
// @Param payload body dto.ToggleAttendanceRequest true "Date payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{class}/students/{id}/attendance/toggle [post]
func (h *LedgerHandler) ToggleAttendance(c *gin.Context) {
	var req dto.ToggleAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	result, err := h.attendance.Toggle(c.Request.Context(), c.Param("class"), c.Param("id"), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Attendance godoc
// @Summary Get a student's attendance ledger
// @Tags Attendance
// @Produce json
// @Param class path string true "Class name"
// @Param id path string true "Student ID"
// @Param date query string false "Date (YYYY-MM-DD) to report the effective status for"
// @Success 200 {object} response.Envelope
// @Router /classes/{class}/students/{id}/attendance [get]
func (h *LedgerHandler) Attendance(c *gin.Context) {
	ledger, err := h.attendance.Ledger(c.Request.Context(), c.Param("class"), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger)
}

// ClassDay godoc
// @Summary Get every student's status for a date
// @Tags Attendance
// @Produce json
// @Param class path string true "Class name"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /classes/{class}/attendance [get]
func (h *LedgerHandler) ClassDay(c *gin.Context) {
	roll, err := h.attendance.ClassDay(c.Request.Context(), c.Param("class"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roll)
}

// RecordBehavior godoc
// @Summary Append a behaviour event
// @Tags Behavior
// @Accept json
// @Produce json
// @Param class path string true "Class name"
// @Param id path string true "Student ID"
// @Param payload body dto.RecordBehaviorRequest true "Behaviour payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{class}/students/{id}/behavior [post]
func (h *LedgerHandler) RecordBehavior(c *gin.Context) {
	var req dto.RecordBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid behavior payload"))
		return
	}
	result, err := h.behavior.Record(c.Request.Context(), c.Param("class"), c.Param("id"), service.RecordBehaviorRequest{
		Date: req.Date,
		Type: req.Type,
		Note: req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// BehaviorHistory godoc
// @Summary Get a student's behaviour history
// @Tags Behavior
// @Produce json
// @Param class path string true "Class name"
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{class}/students/{id}/behavior [get]
func (h *LedgerHandler) BehaviorHistory(c *gin.Context) {
	history, err := h.behavior.History(c.Request.Context(), c.Param("class"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}

// Vocabulary godoc
// @Summary List suggested behaviour phrases
// @Tags Behavior
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /vocabulary [get]
func (h *LedgerHandler) Vocabulary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.behavior.Vocabulary())
}
