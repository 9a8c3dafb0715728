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

type rosterService interface {
	ListClasses(ctx context.Context) []models.ClassSummary
	CreateClass(ctx context.Context, req service.ClassRequest) (*models.ClassSummary, error)
	DeleteClass(ctx context.Context, name string) error
	Reset(ctx context.Context) error
	Students(ctx context.Context, className, date string) ([]models.StudentSummary, error)
	AddStudent(ctx context.Context, className string, req service.AddStudentRequest) (*models.StudentSummary, error)
	RemoveStudent(ctx context.Context, className, studentID string) error
	StudentDetail(ctx context.Context, className, studentID string) (*models.StudentDetail, error)
}

// RosterHandler exposes class and student endpoints.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler builds a new handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// ListClasses godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *RosterHandler) ListClasses(c *gin.Context) {
	classes := h.service.ListClasses(c.Request.Context())
	response.JSON(c, http.StatusOK, classes, map[string]interface{}{"total": len(classes)})
}

// CreateClass godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *RosterHandler) CreateClass(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.service.CreateClass(c.Request.Context(), service.ClassRequest{Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// DeleteClass godoc
// @Summary Delete class with all of its students
// @Tags Classes
// @Param class path string true "Class name"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /classes/{class} [delete]
func (h *RosterHandler) DeleteClass(c *gin.Context) {
	if err := h.service.DeleteClass(c.Request.Context(), c.Param("class")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reset godoc
// @Summary Delete every class
// @Tags Classes
// @Success 204
// @Router /classes [delete]
func (h *RosterHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListStudents godoc
// @Summary List students of a class
// @Tags Students
// @Produce json
// @Param class path string true "Class name"
// @Param date query string false "Date (YYYY-MM-DD) for the absence flag"
// @Success 200 {object} response.Envelope
// @Router /classes/{class}/students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	date := c.Query("date")
	students, err := h.service.Students(c.Request.Context(), c.Param("class"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"total": len(students)}
	if date != "" {
		meta["date"] = date
	}
	response.JSON(c, http.StatusOK, students, meta)
}

// AddStudent godoc
// @Summary Add student to a class
// @Tags Students
// @Accept json
// @Produce json
// @Param class path string true "Class name"
// @Param payload body dto.AddStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{class}/students [post]
func (h *RosterHandler) AddStudent(c *gin.Context) {
	var req dto.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.service.AddStudent(c.Request.Context(), c.Param("class"), service.AddStudentRequest{Name: req.Name})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// RemoveStudent godoc
// @Summary Remove student from a class
// @Tags Students
// @Param class path string true "Class name"
// @Param id path string true "Student ID"
// @Success 204
// @Router /classes/{class}/students/{id} [delete]
func (h *RosterHandler) RemoveStudent(c *gin.Context) {
	if err := h.service.RemoveStudent(c.Request.Context(), c.Param("class"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StudentDetail godoc
// @Summary Get a student with both ledgers
// @Tags Students
// @Produce json
// @Param class path string true "Class name"
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{class}/students/{id} [get]
func (h *RosterHandler) StudentDetail(c *gin.Context) {
	detail, err := h.service.StudentDetail(c.Request.Context(), c.Param("class"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
