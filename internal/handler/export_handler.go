package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-roster-ledger/internal/service"
	"github.com/noah-isme/sma-roster-ledger/pkg/response"
)

type exportService interface {
	ClassTSV(ctx context.Context, className string) (string, error)
	ClassFile(ctx context.Context, className, format string) (*service.ExportFile, error)
	StudentReport(ctx context.Context, className, studentID string) (string, error)
}

// ExportHandler serves read-only roster exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ClassExport godoc
// @Summary Export a class
// @Description Without a format the tab separated text is returned inline; csv and pdf download as files.
// @Tags Export
// @Produce plain
// @Param class path string true "Class name"
// @Param format query string false "tsv, csv or pdf"
// @Success 200 {string} string
// @Router /classes/{class}/export [get]
func (h *ExportHandler) ClassExport(c *gin.Context) {
	format := strings.ToLower(c.Query("format"))
	if format == "" {
		text, err := h.service.ClassTSV(c.Request.Context(), c.Param("class"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Text(c, http.StatusOK, text)
		return
	}
	file, err := h.service.ClassFile(c.Request.Context(), c.Param("class"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// StudentReport godoc
// @Summary Narrative report for one student
// @Tags Export
// @Produce plain
// @Param class path string true "Class name"
// @Param id path string true "Student ID"
// @Success 200 {string} string
// @Router /classes/{class}/students/{id}/report [get]
func (h *ExportHandler) StudentReport(c *gin.Context) {
	text, err := h.service.StudentReport(c.Request.Context(), c.Param("class"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, text)
}
