package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-roster-ledger/internal/dto"
	"github.com/noah-isme/sma-roster-ledger/internal/models"
	"github.com/noah-isme/sma-roster-ledger/internal/service"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/response"
)

type importService interface {
	Import(ctx context.Context, req service.ImportRequest) (*models.ImportReport, error)
}

// ImportHandler accepts roster file uploads.
type ImportHandler struct {
	service importService
}

// NewImportHandler builds a new handler.
func NewImportHandler(service importService) *ImportHandler {
	return &ImportHandler{service: service}
}

// Import godoc
// @Summary Import students from a roster file
// @Description Accepts csv, xlsx and xls files. Every cell that looks like a new name is added.
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param class path string true "Class name"
// @Param file formData file true "Roster file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes/{class}/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrDecodeFailure, "file could not be opened"))
		return
	}
	defer file.Close()

	report, err := h.service.Import(c.Request.Context(), service.ImportRequest{
		Class:    c.Param("class"),
		Filename: header.Filename,
		Size:     header.Size,
		Source:   file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ImportResponse{
		Message: fmt.Sprintf("تمت إضافة %d طالب", report.Added),
		Report:  report,
	})
}
