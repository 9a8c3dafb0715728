package dto

import "github.com/noah-isme/sma-roster-ledger/internal/models"

// CreateClassRequest describes payload for creating a class.
type CreateClassRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddStudentRequest describes payload for adding one student.
type AddStudentRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToggleAttendanceRequest selects the date to flip.
type ToggleAttendanceRequest struct {
	Date string `json:"date" binding:"required"`
}

// RecordBehaviorRequest describes one behaviour event. Type is "pos" or "neg".
type RecordBehaviorRequest struct {
	Date string `json:"date" binding:"required"`
	Type string `json:"type" binding:"required"`
	Note string `json:"note" binding:"required"`
}

// ImportResponse wraps the import report with a short message for the user.
type ImportResponse struct {
	Message string               `json:"message"`
	Report  *models.ImportReport `json:"report"`
}
