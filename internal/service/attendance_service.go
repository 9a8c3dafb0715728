package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

const dateLayout = "2006-01-02"

// AttendanceService is the per-student date to status ledger. A date with no
// entry counts as present.
type AttendanceService struct {
	roster    *RosterService
	validator *validator.Validate
	logger    *zap.Logger
}

// ToggleAttendanceResult reports the status stored by a toggle.
type ToggleAttendanceResult struct {
	StudentID    string                  `json:"student_id"`
	Date         string                  `json:"date"`
	Status       models.AttendanceStatus `json:"status"`
	AbsenceCount int                     `json:"absence_count"`
}

// StudentAttendance is the ledger view of one student.
type StudentAttendance struct {
	StudentID    string                   `json:"student_id"`
	Date         string                   `json:"date,omitempty"`
	Absent       *bool                    `json:"absent,omitempty"`
	AbsenceCount int                      `json:"absence_count"`
	AbsentDays   []string                 `json:"absent_days"`
	Entries      []models.AttendanceEntry `json:"entries"`
}

// NewAttendanceService constructs the service.
func NewAttendanceService(roster *RosterService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{roster: roster, validator: validate, logger: logger}
}

// Toggle flips the effective status of the student on date and persists it.
func (s *AttendanceService) Toggle(ctx context.Context, className, studentID, date string) (*ToggleAttendanceResult, error) {
	if err := validateDate(s.validator, date); err != nil {
		return nil, err
	}
	var result ToggleAttendanceResult
	err := s.roster.mutateStudent(ctx, className, studentID, func(student *models.Student) error {
		status := student.ToggleAttendance(date)
		result = ToggleAttendanceResult{
			StudentID:    student.ID,
			Date:         date,
			Status:       status,
			AbsenceCount: student.AbsenceCount(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("attendance toggled",
		zap.String("class", className),
		zap.String("student_id", studentID),
		zap.String("date", date),
		zap.String("status", string(result.Status)),
	)
	return &result, nil
}

// IsAbsent reads the effective status of the student on date.
func (s *AttendanceService) IsAbsent(ctx context.Context, className, studentID, date string) (bool, error) {
	if err := validateDate(s.validator, date); err != nil {
		return false, err
	}
	var absent bool
	err := s.roster.viewStudent(className, studentID, func(student *models.Student) error {
		absent = student.IsAbsent(date)
		return nil
	})
	return absent, err
}

// AbsentDays lists the dates the student was marked absent, most recent first.
func (s *AttendanceService) AbsentDays(ctx context.Context, className, studentID string) ([]string, error) {
	var days []string
	err := s.roster.viewStudent(className, studentID, func(student *models.Student) error {
		days = student.AbsentDays()
		return nil
	})
	return days, err
}

// Ledger returns the explicit entries of the student. When date is set the
// effective status for that date is included.
func (s *AttendanceService) Ledger(ctx context.Context, className, studentID, date string) (*StudentAttendance, error) {
	if date != "" {
		if err := validateDate(s.validator, date); err != nil {
			return nil, err
		}
	}
	var view StudentAttendance
	err := s.roster.viewStudent(className, studentID, func(student *models.Student) error {
		view = StudentAttendance{
			StudentID:    student.ID,
			Date:         date,
			AbsenceCount: student.AbsenceCount(),
			AbsentDays:   student.AbsentDays(),
			Entries:      student.AttendanceEntries(),
		}
		if date != "" {
			absent := student.IsAbsent(date)
			view.Absent = &absent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ClassDay lists the effective status of every student of the class on date.
func (s *AttendanceService) ClassDay(ctx context.Context, className, date string) (*models.DayRoll, error) {
	if err := validateDate(s.validator, date); err != nil {
		return nil, err
	}
	roll := &models.DayRoll{Class: className, Date: date}
	err := s.roster.viewClass(className, func(class *models.Class) error {
		roll.Entries = make([]models.DayRollEntry, len(class.Students))
		for i, student := range class.Students {
			status := student.Status(date)
			if status == models.AttendanceAbsent {
				roll.Absent++
			}
			roll.Entries[i] = models.DayRollEntry{StudentID: student.ID, Name: student.Name, Status: status}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roll, nil
}

func validateDate(validate *validator.Validate, date string) error {
	if err := validate.Var(date, "required,datetime="+dateLayout); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must use YYYY-MM-DD")
	}
	return nil
}
