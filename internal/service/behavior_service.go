package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

// BehaviorService appends behaviour events. History is append-only and the
// score moves only through Record.
type BehaviorService struct {
	roster     *RosterService
	vocabulary models.Vocabulary
	strict     bool
	validator  *validator.Validate
	logger     *zap.Logger
}

// RecordBehaviorRequest describes one behaviour event.
type RecordBehaviorRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Type string `json:"type" validate:"required,polarity"`
	Note string `json:"note" validate:"required,max=500"`
}

// RecordBehaviorResult reports the stored event and the new score.
type RecordBehaviorResult struct {
	StudentID string               `json:"student_id"`
	Event     models.BehaviorEvent `json:"event"`
	Score     int                  `json:"score"`
}

// BehaviorHistory is the ledger view of one student.
type BehaviorHistory struct {
	StudentID string                 `json:"student_id"`
	Score     int                    `json:"score"`
	Positive  int                    `json:"positive"`
	Negative  int                    `json:"negative"`
	Events    []models.BehaviorEvent `json:"events"`
}

// NewBehaviorService constructs the service. In strict mode notes must come
// from the vocabulary for their polarity.
func NewBehaviorService(roster *RosterService, vocabulary models.Vocabulary, strict bool, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &BehaviorService{roster: roster, vocabulary: vocabulary, strict: strict, validator: validate, logger: logger}
	svc.validator.RegisterValidation("polarity", func(fl validator.FieldLevel) bool {
		return models.Polarity(fl.Field().String()).Valid()
	})
	return svc
}

// Record appends an event to the student's history and persists the roster.
func (s *BehaviorService) Record(ctx context.Context, className, studentID string, req RecordBehaviorRequest) (*RecordBehaviorResult, error) {
	req.Note = strings.TrimSpace(req.Note)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	polarity := models.Polarity(req.Type)
	if s.strict && !s.vocabulary.Contains(polarity, req.Note) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "note is not in the behaviour vocabulary")
	}

	event := models.BehaviorEvent{Date: req.Date, Type: polarity, Note: req.Note}
	var result RecordBehaviorResult
	err := s.roster.mutateStudent(ctx, className, studentID, func(student *models.Student) error {
		score := student.Record(event)
		result = RecordBehaviorResult{StudentID: student.ID, Event: event, Score: score}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("behavior recorded",
		zap.String("class", className),
		zap.String("student_id", studentID),
		zap.String("type", string(polarity)),
		zap.Int("score", result.Score),
	)
	return &result, nil
}

// History returns the events in insertion order with the derived score.
func (s *BehaviorService) History(ctx context.Context, className, studentID string) (*BehaviorHistory, error) {
	var view BehaviorHistory
	err := s.roster.viewStudent(className, studentID, func(student *models.Student) error {
		view = BehaviorHistory{StudentID: student.ID, Score: student.Score(), Events: student.History()}
		for _, event := range view.Events {
			switch event.Type {
			case models.PolarityPositive:
				view.Positive++
			case models.PolarityNegative:
				view.Negative++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Vocabulary returns the configured phrases.
func (s *BehaviorService) Vocabulary() models.Vocabulary {
	return s.vocabulary
}
