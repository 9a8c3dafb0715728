package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	"github.com/noah-isme/sma-roster-ledger/internal/service"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

type attendanceServiceMock struct {
	toggled string
	err     error
}

func (m *attendanceServiceMock) Toggle(ctx context.Context, className, studentID, date string) (*service.ToggleAttendanceResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.toggled = date
	return &service.ToggleAttendanceResult{StudentID: studentID, Date: date, Status: models.AttendanceAbsent, AbsenceCount: 1}, nil
}

func (m *attendanceServiceMock) Ledger(ctx context.Context, className, studentID, date string) (*service.StudentAttendance, error) {
	return &service.StudentAttendance{StudentID: studentID}, m.err
}

func (m *attendanceServiceMock) ClassDay(ctx context.Context, className, date string) (*models.DayRoll, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.DayRoll{Class: className, Date: date}, nil
}

type behaviorServiceMock struct {
	recorded service.RecordBehaviorRequest
	err      error
}

func (m *behaviorServiceMock) Record(ctx context.Context, className, studentID string, req service.RecordBehaviorRequest) (*service.RecordBehaviorResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.recorded = req
	return &service.RecordBehaviorResult{StudentID: studentID, Score: 1}, nil
}

func (m *behaviorServiceMock) History(ctx context.Context, className, studentID string) (*service.BehaviorHistory, error) {
	return &service.BehaviorHistory{StudentID: studentID}, m.err
}

func (m *behaviorServiceMock) Vocabulary() models.Vocabulary {
	return service.DefaultVocabulary()
}

func TestLedgerHandlerToggleAttendance(t *testing.T) {
	attendance := &attendanceServiceMock{}
	handler := NewLedgerHandler(attendance, &behaviorServiceMock{})
	body, _ := json.Marshal(map[string]string{"date": "2024-03-01"})
	c, w := newJSONContext(http.MethodPost, "/classes/7A/students/s1/attendance/toggle", body)
	c.Params = gin.Params{{Key: "class", Value: "7A"}, {Key: "id", Value: "s1"}}

	handler.ToggleAttendance(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03-01", attendance.toggled)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "absent", data["status"])
}

func TestLedgerHandlerToggleAttendanceMissingDate(t *testing.T) {
	handler := NewLedgerHandler(&attendanceServiceMock{}, &behaviorServiceMock{})
	c, w := newJSONContext(http.MethodPost, "/classes/7A/students/s1/attendance/toggle", []byte(`{}`))

	handler.ToggleAttendance(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLedgerHandlerClassDayInvalidDate(t *testing.T) {
	handler := NewLedgerHandler(&attendanceServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "invalid date")}, &behaviorServiceMock{})
	c, w := newJSONContext(http.MethodGet, "/classes/7A/attendance?date=bad", nil)
	c.Params = gin.Params{{Key: "class", Value: "7A"}}

	handler.ClassDay(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLedgerHandlerRecordBehavior(t *testing.T) {
	behavior := &behaviorServiceMock{}
	handler := NewLedgerHandler(&attendanceServiceMock{}, behavior)
	body, _ := json.Marshal(map[string]string{"date": "2024-03-01", "type": "pos", "note": "مشاركة"})
	c, w := newJSONContext(http.MethodPost, "/classes/7A/students/s1/behavior", body)
	c.Params = gin.Params{{Key: "class", Value: "7A"}, {Key: "id", Value: "s1"}}

	handler.RecordBehavior(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pos", behavior.recorded.Type)
	assert.Equal(t, "مشاركة", behavior.recorded.Note)
}

func TestLedgerHandlerRecordBehaviorNotFound(t *testing.T) {
	handler := NewLedgerHandler(&attendanceServiceMock{}, &behaviorServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")})
	body, _ := json.Marshal(map[string]string{"date": "2024-03-01", "type": "neg", "note": "تأخر"})
	c, w := newJSONContext(http.MethodPost, "/classes/7A/students/missing/behavior", body)

	handler.RecordBehavior(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerHandlerVocabulary(t *testing.T) {
	handler := NewLedgerHandler(&attendanceServiceMock{}, &behaviorServiceMock{})
	c, w := newJSONContext(http.MethodGet, "/vocabulary", nil)

	handler.Vocabulary(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["positive"])
	assert.NotEmpty(t, data["negative"])
}
