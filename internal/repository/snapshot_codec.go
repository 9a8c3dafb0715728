package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
)

// MaxLegacyBalance bounds how many synthetic events a legacy score may expand
// into. A larger gap between the stored score and the derived one means the
// blob is corrupt.
const MaxLegacyBalance = 10000

// ErrLegacyBalance reports a stored score too far from its derived value.
var ErrLegacyBalance = errors.New("legacy score out of range")

// storedStudent accepts every record shape the roster blob has carried:
//
//	v1: {name, score, present}
//	v2: {name, score, positive_notes, negative_notes}
//	v3: {name, score, attendance, history}
//	v4: v3 plus id
type storedStudent struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Score         *int              `json:"score"`
	Present       *bool             `json:"present"`
	Attendance    map[string]string `json:"attendance"`
	History       []storedEvent     `json:"history"`
	PositiveNotes []string          `json:"positive_notes"`
	NegativeNotes []string          `json:"negative_notes"`
}

type storedEvent struct {
	Date string `json:"date"`
	Type string `json:"type"`
	Note string `json:"note"`
}

// snapshotStudent is the canonical record written back.
type snapshotStudent struct {
	ID         string                             `json:"id"`
	Name       string                             `json:"name"`
	Score      int                                `json:"score"`
	Attendance map[string]models.AttendanceStatus `json:"attendance"`
	History    []models.BehaviorEvent             `json:"history"`
}

// MigrationReport summarises what decoding had to repair.
type MigrationReport struct {
	Upgraded         int
	SkippedUnnamed   int
	DroppedEntries   int
	BalanceEvents    int
	DuplicateNames   []string
	DuplicateClasses []string
}

// Changed reports whether the decoded state differs from the stored bytes.
func (m MigrationReport) Changed() bool {
	return m.Upgraded > 0 || m.SkippedUnnamed > 0 || m.DroppedEntries > 0 || len(m.DuplicateClasses) > 0
}

// EncodeSnapshot serialises classes as one JSON object keyed by class name,
// keeping the class order.
func EncodeSnapshot(classes []*models.Class) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, class := range classes {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(class.Name)
		if err != nil {
			return nil, fmt.Errorf("encode class name %q: %w", class.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		records := make([]snapshotStudent, len(class.Students))
		for j, student := range class.Students {
			records[j] = snapshotStudent{
				ID:         student.ID,
				Name:       student.Name,
				Score:      student.Score(),
				Attendance: student.Attendance(),
				History:    student.History(),
			}
		}
		payload, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode class %q: %w", class.Name, err)
		}
		buf.Write(payload)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeSnapshot parses any stored shape into canonical classes. Empty input
// and a JSON null both yield an empty roster.
func DecodeSnapshot(raw []byte, legacyBalanceNote string) ([]*models.Class, MigrationReport, error) {
	var report MigrationReport
	classes := make([]*models.Class, 0)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return classes, report, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, report, fmt.Errorf("read snapshot: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, report, fmt.Errorf("read snapshot: expected object, got %v", tok)
	}

	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, report, fmt.Errorf("read class name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, report, fmt.Errorf("read class name: unexpected %v", tok)
		}
		var records []storedStudent
		if err := dec.Decode(&records); err != nil {
			return nil, report, fmt.Errorf("read class %q: %w", name, err)
		}

		class := models.NewClass(name)
		seen := make(map[string]struct{}, len(records))
		for _, record := range records {
			student, ok, err := migrateStudent(record, legacyBalanceNote, &report)
			if err != nil {
				return nil, report, fmt.Errorf("read class %q: %w", name, err)
			}
			if !ok {
				continue
			}
			key := strings.ToLower(strings.Join(strings.Fields(student.Name), " "))
			if _, dup := seen[key]; dup {
				report.DuplicateNames = append(report.DuplicateNames, name+"/"+student.Name)
			}
			seen[key] = struct{}{}
			class.Students = append(class.Students, student)
		}

		if pos, dup := index[name]; dup {
			report.DuplicateClasses = append(report.DuplicateClasses, name)
			classes[pos] = class
			continue
		}
		index[name] = len(classes)
		classes = append(classes, class)
	}

	if _, err := dec.Token(); err != nil {
		return nil, report, fmt.Errorf("read snapshot end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, report, fmt.Errorf("read snapshot: trailing data")
	}
	return classes, report, nil
}

func migrateStudent(record storedStudent, legacyBalanceNote string, report *MigrationReport) (*models.Student, bool, error) {
	name := strings.TrimSpace(record.Name)
	if name == "" {
		report.SkippedUnnamed++
		return nil, false, nil
	}

	upgraded := record.ID == "" || record.Present != nil || record.PositiveNotes != nil || record.NegativeNotes != nil
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}

	attendance := make(map[string]models.AttendanceStatus, len(record.Attendance))
	for date, raw := range record.Attendance {
		status := models.AttendanceStatus(raw)
		if !status.Valid() {
			report.DroppedEntries++
			continue
		}
		attendance[date] = status
	}

	history := make([]models.BehaviorEvent, 0, len(record.History)+len(record.PositiveNotes)+len(record.NegativeNotes))
	derived := 0
	for _, event := range record.History {
		polarity := models.Polarity(event.Type)
		if !polarity.Valid() {
			report.DroppedEntries++
			continue
		}
		history = append(history, models.BehaviorEvent{Date: event.Date, Type: polarity, Note: event.Note})
		derived += polarity.Weight()
	}
	for _, note := range record.PositiveNotes {
		history = append(history, models.BehaviorEvent{Type: models.PolarityPositive, Note: note})
		derived++
	}
	for _, note := range record.NegativeNotes {
		history = append(history, models.BehaviorEvent{Type: models.PolarityNegative, Note: note})
		derived--
	}

	if record.Score != nil && *record.Score != derived {
		diff := *record.Score - derived
		polarity := models.PolarityPositive
		if diff < 0 {
			polarity = models.PolarityNegative
			diff = -diff
		}
		if diff > MaxLegacyBalance {
			return nil, false, fmt.Errorf("%w: student %q score %d differs from history by %d", ErrLegacyBalance, name, *record.Score, diff)
		}
		for i := 0; i < diff; i++ {
			history = append(history, models.BehaviorEvent{Type: polarity, Note: legacyBalanceNote})
		}
		report.BalanceEvents += diff
		upgraded = true
	}

	if upgraded {
		report.Upgraded++
	}
	return models.RestoreStudent(id, name, attendance, history), true, nil
}
