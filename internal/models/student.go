package models

import "sort"

// Student is a tracked learner owned by exactly one class. The score is never
// assigned directly: it moves only through Record and always equals the sum of
// the history weights.
type Student struct {
	ID   string
	Name string

	score      int
	attendance map[string]AttendanceStatus
	history    []BehaviorEvent
}

// NewStudent builds a student with empty ledgers.
func NewStudent(id, name string) *Student {
	return &Student{
		ID:         id,
		Name:       name,
		attendance: make(map[string]AttendanceStatus),
	}
}

// RestoreStudent rebuilds a student from persisted ledgers, deriving the score
// from the history. Entries with an unknown status are dropped.
func RestoreStudent(id, name string, attendance map[string]AttendanceStatus, history []BehaviorEvent) *Student {
	s := NewStudent(id, name)
	for date, status := range attendance {
		if status.Valid() {
			s.attendance[date] = status
		}
	}
	s.history = make([]BehaviorEvent, 0, len(history))
	for _, event := range history {
		s.history = append(s.history, event)
		s.score += event.Type.Weight()
	}
	return s
}

// Score returns positive minus negative event count.
func (s *Student) Score() int {
	return s.score
}

// Status returns the effective status for date: the explicit entry, or present.
func (s *Student) Status(date string) AttendanceStatus {
	if status, ok := s.attendance[date]; ok {
		return status
	}
	return AttendancePresent
}

// IsAbsent reports whether the effective status for date is absent.
func (s *Student) IsAbsent(date string) bool {
	return s.Status(date) == AttendanceAbsent
}

// ToggleAttendance flips the effective status for date and stores it
// explicitly. The new status is returned.
func (s *Student) ToggleAttendance(date string) AttendanceStatus {
	next := s.Status(date).Flip()
	if s.attendance == nil {
		s.attendance = make(map[string]AttendanceStatus)
	}
	s.attendance[date] = next
	return next
}

// Attendance returns a copy of the explicit entries.
func (s *Student) Attendance() map[string]AttendanceStatus {
	out := make(map[string]AttendanceStatus, len(s.attendance))
	for date, status := range s.attendance {
		out[date] = status
	}
	return out
}

// AttendanceEntries returns the explicit entries sorted by date descending.
func (s *Student) AttendanceEntries() []AttendanceEntry {
	entries := make([]AttendanceEntry, 0, len(s.attendance))
	for date, status := range s.attendance {
		entries = append(entries, AttendanceEntry{Date: date, Status: status})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries
}

// AbsenceCount counts entries marked absent.
func (s *Student) AbsenceCount() int {
	count := 0
	for _, status := range s.attendance {
		if status == AttendanceAbsent {
			count++
		}
	}
	return count
}

// AbsentDays lists the dates marked absent, most recent first.
func (s *Student) AbsentDays() []string {
	days := make([]string, 0)
	for date, status := range s.attendance {
		if status == AttendanceAbsent {
			days = append(days, date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days
}

// Record appends a behaviour event and returns the updated score.
func (s *Student) Record(event BehaviorEvent) int {
	s.history = append(s.history, event)
	s.score += event.Type.Weight()
	return s.score
}

// History returns a copy of the events in insertion order.
func (s *Student) History() []BehaviorEvent {
	out := make([]BehaviorEvent, len(s.history))
	copy(out, s.history)
	return out
}

// Summary builds the list view of the student for date.
func (s *Student) Summary(date string) StudentSummary {
	summary := StudentSummary{
		ID:           s.ID,
		Name:         s.Name,
		Score:        s.score,
		AbsenceCount: s.AbsenceCount(),
	}
	if date != "" {
		absent := s.IsAbsent(date)
		summary.Absent = &absent
	}
	return summary
}

// Detail builds the full view of the student.
func (s *Student) Detail(class string) StudentDetail {
	return StudentDetail{
		ID:           s.ID,
		Class:        class,
		Name:         s.Name,
		Score:        s.score,
		AbsenceCount: s.AbsenceCount(),
		AbsentDays:   s.AbsentDays(),
		Attendance:   s.AttendanceEntries(),
		History:      s.History(),
	}
}

// StudentSummary is the roster list view of a student. Absent is set only when
// a date was selected.
type StudentSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	AbsenceCount int    `json:"absence_count"`
	Absent       *bool  `json:"absent,omitempty"`
}

// StudentDetail carries both ledgers of a student.
type StudentDetail struct {
	ID           string            `json:"id"`
	Class        string            `json:"class"`
	Name         string            `json:"name"`
	Score        int               `json:"score"`
	AbsenceCount int               `json:"absence_count"`
	AbsentDays   []string          `json:"absent_days"`
	Attendance   []AttendanceEntry `json:"attendance"`
	History      []BehaviorEvent   `json:"history"`
}
