package models

// AttendanceStatus represents the status stored for a student on a date.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// Flip returns the opposite status. Anything other than absent flips to absent.
func (s AttendanceStatus) Flip() AttendanceStatus {
	if s == AttendanceAbsent {
		return AttendancePresent
	}
	return AttendanceAbsent
}

// AttendanceEntry is one explicit (date, status) pair of a student's ledger.
type AttendanceEntry struct {
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// DayRollEntry reports the effective status of one student on a date.
type DayRollEntry struct {
	StudentID string           `json:"student_id"`
	Name      string           `json:"name"`
	Status    AttendanceStatus `json:"status"`
}

// DayRoll lists the effective status of every student of a class on a date.
type DayRoll struct {
	Class   string         `json:"class"`
	Date    string         `json:"date"`
	Absent  int            `json:"absent"`
	Entries []DayRollEntry `json:"entries"`
}
