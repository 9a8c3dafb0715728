package models

// Class is a named group owning its students in insertion order.
type Class struct {
	Name     string
	Students []*Student
}

// NewClass builds an empty class.
func NewClass(name string) *Class {
	return &Class{Name: name, Students: make([]*Student, 0)}
}

// Find returns the student with the given id and its position.
func (c *Class) Find(id string) (*Student, int) {
	for i, student := range c.Students {
		if student.ID == id {
			return student, i
		}
	}
	return nil, -1
}

// Remove deletes the student at position i, keeping the order of the rest.
func (c *Class) Remove(i int) {
	c.Students = append(c.Students[:i], c.Students[i+1:]...)
}

// Names returns the student names in roster order.
func (c *Class) Names() []string {
	names := make([]string, len(c.Students))
	for i, student := range c.Students {
		names[i] = student.Name
	}
	return names
}

// ClassSummary describes a class in listings.
type ClassSummary struct {
	Name         string `json:"name"`
	StudentCount int    `json:"student_count"`
}

// ImportReport describes the outcome of one roster import.
type ImportReport struct {
	Class    string   `json:"class"`
	Filename string   `json:"filename"`
	Encoding string   `json:"encoding,omitempty"`
	Fallback bool     `json:"fallback"`
	Cells    int      `json:"cells"`
	Added    int      `json:"added"`
	Skipped  int      `json:"skipped"`
	Rejected int      `json:"rejected"`
	Names    []string `json:"names"`
}
