package models

// Polarity classifies a behaviour event.
type Polarity string

const (
	PolarityPositive Polarity = "pos"
	PolarityNegative Polarity = "neg"
)

// Valid returns true when the polarity is a supported value.
func (p Polarity) Valid() bool {
	switch p {
	case PolarityPositive, PolarityNegative:
		return true
	default:
		return false
	}
}

// Weight is the score contribution of one event with this polarity.
func (p Polarity) Weight() int {
	switch p {
	case PolarityPositive:
		return 1
	case PolarityNegative:
		return -1
	default:
		return 0
	}
}

// BehaviorEvent is an immutable entry of a student's behaviour history. Date
// is empty for events migrated from records that carried no date.
type BehaviorEvent struct {
	Date string   `json:"date"`
	Type Polarity `json:"type"`
	Note string   `json:"note"`
}

// Vocabulary holds the suggested behaviour phrases per polarity.
type Vocabulary struct {
	Positive []string `json:"positive" yaml:"positive"`
	Negative []string `json:"negative" yaml:"negative"`
}

// Phrases returns the list for the polarity.
func (v Vocabulary) Phrases(p Polarity) []string {
	switch p {
	case PolarityPositive:
		return v.Positive
	case PolarityNegative:
		return v.Negative
	default:
		return nil
	}
}

// Contains reports whether note is one of the phrases listed for p.
func (v Vocabulary) Contains(p Polarity, note string) bool {
	for _, phrase := range v.Phrases(p) {
		if phrase == note {
			return true
		}
	}
	return false
}
