package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rejection reasons reported per candidate cell.
const (
	RejectEmpty     = "empty"
	RejectTooShort  = "too_short"
	RejectNumeric   = "numeric"
	RejectHeader    = "header"
	RejectDuplicate = "duplicate"
)

// NormalizerConfig tunes candidate name filtering.
type NormalizerConfig struct {
	MinLength     int
	HeaderMarkers []string
}

// NameNormalizer extracts candidate student names from decoded rows.
type NameNormalizer struct {
	minLength     int
	headerMarkers []string
}

// NormalizeResult is the outcome of one pass over a grid.
type NormalizeResult struct {
	Accepted []string
	// Rejected counts cells that could never be a name.
	Rejected int
	// Duplicates counts plausible names already present in the class or batch.
	Duplicates int
}

// NewNameNormalizer builds a normalizer. A minimum length below 1 falls back to 3.
func NewNameNormalizer(cfg NormalizerConfig) *NameNormalizer {
	if cfg.MinLength < 1 {
		cfg.MinLength = 3
	}
	markers := make([]string, 0, len(cfg.HeaderMarkers))
	for _, marker := range cfg.HeaderMarkers {
		if marker = strings.TrimSpace(marker); marker != "" {
			markers = append(markers, marker)
		}
	}
	return &NameNormalizer{minLength: cfg.MinLength, headerMarkers: markers}
}

// CleanName trims the value and keeps only letters, digits and whitespace.
func CleanName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// NameKey is the identity used for duplicate detection: the cleaned name with
// case folded and inner whitespace collapsed.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(CleanName(name)), " "))
}

// Check returns the rejection reason for an already cleaned candidate, or "".
func (n *NameNormalizer) Check(cleaned string) string {
	if cleaned == "" {
		return RejectEmpty
	}
	if utf8.RuneCountInString(cleaned) < n.minLength {
		return RejectTooShort
	}
	if isAllDigits(cleaned) {
		return RejectNumeric
	}
	for _, marker := range n.headerMarkers {
		if strings.Contains(cleaned, marker) {
			return RejectHeader
		}
	}
	return ""
}

// Normalize flattens every cell of rows into one candidate stream and returns
// the names not present in existing and not repeated within the batch.
func (n *NameNormalizer) Normalize(rows [][]string, existing []string) NormalizeResult {
	seen := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		seen[NameKey(name)] = struct{}{}
	}

	result := NormalizeResult{Accepted: make([]string, 0)}
	for _, row := range rows {
		for _, cell := range row {
			cleaned := CleanName(cell)
			if reason := n.Check(cleaned); reason != "" {
				result.Rejected++
				continue
			}
			key := NameKey(cleaned)
			if _, dup := seen[key]; dup {
				result.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			result.Accepted = append(result.Accepted, cleaned)
		}
	}
	return result
}

// isAllDigits reports whether s is non-empty and every rune is a digit. A
// space breaks the run, so "12 34" is not numeric.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
