// Package tabular turns uploaded roster files into rows of cell strings. It
// reads xlsx and legacy xls workbooks and delimited text of unknown encoding.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Kind classifies a source file by how its bytes must be read.
type Kind string

const (
	KindDelimited      Kind = "delimited"
	KindWorkbook       Kind = "workbook"
	KindLegacyWorkbook Kind = "legacy_workbook"
)

var (
	// ErrUnsupportedKind is returned when a file extension maps to no Kind.
	ErrUnsupportedKind = errors.New("tabular: unsupported file type")
	// ErrUndecodable is returned when the source cannot be turned into rows.
	ErrUndecodable = errors.New("tabular: undecodable source")
)

// DetectKind maps a file name onto a Kind by extension.
func DetectKind(filename string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	switch ext {
	case ".csv":
		return KindDelimited, nil
	case ".xlsx", ".xlsm":
		return KindWorkbook, nil
	case ".xls":
		return KindLegacyWorkbook, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, ext)
	}
}

// Result is the decoded grid plus how it was obtained.
type Result struct {
	Rows [][]string
	// Encoding names the accepted charset for delimited sources, empty for workbooks.
	Encoding string
	// Fallback is set when no charset matched the script and the lossy UTF-8
	// decode was used.
	Fallback bool
}

// Cells returns the number of cells across all rows.
func (r *Result) Cells() int {
	total := 0
	for _, row := range r.Rows {
		total += len(row)
	}
	return total
}

// Options configures a Decoder.
type Options struct {
	Charsets []Charset
	Script   ScriptBlock
}

// Decoder reads roster sources. It holds no mutable state and is safe to share.
type Decoder struct {
	charsets []Charset
	script   ScriptBlock
}

// NewDecoder builds a decoder, defaulting to DefaultCharsets and ArabicBlock.
func NewDecoder(opts Options) *Decoder {
	if len(opts.Charsets) == 0 {
		opts.Charsets = DefaultCharsets()
	}
	if opts.Script.High == 0 {
		opts.Script = ArabicBlock
	}
	return &Decoder{charsets: opts.Charsets, script: opts.Script}
}

// Decode reads the whole source and returns its rows.
func (d *Decoder) Decode(kind Kind, r io.Reader) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no source", ErrUndecodable)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read source: %v", ErrUndecodable, err)
	}

	switch kind {
	case KindDelimited:
		return d.decodeDelimited(raw)
	case KindWorkbook:
		rows, err := readWorkbook(raw)
		if err != nil {
			return nil, err
		}
		return &Result{Rows: rows}, nil
	case KindLegacyWorkbook:
		rows, err := readLegacyWorkbook(raw)
		if err != nil {
			return nil, err
		}
		return &Result{Rows: rows}, nil
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedKind, kind)
	}
}

// decodeDelimited tries each charset in order and accepts the first one that
// both parses and yields at least one rune of the target script.
func (d *Decoder) decodeDelimited(raw []byte) (*Result, error) {
	for _, cs := range d.charsets {
		text, err := decodeCharset(cs, raw)
		if err != nil {
			continue
		}
		rows, err := parseDelimited(text)
		if err != nil {
			continue
		}
		if d.script.In(text) {
			return &Result{Rows: rows, Encoding: cs.Name}, nil
		}
	}

	rows, err := parseDelimited(decodeLossy(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return &Result{Rows: rows, Encoding: "utf-8", Fallback: true}, nil
}

func parseDelimited(text string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return rows, nil
}
