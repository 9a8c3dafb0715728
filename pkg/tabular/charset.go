package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// Charset is one candidate encoding tried against delimited-text sources.
type Charset struct {
	Name     string
	Encoding encoding.Encoding
	// RequireValidUTF8 rejects the candidate unless the raw bytes (minus a
	// leading BOM) are well-formed UTF-8. Single-byte code pages instead reject
	// any byte the page leaves undefined.
	RequireValidUTF8 bool
}

var (
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
	errInvalidBytes = errors.New("source contains bytes invalid for this charset")
)

// DefaultCharsets lists the Arabic-capable candidates in the order they are tried.
func DefaultCharsets() []Charset {
	return []Charset{
		{Name: "utf-8-sig", Encoding: xunicode.UTF8BOM, RequireValidUTF8: true},
		{Name: "windows-1256", Encoding: charmap.Windows1256},
		{Name: "iso-8859-6", Encoding: charmap.ISO8859_6},
		{Name: "utf-8", Encoding: xunicode.UTF8, RequireValidUTF8: true},
	}
}

// ParseCharsets resolves charset names in the given order. An empty list
// yields DefaultCharsets. windows-1256 defines every byte, so iso-8859-6 is
// only selected when it is listed before it.
func ParseCharsets(names []string) ([]Charset, error) {
	if len(names) == 0 {
		return DefaultCharsets(), nil
	}
	known := make(map[string]Charset)
	for _, cs := range DefaultCharsets() {
		known[cs.Name] = cs
	}
	out := make([]Charset, 0, len(names))
	for _, name := range names {
		cs, ok := known[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown charset %q", name)
		}
		out = append(out, cs)
	}
	return out, nil
}

func decodeCharset(cs Charset, raw []byte) (string, error) {
	if cs.RequireValidUTF8 && !utf8.Valid(bytes.TrimPrefix(raw, utf8BOM)) {
		return "", errInvalidBytes
	}
	out, err := cs.Encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	if !cs.RequireValidUTF8 && bytes.ContainsRune(out, utf8.RuneError) {
		return "", errInvalidBytes
	}
	return string(out), nil
}

// decodeLossy is the last resort: UTF-8 with undecodable bytes dropped.
func decodeLossy(raw []byte) string {
	text := strings.ToValidUTF8(string(raw), "")
	return strings.TrimPrefix(text, "\ufeff")
}

// ScriptBlock is an inclusive code point range identifying the target script.
type ScriptBlock struct {
	Low  rune
	High rune
}

// ArabicBlock is the Unicode Arabic block, U+0600..U+06FF.
var ArabicBlock = ScriptBlock{Low: 0x0600, High: 0x06FF}

// Contains reports whether r falls within the block.
func (b ScriptBlock) Contains(r rune) bool {
	return r >= b.Low && r <= b.High
}

// In reports whether text holds at least one rune of the block.
func (b ScriptBlock) In(text string) bool {
	return strings.ContainsFunc(text, b.Contains)
}

// ParseScriptBlock reads a "0600-06FF" style hexadecimal range.
func ParseScriptBlock(raw string) (ScriptBlock, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ArabicBlock, nil
	}
	lowRaw, highRaw, ok := strings.Cut(raw, "-")
	if !ok {
		return ScriptBlock{}, fmt.Errorf("script block %q: expected LOW-HIGH", raw)
	}
	low, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(lowRaw), "U+"), 16, 32)
	if err != nil {
		return ScriptBlock{}, fmt.Errorf("script block %q: %w", raw, err)
	}
	high, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(highRaw), "U+"), 16, 32)
	if err != nil {
		return ScriptBlock{}, fmt.Errorf("script block %q: %w", raw, err)
	}
	if high < low {
		return ScriptBlock{}, fmt.Errorf("script block %q: high below low", raw)
	}
	return ScriptBlock{Low: rune(low), High: rune(high)}, nil
}
