// Package ingest bulk-loads targets and observations into a catalogue from
// CSV files. It validates headers and cells against per-field
// specifications, reports failed rows with line numbers, and feeds valid
// rows through the catalogue API so every invariant check still applies.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldType is the expected data type for a CSV column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldFloat
)

// FieldSpec defines validation rules for a single CSV column.
type FieldSpec struct {
	Name       string    // Column header name, matched case-insensitively
	Type       FieldType // Expected data type
	Required   bool      // Column must exist and the cell must be non-empty
	AllowEmpty bool      // If true, empty cells pass even when Required
}

// HeaderIndex maps lowercased column names to their position in a CSV row.
type HeaderIndex map[string]int

// numericRegex validates numbers after cleanup: integers, decimals and
// scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// MakeHeaderIndex creates a HeaderIndex from a CSV header row. Keys are
// lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value: surrounding
// whitespace, Excel formula prefixes (="value") and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.Trim(s, `"'`)
}

// ValidateHeaders checks that every required column exists in the CSV
// header. Returns the header index, or an error naming the missing columns.
func ValidateHeaders(header []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)
	var missing []string
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// cell returns the cleaned value of the named column in row, or "" when the
// column is absent or the row is too short.
func cell(row []string, idx HeaderIndex, name string) string {
	pos, ok := idx[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}

// validateRow checks each cell of row against the field specifications and
// returns the first problem found.
func validateRow(row []string, idx HeaderIndex, specs []FieldSpec) error {
	for _, spec := range specs {
		raw := cell(row, idx, spec.Name)
		if raw == "" {
			if spec.Required && !spec.AllowEmpty {
				return fmt.Errorf("required field %q is empty", spec.Name)
			}
			continue
		}
		switch spec.Type {
		case FieldInt:
			if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
				return fmt.Errorf("invalid number in %q: %q", spec.Name, raw)
			}
		case FieldFloat:
			if !numericRegex.MatchString(raw) {
				return fmt.Errorf("invalid number in %q: %q", spec.Name, raw)
			}
		}
	}
	return nil
}

// parseInt parses a cleaned integer cell. Callers validate first; this
// exists so parse failures after validation still surface as errors.
func parseInt(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// parseFloat parses a cleaned numeric cell.
func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}
