// Package source defines the boundary between page extraction and the
// catalog model: adapters turn one flat row of text fields into a
// validated lecture.
package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/schedule"
)

var (
	// ErrSkipRow marks a row that is well-formed but not a lecture
	// (header rows, graduate courses, test subjects).
	ErrSkipRow = errors.New("row skipped")
	// ErrMalformedRow marks a row whose shape does not match the source's
	// layout: wrong field count, unparseable identifiers.
	ErrMalformedRow = errors.New("malformed row")
)

// Row is one extracted table row. Category is the sweep it was found in
// (a department, a general-education area) and becomes the lecture's
// domain where the source has no better label.
type Row struct {
	Category string   `json:"category"`
	Fields   []string `json:"fields"`
}

// Adapter builds lectures from one source's rows for a fixed semester.
type Adapter interface {
	University() model.University
	Semester() model.Semester
	Build(row Row) (*model.Lecture, error)
}

// FixedRecords is implemented by adapters that publish lectures not found
// in any page, such as Ewha's chapel sessions.
type FixedRecords interface {
	FixedLectures() ([]*model.Lecture, error)
}

// RowError carries the raw row that failed to build.
type RowError struct {
	University model.University
	Row        Row
	Err        error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s [%s] %q: %v", e.University, e.Row.Category, e.Row.Fields, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// WrapRow attaches row context to err. A nil err stays nil.
func WrapRow(u model.University, row Row, err error) error {
	if err == nil {
		return nil
	}
	return &RowError{University: u, Row: row, Err: err}
}

// Malformed formats an ErrMalformedRow.
func Malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedRow, fmt.Sprintf(format, args...))
}

// Skip formats an ErrSkipRow.
func Skip(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSkipRow, fmt.Sprintf(format, args...))
}

// DayOf maps a one-letter Korean day name to 1..7, or 0 when unknown.
func DayOf(glyph string) int {
	for d := 1; d < len(schedule.DayGlyphs); d++ {
		if schedule.DayGlyphs[d] == glyph {
			return d
		}
	}
	return 0
}

// CompactSpaces trims s and folds every whitespace run into one space.
func CompactSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsBlank reports whether every field is empty.
func IsBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
