package model

import (
	"fmt"
	"strconv"
	"strings"
)

// BaseYear is the first academic year the ordinal encoding can express.
const BaseYear = 2007

const (
	minSemesterOrdinal = 1
	maxSemesterOrdinal = 19
)

// Semester is an academic (year, term) pair packed into a small ordinal.
// It is immutable once constructed.
type Semester struct {
	year    int
	term    int
	ordinal int
}

// NewSemester validates year and term (1 or 2) and computes the ordinal
// (year - BaseYear) << 1 | (term - 1), which must lie in [1, 19].
func NewSemester(year, term int) (Semester, error) {
	if term != 1 && term != 2 || year < BaseYear || year > BaseYear+maxSemesterOrdinal>>1 {
		return Semester{}, outOfRange("semester", fmt.Sprintf("%d-%d", year, term))
	}
	ord := (year-BaseYear)<<1 | (term - 1)
	if ord < minSemesterOrdinal || ord > maxSemesterOrdinal {
		return Semester{}, outOfRange("semester", fmt.Sprintf("%d-%d", year, term))
	}
	return Semester{year: year, term: term, ordinal: ord}, nil
}

// ParseSemester accepts "YYYYT" or "YYYY-T".
func ParseSemester(s string) (Semester, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if len(t) != 5 {
		return Semester{}, invalidArgument("semester", s)
	}
	year, err := strconv.Atoi(t[:4])
	if err != nil {
		return Semester{}, invalidArgument("semester", s)
	}
	term, err := strconv.Atoi(t[4:])
	if err != nil {
		return Semester{}, invalidArgument("semester", s)
	}
	return NewSemester(year, term)
}

// SemesterFromOrdinal reverses Ordinal for values read back from storage.
func SemesterFromOrdinal(ord int) (Semester, error) {
	if ord < minSemesterOrdinal || ord > maxSemesterOrdinal {
		return Semester{}, outOfRange("semester", ord)
	}
	return NewSemester(BaseYear+ord>>1, ord&1+1)
}

func (s Semester) Year() int    { return s.year }
func (s Semester) Term() int    { return s.term }
func (s Semester) Ordinal() int { return s.ordinal }

// IsZero reports whether s was never constructed.
func (s Semester) IsZero() bool { return s.ordinal == 0 }

// Code renders the semester the way the source sites write it, e.g. "20151".
func (s Semester) Code() string {
	return fmt.Sprintf("%d%d", s.year, s.term)
}

func (s Semester) String() string {
	return fmt.Sprintf("%d-%d", s.year, s.term)
}
