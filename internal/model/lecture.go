package model

import (
	"fmt"
	"sort"
	"strings"
)

// Key is the identity of a lecture: two records describe the same course
// section iff their keys are equal, whatever their other fields say.
type Key struct {
	University University
	Semester   Semester
	SectionID  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.University, k.Semester.Code(), k.SectionID)
}

// LectureDraft carries the raw field values a source adapter assembled for
// one row. NewLecture validates it.
type LectureDraft struct {
	Title    string
	YearMask int
	Domain   string
	Credits  float64
	Lecturer string
	Remark   string
	Lessons  []Lesson
}

// Lecture is one validated course section. It is immutable; the With*
// methods return modified copies.
type Lecture struct {
	key      Key
	title    string
	yearMask int
	domain   string
	credits  float64
	lecturer string
	remark   string
	lessons  []Lesson
}

// NewLecture validates every field of d and returns the lecture, or the
// first violation found.
func NewLecture(key Key, d LectureDraft) (*Lecture, error) {
	if !key.University.Valid() {
		return nil, outOfRange("university", int(key.University))
	}
	if key.Semester.IsZero() {
		return nil, outOfRange("semester", 0)
	}
	if strings.TrimSpace(key.SectionID) == "" {
		return nil, invalidArgument("section_id", key.SectionID)
	}
	if err := ValidateTitle(d.Title); err != nil {
		return nil, err
	}
	if err := ValidateDomain(d.Domain); err != nil {
		return nil, err
	}
	if err := ValidateYearMask(d.YearMask); err != nil {
		return nil, err
	}
	if err := ValidateCredits(d.Credits); err != nil {
		return nil, err
	}

	return &Lecture{
		key:      key,
		title:    d.Title,
		yearMask: d.YearMask,
		domain:   d.Domain,
		credits:  d.Credits,
		lecturer: d.Lecturer,
		remark:   d.Remark,
		lessons:  cloneLessons(d.Lessons),
	}, nil
}

// ValidateTitle rejects an empty title.
func ValidateTitle(title string) error {
	if title == "" {
		return invalidArgument("title", title)
	}
	return nil
}

// ValidateDomain rejects an empty category label.
func ValidateDomain(domain string) error {
	if domain == "" {
		return invalidArgument("domain", domain)
	}
	return nil
}

func (l *Lecture) Key() Key               { return l.key }
func (l *Lecture) University() University { return l.key.University }
func (l *Lecture) Semester() Semester     { return l.key.Semester }
func (l *Lecture) SectionID() string      { return l.key.SectionID }
func (l *Lecture) Title() string          { return l.title }
func (l *Lecture) YearMask() int          { return l.yearMask }
func (l *Lecture) Domain() string         { return l.domain }
func (l *Lecture) Credits() float64       { return l.credits }
func (l *Lecture) Lecturer() string       { return l.lecturer }
func (l *Lecture) Remark() string         { return l.remark }

// Lessons returns a copy of the lesson collection.
func (l *Lecture) Lessons() []Lesson { return cloneLessons(l.lessons) }

// WithLessons returns a copy of l whose lesson collection is replaced as a
// unit by seq.
func (l *Lecture) WithLessons(seq []Lesson) *Lecture {
	c := *l
	c.lessons = cloneLessons(seq)
	return &c
}

// WithDomain returns a copy of l with a new domain label.
func (l *Lecture) WithDomain(domain string) (*Lecture, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	c := *l
	c.domain = domain
	c.lessons = cloneLessons(l.lessons)
	return &c, nil
}

// JoinLecturers sorts, de-duplicates and comma-joins lecturer names,
// dropping blanks.
func JoinLecturers(names []string) string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func cloneLessons(seq []Lesson) []Lesson {
	if len(seq) == 0 {
		return nil
	}
	out := make([]Lesson, len(seq))
	copy(out, seq)
	return out
}
