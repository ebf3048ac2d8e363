// Package yonsei builds lectures from the Yonsei course grid. The Sinchon
// and Wonju campuses share the layout and differ only in university id.
package yonsei

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/source"
	"github.com/timetabl/positano/internal/timecodec"
)

// MinFields is the number of grid cells a lecture row must have.
const MinFields = 17

const (
	colYears    = 3
	colKind     = 4
	colUnit     = 5
	colSection  = 6
	colCredits  = 7
	colTitle    = 8
	colLecturer = 13
	colTime     = 14
	colLocation = 15
	colNotes    = 16
)

const (
	closedMarker = "폐강"
	slotOffset   = 480
	slotMinutes  = 60
)

var symbols = []struct{ symbol, text string }{
	{"ⓐ", "원어강의"},
	{"①", "동영상강의"},
	{"②", "영어강의"},
	{"ⓑ", "P.NP평가"},
	{"ⓒ", "국제캠퍼스"},
}

var (
	trailingGroup = regexp.MustCompile(`\(([^()]*(?:\([^()]*\))?)\)$`)
	openGroup     = regexp.MustCompile(`\(([^()]*(?:\([^()]*\))?)$`)
	slotToken     = regexp.MustCompile(`([월화수목금토일])|(\d+)`)
)

type Adapter struct {
	univ     model.University
	semester model.Semester
	codec    timecodec.Codec
}

// New returns an adapter for univ, which must be Yonsei or Wonju.
func New(univ model.University, semester model.Semester) (*Adapter, error) {
	if univ != model.Yonsei && univ != model.Wonju {
		return nil, &model.ArgumentError{Field: "branch", Value: univ.String()}
	}
	codec, err := timecodec.For(univ)
	if err != nil {
		return nil, err
	}
	return &Adapter{univ: univ, semester: semester, codec: codec}, nil
}

func (a *Adapter) University() model.University { return a.univ }
func (a *Adapter) Semester() model.Semester     { return a.semester }

func (a *Adapter) Build(row source.Row) (*model.Lecture, error) {
	d := row.Fields
	if source.IsBlank(d) {
		return nil, source.Skip("empty row")
	}
	if len(d) < MinFields {
		return nil, source.Malformed("expected %d fields, got %d", MinFields, len(d))
	}

	years, err := model.DecodeYears(d[colYears])
	if err != nil {
		return nil, err
	}

	closed := strings.Contains(d[colNotes], closedMarker)
	draft := model.LectureDraft{
		Title:    d[colTitle],
		YearMask: years,
		Domain:   row.Category,
		Lecturer: model.JoinLecturers(strings.Split(d[colLecturer], ",")),
		Remark:   source.CompactSpaces(strings.Join([]string{d[colKind], d[colUnit], TranslateSymbols(d[colNotes])}, " ")),
	}
	if !closed {
		if draft.Credits, err = strconv.ParseFloat(d[colCredits], 64); err != nil {
			return nil, source.Malformed("invalid credits <%s>", d[colCredits])
		}
		if draft.Lessons, err = a.ParseLessons(d[colTime], d[colLocation]); err != nil {
			return nil, err
		}
	}

	key := model.Key{University: a.univ, Semester: a.semester, SectionID: d[colSection]}
	return model.NewLecture(key, draft)
}

// TranslateSymbols expands the grid's circled annotation marks.
func TranslateSymbols(text string) string {
	for _, s := range symbols {
		text = strings.ReplaceAll(text, s.symbol, s.text+" ")
	}
	return text
}

// ParseLessons reads slot lists such as "월1,2/수3" with matching
// "/"-separated rooms. A slot listed twice keeps one lesson whose
// location joins both rooms with "/".
func (a *Adapter) ParseLessons(times, locations string) ([]model.Lesson, error) {
	pairs, err := pairTimesAndLocations(times, locations)
	if err != nil {
		return nil, err
	}

	var lessons []model.Lesson
	for _, p := range pairs {
		var days []int
		afterSlot := false
		for _, m := range slotToken.FindAllStringSubmatch(p.time, -1) {
			if m[1] != "" {
				if afterSlot {
					days = days[:0]
				}
				days = append(days, source.DayOf(m[1]))
				afterSlot = false
				continue
			}
			slot, _ := strconv.Atoi(m[2])
			raw := slot*slotMinutes + slotOffset
			for _, day := range days {
				if i := indexOf(lessons, day, raw); i >= 0 {
					lessons[i] = lessons[i].WithLocation(lessons[i].Location() + "/" + p.location)
					continue
				}
				l, err := model.NewLesson(a.codec, day, raw, slotMinutes, p.location)
				if err != nil {
					return nil, err
				}
				lessons = append(lessons, l)
			}
			afterSlot = true
		}
	}
	return lessons, nil
}

func indexOf(lessons []model.Lesson, day, raw int) int {
	for i, l := range lessons {
		if l.Day() == day && l.Time() == raw {
			return i
		}
	}
	return -1
}

type pair struct {
	time     string
	location string
}

// pairTimesAndLocations splits both cells on "/" and lines them up. A
// trailing parenthesized group ("월1(화2)") is its own time entry and
// must be mirrored in the location cell.
func pairTimesAndLocations(times, locations string) ([]pair, error) {
	a := splitNonEmpty(times)
	b := splitNonEmpty(locations)

	if len(b) == 1 {
		return zip(a, repeat(b[0], len(a)))
	}

	if len(a) > 0 {
		if head, inner, ok := cutGroup(trailingGroup, a[len(a)-1]); ok {
			a = append(a[:len(a)-1], head, inner)
			if len(b) == 0 {
				return nil, source.Malformed("unpaired group in %q / %q", times, locations)
			}
			lhead, linner, ok := cutGroup(trailingGroup, b[len(b)-1])
			if !ok {
				return nil, source.Malformed("unpaired group in %q / %q", times, locations)
			}
			b = append(b[:len(b)-1], lhead, linner)

			if ohead, oinner, ok := cutGroup(openGroup, a[len(a)-2]); ok {
				a = append(a[:len(a)-2], ohead, oinner, a[len(a)-1])
				lhead, linner, ok := cutGroup(openGroup, b[len(b)-2])
				if !ok {
					return nil, source.Malformed("unpaired group in %q / %q", times, locations)
				}
				b = append(b[:len(b)-2], lhead, linner, b[len(b)-1])
			}
		}
	}

	switch {
	case len(a) > 1 && len(b) == 1:
		b = repeat(b[0], len(a))
	case len(b) == 0:
		b = repeat("", len(a))
	}
	return zip(a, b)
}

// cutGroup splits s around the first match of re, returning the text
// before the match and the first submatch.
func cutGroup(re *regexp.Regexp, s string) (head, inner string, ok bool) {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", "", false
	}
	return s[:loc[0]], s[loc[2]:loc[3]], true
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func zip(a, b []string) ([]pair, error) {
	if len(a) != len(b) {
		return nil, source.Malformed("%d times for %d locations", len(a), len(b))
	}
	out := make([]pair, len(a))
	for i := range a {
		out[i] = pair{time: a[i], location: b[i]}
	}
	return out, nil
}
