// Package ewha builds lectures from Ewha's open course list pages and
// publishes the weekly chapel sessions that the list omits.
package ewha

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/source"
	"github.com/timetabl/positano/internal/timecodec"
)

// FieldCount is the number of cells in a lecture row.
const FieldCount = 23

const (
	colNo       = 0
	colCode     = 1
	colClass    = 2
	colTitle    = 3
	colType     = 4
	colSection  = 5
	colDomain   = 6
	colYears    = 7
	colLecturer = 8
	colCredits  = 9
	colDays     = 11
	colPeriods  = 12
	colRooms    = 13
	colEnglish  = 18
	colNative   = 19
	colOnline   = 20
	colCapacity = 21
	colNote     = 22
)

const (
	slotOffset  = 390
	slotMinutes = 90
	// The last slot of a block ends 15 minutes early for the break.
	breakMinutes = 15
)

var (
	numberPattern = regexp.MustCompile(`^\d+$`)
	codePattern   = regexp.MustCompile(`^\d{5}$`)
	classPattern  = regexp.MustCompile(`^\d\d$`)
	rangePattern  = regexp.MustCompile(`^(\d+)~(\d+)$`)
	slashPattern  = regexp.MustCompile(`\s*/\s*`)
)

type Adapter struct {
	semester model.Semester
	codec    timecodec.Codec
	chapels  []chapel
}

func New(semester model.Semester) (*Adapter, error) {
	codec, err := timecodec.For(model.Ewha)
	if err != nil {
		return nil, err
	}
	chapels, err := loadChapels()
	if err != nil {
		return nil, err
	}
	return &Adapter{semester: semester, codec: codec, chapels: chapels}, nil
}

func (a *Adapter) University() model.University { return model.Ewha }
func (a *Adapter) Semester() model.Semester     { return a.semester }

// Build reads one list row. Rows that are not numbered lecture rows, or
// whose course code is not five digits, are skipped.
func (a *Adapter) Build(row source.Row) (*model.Lecture, error) {
	e := row.Fields
	if len(e) != FieldCount || !numberPattern.MatchString(e[colNo]) {
		return nil, source.Skip("not a lecture row")
	}
	if !codePattern.MatchString(e[colCode]) {
		return nil, source.Skip("code %q", e[colCode])
	}
	if !classPattern.MatchString(e[colClass]) {
		return nil, source.Malformed("invalid class <%s>", e[colClass])
	}

	domain, err := FigureDomain(e[colType], e[colSection], e[colDomain])
	if err != nil {
		return nil, err
	}
	years, err := model.DecodeYears(e[colYears])
	if err != nil {
		return nil, err
	}
	credits := 0.0
	if c := strings.TrimSpace(e[colCredits]); c != "" {
		if credits, err = strconv.ParseFloat(c, 64); err != nil {
			return nil, source.Malformed("invalid credits <%s>", c)
		}
	}
	lessons, err := a.ParseLessons(e[colDays], e[colPeriods], e[colRooms])
	if err != nil {
		return nil, err
	}

	key := model.Key{University: model.Ewha, Semester: a.semester, SectionID: e[colCode] + "-" + e[colClass]}
	return model.NewLecture(key, model.LectureDraft{
		Title:    source.CompactSpaces(e[colTitle]),
		YearMask: years,
		Domain:   source.CompactSpaces(domain),
		Credits:  credits,
		Lecturer: splitLecturers(e[colLecturer]),
		Remark:   buildRemark(e),
		Lessons:  lessons,
	})
}

// FigureDomain picks the label a student would look the course up under:
// the general-education area, a fixed name for cross-college types, or
// the owning department for major courses.
func FigureDomain(kind, section, department string) (string, error) {
	switch kind {
	case "교양":
		return section, nil
	case "교선":
		return "교양선택", nil
	case "비교":
		return "비사대교직", nil
	case "전선교":
		return "전공선택(교직)", nil
	case "대기":
		return "대학기초", nil
	case "전기":
		return "전공기초", nil
	case "전선", "전필":
		return department, nil
	}
	return "", &model.ArgumentError{Field: "type", Value: kind + ";" + section + ";" + department}
}

func splitLecturers(cell string) string {
	names := slashPattern.Split(source.CompactSpaces(strings.ReplaceAll(cell, ",", " ")), -1)
	return model.JoinLecturers(names)
}

func buildRemark(e []string) string {
	var parts []string
	if e[colEnglish] != "" {
		parts = append(parts, "영어강의")
	}
	if e[colNative] != "" {
		parts = append(parts, "원어강의:"+e[colNative])
	}
	if e[colOnline] != "" {
		parts = append(parts, "온라인강의")
	}
	if e[colCapacity] != "" {
		parts = append(parts, "인원제한:"+e[colCapacity])
	}
	if e[colNote] != "" {
		parts = append(parts, e[colNote])
	}
	return strings.Join(parts, " ")
}

// ParseLessons zips the newline-separated day, period range ("2~3") and
// room cells. A single range repeated for every day may be listed fewer
// times than the rooms.
func (a *Adapter) ParseLessons(days, periods, rooms string) ([]model.Lesson, error) {
	dayTexts := lines(days)
	timeTexts := lines(periods)
	roomTexts := lines(rooms)

	if len(dayTexts) != len(timeTexts) || len(roomTexts) > len(timeTexts) {
		for _, t := range timeTexts {
			if t != timeTexts[0] {
				return nil, source.Malformed("count mismatch: %d days, %d periods, %d rooms",
					len(dayTexts), len(timeTexts), len(roomTexts))
			}
		}
		if len(timeTexts) > 0 {
			timeTexts = repeat(timeTexts[0], len(roomTexts))
		}
	}

	lessons := make([]model.Lesson, 0, len(dayTexts))
	for i, d := range dayTexts {
		if i >= len(timeTexts) {
			return nil, source.Malformed("no period for day %q", d)
		}
		m := rangePattern.FindStringSubmatch(timeTexts[i])
		if m == nil {
			return nil, source.Malformed("cannot parse lesson: %s;%s", d, timeTexts[i])
		}
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		room := ""
		if i < len(roomTexts) {
			room = roomTexts[i]
		}
		l, err := model.NewLesson(a.codec, source.DayOf(d), start*slotMinutes+slotOffset,
			(end-start+1)*slotMinutes-breakMinutes, room)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

// lines splits on newlines, trimming each line and dropping trailing
// empty ones.
func lines(s string) []string {
	if s == "" {
		return nil
	}
	out := strings.Split(s, "\n")
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
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
