// Package sogang builds lectures from rows of Sogang University's
// course search grid.
package sogang

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

// Column positions inside a row.
const (
	colDivision = 2
	colCode     = 4
	colClass    = 5
	colTitle    = 6
	colCredits  = 8
	colSchedule = 9
	colLecturer = 11
	colEnglish  = 13
	colABEEK    = 14
	colYears    = 19
	colNote3    = 20
	colNote2    = 21
	colNote     = 22
)

const (
	undergraduate = "학부"
	testSubject   = "수강신청 테스트과목"
	staffLecturer = "교수진"
	closedMarker  = "폐강"
)

var (
	codePattern    = regexp.MustCompile(`^[A-Z]{3}[A-Z\d]\d{3}$`)
	classPattern   = regexp.MustCompile(`^\d\d$`)
	creditsPattern = regexp.MustCompile(`^\d\.0$`)
	lessonPattern  = regexp.MustCompile(`([월화수목금토일](?:,[월화수목금토일])*)\s*(\d\d):(\d\d)~(\d\d):(\d\d)(?:\s+(\w+))?`)
	dayPattern     = regexp.MustCompile(`[월화수목금토일]`)
)

type Adapter struct {
	semester model.Semester
	codec    timecodec.Codec
}

func New(semester model.Semester) *Adapter {
	codec, _ := timecodec.For(model.Sogang)
	return &Adapter{semester: semester, codec: codec}
}

func (a *Adapter) University() model.University { return model.Sogang }
func (a *Adapter) Semester() model.Semester     { return a.semester }

// Build turns one grid row into a lecture. Graduate rows and the
// registration test subject are skipped.
func (a *Adapter) Build(row source.Row) (*model.Lecture, error) {
	f := row.Fields
	if source.IsBlank(f) {
		return nil, source.Skip("empty row")
	}
	if len(f) < FieldCount {
		return nil, source.Malformed("expected %d fields, got %d", FieldCount, len(f))
	}
	if f[colDivision] != undergraduate {
		return nil, source.Skip("division %q", f[colDivision])
	}
	if f[colTitle] == testSubject {
		return nil, source.Skip("test subject")
	}

	code, class, credits := f[colCode], f[colClass], f[colCredits]
	if !codePattern.MatchString(code) {
		return nil, source.Malformed("invalid code <%s>", code)
	}
	if !classPattern.MatchString(class) {
		return nil, source.Malformed("invalid class <%s>", class)
	}
	if !creditsPattern.MatchString(credits) {
		return nil, source.Malformed("invalid credits <%s>", credits)
	}

	lecturer := f[colLecturer]
	if lecturer == staffLecturer {
		lecturer = ""
	}

	years, err := model.DecodeYears(f[colYears])
	if err != nil {
		return nil, err
	}

	remark := buildRemark(f)
	closed := strings.Contains(remark, closedMarker)

	draft := model.LectureDraft{
		Title:    f[colTitle],
		YearMask: years,
		Domain:   row.Category,
		Lecturer: model.JoinLecturers(strings.Split(lecturer, ",")),
		Remark:   remark,
	}
	if !closed {
		draft.Credits, _ = strconv.ParseFloat(credits, 64)
		draft.Lessons, err = a.parseLessons(f[colSchedule])
		if err != nil {
			return nil, err
		}
	}

	key := model.Key{University: model.Sogang, Semester: a.semester, SectionID: code + "-" + class}
	return model.NewLecture(key, draft)
}

func buildRemark(f []string) string {
	var parts []string
	if f[colEnglish] != "" {
		parts = append(parts, "영어강의")
	}
	for _, n := range []string{f[colNote], f[colNote2], f[colNote3]} {
		if n != "" {
			parts = append(parts, n)
		}
	}
	if f[colABEEK] != "" {
		parts = append(parts, "ABEEK")
	}
	return strings.Join(parts, " ")
}

// parseLessons reads text such as "월,수 10:30~11:45 X101" into one
// lesson per listed day. Times are minutes since midnight.
func (a *Adapter) parseLessons(text string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	for _, m := range lessonPattern.FindAllStringSubmatch(text, -1) {
		start := atoi(m[2])*60 + atoi(m[3])
		period := atoi(m[4])*60 + atoi(m[5]) - start
		for _, d := range dayPattern.FindAllString(m[1], -1) {
			l, err := model.NewLesson(a.codec, source.DayOf(d), start, period, m[6])
			if err != nil {
				return nil, err
			}
			lessons = append(lessons, l)
		}
	}
	return lessons, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
