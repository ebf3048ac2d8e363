// Package sqlgen writes a MySQL script that loads lectures into the
// course, lectures and lessons tables of the timetable site.
package sqlgen

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/schedule"
)

const (
	insertCourse  = "INSERT IGNORE INTO course (univ, title, lecturer) VALUES (?, ?, ?);"
	selectCourse  = "SET @course_id = (SELECT id FROM course WHERE univ = ? AND title = ? AND lecturer = ?);"
	insertLecture = "INSERT IGNORE INTO lectures (univ, semester, litid, domain, year, title, credits, lecturer, remark, time_txt, location_txt, course_id, competitors) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, @course_id, 0);"
	updateLecture = "UPDATE lectures SET domain = ?, year = ?, title = ?, credits = ?, lecturer = ?, remark = ?, time_txt = ?, location_txt = ?, course_id = @course_id WHERE univ = ? AND semester = ? AND litid = ?;"
	selectLecture = "SET @lecture_id = (SELECT id FROM lectures WHERE univ = ? AND semester = ? AND litid = ?);"
	deleteLessons = "DELETE FROM lessons WHERE id = @lecture_id;"
	insertLesson  = "INSERT INTO lessons (id, day, time, period, location, day1, day2, day3, day4, day5, day6, day7) VALUES (@lecture_id, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);"
)

// Generate writes one transaction covering every lecture, in section id
// order. Re-running the script updates rows in place.
func Generate(w io.Writer, lectures []*model.Lecture) error {
	sorted := make([]*model.Lecture, len(lectures))
	copy(sorted, lectures)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SectionID() < sorted[j].SectionID()
	})

	bw := bufio.NewWriter(w)
	bw.WriteString("BEGIN;\n")
	bw.WriteString("SET NAMES utf8mb4;\n")
	for _, l := range sorted {
		writeLecture(bw, l)
	}
	bw.WriteString("COMMIT;\n")
	return bw.Flush()
}

func writeLecture(w *bufio.Writer, l *model.Lecture) {
	univ := int(l.University())
	sem := l.Semester().Ordinal()
	lessons := l.Lessons()
	timeText := schedule.TimeText(lessons)
	locationText := schedule.LocationText(lessons)

	line(w, insertCourse, univ, l.Title(), l.Lecturer())
	line(w, selectCourse, univ, l.Title(), l.Lecturer())
	line(w, insertLecture, univ, sem, l.SectionID(), l.Domain(), l.YearMask(), l.Title(), l.Credits(),
		l.Lecturer(), l.Remark(), timeText, locationText)
	line(w, updateLecture, l.Domain(), l.YearMask(), l.Title(), l.Credits(), l.Lecturer(), l.Remark(),
		timeText, locationText, univ, sem, l.SectionID())
	line(w, selectLecture, univ, sem, l.SectionID())
	w.WriteString(deleteLessons + "\n")
	for _, ls := range lessons {
		args := []interface{}{ls.Day(), ls.Time(), ls.Period(), ls.Location()}
		for d := 1; d <= 7; d++ {
			args = append(args, uint32(ls.MaskOfDay(d)))
		}
		line(w, insertLesson, args...)
	}
}

func line(w *bufio.Writer, query string, params ...interface{}) {
	w.WriteString(Sqlize(query, params...))
	w.WriteByte('\n')
}

// Sqlize substitutes each "?" in query with the next parameter rendered
// as a SQL literal: NULL for nil, bare numbers, and single-quoted strings
// with embedded quotes doubled.
func Sqlize(query string, params ...interface{}) string {
	var b strings.Builder
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		var p interface{}
		if len(params) > 0 {
			p, params = params[0], params[1:]
		}
		b.WriteString(literal(p))
	}
	return b.String()
}

func literal(p interface{}) string {
	switch v := p.(type) {
	case nil:
		return "NULL"
	case int:
		return strconv.Itoa(v)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return "'" + quoteEscaper.Replace(v) + "'"
	default:
		return "'" + quoteEscaper.Replace(fmt.Sprint(v)) + "'"
	}
}

// quoteEscaper escapes for MySQL's default sql_mode, where a backslash
// escapes the next character inside a quoted string.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)
