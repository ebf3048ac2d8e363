// Package calendar exports lectures as iCalendar files, one weekly
// recurring event per lesson.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/schedule"
)

const productID = "-//timetabl//positano//KO"

// DefaultWeeks is the length of a regular term.
const DefaultWeeks = 16

// KST is the zone every catalog's times are written in. Korea keeps no
// daylight saving, so a fixed zone is exact.
var KST = time.FixedZone("KST", 9*60*60)

// Term bounds the recurrence of exported lessons.
type Term struct {
	Start time.Time
	Weeks int
}

// DefaultTerm starts on the first Monday on or after March 2 for the
// first term and September 1 for the second.
func DefaultTerm(sem model.Semester) Term {
	month, day := time.March, 2
	if sem.Term() == 2 {
		month, day = time.September, 1
	}
	start := time.Date(sem.Year(), month, day, 0, 0, 0, 0, KST)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}
	return Term{Start: start, Weeks: DefaultWeeks}
}

// Export writes one calendar holding every lesson of lectures.
func Export(w io.Writer, lectures []*model.Lecture, term Term) error {
	if term.Weeks <= 0 {
		return &model.RangeError{Field: "weeks", Value: term.Weeks}
	}
	rule := (&rrule.ROption{Freq: rrule.WEEKLY, Count: term.Weeks}).RRuleString()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if len(lectures) == 1 {
		cal.SetXWRCalName(lectures[0].Title())
	}

	stamp := time.Now().UTC()
	for _, l := range lectures {
		lessons := l.Lessons()
		desc := describe(l, lessons)
		for _, ls := range lessons {
			start := firstMeeting(term.Start, ls)
			ev := cal.AddEvent(uid(l, ls))
			ev.SetDtStampTime(stamp)
			ev.SetStartAt(start)
			ev.SetEndAt(start.Add(time.Duration(ls.Period()) * time.Minute))
			ev.SetSummary(l.Title())
			if ls.Location() != "" {
				ev.SetLocation(ls.Location())
			}
			ev.SetDescription(desc)
			ev.AddRrule(rule)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// firstMeeting is the first date on or after termStart falling on the
// lesson's weekday, at the lesson's start minute.
func firstMeeting(termStart time.Time, ls model.Lesson) time.Time {
	day := time.Date(termStart.Year(), termStart.Month(), termStart.Day(), 0, 0, 0, 0, termStart.Location())
	want := time.Weekday(ls.Day() % 7)
	for day.Weekday() != want {
		day = day.AddDate(0, 0, 1)
	}
	return day.Add(time.Duration(ls.Time()) * time.Minute)
}

func uid(l *model.Lecture, ls model.Lesson) string {
	return fmt.Sprintf("%s-%s-%s-%d-%d@positano", l.University(), l.Semester().Code(), l.SectionID(), ls.Day(), ls.Time())
}

func describe(l *model.Lecture, lessons []model.Lesson) string {
	parts := []string{l.SectionID()}
	if l.Lecturer() != "" {
		parts = append(parts, l.Lecturer())
	}
	if t := schedule.TimeText(lessons); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " / ")
}
