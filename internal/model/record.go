package model

import (
	"time"

	"github.com/google/uuid"
)

// LessonRecord is the flat, serializable form of a Lesson.
type LessonRecord struct {
	Day      int    `json:"day"`
	Time     int    `json:"time"`
	Period   int    `json:"period"`
	Location string `json:"location"`
}

// LectureRecord is the flat, serializable form of a Lecture used on the
// persist queue.
type LectureRecord struct {
	University string         `json:"univ"`
	Semester   int            `json:"semester"`
	SectionID  string         `json:"litid"`
	Title      string         `json:"title"`
	YearMask   int            `json:"year"`
	Domain     string         `json:"domain"`
	Credits    float64        `json:"credits"`
	Lecturer   string         `json:"lecturer"`
	Remark     string         `json:"remark"`
	Lessons    []LessonRecord `json:"lessons"`
}

// Record flattens l.
func (l *Lecture) Record() LectureRecord {
	rec := LectureRecord{
		University: l.key.University.String(),
		Semester:   l.key.Semester.Ordinal(),
		SectionID:  l.key.SectionID,
		Title:      l.title,
		YearMask:   l.yearMask,
		Domain:     l.domain,
		Credits:    l.credits,
		Lecturer:   l.lecturer,
		Remark:     l.remark,
		Lessons:    make([]LessonRecord, 0, len(l.lessons)),
	}
	for _, ls := range l.lessons {
		rec.Lessons = append(rec.Lessons, LessonRecord{
			Day:      ls.day,
			Time:     ls.time,
			Period:   ls.period,
			Location: ls.location,
		})
	}
	return rec
}

// Build revalidates a record into a Lecture. codec may be nil only when
// the record has no lessons.
func (r LectureRecord) Build(codec PeriodDecoder) (*Lecture, error) {
	univ, err := ParseUniversity(r.University)
	if err != nil {
		return nil, err
	}
	sem, err := SemesterFromOrdinal(r.Semester)
	if err != nil {
		return nil, err
	}
	lessons := make([]Lesson, 0, len(r.Lessons))
	for _, lr := range r.Lessons {
		ls, err := NewLesson(codec, lr.Day, lr.Time, lr.Period, lr.Location)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, ls)
	}
	return NewLecture(Key{University: univ, Semester: sem, SectionID: r.SectionID}, LectureDraft{
		Title:    r.Title,
		YearMask: r.YearMask,
		Domain:   r.Domain,
		Credits:  r.Credits,
		Lecturer: r.Lecturer,
		Remark:   r.Remark,
		Lessons:  lessons,
	})
}

// ImportRun summarizes one import of a source's catalog for a semester.
type ImportRun struct {
	ID         uuid.UUID  `json:"id"`
	University University `json:"univ"`
	Semester   Semester   `json:"-"`
	Rows       int        `json:"rows"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Lectures   int        `json:"lectures"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}
