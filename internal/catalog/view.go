package catalog

import (
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/schedule"
)

// View is the outward form of a lecture: its validated fields plus the
// derived schedule text, location summary and per-day masks.
type View struct {
	University   string               `json:"univ"`
	Semester     string               `json:"semester"`
	SectionID    string               `json:"litid"`
	Title        string               `json:"title"`
	Domain       string               `json:"domain"`
	Years        string               `json:"years"`
	YearMask     int                  `json:"year_mask"`
	Credits      float64              `json:"credits"`
	Lecturer     string               `json:"lecturer"`
	Remark       string               `json:"remark"`
	TimeText     string               `json:"time_txt"`
	LocationText string               `json:"location_txt"`
	DayMasks     [7]uint32            `json:"day_masks"`
	Runs         []schedule.Run       `json:"runs"`
	Lessons      []model.LessonRecord `json:"lessons"`
}

func NewView(l *model.Lecture) View {
	lessons := l.Lessons()
	v := View{
		University:   l.University().String(),
		Semester:     l.Semester().String(),
		SectionID:    l.SectionID(),
		Title:        l.Title(),
		Domain:       l.Domain(),
		Years:        model.EncodeYears(l.YearMask()),
		YearMask:     l.YearMask(),
		Credits:      l.Credits(),
		Lecturer:     l.Lecturer(),
		Remark:       l.Remark(),
		TimeText:     schedule.TimeText(lessons),
		LocationText: schedule.LocationText(lessons),
		Runs:         schedule.Runs(lessons),
		Lessons:      l.Record().Lessons,
	}
	for i, m := range schedule.DayMasks(lessons) {
		v.DayMasks[i] = uint32(m)
	}
	if v.Runs == nil {
		v.Runs = []schedule.Run{}
	}
	return v
}

// Views maps NewView over lectures.
func Views(lectures []*model.Lecture) []View {
	out := make([]View, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, NewView(l))
	}
	return out
}
