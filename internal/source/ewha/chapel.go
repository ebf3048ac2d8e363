package ewha

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/timetabl/positano/internal/model"
)

//go:embed chapels.yaml
var chapelsYAML []byte

const (
	chapelTitle    = "채플"
	chapelLocation = "대강당"
	chapelMinutes  = 30
)

type chapel struct {
	Sub    int    `yaml:"sub"`
	Day    int    `yaml:"day"`
	Slot   int    `yaml:"slot"`
	Remark string `yaml:"remark"`
}

func loadChapels() ([]chapel, error) {
	var out []chapel
	if err := yaml.Unmarshal(chapelsYAML, &out); err != nil {
		return nil, fmt.Errorf("parse chapels.yaml: %w", err)
	}
	return out, nil
}

// FixedLectures returns the chapel sessions as zero-credit lectures.
func (a *Adapter) FixedLectures() ([]*model.Lecture, error) {
	out := make([]*model.Lecture, 0, len(a.chapels))
	for _, c := range a.chapels {
		lesson, err := model.NewLesson(a.codec, c.Day, c.Slot*slotMinutes+slotOffset, chapelMinutes, chapelLocation)
		if err != nil {
			return nil, fmt.Errorf("chapel %d: %w", c.Sub, err)
		}
		key := model.Key{University: model.Ewha, Semester: a.semester, SectionID: fmt.Sprintf("00000-0%d", c.Sub)}
		l, err := model.NewLecture(key, model.LectureDraft{
			Title:   chapelTitle,
			Domain:  chapelTitle,
			Remark:  c.Remark,
			Lessons: []model.Lesson{lesson},
		})
		if err != nil {
			return nil, fmt.Errorf("chapel %d: %w", c.Sub, err)
		}
		out = append(out, l)
	}
	return out, nil
}
