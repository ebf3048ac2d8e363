package schedule

import (
	"github.com/timetabl/positano/internal/model"
)

// Week holds one occupancy mask per day, index 0 being Monday.
type Week [7]model.DayMask

// DayMasks ORs every lesson's mask into its day.
func DayMasks(lessons []model.Lesson) Week {
	var w Week
	for _, l := range lessons {
		for d := 1; d <= len(w); d++ {
			w[d-1] |= l.MaskOfDay(d)
		}
	}
	return w
}

// Overlaps reports whether any day has a period taken in both weeks.
func (w Week) Overlaps(o Week) bool {
	for i := range w {
		if w[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no period is taken on any day.
func (w Week) IsEmpty() bool {
	for _, m := range w {
		if m != 0 {
			return false
		}
	}
	return true
}

// Conflicts reports whether two lectures meet in the same period on the
// same day. Lectures from different universities never conflict: their
// period grids are unrelated.
func Conflicts(a, b *model.Lecture) bool {
	if a.University() != b.University() {
		return false
	}
	return DayMasks(a.Lessons()).Overlaps(DayMasks(b.Lessons()))
}

// Conflict names two lectures whose schedules overlap.
type Conflict struct {
	A model.Key
	B model.Key
}

// FindConflicts checks every pair of lectures and returns the overlapping
// pairs in input order.
func FindConflicts(lectures []*model.Lecture) []Conflict {
	weeks := make([]Week, len(lectures))
	for i, l := range lectures {
		weeks[i] = DayMasks(l.Lessons())
	}

	var out []Conflict
	for i := 0; i < len(lectures); i++ {
		for j := i + 1; j < len(lectures); j++ {
			if lectures[i].University() != lectures[j].University() {
				continue
			}
			if weeks[i].Overlaps(weeks[j]) {
				out = append(out, Conflict{A: lectures[i].Key(), B: lectures[j].Key()})
			}
		}
	}
	return out
}
