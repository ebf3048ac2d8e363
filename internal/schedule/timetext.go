// Package schedule renders a lecture's lessons into display text and
// occupancy masks.
package schedule

import (
	"sort"
	"strconv"
	"strings"

	"github.com/timetabl/positano/internal/model"
)

// DayGlyphs indexes day numbers 1..7 (Monday first).
var DayGlyphs = [...]string{"?", "월", "화", "수", "목", "금", "토", "일"}

const (
	weekdays     = "월화수목금"
	weekdayRange = "월-금"
	runSeparator = ","
)

// Run is a maximal block of contiguous periods on one day.
type Run struct {
	Day   int `json:"day"`
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Run) text() string {
	s := strconv.Itoa(r.Start)
	if r.Start != r.End {
		s += "-" + strconv.Itoa(r.End)
	}
	return s
}

// TimeText compacts lessons into the short form a person would write,
// e.g. "월-금1-2" or "화3,5수1". An empty collection gives "".
func TimeText(lessons []model.Lesson) string {
	runs := Runs(lessons)
	if len(runs) == 0 {
		return ""
	}

	type daySegment struct {
		day    int
		ranges []string
	}
	var segs []daySegment
	for _, r := range runs {
		if n := len(segs); n > 0 && segs[n-1].day == r.Day {
			segs[n-1].ranges = append(segs[n-1].ranges, r.text())
			continue
		}
		segs = append(segs, daySegment{day: r.Day, ranges: []string{r.text()}})
	}

	var b strings.Builder
	for i, seg := range segs {
		b.WriteString(glyph(seg.day))
		// Two back-to-back days with the same single range share one
		// period text: "월1-2화1-2" reads "월화1-2".
		if i+1 < len(segs) && len(seg.ranges) == 1 && len(segs[i+1].ranges) == 1 &&
			seg.ranges[0] == segs[i+1].ranges[0] {
			continue
		}
		b.WriteString(strings.Join(seg.ranges, runSeparator))
	}

	return strings.Replace(b.String(), weekdays, weekdayRange, 1)
}

// Runs sorts lessons by (day, start period) and greedily merges adjacent
// or overlapping periods on the same day.
func Runs(lessons []model.Lesson) []Run {
	if len(lessons) == 0 {
		return nil
	}
	sorted := make([]model.Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Day() != sorted[j].Day() {
			return sorted[i].Day() < sorted[j].Day()
		}
		return sorted[i].StartPeriod() < sorted[j].StartPeriod()
	})

	var out []Run
	cur := Run{Day: sorted[0].Day(), Start: sorted[0].StartPeriod(), End: sorted[0].EndPeriod()}
	for _, l := range sorted[1:] {
		if l.Day() == cur.Day && cur.End+1 >= l.StartPeriod() {
			if l.EndPeriod() > cur.End {
				cur.End = l.EndPeriod()
			}
			continue
		}
		out = append(out, cur)
		cur = Run{Day: l.Day(), Start: l.StartPeriod(), End: l.EndPeriod()}
	}
	return append(out, cur)
}

func glyph(day int) string {
	if day < 1 || day >= len(DayGlyphs) {
		return DayGlyphs[0]
	}
	return DayGlyphs[day]
}
