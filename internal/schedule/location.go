package schedule

import (
	"sort"
	"strings"

	"github.com/timetabl/positano/internal/model"
)

// LocationText is the sorted, de-duplicated, comma-joined set of the
// lessons' locations. Lessons without a location are left out.
func LocationText(lessons []model.Lesson) string {
	seen := make(map[string]struct{}, len(lessons))
	locs := make([]string, 0, len(lessons))
	for _, l := range lessons {
		loc := strings.TrimSpace(l.Location())
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return strings.Join(locs, ",")
}
