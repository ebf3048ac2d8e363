// Package merger folds per-category sweeps of a catalog into one lecture
// per section.
package merger

import (
	"sort"
	"strings"

	"github.com/timetabl/positano/internal/model"
)

// Merger is a single-writer fold keyed by model.Key. The first lecture
// seen for a key is kept; later ones only contribute domain labels.
// Results are final only after the whole source has been added.
type Merger struct {
	index map[model.Key]int
	order []*model.Lecture
}

func New() *Merger {
	return &Merger{index: make(map[model.Key]int)}
}

// Add folds l into the result. It fails only when the unioned domain is
// empty, which cannot happen for validated lectures.
func (m *Merger) Add(l *model.Lecture) error {
	i, ok := m.index[l.Key()]
	if !ok {
		m.index[l.Key()] = len(m.order)
		m.order = append(m.order, l)
		return nil
	}

	rep := m.order[i]
	domain := UnionDomains(rep.Domain(), l.Domain())
	if domain == rep.Domain() {
		return nil
	}
	merged, err := rep.WithDomain(domain)
	if err != nil {
		return err
	}
	m.order[i] = merged
	return nil
}

// Len is the number of distinct keys seen so far.
func (m *Merger) Len() int { return len(m.order) }

// Lectures returns one lecture per key in first-seen order.
func (m *Merger) Lectures() []*model.Lecture {
	out := make([]*model.Lecture, len(m.order))
	copy(out, m.order)
	return out
}

// Merge folds a complete sequence.
func Merge(seq []*model.Lecture) ([]*model.Lecture, error) {
	m := New()
	for _, l := range seq {
		if err := m.Add(l); err != nil {
			return nil, err
		}
	}
	return m.Lectures(), nil
}

// UnionDomains splits both labels on commas and returns the sorted,
// de-duplicated union, joined again with commas.
func UnionDomains(a, b string) string {
	parts := append(strings.Split(a, ","), strings.Split(b, ",")...)
	seen := make(map[string]struct{}, len(parts))
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
