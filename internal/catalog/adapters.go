// Package catalog imports one source's cached pages for a semester into a
// merged, validated lecture list.
package catalog

import (
	"errors"
	"fmt"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/source"
	"github.com/timetabl/positano/internal/source/ewha"
	"github.com/timetabl/positano/internal/source/sogang"
	"github.com/timetabl/positano/internal/source/yonsei"
)

// ErrNoAdapter is returned for a university whose pages cannot be read.
var ErrNoAdapter = errors.New("no source adapter")

// AdapterFor returns the row adapter for u's catalog.
func AdapterFor(u model.University, sem model.Semester) (source.Adapter, error) {
	switch u {
	case model.Sogang:
		return sogang.New(sem), nil
	case model.Yonsei, model.Wonju:
		return yonsei.New(u, sem)
	case model.Ewha:
		return ewha.New(sem)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAdapter, u)
}

// usesRowCache reports whether u's sweeps are cached as extracted JSON
// rows rather than raw pages. The Yonsei grid is paged client-side, so
// its rows are collected across pages before caching.
func usesRowCache(u model.University) bool {
	return u == model.Yonsei || u == model.Wonju
}
