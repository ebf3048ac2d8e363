// Package timecodec converts a source's raw start-time minutes into the
// zero-based period index its timetable uses.
package timecodec

import (
	"errors"
	"fmt"

	"github.com/timetabl/positano/internal/model"
)

// ErrNoCodec is returned for a university without a known slot table.
var ErrNoCodec = errors.New("no time codec for university")

// Codec is a pure value: periods are SlotMinutes wide starting at minute
// Offset, numbered 0..MaxPeriod.
type Codec struct {
	Offset      int
	SlotMinutes int
	MaxPeriod   int
}

var table = map[model.University]Codec{
	model.Sogang: {Offset: 450, SlotMinutes: 90, MaxPeriod: 10},
	model.Yonsei: {Offset: 480, SlotMinutes: 60, MaxPeriod: 15},
	model.Wonju:  {Offset: 480, SlotMinutes: 60, MaxPeriod: 15},
	model.Ewha:   {Offset: 390, SlotMinutes: 90, MaxPeriod: 16},
}

// For returns the codec registered for u.
func For(u model.University) (Codec, error) {
	c, ok := table[u]
	if !ok {
		return Codec{}, fmt.Errorf("%w: %s", ErrNoCodec, u)
	}
	return c, nil
}

// Lookup is For without the error, for callers that only need a codec when
// there are lessons to decode. It returns a nil decoder when none exists.
func Lookup(u model.University) model.PeriodDecoder {
	c, err := For(u)
	if err != nil {
		return nil
	}
	return c
}

// PeriodOf floors (raw - Offset) / SlotMinutes and fails when the result
// falls outside 0..MaxPeriod. It never clamps.
func (c Codec) PeriodOf(raw int) (int, error) {
	if c.SlotMinutes <= 0 {
		return 0, &model.ArgumentError{Field: "slot_minutes", Value: c.SlotMinutes}
	}
	if raw < c.Offset {
		return 0, &model.RangeError{Field: "period_index", Value: fmt.Sprintf("time %d before offset %d", raw, c.Offset)}
	}
	p := (raw - c.Offset) / c.SlotMinutes
	if p > c.MaxPeriod {
		return 0, &model.RangeError{Field: "period_index", Value: p}
	}
	return p, nil
}

// StartMinute is the inverse of PeriodOf for the first minute of period p.
func (c Codec) StartMinute(p int) (int, error) {
	if p < 0 || p > c.MaxPeriod {
		return 0, &model.RangeError{Field: "period_index", Value: p}
	}
	return c.Offset + p*c.SlotMinutes, nil
}
