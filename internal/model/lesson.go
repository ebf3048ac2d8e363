package model

// PeriodDecoder maps a source-native raw minute value to a zero-based
// period index. Implemented by timecodec.Codec.
type PeriodDecoder interface {
	PeriodOf(raw int) (int, error)
}

// DayMask is a per-day occupancy bitmask; bit p is set when period p is
// taken.
type DayMask uint32

const (
	minDay    = 1
	maxDay    = 7
	maxTime   = 9999
	minPeriod = 1
	maxPeriod = 480

	// maxPeriodIndex is the highest period a DayMask can hold.
	maxPeriodIndex = 31
)

// Lesson is one weekly meeting of a lecture. Start and end periods are
// decoded through the owning source's codec at construction, so a Lesson
// value is always fully valid.
type Lesson struct {
	day      int
	time     int
	period   int
	location string

	startPeriod int
	endPeriod   int
}

// NewLesson validates day (1..7, Monday first), time (0..9999, source
// native), period (duration in minutes, 1..480) and decodes the period
// range with codec.
func NewLesson(codec PeriodDecoder, day, time, period int, location string) (Lesson, error) {
	if codec == nil {
		return Lesson{}, invalidArgument("codec", nil)
	}
	if day < minDay || day > maxDay {
		return Lesson{}, outOfRange("day", day)
	}
	if time < 0 || time > maxTime {
		return Lesson{}, outOfRange("time", time)
	}
	if period < minPeriod || period > maxPeriod {
		return Lesson{}, outOfRange("period", period)
	}
	start, err := codec.PeriodOf(time)
	if err != nil {
		return Lesson{}, err
	}
	end, err := codec.PeriodOf(time + period - 1)
	if err != nil {
		return Lesson{}, err
	}
	if start < 0 || start > end {
		return Lesson{}, outOfRange("period_index", start)
	}
	if end > maxPeriodIndex {
		return Lesson{}, outOfRange("period_index", end)
	}
	return Lesson{
		day:         day,
		time:        time,
		period:      period,
		location:    location,
		startPeriod: start,
		endPeriod:   end,
	}, nil
}

func (l Lesson) Day() int         { return l.day }
func (l Lesson) Time() int        { return l.time }
func (l Lesson) Period() int      { return l.period }
func (l Lesson) Location() string { return l.location }
func (l Lesson) StartPeriod() int { return l.startPeriod }
func (l Lesson) EndPeriod() int   { return l.endPeriod }

// WithLocation returns a copy of l with its location replaced.
func (l Lesson) WithLocation(location string) Lesson {
	l.location = location
	return l
}

// MaskOfDay returns the contiguous run of bits covering the lesson's
// periods when d is the lesson's day, and 0 otherwise.
func (l Lesson) MaskOfDay(d int) DayMask {
	if d != l.day {
		return 0
	}
	return DayMask(1)<<(l.endPeriod+1) - DayMask(1)<<l.startPeriod
}
