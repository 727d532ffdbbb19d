package daterange

import (
	"errors"
	"time"
)

const Layout = "2006-01-02"

var (
	ErrInvalidRange = errors.New("daterange: end date precedes start date")
)

// DateRange represents an inclusive interval of calendar days [Start, End].
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days is the inclusive day count, so a same-day range has length 1.
func (dr DateRange) Days() int {
	return int(dr.End.Sub(dr.Start).Hours()/24) + 1
}

func (dr DateRange) Dates() []time.Time {
	n := dr.Days()
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for d := dr.Start; !d.After(dr.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.Start) && !t.After(dr.End)
}
