package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(Layout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(date("2025-03-05"), date("2025-03-04"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := New(time.Time{}, date("2025-03-04")); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for zero start, got %v", err)
	}
}

func TestDaysIsInclusive(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{name: "same day", start: "2025-03-01", end: "2025-03-01", want: 1},
		{name: "four days", start: "2025-03-01", end: "2025-03-04", want: 4},
		{name: "month boundary", start: "2025-02-27", end: "2025-03-02", want: 4},
		{name: "dst switch", start: "2025-03-08", end: "2025-03-10", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, err := New(date(tt.start), date(tt.end))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := dr.Days(); got != tt.want {
				t.Fatalf("Days() = %d, want %d", got, tt.want)
			}
			if got := len(dr.Dates()); got != tt.want {
				t.Fatalf("len(Dates()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewTruncatesToCalendarDay(t *testing.T) {
	start := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	dr, err := New(start, end)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if dr.Days() != 2 {
		t.Fatalf("expected 2 days, got %d", dr.Days())
	}
	if !dr.ContainsDate(time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)) {
		t.Fatal("expected end day to be contained")
	}
	if dr.ContainsDate(date("2025-06-03")) {
		t.Fatal("day after end must not be contained")
	}
}
