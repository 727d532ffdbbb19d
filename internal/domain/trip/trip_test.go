package trip

import (
	"encoding/json"
	"strings"
	"testing"

	"concierge/internal/domain/shared/daterange"
)

func TestExtractLocationCity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Miami, FL, USA", want: "Miami, FL"},
		{in: "Miami, Florida, USA", want: "Miami, Florida"},
		{in: "Property, Miami, FL, USA", want: "Miami, FL"},
		{in: "Miami, FL", want: "Miami, FL"},
		{in: "  Lisbon  ", want: "Lisbon"},
		{in: "", want: "the area"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExtractLocationCity(tt.in); got != tt.want {
				t.Fatalf("ExtractLocationCity(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTripLength(t *testing.T) {
	start := MustParseDate("2025-07-01")
	if got := TripLength(start, MustParseDate("2025-07-04")); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := TripLength(start, start); got != 1 {
		t.Fatalf("expected 1 for same-day trip, got %d", got)
	}
	if got := TripLength(start, MustParseDate("2025-06-30")); got != 0 {
		t.Fatalf("expected 0 for inverted range, got %d", got)
	}
}

func TestBookingContextDecodesNumericIDAndISODates(t *testing.T) {
	raw := `{"booking_id": 42, "property_name": "Loft", "city": "Miami", "state": "FL",
		"start_date": "2025-07-01T00:00:00.000Z", "end_date": "2025-07-04", "guests": 2}`
	var b BookingContext
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.BookingID != "42" {
		t.Fatalf("unexpected booking id %q", b.BookingID)
	}
	if b.StartDate.String() != "2025-07-01" || b.EndDate.String() != "2025-07-04" {
		t.Fatalf("unexpected dates %s..%s", b.StartDate, b.EndDate)
	}
	if got := b.DisplayLocation(); got != "Miami, FL" {
		t.Fatalf("DisplayLocation() = %q", got)
	}
	if !b.HasStructuredLocation() {
		t.Fatal("expected structured location")
	}
}

func TestAgentResponseFailureEncodesEmptyLists(t *testing.T) {
	data, err := json.Marshal(Failure("Error generating itinerary: boom"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	for _, field := range []string{`"itinerary":[]`, `"packing_list":[]`, `"weather_forecast":[]`, `"tips":[]`, `"success":false`} {
		if !strings.Contains(out, field) {
			t.Fatalf("expected %s in %s", field, out)
		}
	}
}

func TestPreferencesNormalize(t *testing.T) {
	p := Preferences{Budget: " LUXURY ", Interests: []string{"food", " ", "art"}}.Normalize()
	if p.Budget != BudgetLuxury {
		t.Fatalf("unexpected budget %q", p.Budget)
	}
	if len(p.Interests) != 2 || p.DietaryRestrictions == nil {
		t.Fatalf("unexpected normalized lists %#v", p)
	}
	if DefaultPreferences().Normalize().Budget != BudgetMedium {
		t.Fatal("default budget must be medium")
	}
}

func TestMockForecast(t *testing.T) {
	dr, err := daterange.New(MustParseDate("2025-01-30").Time(), MustParseDate("2025-02-02").Time())
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	days := MockForecast(dr)
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	for i, d := range days {
		if d.TemperatureHigh != 72.0 || d.TemperatureLow != 58.0 || d.PrecipitationChance != 15 || d.Condition != "Partly Cloudy" {
			t.Fatalf("day %d has unexpected values %#v", i, d)
		}
	}
	if days[3].Date.String() != "2025-02-02" {
		t.Fatalf("unexpected last date %s", days[3].Date)
	}
}
