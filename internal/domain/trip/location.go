package trip

import (
	"strings"
	"time"

	"concierge/internal/domain/shared/daterange"
)

const UnknownArea = "the area"

// ExtractLocationCity reduces a comma separated location to "city, region".
//
//	"Miami, FL, USA"           -> "Miami, FL"
//	"Property, Miami, FL, USA" -> "Miami, FL"
//	"Miami, FL"                -> "Miami, FL"
func ExtractLocationCity(location string) string {
	if location == "" {
		return UnknownArea
	}
	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case len(parts) == 3:
		return parts[0] + ", " + parts[1]
	case len(parts) >= 4:
		return parts[1] + ", " + parts[2]
	default:
		return strings.TrimSpace(location)
	}
}

// TripLength is the inclusive day count between start and end; it is zero or negative for inverted ranges.
func TripLength(start, end Date) int {
	return int(end.Time().Sub(start.Time()).Hours()/24) + 1
}

// Placeholder values reported when no forecast is available for a day.
const (
	MockHigh          = 72.0
	MockLow           = 58.0
	MockCondition     = "Partly Cloudy"
	MockPrecipitation = 15
)

// MockForecast produces one placeholder WeatherDay per day of dr.
func MockForecast(dr daterange.DateRange) []WeatherDay {
	dates := dr.Dates()
	out := make([]WeatherDay, 0, len(dates))
	for _, d := range dates {
		out = append(out, MockWeatherDay(d))
	}
	return out
}

func MockWeatherDay(day time.Time) WeatherDay {
	return WeatherDay{
		Date:                NewDate(day),
		TemperatureHigh:     MockHigh,
		TemperatureLow:      MockLow,
		Condition:           MockCondition,
		PrecipitationChance: MockPrecipitation,
	}
}
