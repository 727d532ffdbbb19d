package concierge

import (
	"strings"

	"concierge/internal/domain/packing"
	"concierge/internal/domain/trip"
)

const (
	warmTipThreshold = 80.0
	coolTipThreshold = 50.0
)

// Tips returns weather, preference and general advice in a fixed order.
func Tips(booking trip.BookingContext, prefs trip.Preferences, forecast []trip.WeatherDay) []string {
	tips := make([]string, 0, 8)

	if packing.RainExpected(forecast) {
		tips = append(tips, "Rain is expected during your trip - don't forget an umbrella!")
	}
	if len(forecast) > 0 {
		avg := packing.AverageHigh(forecast)
		switch {
		case avg > warmTipThreshold:
			tips = append(tips, "It will be warm - stay hydrated and use sunscreen.")
		case avg < coolTipThreshold:
			tips = append(tips, "Cool temperatures expected - layer up for warmth.")
		}
	}

	if prefs.HasChildren {
		tips = append(tips, "Many activities are family-friendly with facilities for children.")
	}
	if prefs.WheelchairAccessible {
		tips = append(tips, "All recommended venues have been checked for accessibility.")
	}
	if len(prefs.DietaryRestrictions) > 0 {
		tips = append(tips, "Restaurant recommendations include "+strings.Join(prefs.DietaryRestrictions, ", ")+" options.")
	}

	tips = append(tips,
		"Book activities in advance during peak season in "+booking.DisplayLocation()+".",
		"Download offline maps in case of limited connectivity.",
	)
	return tips
}
