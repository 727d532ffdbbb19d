// Package packing derives a weather-aware packing checklist. Build is pure:
// the same inputs always produce the same items in the same order.
package packing

import "concierge/internal/domain/trip"

const (
	warmThreshold = 75.0
	mildThreshold = 60.0
	rainThreshold = 30
	// used when the forecast is empty
	defaultAverageHigh = 70.0
	extendedStayDays   = 3
)

var (
	warmItems = []trip.PackingItem{
		{Item: "Lightweight shorts", Category: "clothing", Reason: "Warm weather expected"},
		{Item: "T-shirts", Category: "clothing", Reason: "Comfortable for warm days"},
		{Item: "Sunglasses", Category: "accessories", Reason: "Sun protection"},
		{Item: "Sunscreen", Category: "toiletries", Reason: "UV protection"},
	}
	mildItems = []trip.PackingItem{
		{Item: "Light jacket", Category: "clothing", Reason: "Mild temperatures"},
		{Item: "Comfortable jeans", Category: "clothing", Reason: "Versatile for day/evening"},
		{Item: "Layers (sweater/cardigan)", Category: "clothing", Reason: "Temperature changes"},
	}
	coldItems = []trip.PackingItem{
		{Item: "Warm jacket", Category: "clothing", Reason: "Cold weather expected"},
		{Item: "Warm pants", Category: "clothing", Reason: "Cold protection"},
		{Item: "Scarf and gloves", Category: "accessories", Reason: "Extra warmth"},
	}
	rainItems = []trip.PackingItem{
		{Item: "Rain jacket", Category: "clothing", Reason: "Rain expected"},
		{Item: "Umbrella", Category: "accessories", Reason: "Stay dry"},
	}
	essentialItems = []trip.PackingItem{
		{Item: "Comfortable walking shoes", Category: "footwear", Reason: "Essential for sightseeing"},
		{Item: "Toiletries kit", Category: "toiletries", Reason: "Personal hygiene"},
		{Item: "Phone charger", Category: "electronics", Reason: "Stay connected"},
		{Item: "Travel documents", Category: "documents", Reason: "ID, booking confirmations"},
	}
	childItems = []trip.PackingItem{
		{Item: "Snacks for kids", Category: "food", Reason: "Keep children happy"},
		{Item: "Entertainment (books/toys)", Category: "entertainment", Reason: "Downtime activities"},
	}
	extendedStayItem = trip.PackingItem{Item: "Laundry detergent", Category: "toiletries", Reason: "Extended stay"}
)

// Build returns the checklist for the given forecast, trip length and preferences.
func Build(forecast []trip.WeatherDay, tripLength int, prefs trip.Preferences) []trip.PackingItem {
	items := make([]trip.PackingItem, 0, 16)

	avg := AverageHigh(forecast)
	switch {
	case avg > warmThreshold:
		items = append(items, warmItems...)
	case avg > mildThreshold:
		items = append(items, mildItems...)
	default:
		items = append(items, coldItems...)
	}
	if RainExpected(forecast) {
		items = append(items, rainItems...)
	}
	items = append(items, essentialItems...)
	if prefs.HasChildren {
		items = append(items, childItems...)
	}
	if tripLength > extendedStayDays {
		items = append(items, extendedStayItem)
	}
	return items
}

// AverageHigh is the mean daily high, or 70°F when the forecast is empty.
func AverageHigh(forecast []trip.WeatherDay) float64 {
	if len(forecast) == 0 {
		return defaultAverageHigh
	}
	var sum float64
	for _, d := range forecast {
		sum += d.TemperatureHigh
	}
	return sum / float64(len(forecast))
}

func RainExpected(forecast []trip.WeatherDay) bool {
	for _, d := range forecast {
		if d.PrecipitationChance > rainThreshold {
			return true
		}
	}
	return false
}
