package concierge

import (
	"strings"

	"concierge/internal/domain/trip"
)

const (
	PlanSearchResults  = 10
	QuerySearchResults = 5
)

var cuisineKeywords = map[string]struct{}{
	"indian": {}, "italian": {}, "chinese": {}, "japanese": {}, "thai": {}, "mexican": {},
	"french": {}, "greek": {}, "mediterranean": {}, "american": {}, "korean": {}, "vietnamese": {},
	"spanish": {}, "lebanese": {}, "turkish": {}, "brazilian": {}, "caribbean": {}, "seafood": {},
	"steakhouse": {}, "pizza": {}, "sushi": {}, "bbq": {}, "barbecue": {},
}

// AttractionsQuery builds the search phrase for things to do.
func AttractionsQuery(location string, prefs trip.Preferences) string {
	interests := "popular attractions"
	if len(prefs.Interests) > 0 {
		interests = strings.Join(prefs.Interests, ", ")
	}
	q := "best " + interests + " things to do in " + location
	if prefs.HasChildren {
		q += " family-friendly"
	}
	if prefs.WheelchairAccessible {
		q += " wheelchair accessible"
	}
	return q
}

// RestaurantsQuery favours cuisines named among the interests, then dietary needs.
func RestaurantsQuery(location string, prefs trip.Preferences) string {
	dietary := strings.Join(prefs.DietaryRestrictions, " ")
	cuisines := CuisinePreferences(prefs.Interests)
	if len(cuisines) > 0 {
		return "best " + strings.Join(cuisines, " ") + " restaurants in " + location + " " + dietary
	}
	return "best restaurants in " + location + " " + dietary
}

// CuisinePreferences keeps the interests that name a known cuisine, in input order.
func CuisinePreferences(interests []string) []string {
	var out []string
	for _, in := range interests {
		if _, ok := cuisineKeywords[strings.ToLower(in)]; ok {
			out = append(out, in)
		}
	}
	return out
}

// QueryLocation is "city, state" when both are known, otherwise "the area".
func QueryLocation(booking *trip.BookingContext) string {
	if booking == nil || !booking.HasStructuredLocation() {
		return trip.UnknownArea
	}
	return strings.TrimSpace(booking.City) + ", " + strings.TrimSpace(booking.State)
}

// FreeTextQuery pins a traveler question to the booking's city, state and zipcode.
func FreeTextQuery(question string, booking *trip.BookingContext) string {
	if booking == nil || !booking.HasStructuredLocation() {
		return question
	}
	loc := QueryLocation(booking)
	if zip := strings.TrimSpace(booking.Zipcode); zip != "" {
		loc += " " + zip
	}
	return question + " in " + loc
}
