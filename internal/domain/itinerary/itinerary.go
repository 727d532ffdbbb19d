// Package itinerary lays raw search hits out over the days of a stay.
//
// Each day takes a fixed-size window of attractions; the first three hits of
// the window fill the morning, afternoon and evening slots. Restaurants use a
// separate window of two per day. Windows past the end of a list are empty.
package itinerary

import (
	"strings"
	"unicode/utf8"

	"concierge/internal/domain/shared/daterange"
	"concierge/internal/domain/trip"
)

const (
	minAttractionsPerDay = 3
	restaurantsPerDay    = 2
	maxTags              = 3
	descriptionLimit     = 200

	DefaultDuration       = "2-3 hours"
	DefaultActivityTitle  = "Activity"
	DefaultRestaurantName = "Restaurant"
	DefaultCuisine        = "Local cuisine"
	NoAddress             = "Address not available"
)

type tagRule struct {
	tag      string
	keywords []string
}

// Order matters: tags are emitted in table order and capped at maxTags.
var tagTable = []tagRule{
	{tag: "outdoor", keywords: []string{"park", "hiking", "beach", "nature"}},
	{tag: "museum", keywords: []string{"museum", "gallery", "art"}},
	{tag: "food", keywords: []string{"restaurant", "food", "dining"}},
	{tag: "family", keywords: []string{"family", "kids", "children"}},
	{tag: "culture", keywords: []string{"culture", "history", "heritage"}},
}

var budgetTiers = map[trip.BudgetTier]trip.PriceTier{
	trip.BudgetLow:    trip.PriceLow,
	trip.BudgetMedium: trip.PriceMedium,
	trip.BudgetHigh:   trip.PriceHigh,
	trip.BudgetLuxury: trip.PriceLuxury,
}

// Assemble builds one DayPlan per day of dr, numbered from 1.
func Assemble(dr daterange.DateRange, prefs trip.Preferences, attractions, restaurants []trip.SearchResult) []trip.DayPlan {
	days := dr.Dates()
	plans := make([]trip.DayPlan, 0, len(days))
	if len(days) == 0 {
		return plans
	}
	perDay := AttractionsPerDay(len(attractions), len(days))
	for i, day := range days {
		dayAttractions := window(attractions, i*perDay, perDay)
		plans = append(plans, trip.DayPlan{
			Date:        trip.NewDate(day),
			DayNumber:   i + 1,
			Morning:     ActivityCards(window(dayAttractions, 0, 1), prefs),
			Afternoon:   ActivityCards(window(dayAttractions, 1, 1), prefs),
			Evening:     ActivityCards(window(dayAttractions, 2, 1), prefs),
			Restaurants: RestaurantCards(window(restaurants, i*restaurantsPerDay, restaurantsPerDay), prefs),
		})
	}
	return plans
}

// AttractionsPerDay is max(3, total / tripLength) with integer division.
func AttractionsPerDay(total, tripLength int) int {
	if tripLength <= 0 {
		return minAttractionsPerDay
	}
	return max(minAttractionsPerDay, total/tripLength)
}

func ActivityCards(results []trip.SearchResult, prefs trip.Preferences) []trip.ActivityCard {
	cards := make([]trip.ActivityCard, 0, len(results))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = DefaultActivityTitle
		}
		cards = append(cards, trip.ActivityCard{
			Title:              title,
			Description:        Truncate(r.Content, descriptionLimit),
			Address:            addressFor(r),
			PriceTier:          PriceTierFor(prefs.Budget),
			Duration:           DefaultDuration,
			Tags:               ExtractTags(r.Content),
			WheelchairFriendly: prefs.WheelchairAccessible,
			ChildFriendly:      prefs.HasChildren,
			URL:                urlPtr(r.URL),
		})
	}
	return cards
}

func RestaurantCards(results []trip.SearchResult, prefs trip.Preferences) []trip.RestaurantCard {
	cards := make([]trip.RestaurantCard, 0, len(results))
	for _, r := range results {
		name := r.Title
		if name == "" {
			name = DefaultRestaurantName
		}
		dietary := make([]string, len(prefs.DietaryRestrictions))
		copy(dietary, prefs.DietaryRestrictions)
		cards = append(cards, trip.RestaurantCard{
			Name:                 name,
			Cuisine:              DefaultCuisine,
			Address:              addressFor(r),
			PriceTier:            PriceTierFor(prefs.Budget),
			DietaryOptions:       dietary,
			WheelchairAccessible: prefs.WheelchairAccessible,
			URL:                  urlPtr(r.URL),
		})
	}
	return cards
}

// PriceTierFor maps a budget to a price tier, defaulting to "$$".
func PriceTierFor(budget trip.BudgetTier) trip.PriceTier {
	key := trip.BudgetTier(strings.ToLower(strings.TrimSpace(string(budget))))
	if tier, ok := budgetTiers[key]; ok {
		return tier
	}
	return trip.PriceMedium
}

// ExtractTags matches content case-insensitively against the keyword table.
func ExtractTags(content string) []string {
	lower := strings.ToLower(content)
	tags := make([]string, 0, maxTags)
	for _, rule := range tagTable {
		if len(tags) == maxTags {
			break
		}
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func window[T any](items []T, start, n int) []T {
	if start < 0 || n <= 0 || start >= len(items) {
		return nil
	}
	end := min(start+n, len(items))
	return items[start:end]
}

func addressFor(r trip.SearchResult) string {
	if r.URL == "" {
		return NoAddress
	}
	return r.URL
}

func urlPtr(u string) *string {
	if u == "" {
		return nil
	}
	return &u
}
