// Package prompts renders the instructions sent to the language model.
package prompts

import (
	"fmt"
	"strings"

	"concierge/internal/domain/itinerary"
	"concierge/internal/domain/trip"
)

const (
	maxListedResults = 8
	snippetLimit     = 200

	ItineraryUserMessage = "Please create the itinerary."
	QueryUserMessage     = "Please provide a helpful answer based on the search results."
)

// Prompt is a system instruction plus the single user turn that follows it.
type Prompt struct {
	System string
	User   string
}

func Itinerary(booking trip.BookingContext, prefs trip.Preferences, attractions, restaurants []trip.SearchResult) Prompt {
	length := trip.TripLength(booking.StartDate, booking.EndDate)
	city := trip.ExtractLocationCity(booking.DisplayLocation())

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert travel concierge creating a %d-day itinerary for %s.\n\n", length, city)
	b.WriteString("Booking Details:\n")
	fmt.Fprintf(&b, "- Location: %s\n", booking.DisplayLocation())
	fmt.Fprintf(&b, "- Dates: %s to %s\n", booking.StartDate, booking.EndDate)
	fmt.Fprintf(&b, "- Guests: %d\n\n", booking.Guests)

	b.WriteString("Traveler Preferences:\n")
	fmt.Fprintf(&b, "- Budget: %s\n", prefs.Budget)
	fmt.Fprintf(&b, "- Interests: %s\n", joinOr(prefs.Interests, "General sightseeing"))
	fmt.Fprintf(&b, "- Dietary Restrictions: %s\n", joinOr(prefs.DietaryRestrictions, "None"))
	fmt.Fprintf(&b, "- Has Children: %s\n", yesNo(prefs.HasChildren))
	fmt.Fprintf(&b, "- Wheelchair Accessible: %s\n", yesNo(prefs.WheelchairAccessible))
	fmt.Fprintf(&b, "- Avoid Long Hikes: %s\n", yesNo(prefs.AvoidLongHikes))
	if prefs.MobilityNeeds != nil && strings.TrimSpace(*prefs.MobilityNeeds) != "" {
		fmt.Fprintf(&b, "- Mobility Needs: %s\n", strings.TrimSpace(*prefs.MobilityNeeds))
	}

	b.WriteString("\nAvailable Attractions:\n")
	b.WriteString(FormatResults(attractions))
	b.WriteString("\n\nAvailable Restaurants:\n")
	b.WriteString(FormatResults(restaurants))
	b.WriteString("\n\n")
	b.WriteString("Create a detailed day-by-day itinerary with morning, afternoon, and evening activities.\n")
	b.WriteString("Include specific activity names, addresses, estimated durations, and why they match the traveler's preferences.\n")
	b.WriteString("IMPORTANT: If cuisine preferences (like Indian, Italian, etc.) are mentioned in interests, prioritize matching restaurants accordingly.\n")
	b.WriteString("Format your response as a structured JSON-like output that I can parse.")

	return Prompt{System: b.String(), User: ItineraryUserMessage}
}

// Query builds the prompt for a free-text question. booking may be nil.
func Query(question, location string, booking *trip.BookingContext, results []trip.SearchResult) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful travel concierge assistant. The traveler asked: \"%s\"\n\n", question)
	b.WriteString("**CRITICAL REQUIREMENTS:**\n")
	fmt.Fprintf(&b, "1. ONLY recommend places in %s - no other cities, states, or countries\n", location)
	b.WriteString("2. Show EXACTLY 5 recommendations (no more, no less)\n")
	fmt.Fprintf(&b, "3. If a search result is not in %s, skip it and don't mention it\n\n", location)

	b.WriteString("Trip Details:\n")
	fmt.Fprintf(&b, "- Location: %s\n", location)
	if booking != nil {
		fmt.Fprintf(&b, "- Dates: %s to %s\n", booking.StartDate, booking.EndDate)
		fmt.Fprintf(&b, "- Guests: %d\n", booking.Guests)
	}

	b.WriteString("\nSearch Results:\n")
	b.WriteString(FormatResults(results))
	b.WriteString("\n\nProvide a helpful answer with:\n")
	b.WriteString("- Friendly opening line\n")
	fmt.Fprintf(&b, "- EXACTLY 5 recommendations from results ONLY in %s\n", location)
	b.WriteString("- For each: Name, brief description (1-2 sentences), and URL link\n")
	b.WriteString("- Relevant details (cuisine, price range, rating, dietary options, etc.)\n")
	b.WriteString("- Keep it concise (max 300 words total)\n\n")
	b.WriteString("Format with emojis and clean bullet points.")

	return Prompt{System: b.String(), User: QueryUserMessage}
}

// FormatResults lists at most eight hits as "N. title\n   snippet\n   url".
func FormatResults(results []trip.SearchResult) string {
	n := min(len(results), maxListedResults)
	lines := make([]string, 0, n)
	for i, r := range results[:n] {
		title := r.Title
		if title == "" {
			title = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("%d. %s\n   %s\n   %s", i+1, title, itinerary.Truncate(r.Content, snippetLimit), r.URL))
	}
	return strings.Join(lines, "\n")
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
