// Package trip holds the value types shared by the concierge pipeline:
// the booking being planned for, traveler preferences and every card
// that ends up in an AgentResponse.
package trip

import (
	"strings"

	"concierge/internal/domain/shared/daterange"
)

type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
	BudgetLuxury BudgetTier = "luxury"
)

type PriceTier string

const (
	PriceFree   PriceTier = "free"
	PriceLow    PriceTier = "$"
	PriceMedium PriceTier = "$$"
	PriceHigh   PriceTier = "$$$"
	PriceLuxury PriceTier = "$$$$"
)

// BookingContext describes the stay a plan is generated for.
type BookingContext struct {
	BookingID    BookingID `json:"booking_id"`
	PropertyName string    `json:"property_name"`
	Location     string    `json:"location,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	Zipcode      string    `json:"zipcode,omitempty"`
	StartDate    Date      `json:"start_date"`
	EndDate      Date      `json:"end_date"`
	Guests       int       `json:"guests"`
}

// DisplayLocation returns Location, or the non-empty structured parts joined by ", ".
func (b BookingContext) DisplayLocation() string {
	if loc := strings.TrimSpace(b.Location); loc != "" {
		return loc
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{b.City, b.State, b.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Range returns the stay as an inclusive calendar range.
func (b BookingContext) Range() (daterange.DateRange, error) {
	return daterange.New(b.StartDate.Time(), b.EndDate.Time())
}

// HasStructuredLocation reports whether city and state are both known.
func (b BookingContext) HasStructuredLocation() bool {
	return strings.TrimSpace(b.City) != "" && strings.TrimSpace(b.State) != ""
}

type Preferences struct {
	Budget               BudgetTier `json:"budget"`
	Interests            []string   `json:"interests"`
	DietaryRestrictions  []string   `json:"dietary_restrictions"`
	HasChildren          bool       `json:"has_children"`
	WheelchairAccessible bool       `json:"wheelchair_accessible"`
	MobilityNeeds        *string    `json:"mobility_needs"`
	AvoidLongHikes       bool       `json:"avoid_long_hikes"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Budget:              BudgetMedium,
		Interests:           []string{},
		DietaryRestrictions: []string{},
	}
}

// Normalize fills defaults so downstream code never sees nil slices or an empty budget.
func (p Preferences) Normalize() Preferences {
	out := p
	out.Budget = BudgetTier(strings.ToLower(strings.TrimSpace(string(p.Budget))))
	if out.Budget == "" {
		out.Budget = BudgetMedium
	}
	out.Interests = cleanList(p.Interests)
	out.DietaryRestrictions = cleanList(p.DietaryRestrictions)
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type WeatherDay struct {
	Date                Date    `json:"date"`
	TemperatureHigh     float64 `json:"temperature_high"`
	TemperatureLow      float64 `json:"temperature_low"`
	Condition           string  `json:"condition"`
	PrecipitationChance int     `json:"precipitation_chance"`
}

// SearchResult is one hit returned by the web-search provider.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

type ActivityCard struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Address            string    `json:"address"`
	PriceTier          PriceTier `json:"price_tier"`
	Duration           string    `json:"duration"`
	Tags               []string  `json:"tags"`
	WheelchairFriendly bool      `json:"wheelchair_friendly"`
	ChildFriendly      bool      `json:"child_friendly"`
	URL                *string   `json:"url"`
}

type RestaurantCard struct {
	Name                 string    `json:"name"`
	Cuisine              string    `json:"cuisine"`
	Address              string    `json:"address"`
	PriceTier            PriceTier `json:"price_tier"`
	DietaryOptions       []string  `json:"dietary_options"`
	WheelchairAccessible bool      `json:"wheelchair_accessible"`
	URL                  *string   `json:"url"`
}

type DayPlan struct {
	Date        Date             `json:"date"`
	DayNumber   int              `json:"day_number"`
	Morning     []ActivityCard   `json:"morning"`
	Afternoon   []ActivityCard   `json:"afternoon"`
	Evening     []ActivityCard   `json:"evening"`
	Restaurants []RestaurantCard `json:"restaurants"`
}

type PackingItem struct {
	Item     string `json:"item"`
	Category string `json:"category"`
	Reason   string `json:"reason,omitempty"`
}

// AgentResponse is the only externally visible result of plan generation.
type AgentResponse struct {
	Success         bool          `json:"success"`
	Message         string        `json:"message"`
	Itinerary       []DayPlan     `json:"itinerary"`
	PackingList     []PackingItem `json:"packing_list"`
	WeatherForecast []WeatherDay  `json:"weather_forecast"`
	Tips            []string      `json:"tips"`
}

// Failure builds the degraded response returned when generation aborts.
func Failure(message string) AgentResponse {
	return AgentResponse{
		Success:         false,
		Message:         message,
		Itinerary:       []DayPlan{},
		PackingList:     []PackingItem{},
		WeatherForecast: []WeatherDay{},
		Tips:            []string{},
	}
}
