// Package owm folds the OpenWeather 5-day/3-hour forecast into one
// WeatherDay per calendar day of a stay.
package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"concierge/internal/app/concierge"
	"concierge/internal/domain/shared/daterange"
	"concierge/internal/domain/trip"
)

const DefaultBaseURL = "https://api.openweathermap.org"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type httpStatusError struct {
	status int
	body   string
}

func (e httpStatusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("owm: API returned status %d", e.status)
	}
	return fmt.Sprintf("owm: API returned status %d: %s", e.status, e.body)
}

func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			TempMax float64 `json:"temp_max"`
			TempMin float64 `json:"temp_min"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

// Forecast returns one day per date in dr. Without an API key it returns the
// placeholder forecast; days beyond the provider window use placeholder values.
func (c *Client) Forecast(ctx context.Context, location string, dr daterange.DateRange) ([]trip.WeatherDay, error) {
	if err := dr.Validate(); err != nil {
		return []trip.WeatherDay{}, nil
	}
	if c.apiKey == "" {
		return trip.MockForecast(dr), nil
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("units", "imperial")
	q.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("owm: forecast request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, httpStatusError{status: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("owm: decode forecast: %w", err)
	}
	return fold(decoded, dr), nil
}

type dayAgg struct {
	high, low   float64
	pop         float64
	condition   string
	noonDistant time.Duration
}

func fold(resp forecastResponse, dr daterange.DateRange) []trip.WeatherDay {
	days := make(map[time.Time]*dayAgg)
	for _, entry := range resp.List {
		at := time.Unix(entry.Dt, 0).UTC()
		day := daterange.Day(at)
		if !dr.ContainsDate(day) {
			continue
		}
		condition := ""
		if len(entry.Weather) > 0 {
			condition = entry.Weather[0].Main
		}
		fromNoon := at.Sub(day.Add(12 * time.Hour)).Abs()
		agg, ok := days[day]
		if !ok {
			days[day] = &dayAgg{
				high:        entry.Main.TempMax,
				low:         entry.Main.TempMin,
				pop:         entry.Pop,
				condition:   condition,
				noonDistant: fromNoon,
			}
			continue
		}
		agg.high = max(agg.high, entry.Main.TempMax)
		agg.low = min(agg.low, entry.Main.TempMin)
		agg.pop = max(agg.pop, entry.Pop)
		if fromNoon < agg.noonDistant {
			agg.noonDistant = fromNoon
			agg.condition = condition
		}
	}

	out := make([]trip.WeatherDay, 0, dr.Days())
	for _, day := range dr.Dates() {
		agg, ok := days[day]
		if !ok {
			out = append(out, trip.MockWeatherDay(day))
			continue
		}
		wd := trip.WeatherDay{
			Date:                trip.NewDate(day),
			TemperatureHigh:     math.Round(agg.high*10) / 10,
			TemperatureLow:      math.Round(agg.low*10) / 10,
			Condition:           agg.condition,
			PrecipitationChance: int(math.Round(agg.pop * 100)),
		}
		if wd.Condition == "" {
			wd.Condition = trip.MockCondition
		}
		out = append(out, wd)
	}
	return out
}

var _ concierge.WeatherProvider = (*Client)(nil)
