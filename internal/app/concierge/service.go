// Package concierge sequences weather, search and model calls into a trip plan
// and answers free-text travel questions.
package concierge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"concierge/internal/app/prompts"
	"concierge/internal/domain/itinerary"
	"concierge/internal/domain/packing"
	"concierge/internal/domain/shared/daterange"
	"concierge/internal/domain/trip"
)

const (
	MessageGenerated     = "Itinerary generated successfully"
	messageFailurePrefix = "Error generating itinerary: "

	noResultsTemplate = "I couldn't find specific information about that. However, I can create a full trip plan for %s if you'd like. Just say 'Plan my trip'!"
	QueryApology      = "I encountered an error searching for that information. Please try asking in a different way, or say 'Plan my trip' for a full itinerary!"
)

// Service is constructed once at startup and shared by all request handlers.
type Service struct {
	Weather WeatherProvider
	Search  Searcher
	Model   LanguageModel
	Logger  *slog.Logger
	Metrics Metrics
}

// QueryInput is a free-text question with optional booking context.
type QueryInput struct {
	Query   string
	Booking *trip.BookingContext
	// Preferences are accepted for parity with plan requests; answers do not use them yet.
	Preferences *trip.Preferences
}

// NoResultsAnswer is returned when a question yields no search hits.
func NoResultsAnswer(location string) string {
	return fmt.Sprintf(noResultsTemplate, location)
}

// GenerateItinerary never returns an error: failures are folded into a response with Success=false.
func (s *Service) GenerateItinerary(ctx context.Context, booking trip.BookingContext, prefs trip.Preferences) (resp trip.AgentResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger().ErrorContext(ctx, "itinerary generation panicked", "booking_id", booking.BookingID, "panic", r)
			resp = trip.Failure(fmt.Sprintf("%s%v", messageFailurePrefix, r))
		}
	}()
	out, err := s.generate(ctx, booking, prefs.Normalize())
	if err != nil {
		s.logger().ErrorContext(ctx, "itinerary generation failed", "booking_id", booking.BookingID, "error", err)
		return trip.Failure(messageFailurePrefix + err.Error())
	}
	return out
}

func (s *Service) generate(ctx context.Context, booking trip.BookingContext, prefs trip.Preferences) (trip.AgentResponse, error) {
	dr, err := booking.Range()
	if err != nil {
		return trip.AgentResponse{}, err
	}
	location := trip.ExtractLocationCity(booking.DisplayLocation())

	forecast := s.forecast(ctx, location, dr)
	attractions := s.search(ctx, UpstreamAttractions, AttractionsQuery(location, prefs), PlanSearchResults)
	restaurants := s.search(ctx, UpstreamRestaurants, RestaurantsQuery(location, prefs), PlanSearchResults)

	// The reply is requested but the day plans are assembled from the raw hits.
	prompt := prompts.Itinerary(booking, prefs, attractions, restaurants)
	if _, err := s.complete(ctx, UpstreamItineraryLLM, prompt); err != nil {
		s.degrade(ctx, UpstreamItineraryLLM, err)
	}

	days := itinerary.Assemble(dr, prefs, attractions, restaurants)
	return trip.AgentResponse{
		Success:         true,
		Message:         MessageGenerated,
		Itinerary:       days,
		PackingList:     packing.Build(forecast, dr.Days(), prefs),
		WeatherForecast: forecast,
		Tips:            Tips(booking, prefs, forecast),
	}, nil
}

// AnswerQuery always returns text: a model answer, the no-results hint or the apology.
func (s *Service) AnswerQuery(ctx context.Context, in QueryInput) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger().ErrorContext(ctx, "query answering panicked", "panic", r)
			answer = QueryApology
		}
	}()

	location := QueryLocation(in.Booking)
	results, err := s.rawSearch(ctx, UpstreamQuerySearch, FreeTextQuery(in.Query, in.Booking), QuerySearchResults)
	if err != nil {
		s.degrade(ctx, UpstreamQuerySearch, err)
		return QueryApology
	}
	if len(results) == 0 {
		return NoResultsAnswer(location)
	}
	text, err := s.complete(ctx, UpstreamQueryLLM, prompts.Query(in.Query, location, in.Booking, results))
	if err != nil {
		s.degrade(ctx, UpstreamQueryLLM, err)
		return QueryApology
	}
	return text
}

func (s *Service) forecast(ctx context.Context, location string, dr daterange.DateRange) []trip.WeatherDay {
	if s.Weather == nil {
		return trip.MockForecast(dr)
	}
	start := time.Now()
	days, err := s.Weather.Forecast(ctx, location, dr)
	s.metrics().ObserveUpstream(UpstreamWeather, err, time.Since(start))
	if err != nil {
		s.degrade(ctx, UpstreamWeather, err)
		return trip.MockForecast(dr)
	}
	if days == nil {
		days = []trip.WeatherDay{}
	}
	return days
}

// search applies the empty-results fallback.
func (s *Service) search(ctx context.Context, upstream Upstream, query string, n int) []trip.SearchResult {
	results, err := s.rawSearch(ctx, upstream, query, n)
	if err != nil {
		s.degrade(ctx, upstream, err)
		return []trip.SearchResult{}
	}
	return results
}

func (s *Service) rawSearch(ctx context.Context, upstream Upstream, query string, n int) ([]trip.SearchResult, error) {
	if s.Search == nil {
		return nil, fmt.Errorf("%w: search client", ErrUnavailable)
	}
	s.logger().DebugContext(ctx, "search", "upstream", upstream, "query", query, "max_results", n)
	start := time.Now()
	results, err := s.Search.Search(ctx, query, n)
	s.metrics().ObserveUpstream(upstream, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []trip.SearchResult{}
	}
	return results, nil
}

func (s *Service) complete(ctx context.Context, upstream Upstream, p prompts.Prompt) (string, error) {
	if s.Model == nil {
		return "", fmt.Errorf("%w: language model", ErrUnavailable)
	}
	start := time.Now()
	text, err := s.Model.Complete(ctx, p)
	s.metrics().ObserveUpstream(upstream, err, time.Since(start))
	return text, err
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Service) metrics() Metrics {
	if s.Metrics == nil {
		return nopMetrics{}
	}
	return s.Metrics
}
