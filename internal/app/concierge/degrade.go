package concierge

import (
	"context"
	"log/slog"
	"time"
)

// Upstream names an external call made while building a plan or an answer.
type Upstream string

const (
	UpstreamWeather      Upstream = "weather"
	UpstreamAttractions  Upstream = "search_attractions"
	UpstreamRestaurants  Upstream = "search_restaurants"
	UpstreamItineraryLLM Upstream = "llm_itinerary"
	UpstreamQuerySearch  Upstream = "search_query"
	UpstreamQueryLLM     Upstream = "llm_query"
)

// Fallback is the value substituted when an upstream call fails.
type Fallback string

const (
	FallbackMockWeather  Fallback = "mock_weather"
	FallbackEmptyResults Fallback = "empty_results"
	FallbackIgnore       Fallback = "ignore"
	FallbackApology      Fallback = "apology"
)

type Rule struct {
	Fallback Fallback
	Reason   string
}

// Policy is the complete table of upstream failures the service absorbs.
// Anything not listed here aborts the operation.
var Policy = map[Upstream]Rule{
	UpstreamWeather:      {Fallback: FallbackMockWeather, Reason: "forecast unavailable, placeholder weather used"},
	UpstreamAttractions:  {Fallback: FallbackEmptyResults, Reason: "attraction search failed, no attractions"},
	UpstreamRestaurants:  {Fallback: FallbackEmptyResults, Reason: "restaurant search failed, no restaurants"},
	UpstreamItineraryLLM: {Fallback: FallbackIgnore, Reason: "model output is not used for assembly"},
	UpstreamQuerySearch:  {Fallback: FallbackApology, Reason: "query search failed"},
	UpstreamQueryLLM:     {Fallback: FallbackApology, Reason: "query answer generation failed"},
}

// Metrics receives one observation per upstream call and per applied fallback.
type Metrics interface {
	ObserveUpstream(upstream Upstream, err error, elapsed time.Duration)
	Degraded(upstream Upstream, fallback Fallback)
}

type nopMetrics struct{}

func (nopMetrics) ObserveUpstream(Upstream, error, time.Duration) {}
func (nopMetrics) Degraded(Upstream, Fallback)                    {}

// degrade logs and counts a fallback and returns the rule that applied.
func (s *Service) degrade(ctx context.Context, upstream Upstream, err error) Rule {
	rule, ok := Policy[upstream]
	if !ok {
		rule = Rule{Fallback: FallbackApology, Reason: "unclassified upstream failure"}
	}
	s.metrics().Degraded(upstream, rule.Fallback)
	s.logger().LogAttrs(ctx, slog.LevelWarn, "upstream degraded",
		slog.String("upstream", string(upstream)),
		slog.String("fallback", string(rule.Fallback)),
		slog.String("reason", rule.Reason),
		slog.Any("error", err),
	)
	return rule
}
