package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"concierge/internal/app/concierge"
	"concierge/internal/domain/trip"
)

// Searcher caches successful searches per (query, maxResults). Failures are
// passed through uncached, and cache trouble never fails a search. A TTL of
// zero or less disables caching.
type Searcher struct {
	Next     concierge.Searcher
	Store    Store
	TTL      time.Duration
	Logger   *slog.Logger
	OnLookup func(hit bool)
}

func Key(query string, maxResults int) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "search:" + strconv.Itoa(maxResults) + ":" + hex.EncodeToString(sum[:16])
}

func (s *Searcher) Search(ctx context.Context, query string, maxResults int) ([]trip.SearchResult, error) {
	if !s.Enabled() {
		return s.Next.Search(ctx, query, maxResults)
	}
	key := Key(query, maxResults)
	if raw, ok, err := s.Store.Get(ctx, key); err != nil {
		s.warn(ctx, "search cache read failed", err)
	} else if ok {
		var cached []trip.SearchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.lookup(true)
			return cached, nil
		}
	}
	s.lookup(false)

	results, err := s.Next.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(results); err == nil {
		if err := s.Store.Set(ctx, key, raw, s.TTL); err != nil {
			s.warn(ctx, "search cache write failed", err)
		}
	}
	return results, nil
}

func (s *Searcher) Enabled() bool {
	return s.Store != nil && s.TTL > 0
}

func (s *Searcher) lookup(hit bool) {
	if s.OnLookup != nil {
		s.OnLookup(hit)
	}
}

func (s *Searcher) warn(ctx context.Context, msg string, err error) {
	if s.Logger != nil {
		s.Logger.WarnContext(ctx, msg, "error", err)
	}
}

var _ concierge.Searcher = (*Searcher)(nil)
