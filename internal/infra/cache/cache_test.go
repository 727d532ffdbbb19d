package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"concierge/internal/domain/trip"
)

type countingSearch struct {
	calls int
	err   error
}

func (c *countingSearch) Search(_ context.Context, query string, n int) ([]trip.SearchResult, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []trip.SearchResult{{Title: query, URL: "https://example.com"}}, nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func TestSearcherCachesPerQueryAndSize(t *testing.T) {
	next := &countingSearch{}
	var hits, misses int
	s := &Searcher{Next: next, Store: NewMemoryStore(time.Minute), TTL: time.Minute, OnLookup: func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := s.Search(ctx, "best things to do in Miami", 10)
		if err != nil || len(res) != 1 || res[0].Title != "best things to do in Miami" {
			t.Fatalf("search %d: %v %v", i, res, err)
		}
	}
	if _, err := s.Search(ctx, "best things to do in Miami", 5); err != nil {
		t.Fatalf("search: %v", err)
	}
	if next.calls != 2 || hits != 2 || misses != 2 {
		t.Fatalf("calls=%d hits=%d misses=%d", next.calls, hits, misses)
	}
}

func TestSearcherDoesNotCacheErrors(t *testing.T) {
	next := &countingSearch{err: errors.New("429")}
	s := &Searcher{Next: next, Store: NewMemoryStore(time.Minute), TTL: time.Minute}
	for i := 0; i < 2; i++ {
		if _, err := s.Search(context.Background(), "q", 5); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("errors must not be cached, calls=%d", next.calls)
	}
}

func TestSearcherSurvivesBrokenStore(t *testing.T) {
	next := &countingSearch{}
	s := &Searcher{Next: next, Store: brokenStore{}, TTL: time.Minute}
	res, err := s.Search(context.Background(), "q", 5)
	if err != nil || len(res) != 1 {
		t.Fatalf("broken cache must not fail search: %v %v", res, err)
	}
}

func TestSearcherWithoutTTLBypassesCache(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		next := &countingSearch{}
		store := NewMemoryStore(ttl)
		lookups := 0
		s := &Searcher{Next: next, Store: store, TTL: ttl, OnLookup: func(bool) { lookups++ }}
		for i := 0; i < 2; i++ {
			if _, err := s.Search(context.Background(), "q", 5); err != nil {
				t.Fatalf("ttl %v: search: %v", ttl, err)
			}
		}
		if next.calls != 2 || lookups != 0 || store.items.ItemCount() != 0 {
			t.Fatalf("ttl %v: cache must be off, calls=%d lookups=%d items=%d", ttl, next.calls, lookups, store.items.ItemCount())
		}
	}
}

func TestMemoryStoreNeverKeepsEntriesForever(t *testing.T) {
	store := NewMemoryStore(0)
	_ = store.Set(context.Background(), "k", []byte("v"), 0)
	_, expires, ok := store.items.GetWithExpiration("k")
	if !ok || expires.IsZero() || expires.After(time.Now().Add(minMemoryTTL+time.Second)) {
		t.Fatalf("expected bounded expiry, got ok=%v expires=%v", ok, expires)
	}
}

func TestKeyNormalizesQuery(t *testing.T) {
	if Key(" Museums in Miami ", 5) != Key("museums in miami", 5) {
		t.Fatal("expected case and whitespace insensitive keys")
	}
	if Key("q", 5) == Key("q", 10) {
		t.Fatal("max results must be part of the key")
	}
}
