package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchSendsRequestAndMapsResults(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"Vizcaya","url":"https://v.org","content":"Gardens","score":0.9},{"title":"Wynwood","url":"https://w.org","content":"Murals"}]}`))
	}))
	defer srv.Close()

	results, err := New("tv-key", srv.URL).Search(context.Background(), "best museum things to do in Miami", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got.APIKey != "tv-key" || got.MaxResults != 10 || got.SearchDepth != "advanced" || got.Query != "best museum things to do in Miami" {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(results) != 2 || results[0].Title != "Vizcaya" || results[0].Score != 0.9 || results[1].Content != "Murals" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestSearchFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"server error", http.StatusBadGateway, `oops`, func(err error) bool {
			var se StatusError
			return errors.As(err, &se) && se.Status == http.StatusBadGateway
		}},
		{"not json", http.StatusOK, `<html>`, func(err error) bool { return errors.Is(err, ErrMalformedResponse) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()
			_, err := New("k", srv.URL).Search(context.Background(), "q", 5)
			if err == nil || !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestSearchEmptyResultsIsNotAnError(t *testing.T) {
	for name, body := range map[string]string{
		"empty list":    `{"results":[]}`,
		"null results":  `{"results":null}`,
		"missing field": `{"answer":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()
			results, err := New("k", srv.URL).Search(context.Background(), "q", 5)
			if err != nil || results == nil || len(results) != 0 {
				t.Fatalf("expected empty non-nil results, got %v %v", results, err)
			}
		})
	}
}
