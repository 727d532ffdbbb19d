// Package tavily is the web-search transport used for attractions,
// restaurants and free-text questions.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"concierge/internal/app/concierge"
	"concierge/internal/domain/trip"
)

const (
	DefaultBaseURL = "https://api.tavily.com"
	searchDepth    = "advanced"
)

var ErrMalformedResponse = errors.New("tavily: malformed response")

type StatusError struct {
	Status int
	Body   string
}

func (e StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tavily: API returned status %d", e.Status)
	}
	return fmt.Sprintf("tavily: API returned status %d: %s", e.Status, e.Body)
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
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

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]trip.SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: searchDepth,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	// A body without results (or with "results": null) is an empty page.
	out := make([]trip.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		out = append(out, trip.SearchResult{Title: r.Title, URL: r.URL, Content: r.Content, Score: r.Score})
	}
	return out, nil
}

var _ concierge.Searcher = (*Client)(nil)
