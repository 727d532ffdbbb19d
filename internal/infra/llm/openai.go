// Package llm adapts chat-completion providers to concierge.LanguageModel.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"concierge/internal/app/concierge"
	"concierge/internal/app/prompts"
)

var ErrEmptyCompletion = errors.New("llm: no choices")

// OpenAI talks to any OpenAI-compatible /chat/completions endpoint. The
// request has no timeout of its own beyond the caller's context.
type OpenAI struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Client      *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAI) Complete(ctx context.Context, p prompts.Prompt) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: openai request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode >= 300 {
		return "", fmt.Errorf("llm: openai status %d: %s", res.StatusCode, bytes.TrimSpace(body))
	}
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("llm: decode openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}

var _ concierge.LanguageModel = (*OpenAI)(nil)
