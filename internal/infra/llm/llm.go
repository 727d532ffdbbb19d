package llm

import (
	"context"
	"fmt"

	"concierge/internal/app/concierge"
)

type Options struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// New selects the provider named in opts; "openai" is the default.
func New(ctx context.Context, opts Options) (concierge.LanguageModel, error) {
	switch opts.Provider {
	case "", "openai":
		return &OpenAI{
			BaseURL:     opts.BaseURL,
			APIKey:      opts.APIKey,
			Model:       opts.Model,
			Temperature: opts.Temperature,
		}, nil
	case "gemini":
		return NewGemini(ctx, opts.APIKey, opts.Model, opts.Temperature)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}
