package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"concierge/internal/app/concierge"
	"concierge/internal/app/prompts"
)

type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGemini(ctx context.Context, apiKey, model string, temperature float32) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, temperature: temperature}, nil
}

func (g *Gemini) Complete(ctx context.Context, p prompts.Prompt) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       genai.Ptr[float32](g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("llm: gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

var _ concierge.LanguageModel = (*Gemini)(nil)
