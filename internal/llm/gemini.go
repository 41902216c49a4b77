// Package llm holds the generative backend for the fallback planning tier.
package llm

import (
	"context"
	"fmt"
	"os"

	"applynerd-mcp-server/internal/config"

	"google.golang.org/genai"
)

// GeminiGenerator produces fill-plan JSON from a field/profile prompt using
// Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator from planner config. The API key is
// read from the configured environment variable.
func NewGeminiGenerator(ctx context.Context, cfg config.PlannerConfig) (*GeminiGenerator, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s is not set", cfg.APIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends the prompt and returns the raw model text. The response is
// requested as JSON so the planner gets a fill_plan object, not prose.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
