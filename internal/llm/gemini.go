package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// DefaultGeminiModel is used for message drafting when no model is configured.
const DefaultGeminiModel = "gemini-pro"

// GeminiClient calls Google's generate-content API through langchaingo.
type GeminiClient struct {
	model llms.Model
	name  string
}

// NewGeminiClient constructs a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &GeminiClient{model: m, name: model}, nil
}

// Model returns the model identifier.
func (c *GeminiClient) Model() string { return c.name }

// Generate returns the text of the generated content.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
