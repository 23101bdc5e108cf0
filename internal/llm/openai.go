package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when the chat completion carries no choices.
var ErrNoChoices = errors.New("openai: response contained no choices")

const (
	// DefaultOpenAIModel matches the model the dashboard was tuned against.
	DefaultOpenAIModel = "gpt-4"
	maxTokens          = 1000
	temperature        = 0.7
)

// Client generates a text completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient calls the OpenAI chat completion API with the prompt as a
// single user message.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs an OpenAI-backed client.  An empty model falls
// back to DefaultOpenAIModel.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return newOpenAIClient(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIClientWithBaseURL points the client at an OpenAI-compatible
// endpoint.
func NewOpenAIClientWithBaseURL(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return newOpenAIClient(cfg, model)
}

func newOpenAIClient(cfg openai.ClientConfig, model string) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Model returns the model identifier sent with every request.
func (c *OpenAIClient) Model() string { return c.model }

// Generate sends the prompt and returns the first choice's message text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
