package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmacy-copilot/internal/metrics"
	"pharmacy-copilot/pkg"
)

// Options carries credentials and model names for both providers.  An empty
// key leaves that provider unconfigured.
type Options struct {
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GoogleKey     string
	GeminiModel   string
}

type entry struct {
	client Client
	model  string
}

// Providers holds at most one client per provider.
type Providers struct {
	entries map[pkg.Provider]entry
}

// NewProviders returns an empty set; every provider reports unavailable.
func NewProviders() *Providers {
	return &Providers{entries: make(map[pkg.Provider]entry)}
}

// Register installs client for provider.  Calls through it are timed.
func (p *Providers) Register(provider pkg.Provider, model string, client Client) {
	p.entries[provider] = entry{
		client: &instrumented{provider: provider, next: client},
		model:  model,
	}
}

// Get returns the client for provider and whether one is configured.
func (p *Providers) Get(provider pkg.Provider) (Client, string, bool) {
	if p == nil {
		return nil, "", false
	}
	e, ok := p.entries[provider]
	if !ok {
		return nil, "", false
	}
	return e.client, e.model, true
}

// Available reports whether provider has a client.
func (p *Providers) Available(provider pkg.Provider) bool {
	_, _, ok := p.Get(provider)
	return ok
}

// Build constructs clients for every provider that has a credential.  A
// provider that fails to initialise is left out and its error is returned
// alongside the partially filled set.
func Build(ctx context.Context, opts Options) (*Providers, error) {
	providers := NewProviders()
	var errs []error
	if opts.OpenAIKey != "" {
		var c *OpenAIClient
		if opts.OpenAIBaseURL != "" {
			c = NewOpenAIClientWithBaseURL(opts.OpenAIKey, opts.OpenAIModel, opts.OpenAIBaseURL)
		} else {
			c = NewOpenAIClient(opts.OpenAIKey, opts.OpenAIModel)
		}
		providers.Register(pkg.ProviderPrimary, c.Model(), c)
	}
	if opts.GoogleKey != "" {
		c, err := NewGeminiClient(ctx, opts.GoogleKey, opts.GeminiModel)
		if err != nil {
			errs = append(errs, fmt.Errorf("secondary provider: %w", err))
		} else {
			providers.Register(pkg.ProviderSecondary, c.Model(), c)
		}
	}
	return providers, errors.Join(errs...)
}

type instrumented struct {
	provider pkg.Provider
	next     Client
}

func (c *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.next.Generate(ctx, prompt)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordLLMCallLatency(string(c.provider), status, time.Since(start))
	return text, err
}
