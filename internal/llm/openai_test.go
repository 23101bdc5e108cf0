package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-copilot/pkg"
)

func newChatServer(t *testing.T, choices string, got *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body := map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*got = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4","choices":` + choices + `}`))
	}))
}

func TestOpenAIClient_Generate(t *testing.T) {
	t.Run("Should send one user message with fixed sampling settings", func(t *testing.T) {
		var body map[string]any
		srv := newChatServer(t, `[{"index":0,"message":{"role":"assistant","content":"  hello there \n"},"finish_reason":"stop"}]`, &body)
		defer srv.Close()

		c := NewOpenAIClientWithBaseURL("test-key", "", srv.URL+"/v1")
		out, err := c.Generate(context.Background(), "analyze this")
		require.NoError(t, err)
		assert.Equal(t, "hello there", out)

		assert.Equal(t, DefaultOpenAIModel, body["model"])
		assert.EqualValues(t, 1000, body["max_tokens"])
		assert.InDelta(t, 0.7, body["temperature"], 1e-6)
		msgs, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 1)
		msg := msgs[0].(map[string]any)
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "analyze this", msg["content"])
	})

	t.Run("Should fail when there are no choices", func(t *testing.T) {
		var body map[string]any
		srv := newChatServer(t, `[]`, &body)
		defer srv.Close()

		c := NewOpenAIClientWithBaseURL("test-key", "gpt-4o-mini", srv.URL+"/v1")
		_, err := c.Generate(context.Background(), "x")
		assert.ErrorIs(t, err, ErrNoChoices)
		assert.Equal(t, "gpt-4o-mini", body["model"])
	})
}

func TestBuild(t *testing.T) {
	t.Run("Should leave providers without a key unconfigured", func(t *testing.T) {
		p, err := Build(context.Background(), Options{})
		require.NoError(t, err)
		assert.False(t, p.Available(pkg.ProviderPrimary))
		assert.False(t, p.Available(pkg.ProviderSecondary))
	})

	t.Run("Should configure the primary provider from its key", func(t *testing.T) {
		p, err := Build(context.Background(), Options{OpenAIKey: "sk-test"})
		require.NoError(t, err)
		_, model, ok := p.Get(pkg.ProviderPrimary)
		require.True(t, ok)
		assert.Equal(t, DefaultOpenAIModel, model)
		assert.False(t, p.Available(pkg.ProviderSecondary))
	})

	t.Run("Should treat a nil set as empty", func(t *testing.T) {
		var p *Providers
		assert.False(t, p.Available(pkg.ProviderPrimary))
	})
}
