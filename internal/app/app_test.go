package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pharmacy-copilot/internal/config"
	"pharmacy-copilot/pkg"
)

func TestNew(t *testing.T) {
	t.Run("Should start in fallback mode without credentials", func(t *testing.T) {
		cfg := config.Default()
		cfg.Secrets.File = filepath.Join(t.TempDir(), "absent.yaml")
		a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		defer a.Close()
		assert.True(t, a.Router.Status().FallbackMode())
	})

	t.Run("Should pick up the primary key from the secrets file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".secrets.yaml")
		require.NoError(t, os.WriteFile(path, []byte("OPENAI_API_KEY: sk-file\n"), 0o600))
		cfg := config.Default()
		cfg.Secrets.File = path
		a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, "sk-file", a.Config.OpenAIKey)
		route, ok := a.Router.Route(pkg.TaskRequestTriage)
		assert.True(t, ok)
		assert.Equal(t, pkg.ProviderPrimary, route.Provider)
		_, ok = a.Router.Route(pkg.TaskMessageGeneration)
		assert.False(t, ok)
	})
}
