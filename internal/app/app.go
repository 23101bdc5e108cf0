package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"pharmacy-copilot/internal/config"
	"pharmacy-copilot/internal/core"
	"pharmacy-copilot/internal/db"
	"pharmacy-copilot/internal/llm"
	"pharmacy-copilot/internal/secrets"
)

// App bundles the dependencies shared by the server and the CLI.
type App struct {
	Config *config.Config
	Router *core.Router
	Log    *zap.Logger

	dbConn *sql.DB
}

// New resolves credentials, builds the provider clients and the router.
// Missing credentials are not an error; the router then serves fallbacks.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	store, err := a.secretStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveCredentials(ctx, store); err != nil {
		return nil, err
	}

	providers, err := llm.Build(ctx, cfg.LLMOptions())
	if err != nil {
		// a provider that fails to initialise is treated like a missing key
		log.Warn("llm provider initialization failed", zap.Error(err))
	}
	prompts, err := core.NewPrompts()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Router = core.NewRouter(prompts, providers, cfg.Settings(), log)

	st := a.Router.Status()
	for _, p := range st.Providers {
		log.Info("llm provider", zap.String("provider", p.DisplayName), zap.String("model", p.Model), zap.Bool("ready", p.Ready))
	}
	if st.FallbackMode() {
		log.Warn("no llm provider available, using fallback responses")
	}
	return a, nil
}

func (a *App) secretStore(ctx context.Context) (secrets.Store, error) {
	var stores []secrets.Store
	if a.Config.Secrets.File != "" {
		fs, err := secrets.LoadFile(a.Config.Secrets.File)
		if err != nil {
			return nil, err
		}
		stores = append(stores, fs)
	}
	if dsn := a.Config.Secrets.DatabaseURL; dsn != "" {
		conn, err := db.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("secret store: %w", err)
		}
		table := a.Config.Secrets.Table
		if table == "" || table == db.DefaultSecretsTable {
			if err := db.Migrate(ctx, conn); err != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("secret store migrate: %w", err)
			}
		}
		a.dbConn = conn
		stores = append(stores, db.NewSecretRepository(conn, table))
	}
	return secrets.NewChain(a.Log, stores...), nil
}

// Close releases the secret store connection, if any.
func (a *App) Close() {
	if a.dbConn != nil {
		_ = a.dbConn.Close()
		a.dbConn = nil
	}
}
