package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmacy-copilot/internal/llm"
	"pharmacy-copilot/internal/logger"
	"pharmacy-copilot/internal/metrics"
	"pharmacy-copilot/pkg"
)

// Settings is the ambient configuration a request runs under.  It is read
// only while a request is in flight.
type Settings struct {
	// Enabled turns model calls on; when false every task uses the fallback.
	Enabled bool
	// Timeout bounds a single provider call.  Zero means no extra bound.
	Timeout time.Duration
}

// Route is the fixed provider and model a task is sent to.
type Route struct {
	Provider pkg.Provider
	Model    string
}

// PreferredProvider returns the provider a task always prefers: message
// drafting goes to the secondary provider, everything else to the primary.
func PreferredProvider(task pkg.TaskType) pkg.Provider {
	if task == pkg.TaskMessageGeneration {
		return pkg.ProviderSecondary
	}
	return pkg.ProviderPrimary
}

// Router renders task prompts, calls the preferred provider and normalizes
// the reply.
type Router struct {
	prompts   *Prompts
	providers *llm.Providers
	settings  Settings
	log       *zap.Logger
}

// NewRouter constructs a Router.  A nil providers set means no provider is
// configured.
func NewRouter(prompts *Prompts, providers *llm.Providers, settings Settings, log *zap.Logger) *Router {
	if providers == nil {
		providers = llm.NewProviders()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{prompts: prompts, providers: providers, settings: settings, log: log}
}

// Settings returns the router's configuration.
func (r *Router) Settings() Settings { return r.settings }

// WithSettings returns a copy of r that runs under s.
func (r *Router) WithSettings(s Settings) *Router {
	cp := *r
	cp.settings = s
	return &cp
}

// Route returns where task would be sent and whether that provider is
// configured.
func (r *Router) Route(task pkg.TaskType) (Route, bool) {
	provider := PreferredProvider(task)
	_, model, ok := r.providers.Get(provider)
	if !ok {
		model = defaultModel(provider)
	}
	return Route{Provider: provider, Model: model}, ok
}

// Status reports readiness of both providers.
func (r *Router) Status() pkg.Status {
	st := pkg.Status{Enabled: r.settings.Enabled}
	for _, p := range []pkg.Provider{pkg.ProviderPrimary, pkg.ProviderSecondary} {
		_, model, ok := r.providers.Get(p)
		if !ok {
			model = defaultModel(p)
		}
		st.Providers = append(st.Providers, pkg.ProviderStatus{
			Provider:    p,
			DisplayName: p.DisplayName(),
			Model:       model,
			Ready:       ok,
		})
	}
	return st
}

// Dispatch runs one task end to end.  It only fails for an unknown task
// type; provider and parse failures degrade to the fallback output.
func (r *Router) Dispatch(ctx context.Context, task pkg.TaskType, tctx pkg.TaskContext) (pkg.DispatchResult, error) {
	if !task.Valid() {
		return pkg.DispatchResult{}, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	start := time.Now()
	reqID := logger.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, reqID)
	}
	log := logger.WithRequest(ctx, r.log).With(zap.String("task", string(task)))

	route, configured := r.Route(task)
	res := pkg.DispatchResult{
		RequestID: reqID,
		Task:      task,
		Provider:  route.Provider,
		Model:     route.Model,
	}
	finish := func(res pkg.DispatchResult) (pkg.DispatchResult, error) {
		res.Duration = time.Since(start)
		metrics.RecordDispatch(string(task), string(res.Source), string(res.Reason))
		log.Info("dispatch complete",
			zap.String("source", string(res.Source)),
			zap.String("provider", string(res.Provider)),
			zap.String("fallback_reason", string(res.Reason)),
			zap.Duration("duration", res.Duration),
		)
		return res, nil
	}

	prompt, err := r.prompts.Render(task, tctx)
	if err != nil {
		log.Error("render prompt", zap.Error(err))
		return finish(r.fallback(res, tctx, pkg.ReasonRenderFailed, err.Error()))
	}
	switch {
	case !r.settings.Enabled:
		return finish(r.fallback(res, tctx, pkg.ReasonDisabled, ""))
	case !configured:
		log.Debug("provider not configured", zap.String("provider", string(route.Provider)))
		return finish(r.fallback(res, tctx, pkg.ReasonNoCredential, ""))
	}

	text, err := r.call(ctx, route.Provider, prompt)
	if err != nil {
		log.Warn("llm call failed", zap.String("provider", string(route.Provider)), zap.Error(err))
		return finish(r.fallback(res, tctx, pkg.ReasonCallFailed, fmt.Sprintf("LLM API call failed: %v", err)))
	}

	rec, err := Parse(task, text)
	if err != nil {
		log.Warn("failed to parse llm response", zap.Error(err))
		rec = parseDefault(task)
	} else if msg, ok := rec.(pkg.Message); ok {
		msg.GeneratedBy = route.Provider.DisplayName()
		rec = msg
	}
	res.Record = rec
	res.Source = pkg.SourceModel
	return finish(res)
}

func (r *Router) call(ctx context.Context, provider pkg.Provider, prompt string) (string, error) {
	client, _, ok := r.providers.Get(provider)
	if !ok {
		return "", fmt.Errorf("provider %s not configured", provider)
	}
	if r.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.settings.Timeout)
		defer cancel()
	}
	return client.Generate(ctx, prompt)
}

func (r *Router) fallback(res pkg.DispatchResult, tctx pkg.TaskContext, reason pkg.FallbackReason, notice string) pkg.DispatchResult {
	res.Source = pkg.SourceFallback
	res.Reason = reason
	res.Notice = notice
	res.FallbackText = FallbackText(res.Task)
	res.Record = DefaultRecord(res.Task, tctx)
	return res
}

func defaultModel(p pkg.Provider) string {
	if p == pkg.ProviderSecondary {
		return llm.DefaultGeminiModel
	}
	return llm.DefaultOpenAIModel
}
