package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pharmacy-copilot/internal/core"
	"pharmacy-copilot/internal/logger"
	"pharmacy-copilot/internal/metrics"
	"pharmacy-copilot/pkg"
)

//go:embed templates/*.html
var templateFS embed.FS

const requestIDHeader = "X-Request-ID"

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Router *core.Router
	Log    *zap.Logger
	forms  map[pkg.TaskType]form
	engine *gin.Engine
}

// NewServer constructs a Server and registers every route.  Templates are
// embedded in the binary.
func NewServer(router *core.Router, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s := &Server{Router: router, Log: log, forms: forms()}
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestMiddleware())
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.handleOverview)
	engine.GET("/tasks/:task", s.handleTaskPage)
	engine.POST("/tasks/:task", s.handleTaskSubmit)

	api := engine.Group("/api")
	api.GET("/status", s.handleStatus)
	api.POST("/tasks/:task", s.handleDispatchAPI)

	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine = engine
	return s, nil
}

// ServeHTTP hands the request to the gin engine.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// requestMiddleware tags each request with an id, times it and logs it.
func (s *Server) requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(status), time.Since(start))
		logger.WithRequest(c.Request.Context(), s.Log).Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// routerFor applies the per-request LLM toggle: llm=off disables model
// calls for this request only.
func (s *Server) routerFor(c *gin.Context) *core.Router {
	if c.Query("llm") == "off" || c.PostForm("llm") == "off" {
		settings := s.Router.Settings()
		settings.Enabled = false
		return s.Router.WithSettings(settings)
	}
	return s.Router
}

type taskLink struct {
	Task  pkg.TaskType
	Title string
	Blurb string
}

var taskLinks = []taskLink{
	{pkg.TaskPatientInsights, "Patient Insight Recommender", "Clinical follow-up recommendations from a patient profile."},
	{pkg.TaskScheduleOptimization, "Slot Optimizer", "Suggested time block reallocations toward higher-value services."},
	{pkg.TaskMessageGeneration, "Message Generator", "Draft patient communications for a selected clinical action."},
	{pkg.TaskRequestTriage, "Request Triage", "Classification and next actions for a patient message."},
}

// handleOverview renders the dashboard landing page.
func (s *Server) handleOverview(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Status": s.Router.Status(),
		"Tasks":  taskLinks,
	})
}

// handleTaskPage renders the form for one task.
func (s *Server) handleTaskPage(c *gin.Context) {
	task := pkg.TaskType(c.Param("task"))
	f, ok := s.forms[task]
	if !ok {
		c.String(http.StatusNotFound, "unknown task %q", task)
		return
	}
	c.HTML(http.StatusOK, "task.html", gin.H{
		"Status": s.Router.Status(),
		"Form":   f,
	})
}

// handleTaskSubmit dispatches the submitted form and returns the results
// panel as an HTML fragment.
func (s *Server) handleTaskSubmit(c *gin.Context) {
	task := pkg.TaskType(c.Param("task"))
	f, ok := s.forms[task]
	if !ok {
		c.String(http.StatusNotFound, "unknown task %q", task)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	tctx := contextFromForm(f, c.Request.PostForm)
	res, err := s.routerFor(c).Dispatch(c.Request.Context(), task, tctx)
	if err != nil {
		s.writeDispatchError(c, err)
		return
	}
	c.HTML(http.StatusOK, "result.html", newResultView(res, tctx))
}

// handleDispatchAPI accepts a JSON task context and returns the dispatch
// result as JSON.
func (s *Server) handleDispatchAPI(c *gin.Context) {
	task := pkg.TaskType(c.Param("task"))
	if !task.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task " + strconv.Quote(string(task))})
		return
	}
	tctx := pkg.TaskContext{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&tctx); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
			return
		}
	}
	res, err := s.routerFor(c).Dispatch(c.Request.Context(), task, tctx)
	if err != nil {
		s.writeDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleStatus reports provider readiness, like the dashboard sidebar.
func (s *Server) handleStatus(c *gin.Context) {
	st := s.Router.Status()
	c.JSON(http.StatusOK, gin.H{
		"enabled":       st.Enabled,
		"fallback_mode": st.FallbackMode(),
		"providers":     st.Providers,
	})
}

func (s *Server) writeDispatchError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrUnknownTask) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	logger.WithRequest(c.Request.Context(), s.Log).Error("dispatch failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
