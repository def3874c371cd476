package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path"

	"donorviz/adapters/gochart"
	"donorviz/domain/association"
	"donorviz/internal"
	"donorviz/internal/metrics"
	"donorviz/ui/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App serves the JSON and image API without the HTML dashboard.
type App struct {
	router    *chi.Mux
	dashboard *services.DashboardService
	metrics   *metrics.Metrics
	logger    *internal.Logger
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates the API application
func NewApp(dashboard *services.DashboardService, m *metrics.Metrics, logger *internal.Logger) *App {
	app := &App{
		router:    chi.NewRouter(),
		dashboard: dashboard,
		metrics:   m,
		logger:    logger.With("api"),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(snapshotHeaderName, a.dashboard.SnapshotID())
			next.ServeHTTP(w, r)
		})
	})
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.handle("/healthz", a.handleHealth)
	a.router.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	a.handle("/api/chart", a.handleChart)
	a.handle("/api/chart.png", a.handleChartImage)
	a.handle("/api/chart.svg", a.handleChartImage)
	a.handle("/api/options", a.handleOptions)
	a.handle("/api/overview", a.handleOverview)
	a.handle("/api/status", a.handleStatus)
}

func (a *App) handle(route string, h http.HandlerFunc) {
	a.router.Method(http.MethodGet, route, a.metrics.WrapHandler(route, h))
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (a *App) Start(config Config) error {
	a.logger.Info("starting API server on :%s", config.Port)
	return http.ListenAndServe(":"+config.Port, a.router)
}

func (a *App) handleChart(w http.ResponseWriter, r *http.Request) {
	sel, err := a.selector(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	etag := chartETag(a.dashboard.SnapshotID(), sel, "json")
	if notModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	a.writeJSON(w, http.StatusOK, a.dashboard.Chart(sel))
}

func (a *App) handleChartImage(w http.ResponseWriter, r *http.Request) {
	sel, err := a.selector(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	format, err := gochart.ParseFormat(path.Ext(r.URL.Path))
	if err != nil {
		a.writeError(w, err)
		return
	}

	etag := chartETag(a.dashboard.SnapshotID(), sel, string(format))
	if notModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := a.dashboard.Image(sel, format, &buf); err != nil {
		a.logger.Error("render %s for %s: %v", format, sel.Key(), err)
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (a *App) handleOptions(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.dashboard.Options())
}

func (a *App) handleOverview(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.dashboard.Overview())
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.dashboard.Status())
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) selector(r *http.Request) (association.SelectorState, error) {
	q := r.URL.Query()
	return services.ParseSelector(q.Get("label"), q.Get("predictor"), q.Get("adjusted"))
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status, body := errorResponse(err)
	a.writeJSON(w, status, body)
}
