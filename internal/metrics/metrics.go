// Package metrics exposes Prometheus collectors for chart rendering, HTTP
// traffic and load-time data quality.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"donorviz/domain/association"
	domainchart "donorviz/domain/chart"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "donorviz"

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	registry     *prometheus.Registry
	chartRenders *prometheus.CounterVec
	chartEmpty   prometheus.Counter
	httpDuration *prometheus.HistogramVec
	rowsDropped  *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Charts built with data, by predictor class.",
		}, []string{"class"}),
		chartEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_empty_total",
			Help:      "Selections answered with the empty chart.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		rowsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_dropped",
			Help:      "Table rows excluded at load, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.chartRenders,
		m.chartEmpty,
		m.httpDuration,
		m.rowsDropped,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveChart counts one built chart.
func (m *Metrics) ObserveChart(spec domainchart.ChartSpec) {
	if m == nil {
		return
	}
	if spec.Empty {
		m.chartEmpty.Inc()
		return
	}
	m.chartRenders.WithLabelValues(string(spec.Class)).Inc()
}

// SetLoadStats publishes the load-time drop counts.
func (m *Metrics) SetLoadStats(stats association.LoadStats) {
	if m == nil {
		return
	}
	m.rowsDropped.WithLabelValues("incomplete_results").Set(float64(stats.IncompleteResults))
	m.rowsDropped.WithLabelValues("incomplete_significance").Set(float64(stats.IncompleteSignificance))
	m.rowsDropped.WithLabelValues("unbounded_results").Set(float64(stats.UnboundedResults))
	m.rowsDropped.WithLabelValues("duplicate_significance").Set(float64(stats.DuplicateSignificance))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// GinMiddleware times every request by its route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler times a plain net/http handler under a fixed route label.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.ObserveRequest(route, r.Method, recorder.status, time.Since(start))
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
