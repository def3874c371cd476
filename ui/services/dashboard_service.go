package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"donorviz/adapters/gochart"
	"donorviz/domain/association"
	domainchart "donorviz/domain/chart"
	"donorviz/internal/errors"
	"donorviz/internal/metrics"
	"donorviz/ports"
)

// OptionsResponse lists the selector choices and their defaults.
type OptionsResponse struct {
	Labels     []association.Option      `json:"labels"`
	Predictors []association.Option      `json:"predictors"`
	Defaults   association.SelectorState `json:"defaults"`
}

// StatusResponse reports what was loaded at startup.
type StatusResponse struct {
	SnapshotID string                `json:"snapshot_id"`
	Stats      association.LoadStats `json:"stats"`
	Dropped    int                   `json:"dropped"`
	Labels     int                   `json:"labels"`
	Predictors int                   `json:"predictors"`
}

// DashboardService answers selector changes from any HTTP front end.
type DashboardService struct {
	reader   ports.ReaderPort
	renderer *gochart.Renderer
	metrics  *metrics.Metrics
	alpha    float64
	top      int
}

// NewDashboardService wires the store, renderer and metrics together.
func NewDashboardService(reader ports.ReaderPort, renderer *gochart.Renderer, m *metrics.Metrics, alpha float64, top int) *DashboardService {
	return &DashboardService{reader: reader, renderer: renderer, metrics: m, alpha: alpha, top: top}
}

// Chart builds the chart for one selection.
func (s *DashboardService) Chart(sel association.SelectorState) domainchart.ChartSpec {
	spec := domainchart.Build(s.reader, s.reader.Names(), sel)
	s.metrics.ObserveChart(spec)
	return spec
}

// Title returns the chart title for one selection with line breaks flattened.
// It does not count as a chart render.
func (s *DashboardService) Title(sel association.SelectorState) string {
	spec := domainchart.Build(s.reader, s.reader.Names(), sel)
	return strings.ReplaceAll(spec.Title, "<br>", " ")
}

// Image renders the chart for one selection as PNG or SVG.
func (s *DashboardService) Image(sel association.SelectorState, format gochart.Format, w io.Writer) error {
	return s.renderer.Render(s.Chart(sel), format, w)
}

// Options returns the selector choices sorted by display name.
func (s *DashboardService) Options() OptionsResponse {
	names := s.reader.Names()
	return OptionsResponse{
		Labels:     names.Labels.Options(s.reader.LabelCodes()),
		Predictors: names.Predictors.Options(s.reader.PredictorCodes()),
		Defaults:   association.DefaultSelector(),
	}
}

// Overview summarises the significance table.
func (s *DashboardService) Overview() association.Overview {
	return s.reader.Overview(s.alpha, s.top)
}

// Status reports load statistics.
func (s *DashboardService) Status() StatusResponse {
	stats := s.reader.Stats()
	return StatusResponse{
		SnapshotID: s.reader.SnapshotID().String(),
		Stats:      stats,
		Dropped:    stats.Dropped(),
		Labels:     len(s.reader.LabelCodes()),
		Predictors: len(s.reader.PredictorCodes()),
	}
}

// SnapshotID identifies the loaded data for caching.
func (s *DashboardService) SnapshotID() string {
	return s.reader.SnapshotID().String()
}

// ParseSelector reads the three selector inputs. An empty label or predictor
// falls back to its default. An adjusted value that is not a boolean is an
// input error.
func ParseSelector(label, predictor, adjusted string) (association.SelectorState, error) {
	sel := association.DefaultSelector()
	if v := strings.TrimSpace(label); v != "" {
		sel.Label = v
	}
	if v := strings.TrimSpace(predictor); v != "" {
		sel.Predictor = v
	}

	switch v := strings.ToLower(strings.TrimSpace(adjusted)); v {
	case "", "off":
		sel.Adjusted = false
	case "on":
		sel.Adjusted = true
	default:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return association.SelectorState{}, errors.InvalidInput(fmt.Sprintf("adjusted must be a boolean, got %q", adjusted))
		}
		sel.Adjusted = b
	}
	return sel, nil
}
