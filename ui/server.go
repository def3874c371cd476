package ui

import (
	"html/template"
	"log"

	"donorviz/internal"
	"donorviz/internal/metrics"
	"donorviz/ui/services"

	"github.com/gin-gonic/gin"
)

// Server is the dashboard web server: the HTML page plus the JSON and image
// API it calls.
type Server struct {
	router    *gin.Engine
	dashboard *services.DashboardService
	metrics   *metrics.Metrics
	logger    *internal.Logger
	templates *template.Template
	about     template.HTML
}

// NewServer creates a new web server instance
func NewServer(dashboard *services.DashboardService, m *metrics.Metrics, logger *internal.Logger) *Server {
	return &Server{
		router:    gin.New(),
		dashboard: dashboard,
		metrics:   m,
		logger:    logger.With("ui"),
	}
}

// Initialize parses the embedded templates and registers routes.
func (s *Server) Initialize() error {
	templates, err := parseTemplates()
	if err != nil {
		return err
	}
	s.templates = templates

	about, err := renderAbout()
	if err != nil {
		return err
	}
	s.about = about

	s.setupMiddleware()
	s.setupRoutes()
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api")
	api.GET("/chart", s.handleChart)
	api.GET("/chart.png", s.handleChartImage)
	api.GET("/chart.svg", s.handleChartImage)
	api.GET("/options", s.handleOptions)
	api.GET("/overview", s.handleOverview)
	api.GET("/status", s.handleStatus)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting donorviz dashboard on http://%s", addr)
	return s.router.Run(addr)
}
