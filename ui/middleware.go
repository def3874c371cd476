package ui

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(s.metrics.GinMiddleware())
	s.router.Use(snapshotHeader(s.dashboard.SnapshotID()))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		s.logger.Error("static filesystem unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// snapshotHeader tags every response with the id of the loaded tables.
func snapshotHeader(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(snapshotHeaderName, id)
		c.Next()
	}
}
