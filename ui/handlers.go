package ui

import (
	"bytes"
	"html/template"
	"net/http"
	"path"

	"donorviz/adapters/gochart"
	"donorviz/domain/association"
	"donorviz/ui/services"

	"github.com/gin-gonic/gin"
)

// indexData is the dashboard page model.
type indexData struct {
	Labels     []association.Option
	Predictors []association.Option
	Selected   association.SelectorState
	SnapshotID string
	Title      string
	About      template.HTML
}

func (s *Server) handleIndex(c *gin.Context) {
	sel, err := s.selector(c)
	if err != nil {
		// A bad bookmark should still open the dashboard.
		sel = association.DefaultSelector()
	}
	opts := s.dashboard.Options()

	s.renderTemplate(c, "index.html", indexData{
		Labels:     opts.Labels,
		Predictors: opts.Predictors,
		Selected:   sel,
		SnapshotID: s.dashboard.SnapshotID(),
		Title:      s.dashboard.Title(sel),
		About:      s.about,
	})
}

func (s *Server) handleChart(c *gin.Context) {
	sel, err := s.selector(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	etag := chartETag(s.dashboard.SnapshotID(), sel, "json")
	if notModified(c.Request, etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("ETag", etag)
	c.JSON(http.StatusOK, s.dashboard.Chart(sel))
}

func (s *Server) handleChartImage(c *gin.Context) {
	sel, err := s.selector(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	format, err := gochart.ParseFormat(path.Ext(c.Request.URL.Path))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	etag := chartETag(s.dashboard.SnapshotID(), sel, string(format))
	if notModified(c.Request, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := s.dashboard.Image(sel, format, &buf); err != nil {
		s.logger.Error("render %s for %s: %v", format, sel.Key(), err)
		s.abortWithError(c, err)
		return
	}
	c.Header("ETag", etag)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Options())
}

func (s *Server) handleOverview(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Overview())
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Status())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) selector(c *gin.Context) (association.SelectorState, error) {
	return services.ParseSelector(c.Query("label"), c.Query("predictor"), c.Query("adjusted"))
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	c.AbortWithStatusJSON(status, body)
}
