package container

import (
	"context"
	"fmt"

	"donorviz/adapters/gochart"
	"donorviz/domain/association"
	"donorviz/internal"
	"donorviz/internal/config"
	"donorviz/internal/loader"
	"donorviz/internal/metrics"
	"donorviz/internal/store"
	"donorviz/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Data
	Source ports.TableSource
	Store  *store.Store
	Names  association.Names

	// Presentation
	Renderer *gochart.Renderer
	Metrics  *metrics.Metrics

	closeSource func() error
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:   cfg,
		Logger:   internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		Names:    association.DefaultNames(),
		Renderer: gochart.New(),
		Metrics:  metrics.New(),
	}

	return c, nil
}

// Init opens the configured table source and loads the store. A failure
// here must stop the process.
func (c *Container) Init(ctx context.Context) error {
	src, closeFn, err := loader.SourceFromConfig(ctx, c.Config)
	if err != nil {
		return fmt.Errorf("failed to open table source: %w", err)
	}
	c.Source = src
	c.closeSource = closeFn

	s, err := loader.Load(ctx, src, c.Names, c.Logger.With("loader"))
	if err != nil {
		return err
	}
	c.SetStore(s)
	return nil
}

// SetStore installs an already built store.
func (c *Container) SetStore(s *store.Store) {
	c.Store = s
	c.Metrics.SetLoadStats(s.Stats())
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.closeSource != nil {
		return c.closeSource()
	}
	return nil
}
