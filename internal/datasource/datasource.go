// Package datasource defines the interface shared by tfit's dataset
// adapters and a registry for setting them all up at once.
package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tfit-bio/tfit/internal/config"
	"github.com/tfit-bio/tfit/internal/fetch"
)

// Source is one downloadable dataset.
type Source interface {
	// Name is the config key and display name, e.g. "hippie".
	Name() string

	// IsReady reports whether the dataset's local files are present.
	IsReady(cfg *config.Config) (bool, error)

	// Download fetches the dataset's files into the resolved data
	// directory. Safe to call when already ready.
	Download(ctx context.Context, cfg *config.Config, f *fetch.Fetcher) error
}

// Status is the readiness of one source.
type Status struct {
	Name  string
	Ready bool
	Err   error
}

// Registry holds the known dataset sources.
type Registry struct {
	sources []Source
	logger  *zap.Logger
}

// NewRegistry creates a registry over the given sources.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources, logger: zap.NewNop()}
}

// SetLogger sets the logger used for setup progress.
func (r *Registry) SetLogger(l *zap.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Sources returns the registered sources in registration order.
func (r *Registry) Sources() []Source {
	return r.sources
}

// Lookup returns the source with the given name.
func (r *Registry) Lookup(name string) (Source, bool) {
	for _, s := range r.sources {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Status reports per-source readiness.
func (r *Registry) Status(cfg *config.Config) []Status {
	statuses := make([]Status, 0, len(r.sources))
	for _, s := range r.sources {
		ready, err := s.IsReady(cfg)
		statuses = append(statuses, Status{Name: s.Name(), Ready: ready, Err: err})
	}
	return statuses
}

// EnsureAll downloads every source that is not yet ready.
func (r *Registry) EnsureAll(ctx context.Context, cfg *config.Config, f *fetch.Fetcher) error {
	var missing []Source
	for _, s := range r.sources {
		ready, err := s.IsReady(cfg)
		if err != nil {
			return fmt.Errorf("check %s: %w", s.Name(), err)
		}
		if !ready {
			missing = append(missing, s)
		}
	}

	if len(missing) == 0 {
		r.logger.Info("all data sources ready")
		return nil
	}

	r.logger.Info("downloading missing sources", zap.Int("count", len(missing)))
	for _, s := range missing {
		r.logger.Info("downloading source", zap.String("source", s.Name()))
		if err := s.Download(ctx, cfg, f); err != nil {
			return fmt.Errorf("download %s: %w", s.Name(), err)
		}
	}
	return nil
}
