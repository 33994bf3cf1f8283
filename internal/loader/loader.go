// Package loader activates generated override artifacts in the running process.
package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/mocktesttime/internal/generator"
	"github.com/couchcryptid/mocktesttime/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Activator makes a namespace override effective.
type Activator interface {
	Activate(namespace, path string) error
}

// Result is the outcome of loading one artifact.
type Result struct {
	Path      string
	Namespace string
	Err       error
}

// OK reports whether the artifact was activated.
func (r Result) OK() bool { return r.Err == nil }

// Loader verifies artifacts with a dialect and hands them to an Activator.
type Loader struct {
	dialect generator.Dialect
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Loader for the given dialect.
func New(d generator.Dialect, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	return &Loader{dialect: d, logger: logger, metrics: metrics}
}

// Load walks dir and activates every artifact with the dialect's extension.
// A failing artifact is recorded in its Result and the walk carries on; only
// a failure to walk dir itself is returned as an error.
func (l *Loader) Load(dir string, a Activator) ([]Result, error) {
	var results []Result

	err := filepath.WalkDir(dir, func(path string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			results = append(results, l.record(Result{Path: path, Err: walkErr}))
			if e != nil && e.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if e.IsDir() || filepath.Ext(path) != l.dialect.Ext() {
			return nil
		}
		results = append(results, l.record(l.loadOne(path, a)))
		return nil
	})
	if err != nil {
		return results, fmt.Errorf("load overrides from %s: %w", dir, err)
	}

	return results, nil
}

func (l *Loader) loadOne(path string, a Activator) Result {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("read artifact: %w", err)}
	}

	ns, err := l.dialect.Verify(src)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	if err := a.Activate(ns.ID, path); err != nil {
		return Result{Path: path, Namespace: ns.ID, Err: err}
	}
	return Result{Path: path, Namespace: ns.ID}
}

func (l *Loader) record(r Result) Result {
	if r.Err != nil {
		l.logger.Warn("override load failed, skipping", "path", r.Path, "namespace", r.Namespace, "error", r.Err)
		l.metrics.ArtifactLoads.WithLabelValues(observability.OutcomeFailed).Inc()
		return r
	}
	l.logger.Debug("override loaded", "path", r.Path, "namespace", r.Namespace)
	l.metrics.ArtifactLoads.WithLabelValues(observability.OutcomeLoaded).Inc()
	return r
}
