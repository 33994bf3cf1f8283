package mocktime

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/mocktesttime/internal/config"
	"github.com/couchcryptid/mocktesttime/internal/generator"
	"github.com/couchcryptid/mocktesttime/internal/loader"
	"github.com/couchcryptid/mocktesttime/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrInvalidRoot is returned by Init when the source root is missing or not a directory.
var ErrInvalidRoot = generator.ErrInvalidRoot

// LoadResult is the outcome of loading one override artifact.
type LoadResult = loader.Result

// Report summarises one Init pass.
type Report struct {
	Root       string
	OutputDir  string
	Namespaces []string
	Generated  []string
	Skipped    []string
	Loads      []LoadResult
}

// Loaded returns the results of artifacts that were activated.
func (r *Report) Loaded() []LoadResult {
	return r.filter(true)
}

// Failed returns the results of artifacts that could not be activated.
func (r *Report) Failed() []LoadResult {
	return r.filter(false)
}

func (r *Report) filter(ok bool) []LoadResult {
	var out []LoadResult
	for _, l := range r.Loads {
		if l.OK() == ok {
			out = append(out, l)
		}
	}
	return out
}

type options struct {
	baseDir    string
	rootLevels int
	root       string
	outputDir  string
	dialect    string
	modulePath string
	logger     *slog.Logger
	registerer prometheus.Registerer
	overrides  *Overrides
}

// Option configures Init.
type Option func(*options)

// WithBaseDir sets the directory the root and default output directory are
// derived from. Defaults to the working directory.
func WithBaseDir(dir string) Option { return func(o *options) { o.baseDir = dir } }

// WithRootLevels makes the source root the base directory's n-th parent.
func WithRootLevels(n int) Option { return func(o *options) { o.rootLevels = n } }

// WithRoot sets the source root explicitly, ignoring the base directory and levels.
func WithRoot(dir string) Option { return func(o *options) { o.root = dir } }

// WithOutputDir sets where artifacts are written and loaded from.
func WithOutputDir(dir string) Option { return func(o *options) { o.outputDir = dir } }

// WithDialect selects the source language: "go" (default) or "php".
func WithDialect(name string) Option { return func(o *options) { o.dialect = name } }

// WithModulePath sets the module path used when the tree has no go.mod.
func WithModulePath(p string) Option { return func(o *options) { o.modulePath = p } }

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithRegisterer registers generator metrics on reg. Defaults to a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithOverrides activates loaded artifacts on ov instead of DefaultOverrides().
func WithOverrides(ov *Overrides) Option { return func(o *options) { o.overrides = ov } }

// Init scans the source root for namespaces, generates an override artifact
// for each namespace that lacks one, then loads every artifact in the output
// directory. An invalid root or an output directory that cannot be created
// aborts the pass; artifacts that fail to load are reported, not returned as
// an error.
func Init(opts ...Option) (*Report, error) {
	o := options{baseDir: ".", dialect: "go"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.root == "" {
		o.root = config.ResolveRoot(o.baseDir, o.rootLevels)
	}
	if o.outputDir == "" {
		o.outputDir = filepath.Join(o.baseDir, config.DefaultOutputDir)
	}
	// Overrides remember artifacts by path, so the same directory must always
	// be spelled the same way.
	if abs, err := filepath.Abs(o.outputDir); err == nil {
		o.outputDir = abs
	}
	if o.logger == nil {
		o.logger = observability.NopLogger()
	}
	if o.registerer == nil {
		o.registerer = prometheus.NewRegistry()
	}
	if o.overrides == nil {
		o.overrides = defaultOverrides
	}

	d, err := generator.DialectByName(o.dialect, o.modulePath)
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics(o.registerer)
	gen := generator.New(d, o.logger, metrics)

	namespaces, err := gen.Scan(o.root, o.outputDir)
	if err != nil {
		return nil, err
	}

	res, err := gen.Generate(o.outputDir, namespaces)
	if err != nil {
		return nil, fmt.Errorf("generate overrides: %w", err)
	}

	loads, err := loader.New(d, o.logger, metrics).Load(o.outputDir, o.overrides)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Root:      o.root,
		OutputDir: o.outputDir,
		Generated: res.Generated,
		Skipped:   res.Skipped,
		Loads:     loads,
	}
	for _, ns := range namespaces {
		report.Namespaces = append(report.Namespaces, ns.ID)
	}

	if failed := report.Failed(); len(failed) > 0 {
		o.logger.Warn("some overrides failed to load", "failed", len(failed), "loaded", len(loads)-len(failed))
	}
	o.logger.Info("mock time overrides ready",
		"namespaces", len(report.Namespaces),
		"generated", len(report.Generated),
		"skipped", len(report.Skipped),
	)
	return report, nil
}
