package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/mocktesttime/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrInvalidRoot is returned by Scan when the root is missing or not a directory.
var ErrInvalidRoot = errors.New("provided path is not a valid directory")

// Result lists the artifacts touched by one Generate call.
type Result struct {
	Generated []string
	Skipped   []string
}

// Generator discovers namespaces in a source tree and writes one override
// artifact per namespace.
type Generator struct {
	dialect Dialect
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Generator for the given dialect.
func New(d Dialect, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	return &Generator{dialect: d, logger: logger, metrics: metrics}
}

// Scan walks root and returns every distinct namespace declared by a source
// file, in walk order. Directories listed in skip (typically the output
// directory) are not descended into. Unreadable files and files without a
// declaration are skipped.
func (g *Generator) Scan(root string, skip ...string) ([]Namespace, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}

	start := time.Now()
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if abs, err := filepath.Abs(s); err == nil {
			skipped[abs] = true
		}
	}

	seen := make(map[string]bool)
	var namespaces []Namespace

	err = filepath.WalkDir(root, func(path string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			g.logger.Debug("skipping unreadable path", "path", path, "error", walkErr)
			if e != nil && e.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if e.IsDir() {
			if path == root {
				return nil
			}
			if g.dialect.SkipDir(e.Name()) || g.isSkipped(skipped, path) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != g.dialect.Ext() {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			g.logger.Debug("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		g.metrics.FilesScanned.Inc()

		ns, ok := g.dialect.Declaration(root, path, src)
		if !ok || seen[ns.ID] {
			return nil
		}
		seen[ns.ID] = true
		namespaces = append(namespaces, ns)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	g.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	g.metrics.NamespacesDiscovered.Set(float64(len(namespaces)))
	g.logger.Info("scan complete", "root", root, "dialect", g.dialect.Name(), "namespaces", len(namespaces))

	return namespaces, nil
}

func (g *Generator) isSkipped(skipped map[string]bool, path string) bool {
	if len(skipped) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && skipped[abs]
}

// Generate ensures outDir exists and writes an artifact for every namespace
// that does not have one yet. Existing artifacts are never rewritten, even
// when their content is stale.
func (g *Generator) Generate(outDir string, namespaces []Namespace) (Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	var res Result
	for _, ns := range namespaces {
		path := filepath.Join(outDir, ArtifactName(g.dialect, ns))

		created, err := g.writeArtifact(path, ns)
		if err != nil {
			return res, err
		}
		if !created {
			g.logger.Debug("artifact exists, skipping", "namespace", ns.ID, "path", path)
			g.warnIfShadowed(path, ns)
			g.metrics.ArtifactsSkipped.Inc()
			res.Skipped = append(res.Skipped, path)
			continue
		}

		g.logger.Info("artifact generated", "namespace", ns.ID, "path", path)
		g.metrics.ArtifactsGenerated.Inc()
		res.Generated = append(res.Generated, path)
	}
	return res, nil
}

// warnIfShadowed logs when the existing artifact at path overrides a different
// namespace than ns, e.g. "a/b" and "a_b" sharing a file name. ns then stays
// un-overridden.
func (g *Generator) warnIfShadowed(path string, ns Namespace) {
	src, err := os.ReadFile(path)
	if err != nil {
		return
	}
	existing, err := g.dialect.Verify(src)
	if err != nil || existing.ID == ns.ID {
		return
	}
	g.logger.Warn("artifact belongs to another namespace, not overriding",
		"namespace", ns.ID, "existing", existing.ID, "path", path)
}

// writeArtifact creates path exclusively so two generators racing on the same
// namespace cannot both write it. Returns false when the file already exists.
func (g *Generator) writeArtifact(path string, ns Namespace) (bool, error) {
	data, err := g.dialect.Render(ns)
	if err != nil {
		return false, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create artifact %s: %w", path, err)
	}

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return false, fmt.Errorf("write artifact %s: %w", path, err)
	}
	return true, nil
}
