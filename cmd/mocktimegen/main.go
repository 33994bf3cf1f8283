// Command mocktimegen scans a source tree for namespaces and writes one mock
// time override artifact per namespace, then verifies that every artifact in
// the output directory loads.
//
// Flags override the MOCKTIME_* environment variables. Logs go to stdout;
// the summary goes to stderr.
//
// Usage:
//
//	go run ./cmd/mocktimegen \
//	  -root . \
//	  -out testdata/time_overrides \
//	  -metrics-file /var/lib/node_exporter/mocktime.prom
//
// or from a package, as a generate step:
//
//	//go:generate go run github.com/couchcryptid/mocktesttime/cmd/mocktimegen -levels 2
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/mocktesttime/internal/config"
	"github.com/couchcryptid/mocktesttime/internal/observability"
	"github.com/couchcryptid/mocktesttime/mocktime"
	"github.com/prometheus/client_golang/prometheus"
)

// errLoadFailures is returned in strict mode when any artifact fails to load.
var errLoadFailures = errors.New("override artifacts failed to load")

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "mocktimegen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("mocktimegen", flag.ContinueOnError)
	root := fs.String("root", "", "source root to scan (default: base dir walked up -levels parents)")
	fs.StringVar(&cfg.BaseDir, "base", cfg.BaseDir, "base directory the root and output dir are derived from")
	fs.IntVar(&cfg.RootLevels, "levels", cfg.RootLevels, "number of parent levels above the base dir to use as the root")
	outDir := fs.String("out", "", "directory for generated override artifacts")
	fs.StringVar(&cfg.Dialect, "dialect", cfg.Dialect, "source dialect: go or php")
	fs.StringVar(&cfg.ModulePath, "module", cfg.ModulePath, "module path when the tree has no go.mod")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write metrics in textfile format to this path")
	strict := fs.Bool("strict", true, "exit non-zero when any artifact fails to load")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []mocktime.Option{
		mocktime.WithBaseDir(cfg.BaseDir),
		mocktime.WithRootLevels(cfg.RootLevels),
		mocktime.WithDialect(cfg.Dialect),
		mocktime.WithModulePath(cfg.ModulePath),
	}
	if *root != "" {
		opts = append(opts, mocktime.WithRoot(*root))
	}
	switch {
	case *outDir != "":
		opts = append(opts, mocktime.WithOutputDir(*outDir))
	case os.Getenv("MOCKTIME_OUTPUT_DIR") != "":
		opts = append(opts, mocktime.WithOutputDir(cfg.OutputDir))
	}

	logger := observability.NewLogger(cfg)
	reg := prometheus.NewRegistry()
	opts = append(opts, mocktime.WithLogger(logger), mocktime.WithRegisterer(reg))

	report, err := mocktime.Init(opts...)
	if err != nil {
		return err
	}

	printReport(out, report)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Info("wrote metrics", "path", cfg.MetricsFile)
	}

	if failed := report.Failed(); *strict && len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", errLoadFailures, len(failed), len(report.Loads))
	}
	return nil
}

func printReport(w io.Writer, r *mocktime.Report) {
	fmt.Fprintf(w, "root:       %s\n", r.Root)
	fmt.Fprintf(w, "output:     %s\n", r.OutputDir)
	fmt.Fprintf(w, "namespaces: %d\n", len(r.Namespaces))
	fmt.Fprintf(w, "generated:  %d\n", len(r.Generated))
	fmt.Fprintf(w, "skipped:    %d\n", len(r.Skipped))
	fmt.Fprintf(w, "loaded:     %d\n", len(r.Loaded()))

	failed := r.Failed()
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(w, "failed:     %d\n", len(failed))
	for _, f := range failed {
		fmt.Fprintf(w, "  FAIL %s: %v\n", f.Path, f.Err)
	}
}
