package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultOutputDir is the override directory relative to the base directory.
// The go tool ignores testdata, so generated artifacts never join a build.
const DefaultOutputDir = "testdata/time_overrides"

// Config holds generator settings, populated from environment variables.
type Config struct {
	BaseDir     string
	RootLevels  int
	OutputDir   string
	Dialect     string
	ModulePath  string
	MetricsFile string
	LogLevel    string
	LogFormat   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	levels, err := parseRootLevels()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseDir:     sharedcfg.EnvOrDefault("MOCKTIME_BASE_DIR", "."),
		RootLevels:  levels,
		OutputDir:   os.Getenv("MOCKTIME_OUTPUT_DIR"),
		Dialect:     strings.ToLower(sharedcfg.EnvOrDefault("MOCKTIME_DIALECT", "go")),
		ModulePath:  os.Getenv("MOCKTIME_MODULE_PATH"),
		MetricsFile: os.Getenv("MOCKTIME_METRICS_FILE"),
		LogLevel:    sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(cfg.BaseDir, DefaultOutputDir)
	}
	if cfg.Dialect != "go" && cfg.Dialect != "php" {
		return nil, errors.New("MOCKTIME_DIALECT must be one of: go, php")
	}

	return cfg, nil
}

// ResolveRoot walks levels parent directories up from base. A relative base
// is made absolute first, since the parent of "." is ".".
func ResolveRoot(base string, levels int) string {
	root := filepath.Clean(base)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	for range levels {
		root = filepath.Dir(root)
	}
	return root
}

func parseRootLevels() (int, error) {
	s := sharedcfg.EnvOrDefault("MOCKTIME_ROOT_LEVELS", "0")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid MOCKTIME_ROOT_LEVELS")
	}
	return n, nil
}
