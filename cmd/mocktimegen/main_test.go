package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRun_GeneratesAndWritesMetrics(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.php"), "<?php\nnamespace Cli;\n")
	writeFile(t, filepath.Join(root, "b/b.php"), "<?php\nnamespace Cli\\Sub;\n")
	out := filepath.Join(t.TempDir(), "overrides")
	metricsFile := filepath.Join(t.TempDir(), "mocktime.prom")

	var buf bytes.Buffer
	err := run([]string{"-root", root, "-out", out, "-dialect", "php", "-metrics-file", metricsFile}, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "namespaces: 2")
	assert.Contains(t, buf.String(), "generated:  2")
	assert.Contains(t, buf.String(), "loaded:     2")
	assert.FileExists(t, filepath.Join(out, "Cli_Sub_time.php"))

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "mocktime_artifacts_generated_total 2")
}

func TestRun_StrictFailsOnBrokenArtifact(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.php"), "<?php\nnamespace Strict;\n")
	out := t.TempDir()
	writeFile(t, filepath.Join(out, "junk_time.php"), "<?php\n")

	var buf bytes.Buffer
	err := run([]string{"-root", root, "-out", out, "-dialect", "php"}, &buf)
	require.ErrorIs(t, err, errLoadFailures)
	assert.Contains(t, buf.String(), "FAIL "+filepath.Join(out, "junk_time.php"))

	buf.Reset()
	err = run([]string{"-root", root, "-out", out, "-dialect", "php", "-strict=false"}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "skipped:    1")
}

func TestRun_InvalidRoot(t *testing.T) {
	err := run([]string{"-root", filepath.Join(t.TempDir(), "missing")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid directory")
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("MOCKTIME_ROOT_LEVELS", "many")
	err := run(nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
