package generator

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/mocktesttime/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func ids(nss []Namespace) []string {
	out := make([]string, 0, len(nss))
	for _, ns := range nss {
		out = append(out, ns.ID)
	}
	return out
}

func TestScan_PHPDeduplicatesInWalkOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.php"), "<?php namespace Z\\Y;")
	writeFile(t, filepath.Join(root, "a.php"), "<?php namespace A;")
	writeFile(t, filepath.Join(root, "c/d.php"), "<?php namespace Z\\\\Y;")
	writeFile(t, filepath.Join(root, "c/e.php"), "<?php echo 1;")

	m := observability.NewMetricsForTesting()
	nss, err := New(NewPHPDialect(), nil, m).Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{`A`, `Z\Y`}, ids(nss))
	assert.InDelta(t, 4, testutil.ToFloat64(m.FilesScanned), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.NamespacesDiscovered), 0)
}

func TestScan_SkipsListedDirectories(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "overrides")
	writeFile(t, filepath.Join(root, "a.php"), "<?php namespace A;")
	writeFile(t, filepath.Join(out, "Old_time.php"), "<?php namespace Old;")

	nss, err := New(NewPHPDialect(), nil, nil).Scan(root, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(nss))
}

func TestScan_InvalidRoot(t *testing.T) {
	_, err := New(NewPHPDialect(), nil, nil).Scan(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, ErrInvalidRoot)
}

func TestScan_UnreadableFileIsSkipped(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read any file")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.php"), "<?php namespace A;")
	locked := filepath.Join(root, "b.php")
	writeFile(t, locked, "<?php namespace B;")
	require.NoError(t, os.Chmod(locked, 0o000))

	nss, err := New(NewPHPDialect(), nil, nil).Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(nss))
}

func TestGenerate_WritesAndSkips(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out")
	d := NewPHPDialect()
	m := observability.NewMetricsForTesting()
	g := New(d, nil, m)

	nss := []Namespace{{ID: "A"}, {ID: `A\B`}}
	res, err := g.Generate(out, nss)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "A_time.php"), filepath.Join(out, "A_B_time.php")}, res.Generated)
	assert.Empty(t, res.Skipped)

	writeFile(t, filepath.Join(out, "A_time.php"), "edited by hand")

	res, err = g.Generate(out, nss)
	require.NoError(t, err)
	assert.Empty(t, res.Generated)
	assert.Len(t, res.Skipped, 2)

	data, err := os.ReadFile(filepath.Join(out, "A_time.php"))
	require.NoError(t, err)
	assert.Equal(t, "edited by hand", string(data))

	assert.InDelta(t, 2, testutil.ToFloat64(m.ArtifactsGenerated), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ArtifactsSkipped), 0)
}

func TestGenerate_WarnsWhenFileNameIsTaken(t *testing.T) {
	out := t.TempDir()
	var logs bytes.Buffer
	g := New(NewGoDialect(""), slog.New(slog.NewTextHandler(&logs, nil)), nil)

	res, err := g.Generate(out, []Namespace{{ID: "a/b", Package: "b"}, {ID: "a_b", Package: "a_b"}})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(out, "a_b_time.go")}, res.Generated)
	assert.Equal(t, []string{filepath.Join(out, "a_b_time.go")}, res.Skipped)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "namespace=a_b existing=a/b")

	logs.Reset()
	_, err = g.Generate(out, []Namespace{{ID: "a/b", Package: "b"}})
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "level=WARN", "re-skipping its own artifact is quiet")
}

func TestGenerate_OutputDirFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	writeFile(t, blocker, "")

	_, err := New(NewPHPDialect(), nil, nil).Generate(filepath.Join(blocker, "out"), []Namespace{{ID: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output dir")
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "A_B_time.php", ArtifactName(NewPHPDialect(), Namespace{ID: `A\B`}))
	assert.Equal(t, "example.com_app_time.go", ArtifactName(NewGoDialect(""), Namespace{ID: "example.com/app"}))
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("", "")
	require.NoError(t, err)
	assert.Equal(t, "go", d.Name())

	d, err = DialectByName("PHP", "")
	require.NoError(t, err)
	assert.Equal(t, "php", d.Name())

	_, err = DialectByName("rust", "")
	require.ErrorIs(t, err, ErrUnknownDialect)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, `A\B`, normalizeID(`  A\\\B `, `\`))
	assert.Equal(t, "a/b/c", normalizeID("a//b///c", "/"))
}
