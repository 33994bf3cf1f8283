package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/mod/modfile"
)

// RegisterImportPath is the package generated Go artifacts call into.
const RegisterImportPath = "github.com/couchcryptid/mocktesttime/mocktime"

// namespaceDirective marks the namespace a Go artifact overrides. Go package
// clauses only carry the last path element, so the full import path rides in
// a directive comment.
const namespaceDirective = "//mocktime:namespace "

var goArtifact = template.Must(template.New("go").Parse(`// Code generated by mocktimegen. DO NOT EDIT.

//go:build mocktime

` + namespaceDirective + `{{.ID}}

package {{.Package}}

import (
	"time"

	"` + RegisterImportPath + `"
)

// Now shadows time.Now for {{.ID}} and reports the mock time register.
func Now() time.Time {
	ts := mocktime.GetMockTime()
	if ts == 0 {
		mocktime.ResetMockTime()
		ts = mocktime.GetMockTime()
	}
	return time.Unix(ts, 0)
}
`))

// GoDialect treats every Go package as a namespace named by its import path.
type GoDialect struct {
	modulePath string
	// modules caches the module root and path that governs each directory.
	modules map[string]moduleInfo
}

type moduleInfo struct {
	dir  string
	path string
}

// NewGoDialect returns the go dialect. modulePath is used when the tree has no
// go.mod of its own.
func NewGoDialect(modulePath string) *GoDialect {
	return &GoDialect{
		modulePath: modulePath,
		modules:    make(map[string]moduleInfo),
	}
}

// Name returns "go".
func (d *GoDialect) Name() string { return "go" }

// Ext returns ".go".
func (d *GoDialect) Ext() string { return ".go" }

// Delimiter returns "/", the import path separator.
func (d *GoDialect) Delimiter() string { return "/" }

// SkipDir mirrors the directories the go tool ignores when matching packages.
func (d *GoDialect) SkipDir(name string) bool {
	return name == "testdata" || name == "vendor" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Declaration reads the package clause of a non-test file and names it by the
// import path of its directory.
func (d *GoDialect) Declaration(root, file string, src []byte) (Namespace, bool) {
	if strings.HasSuffix(file, "_test.go") {
		return Namespace{}, false
	}
	f, err := parser.ParseFile(token.NewFileSet(), file, src, parser.PackageClauseOnly)
	if err != nil || f.Name == nil || strings.HasSuffix(f.Name.Name, "_test") {
		return Namespace{}, false
	}

	id := d.importPath(root, filepath.Dir(file))
	if id == "" {
		return Namespace{}, false
	}
	return Namespace{ID: normalizeID(id, "/"), Package: f.Name.Name}, true
}

// importPath resolves the import path of dir using the nearest go.mod at or
// below root, the configured module path, or finally the root's base name.
func (d *GoDialect) importPath(root, dir string) string {
	if mod, ok := d.moduleFor(root, dir); ok {
		rel, err := filepath.Rel(mod.dir, dir)
		if err != nil {
			return ""
		}
		return path.Join(mod.path, filepath.ToSlash(rel))
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return ""
	}
	base := d.modulePath
	if base == "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return ""
		}
		base = filepath.Base(abs)
	}
	return path.Join(base, filepath.ToSlash(rel))
}

func (d *GoDialect) moduleFor(root, dir string) (moduleInfo, bool) {
	if mod, ok := d.modules[dir]; ok {
		return mod, mod.path != ""
	}

	var mod moduleInfo
	if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
		if p := modfile.ModulePath(data); p != "" {
			mod = moduleInfo{dir: dir, path: p}
		}
	}
	if mod.path == "" {
		if parent := filepath.Dir(dir); dir != filepath.Clean(root) && parent != dir {
			mod, _ = d.moduleFor(root, parent)
		}
	}

	d.modules[dir] = mod
	return mod, mod.path != ""
}

// Render executes the artifact template for ns and gofmts the result.
func (d *GoDialect) Render(ns Namespace) ([]byte, error) {
	if ns.Package == "" {
		ns.Package = path.Base(ns.ID)
	}
	var buf bytes.Buffer
	if err := goArtifact.Execute(&buf, ns); err != nil {
		return nil, fmt.Errorf("render %s: %w", ns.ID, err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", ns.ID, err)
	}
	return out, nil
}

// Verify requires the namespace directive and a zero-argument Now.
func (d *GoDialect) Verify(src []byte) (Namespace, error) {
	f, err := parser.ParseFile(token.NewFileSet(), "", src, parser.ParseComments)
	if err != nil {
		return Namespace{}, fmt.Errorf("%w: %w", ErrMalformedArtifact, err)
	}

	var id string
	for _, group := range f.Comments {
		for _, c := range group.List {
			if rest, ok := strings.CutPrefix(c.Text, namespaceDirective); ok {
				id = strings.TrimSpace(rest)
			}
		}
	}
	if id == "" {
		return Namespace{}, fmt.Errorf("%w: missing namespace directive", ErrMalformedArtifact)
	}

	if !declaresNow(f) {
		return Namespace{}, fmt.Errorf("%w: %s does not declare func Now()", ErrMalformedArtifact, id)
	}
	return Namespace{ID: id, Package: f.Name.Name}, nil
}

func declaresNow(f *ast.File) bool {
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Name.Name != "Now" {
			continue
		}
		if fn.Type.Params.NumFields() == 0 {
			return true
		}
	}
	return false
}
