package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownDialect is returned by DialectByName for unsupported names.
	ErrUnknownDialect = errors.New("unknown dialect")

	// ErrMalformedArtifact is returned by Dialect.Verify when an artifact does
	// not declare a namespace and the time function.
	ErrMalformedArtifact = errors.New("malformed override artifact")
)

// Namespace identifies one module/package discovered in the source tree.
type Namespace struct {
	// ID is the delimited path naming the namespace, e.g. "example.com/app/billing".
	ID string
	// Package is the declared package name. Only the go dialect sets it.
	Package string
}

// Dialect knows how one source language declares namespaces and how to
// render and verify override artifacts for it.
type Dialect interface {
	// Name is the dialect selector, e.g. "go".
	Name() string
	// Ext is the source file extension including the dot.
	Ext() string
	// Delimiter separates namespace path segments.
	Delimiter() string
	// SkipDir reports whether the walker should not descend into a directory.
	SkipDir(name string) bool
	// Declaration extracts the namespace declared by the file at path.
	Declaration(root, path string, src []byte) (Namespace, bool)
	// Render produces the override artifact for ns.
	Render(ns Namespace) ([]byte, error)
	// Verify checks an artifact and returns the namespace it overrides.
	Verify(src []byte) (Namespace, error)
}

// DialectByName returns the dialect for name. modulePath only applies to the
// go dialect; when empty it is read from the root's go.mod during the scan.
func DialectByName(name, modulePath string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "go":
		return NewGoDialect(modulePath), nil
	case "php":
		return NewPHPDialect(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// ArtifactName is the deterministic file name of the artifact for ns:
// delimiters become underscores and "_time" plus the extension is appended.
func ArtifactName(d Dialect, ns Namespace) string {
	return strings.ReplaceAll(ns.ID, d.Delimiter(), "_") + "_time" + d.Ext()
}

// normalizeID trims whitespace and collapses doubled delimiters.
func normalizeID(id, delim string) string {
	id = strings.TrimSpace(id)
	double := delim + delim
	for strings.Contains(id, double) {
		id = strings.ReplaceAll(id, double, delim)
	}
	return id
}
