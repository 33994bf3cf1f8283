package generator

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"
)

// PHPAccessor is the fully-qualified register read used by php artifacts.
const PHPAccessor = `\tool_mocktesttime\time_mock::get_mock_time()`

var (
	phpNamespaceRe = regexp.MustCompile(`namespace\s+([a-zA-Z0-9_\\]+);`)
	phpTimeFuncRe  = regexp.MustCompile(`function\s+time\s*\(\s*\)`)
)

var phpArtifact = template.Must(template.New("php").Parse(`<?php
// Generated by mocktimegen. Do not edit.

namespace {{.ID}};

/**
 * Shadows the global time() for this namespace.
 *
 * @return int
 */
function time() {
    return {{.Accessor}} ?: \time();
}
`))

// PHPDialect matches "namespace A\B;" declarations in .php files.
type PHPDialect struct {
	accessor string
}

// NewPHPDialect returns the php dialect reading the register through PHPAccessor.
func NewPHPDialect() *PHPDialect {
	return &PHPDialect{accessor: PHPAccessor}
}

// Name returns "php".
func (d *PHPDialect) Name() string { return "php" }

// Ext returns ".php".
func (d *PHPDialect) Ext() string { return ".php" }

// Delimiter returns the namespace separator, a backslash.
func (d *PHPDialect) Delimiter() string { return `\` }

// SkipDir never skips; every directory is scanned.
func (d *PHPDialect) SkipDir(string) bool { return false }

// Declaration returns the first namespace declared in src.
func (d *PHPDialect) Declaration(_, _ string, src []byte) (Namespace, bool) {
	m := phpNamespaceRe.FindSubmatch(src)
	if m == nil {
		return Namespace{}, false
	}
	id := normalizeID(string(m[1]), `\`)
	if id == "" {
		return Namespace{}, false
	}
	return Namespace{ID: id}, true
}

// Render executes the artifact template for ns.
func (d *PHPDialect) Render(ns Namespace) ([]byte, error) {
	var buf bytes.Buffer
	err := phpArtifact.Execute(&buf, struct {
		ID       string
		Accessor string
	}{ns.ID, d.accessor})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", ns.ID, err)
	}
	return buf.Bytes(), nil
}

// Verify requires a namespace declaration and function time().
func (d *PHPDialect) Verify(src []byte) (Namespace, error) {
	ns, ok := d.Declaration("", "", src)
	if !ok {
		return Namespace{}, fmt.Errorf("%w: missing namespace declaration", ErrMalformedArtifact)
	}
	if !phpTimeFuncRe.Match(src) {
		return Namespace{}, fmt.Errorf("%w: %s does not declare function time()", ErrMalformedArtifact, ns.ID)
	}
	return ns, nil
}
