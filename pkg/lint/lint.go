// Package lint implements the Linter (C8): pure functions over the HIR
// producing warnings rather than spec violations. Grounded on
// original_source/crates/linter/src/rules/{redundant_fields,
// no_deprecated}.rs and crates/analysis/src/project_lints.rs for the
// project-wide rules and field-coverage report.
package lint

import (
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Severity is a lint rule's reporting level; "off" rules are simply
// never executed by Runner, per spec.md §4.8's rule infrastructure.
type Severity string

const (
	SeverityOff   Severity = "off"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// TextEdit is a single autofix: delete (or replace) the half-open byte
// range [Start, End) in the file's content with NewText.
type TextEdit struct {
	Start, End int
	NewText    string
}

// Diagnostic is one lint finding, already projected to file-relative
// coordinates.
type Diagnostic struct {
	RuleName string
	Severity Severity
	FileID   registry.FileId
	Position posmap.Position
	Message  string
	Fix      *TextEdit
}

// Config controls which rules run and at what severity.
type Config struct {
	// Severities maps rule name to its configured severity. A rule
	// absent from this map runs at its DefaultSeverity.
	Severities map[string]Severity
}

func (c Config) severityFor(ruleName string, def Severity) Severity {
	if c.Severities == nil {
		return def
	}
	if s, ok := c.Severities[ruleName]; ok {
		return s
	}
	return def
}
