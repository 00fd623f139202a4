package lint

import (
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// defaultSeverities holds every rule's severity absent an override in
// Config.Severities.
var defaultSeverities = map[string]Severity{
	RuleRedundantFields: SeverityWarn,
	RuleNoDeprecated:    SeverityWarn,
	RuleUnusedFragments: SeverityWarn,
	RuleUnusedFields:    SeverityWarn,
	RuleUniqueNames:     SeverityWarn,
}

// Runner executes every enabled rule and applies Config's configured
// severities, skipping any rule configured "off" entirely (spec.md
// §4.8, "Rule infrastructure enforces: an 'off' rule is not executed").
type Runner struct {
	cfg Config
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

func (r *Runner) enabled(rule string) (Severity, bool) {
	sev := r.cfg.severityFor(rule, defaultSeverities[rule])
	return sev, sev != SeverityOff
}

func applySeverity(diags []Diagnostic, sev Severity) []Diagnostic {
	for i := range diags {
		diags[i].Severity = sev
	}
	return diags
}

// File runs every single-document and schema-aware rule over fileID.
func (r *Runner) File(proj *project.Project, fileID registry.FileId) []Diagnostic {
	var out []Diagnostic
	if sev, ok := r.enabled(RuleRedundantFields); ok {
		out = append(out, applySeverity(RedundantFields(proj, fileID), sev)...)
	}
	if sev, ok := r.enabled(RuleNoDeprecated); ok {
		out = append(out, applySeverity(NoDeprecated(proj, fileID), sev)...)
	}
	return out
}

// Project runs every project-wide rule over the whole project,
// returning diagnostics grouped across every file they touch.
func (r *Runner) Project(proj *project.Project) []Diagnostic {
	var out []Diagnostic
	if sev, ok := r.enabled(RuleUnusedFragments); ok {
		out = append(out, applySeverity(UnusedFragments(proj), sev)...)
	}
	if sev, ok := r.enabled(RuleUnusedFields); ok {
		out = append(out, applySeverity(UnusedFields(proj), sev)...)
	}
	if sev, ok := r.enabled(RuleUniqueNames); ok {
		out = append(out, applySeverity(UniqueNames(proj), sev)...)
	}
	return out
}
