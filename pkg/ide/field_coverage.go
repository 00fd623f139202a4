package ide

import (
	"github.com/graphlang/gqlanalyzer/pkg/lint"
	"github.com/graphlang/gqlanalyzer/pkg/project"
)

// FieldCoverage implements spec.md §4.9's field_coverage() feature: a
// thin re-export of pkg/lint.AnalyzeFieldUsage, the single source of
// truth for per-type field usage counting (also used by
// pkg/lint.UnusedFields) — spec.md §4.8's field coverage report and
// §4.9's IDE-facing one must never disagree about which fields are
// live.
func FieldCoverage(proj *project.Project) lint.FieldCoverageReport {
	return lint.AnalyzeFieldUsage(proj)
}
