package lint

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

const RuleUnusedFields = "unused_fields"

// UnusedFields is a project-wide rule (spec.md §4.8 category 3): a
// schema field on a selectable (Object/Interface) type that no
// operation ever touches, directly or transitively via a fragment
// spread, is reported against its definition in the schema file.
// Shares its usage counting with analyze_field_usage (field_usage.go)
// so the two can never disagree about which fields are live.
func UnusedFields(proj *project.Project) []Diagnostic {
	schema, err := proj.Schema()
	if err != nil || schema == nil {
		return nil
	}
	report := AnalyzeFieldUsage(proj)

	var out []Diagnostic
	for typeName, tc := range report.ByType {
		def := schema.Types[typeName]
		if def == nil {
			continue
		}
		for _, f := range def.Fields {
			if tc.FieldUsageCount[f.Name] > 0 {
				continue
			}
			fileID, ok := schemaFileIDForPosition(proj, f.Position)
			if !ok {
				continue
			}
			out = append(out, Diagnostic{
				RuleName: RuleUnusedFields,
				Severity: SeverityWarn,
				FileID:   fileID,
				Position: positionOf(f.Position),
				Message:  "field \"" + f.Name + "\" on type \"" + typeName + "\" is never used by any operation",
			})
		}
	}
	return out
}

func positionOf(p *ast.Position) posmap.Position {
	if p == nil {
		return posmap.Position{}
	}
	return posmap.Position{Line: p.Line - 1, Character: p.Column - 1}
}

// schemaFileIDForPosition resolves p's source name back to a
// registry.FileId by matching against the registered schema files;
// gqlparser's ast.Position carries only a *ast.Source (named by URI),
// not a FileId, so this is a reverse lookup over the small schema-file
// set rather than a direct index.
func schemaFileIDForPosition(proj *project.Project, p *ast.Position) (registry.FileId, bool) {
	if p == nil || p.Src == nil {
		return 0, false
	}
	for _, id := range proj.SchemaFileIDs() {
		entry, ok := proj.FileLookup(id)
		if ok && string(entry.Metadata.URI) == p.Src.Name {
			return id, true
		}
	}
	return 0, false
}
