package project

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"
)

// schemaResult wraps the validated *ast.Schema (or the error from
// merging/validating it) so it can flow through an engine.Query, whose
// result type has no room for a second return value.
type schemaResult struct {
	schema *ast.Schema
	err    error
}

// Schema returns the project-merged, gqlparser-validated schema built
// from every SchemaFileIds file's raw ast.SchemaDocument, or an error
// if the merged SDL itself is invalid. gqlparser's prelude (built-in
// scalars, directives and introspection types) is merged in ahead of
// the project's files. When no schema file has a parsed schema block
// it returns a nil schema and a nil error. This is the real schema object
// the Validator (C7) feeds to gqlparser/validator and IDE Services (C9)
// walk for type information — distinct from SchemaTypes(), which is
// the name-keyed hir.TypeDef summary used for lint/navigation.
func (p *Project) Schema() (*ast.Schema, error) {
	res := p.schemaQ.Get(p.db, struct{}{})
	return res.schema, res.err
}

// ConflictResolver decides how two definitions sharing a name across
// separate schema files should be merged. conflictType is the
// definition's ast.DefinitionKind (e.g. "OBJECT", "ENUM"). A nil
// resolver leaves every duplicate definition in the merged document
// unchanged, so gqlparser's validator rejects the ambiguity itself —
// spec.md §6's onTypeConflict default of "error".
type ConflictResolver func(left, right *ast.Definition, conflictType string) (*ast.Definition, error)

func mergeSchemaDocuments(docs []*ast.SchemaDocument, resolve ConflictResolver) (*ast.SchemaDocument, error) {
	merged := &ast.SchemaDocument{}
	byName := make(map[string]int)
	for _, d := range docs {
		if d == nil {
			continue
		}
		merged.Schema = append(merged.Schema, d.Schema...)
		merged.SchemaExtension = append(merged.SchemaExtension, d.SchemaExtension...)
		merged.Directives = append(merged.Directives, d.Directives...)
		merged.Extensions = append(merged.Extensions, d.Extensions...)

		for _, def := range d.Definitions {
			if resolve == nil {
				merged.Definitions = append(merged.Definitions, def)
				continue
			}
			if idx, ok := byName[def.Name]; ok {
				existing := merged.Definitions[idx]
				winner, err := resolve(existing, def, string(def.Kind))
				if err != nil {
					return nil, err
				}
				merged.Definitions[idx] = winner
				continue
			}
			byName[def.Name] = len(merged.Definitions)
			merged.Definitions = append(merged.Definitions, def)
		}
	}
	return merged, nil
}

func validateSchemaDocument(doc *ast.SchemaDocument, mergeErr error) schemaResult {
	if mergeErr != nil {
		return schemaResult{err: mergeErr}
	}
	schema, err := validator.ValidateSchemaDocument(doc)
	if err != nil {
		return schemaResult{err: err}
	}
	return schemaResult{schema: schema}
}
