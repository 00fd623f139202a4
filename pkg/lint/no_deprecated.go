package lint

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

const RuleNoDeprecated = "no_deprecated"

// NoDeprecated is a schema-aware rule (spec.md §4.8 category 2): walk
// every operation and fragment body in fileID tracking the current
// parent type, and flag a field selection, field argument, or enum
// literal argument value whose schema definition carries @deprecated.
// FragmentSpread targets are not followed here — a spread's own body is
// linted once, from its defining file, not once per call site.
func NoDeprecated(proj *project.Project, fileID registry.FileId) []Diagnostic {
	schema, err := proj.Schema()
	if err != nil || schema == nil {
		return nil
	}

	parse := proj.Parse(fileID)
	w := &deprecationWalker{schema: schema, fileID: fileID}

	var out []Diagnostic
	for _, block := range parse.Blocks {
		if block.QueryDoc == nil {
			continue
		}
		w.block = block
		for _, op := range block.QueryDoc.Operations {
			out = append(out, w.walk(rootTypeFor(schema, op.Operation), op.SelectionSet)...)
		}
		for _, frag := range block.QueryDoc.Fragments {
			out = append(out, w.walk(schema.Types[frag.TypeCondition], frag.SelectionSet)...)
		}
	}
	return out
}

func rootTypeFor(schema *ast.Schema, op ast.Operation) *ast.Definition {
	switch op {
	case ast.Mutation:
		return schema.Mutation
	case ast.Subscription:
		return schema.Subscription
	default:
		return schema.Query
	}
}

type deprecationWalker struct {
	schema *ast.Schema
	fileID registry.FileId
	block  gqlparse.Block
}

func (w *deprecationWalker) walk(parent *ast.Definition, set ast.SelectionSet) []Diagnostic {
	if parent == nil {
		return nil
	}

	var out []Diagnostic
	for _, sel := range set {
		switch v := sel.(type) {
		case *ast.Field:
			out = append(out, w.field(parent, v)...)
		case *ast.InlineFragment:
			target := parent
			if v.TypeCondition != "" {
				target = w.schema.Types[v.TypeCondition]
			}
			out = append(out, w.walk(target, v.SelectionSet)...)
		}
	}
	return out
}

func (w *deprecationWalker) field(parent *ast.Definition, v *ast.Field) []Diagnostic {
	if v.Name == "__typename" {
		return nil
	}
	fieldDef := parent.Fields.ForName(v.Name)
	if fieldDef == nil {
		return nil
	}

	var out []Diagnostic
	if isDep, reason := deprecatedDirective(fieldDef.Directives); isDep {
		out = append(out, w.diagnostic(v.Position, "field \""+v.Name+"\" on type \""+parent.Name+"\" is deprecated: "+reason))
	}
	out = append(out, w.arguments(fieldDef.Arguments, v.Arguments)...)

	var childType *ast.Definition
	if fieldDef.Type != nil {
		childType = w.schema.Types[fieldDef.Type.Name()]
	}
	out = append(out, w.walk(childType, v.SelectionSet)...)
	return out
}

func (w *deprecationWalker) arguments(argDefs ast.ArgumentDefinitionList, args ast.ArgumentList) []Diagnostic {
	var out []Diagnostic
	for _, a := range args {
		def := argDefs.ForName(a.Name)
		if def == nil {
			continue
		}
		if isDep, reason := deprecatedDirective(def.Directives); isDep {
			out = append(out, w.diagnostic(a.Position, "argument \""+a.Name+"\" is deprecated: "+reason))
		}
		if a.Value == nil || a.Value.Kind != ast.EnumValue || def.Type == nil {
			continue
		}
		enumDef := w.schema.Types[def.Type.Name()]
		if enumDef == nil || enumDef.Kind != ast.Enum {
			continue
		}
		ev := enumDef.EnumValues.ForName(a.Value.Raw)
		if ev == nil {
			continue
		}
		if isDep, reason := deprecatedDirective(ev.Directives); isDep {
			out = append(out, w.diagnostic(a.Value.Position, "enum value \""+a.Value.Raw+"\" on \""+enumDef.Name+"\" is deprecated: "+reason))
		}
	}
	return out
}

func deprecatedDirective(dl ast.DirectiveList) (bool, string) {
	d := dl.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	reason := "No longer supported"
	if ra := d.Arguments.ForName("reason"); ra != nil && ra.Value != nil {
		reason = ra.Value.Raw
	}
	return true, reason
}

func (w *deprecationWalker) diagnostic(p *ast.Position, message string) Diagnostic {
	pos := posmap.Position{}
	if p != nil {
		pos = posmap.Position{Line: p.Line - 1, Character: p.Column - 1}
	}
	pos = posmap.ToFile(posmap.BlockOrigin{Line: w.block.Line, Character: w.block.Character}, pos)
	return Diagnostic{
		RuleName: RuleNoDeprecated,
		Severity: SeverityWarn,
		FileID:   w.fileID,
		Position: pos,
		Message:  message,
	}
}
