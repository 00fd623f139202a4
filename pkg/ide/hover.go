package ide

import (
	"strings"

	"github.com/graphlang/gqlanalyzer/pkg/hir"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Hover implements spec.md §4.9's hover(pos) feature: dispatch on the
// symbol under the cursor to its schema field signature, fragment
// definition, type summary, or variable definition.
func Hover(proj *project.Project, fileID registry.FileId, pos posmap.Position) *HoverResult {
	block, within, ok := findBlockForPosition(proj, fileID, pos)
	if !ok {
		return nil
	}
	offset := offsetInBlock(block, within)
	if offset < 0 {
		return nil
	}

	schema, _ := proj.Schema()
	var hv *HoverResult
	if block.QueryDoc != nil {
		frames := walkQueryDocFrames(schema, block.QueryDoc, offset)
		hv = hoverForQueryFrames(proj, proj.SchemaTypes().ByName, frames)
	} else if block.SchemaDoc != nil {
		frames := walkSchemaDocFrames(block.SchemaDoc, offset)
		hv = hoverForSchemaFrames(proj.SchemaTypes().ByName, frames)
	}
	if hv == nil {
		return nil
	}
	hv.Range = Range{Start: toFilePosition(block, hv.Range.Start), End: toFilePosition(block, hv.Range.End)}
	return hv
}

func hoverForQueryFrames(proj *project.Project, types map[string]hir.TypeDef, frames []frame) *HoverResult {
	if len(frames) == 0 {
		return nil
	}
	last := frames[len(frames)-1]
	switch last.kind {
	case frameField:
		td, ok := types[last.ownerType]
		if !ok {
			return nil
		}
		for _, f := range td.Fields {
			if f.Name == last.name {
				return &HoverResult{Contents: formatFieldHover(last.ownerType, f), Range: rangeOfAST(last.pos)}
			}
		}
		return nil
	case frameFragmentSpread:
		byName := proj.AllFragments().ByName
		fs, ok := byName[last.name]
		if !ok {
			if s := suggestName(fragmentNames(byName), last.name); s != "" {
				return &HoverResult{Contents: "Unknown fragment \"" + last.name + "\" — did you mean \"" + s + "\"?", Range: rangeOfAST(last.pos)}
			}
			return nil
		}
		return &HoverResult{Contents: "```graphql\nfragment " + fs.Name + " on " + fs.TypeCondition + "\n```", Range: rangeOfAST(last.pos)}
	case frameInlineFragment:
		td, ok := types[last.name]
		if !ok {
			if s := suggestName(typeNames(types), last.name); s != "" {
				return &HoverResult{Contents: "Unknown type \"" + last.name + "\" — did you mean \"" + s + "\"?", Range: rangeOfAST(last.pos)}
			}
			return nil
		}
		return &HoverResult{Contents: formatTypeHover(td), Range: rangeOfAST(last.pos)}
	case frameOperation, frameFragmentDef:
		return nil
	}
	return nil
}

func hoverForSchemaFrames(types map[string]hir.TypeDef, frames []frame) *HoverResult {
	if len(frames) == 0 {
		return nil
	}
	last := frames[len(frames)-1]
	switch last.kind {
	case frameTypeDef:
		td, ok := types[last.name]
		if !ok {
			if s := suggestName(typeNames(types), last.name); s != "" {
				return &HoverResult{Contents: "Unknown type \"" + last.name + "\" — did you mean \"" + s + "\"?", Range: rangeOfAST(last.pos)}
			}
			return nil
		}
		return &HoverResult{Contents: formatTypeHover(td), Range: rangeOfAST(last.pos)}
	case frameFieldDef:
		td, ok := types[last.ownerType]
		if !ok {
			return nil
		}
		for _, f := range td.Fields {
			if f.Name == last.name {
				return &HoverResult{Contents: formatFieldHover(last.ownerType, f), Range: rangeOfAST(last.pos)}
			}
		}
		return nil
	case frameEnumValueDef:
		td, ok := types[last.ownerType]
		if !ok {
			return nil
		}
		for _, ev := range td.EnumValues {
			if ev.Name == last.name {
				content := "```graphql\n" + ev.Name + "\n```"
				if ev.Description != "" {
					content += "\n\n" + ev.Description
				}
				return &HoverResult{Contents: content, Range: rangeOfAST(last.pos)}
			}
		}
		return nil
	}
	return nil
}

func formatTypeRefHover(t hir.TypeRef) string {
	name := t.Name
	if t.IsList {
		if t.InnerNonNull {
			name = "[" + name + "!]"
		} else {
			name = "[" + name + "]"
		}
	}
	if t.IsNonNull {
		name += "!"
	}
	return name
}

func formatFieldHover(parentType string, f hir.FieldSignature) string {
	var b strings.Builder
	b.WriteString("```graphql\n")
	b.WriteString(parentType)
	b.WriteString(".")
	b.WriteString(f.Name)
	b.WriteString(": ")
	b.WriteString(formatTypeRefHover(f.TypeRef))
	b.WriteString("\n```")
	if f.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(f.Description)
	}
	if f.IsDeprecated {
		b.WriteString("\n\n**Deprecated:** ")
		b.WriteString(f.DeprecationReason)
	}
	return b.String()
}

func formatTypeHover(td hir.TypeDef) string {
	var b strings.Builder
	b.WriteString("```graphql\n")
	b.WriteString(typeDefKindKeyword(td.Kind))
	b.WriteString(" ")
	b.WriteString(td.Name)
	b.WriteString("\n```")
	if td.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(td.Description)
	}
	return b.String()
}

func typeDefKindKeyword(k hir.TypeDefKind) string {
	switch k {
	case hir.TypeDefObject:
		return "type"
	case hir.TypeDefInterface:
		return "interface"
	case hir.TypeDefUnion:
		return "union"
	case hir.TypeDefEnum:
		return "enum"
	case hir.TypeDefInputObject:
		return "input"
	default:
		return "scalar"
	}
}
