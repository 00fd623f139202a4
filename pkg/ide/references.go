package ide

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// References implements spec.md §4.9's references(pos) feature: walk
// every document and schema AST in the project collecting usages of the
// symbol under the cursor — all selections whose inferred parent type
// matches or implements the target type, for a field; every spread
// site, for a fragment; for a type name, the schema types that
// implement it or list it as a union member, the schema fields of that
// type, and the fragments conditioned on it (argument, variable and
// inline-fragment type references are not searched).
func References(proj *project.Project, fileID registry.FileId, pos posmap.Position) []Location {
	block, within, ok := findBlockForPosition(proj, fileID, pos)
	if !ok {
		return nil
	}
	offset := offsetInBlock(block, within)
	if offset < 0 {
		return nil
	}
	schema, _ := proj.Schema()

	var frames []frame
	if block.QueryDoc != nil {
		frames = walkQueryDocFrames(schema, block.QueryDoc, offset)
	} else if block.SchemaDoc != nil {
		frames = walkSchemaDocFrames(block.SchemaDoc, offset)
	}
	if len(frames) == 0 {
		return nil
	}
	last := frames[len(frames)-1]

	switch last.kind {
	case frameFragmentSpread, frameFragmentDef:
		return fragmentSpreadReferences(proj, last.name)
	case frameField, frameFieldDef:
		return fieldReferences(proj, schema, last.ownerType, last.name)
	case frameTypeDef, frameInlineFragment:
		return typeReferences(proj, schema, last.name)
	}
	return nil
}

func fragmentSpreadReferences(proj *project.Project, name string) []Location {
	var out []Location
	forEachDocument(proj, func(doc *ast.QueryDocument) {
		for _, op := range doc.Operations {
			out = append(out, spreadsOf(proj, op.SelectionSet, name)...)
		}
		for _, f := range doc.Fragments {
			out = append(out, spreadsOf(proj, f.SelectionSet, name)...)
		}
	})
	return out
}

func spreadsOf(proj *project.Project, set ast.SelectionSet, name string) []Location {
	var out []Location
	for _, sel := range set {
		switch v := sel.(type) {
		case *ast.FragmentSpread:
			if v.Name == name {
				if loc, ok := locate(proj, v.Position); ok {
					out = append(out, loc)
				}
			}
		case *ast.Field:
			out = append(out, spreadsOf(proj, v.SelectionSet, name)...)
		case *ast.InlineFragment:
			out = append(out, spreadsOf(proj, v.SelectionSet, name)...)
		}
	}
	return out
}

// fieldReferences collects every selection of fieldName whose resolved
// parent type matches targetType or implements it (for an interface
// target), walking every operation and fragment body in the project.
func fieldReferences(proj *project.Project, schema *ast.Schema, targetType, fieldName string) []Location {
	if schema == nil || targetType == "" {
		return nil
	}
	var out []Location
	forEachDocument(proj, func(doc *ast.QueryDocument) {
		for _, op := range doc.Operations {
			out = append(out, fieldRefsIn(proj, schema, rootTypeName(schema, op.Operation), op.SelectionSet, targetType, fieldName)...)
		}
		for _, f := range doc.Fragments {
			out = append(out, fieldRefsIn(proj, schema, f.TypeCondition, f.SelectionSet, targetType, fieldName)...)
		}
	})
	return out
}

func fieldRefsIn(proj *project.Project, schema *ast.Schema, parentType string, set ast.SelectionSet, targetType, fieldName string) []Location {
	var out []Location
	for _, sel := range set {
		switch v := sel.(type) {
		case *ast.Field:
			if v.Name == fieldName && typeMatchesOrImplements(schema, parentType, targetType) {
				if loc, ok := locate(proj, v.Position); ok {
					out = append(out, loc)
				}
			}
			child := fieldChildTypeName(schema, parentType, v.Name)
			out = append(out, fieldRefsIn(proj, schema, child, v.SelectionSet, targetType, fieldName)...)
		case *ast.InlineFragment:
			target := parentType
			if v.TypeCondition != "" {
				target = v.TypeCondition
			}
			out = append(out, fieldRefsIn(proj, schema, target, v.SelectionSet, targetType, fieldName)...)
		}
	}
	return out
}

// typeMatchesOrImplements reports whether typeName is targetType itself
// or an object type implementing the targetType interface.
func typeMatchesOrImplements(schema *ast.Schema, typeName, targetType string) bool {
	if typeName == targetType {
		return true
	}
	def := schema.Types[typeName]
	if def == nil {
		return false
	}
	return implementsInterface(def, targetType)
}

func typeReferences(proj *project.Project, schema *ast.Schema, typeName string) []Location {
	if schema == nil {
		return nil
	}
	var out []Location
	for _, def := range schema.Types {
		for _, i := range def.Interfaces {
			if i == typeName {
				if loc, ok := locate(proj, def.Position); ok {
					out = append(out, loc)
				}
			}
		}
		for _, m := range def.Types {
			if m == typeName {
				if loc, ok := locate(proj, def.Position); ok {
					out = append(out, loc)
				}
			}
		}
		for _, f := range def.Fields {
			if f.Type != nil && f.Type.Name() == typeName {
				if loc, ok := locate(proj, f.Position); ok {
					out = append(out, loc)
				}
			}
		}
	}
	forEachDocument(proj, func(doc *ast.QueryDocument) {
		for _, f := range doc.Fragments {
			if f.TypeCondition == typeName {
				if loc, ok := locate(proj, f.Position); ok {
					out = append(out, loc)
				}
			}
		}
	})
	return out
}

// forEachDocument runs fn over every document file's parsed QueryDoc
// blocks in the project.
func forEachDocument(proj *project.Project, fn func(*ast.QueryDocument)) {
	for _, id := range proj.DocumentFileIDs() {
		parse := proj.Parse(id)
		for _, block := range parse.Blocks {
			if block.QueryDoc != nil {
				fn(block.QueryDoc)
			}
		}
	}
}
