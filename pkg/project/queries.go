package project

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/engine"
	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/hir"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// SchemaTypes is the project-merged type map: every schema file's base
// definitions, with matching extension definitions folded in.
type SchemaTypes struct {
	ByName map[string]hir.TypeDef
}

// AllFragments is every document file's fragments, first file wins on
// a name collision.
type AllFragments struct {
	ByName map[string]hir.FragmentStructure
}

// AllOperations is every document file's operations, concatenated in
// DocumentFileIds order.
type AllOperations struct {
	All []hir.OperationStructure
}

// SpreadsIndex maps each known fragment name to the set of fragment
// names it directly spreads (one level, no recursion).
type SpreadsIndex struct {
	DirectSpreads map[string]map[string]struct{}
}

func computeSchemaTypes(db *engine.Database, pf registry.ProjectFiles, structureQ *engine.Query[registry.FileId, hir.FileStructureData]) SchemaTypes {
	ids := pf.SchemaFileIDs.Get().IDs

	byName := make(map[string]hir.TypeDef)
	var extensions []hir.TypeDef

	for _, id := range ids {
		data := structureQ.Get(db, id)
		for _, td := range data.TypeDefs {
			if td.IsExtension {
				extensions = append(extensions, td)
				continue
			}
			if _, exists := byName[td.Name]; exists {
				continue // duplicate base definition: first wins
			}
			byName[td.Name] = td
		}
	}

	for _, ext := range extensions {
		base, ok := byName[ext.Name]
		if !ok {
			continue // extension with no base: nothing to merge into
		}
		base = mergeExtension(base, ext)
		byName[ext.Name] = base
	}

	return SchemaTypes{ByName: byName}
}

// mergeExtension folds ext's added fields/enum-values/union-members/
// implements into base, first-wins on any name collision within the
// same type.
func mergeExtension(base, ext hir.TypeDef) hir.TypeDef {
	fieldNames := make(map[string]struct{}, len(base.Fields))
	for _, f := range base.Fields {
		fieldNames[f.Name] = struct{}{}
	}
	for _, f := range ext.Fields {
		if _, exists := fieldNames[f.Name]; exists {
			continue
		}
		fieldNames[f.Name] = struct{}{}
		base.Fields = append(base.Fields, f)
	}

	enumNames := make(map[string]struct{}, len(base.EnumValues))
	for _, v := range base.EnumValues {
		enumNames[v.Name] = struct{}{}
	}
	for _, v := range ext.EnumValues {
		if _, exists := enumNames[v.Name]; exists {
			continue
		}
		enumNames[v.Name] = struct{}{}
		base.EnumValues = append(base.EnumValues, v)
	}

	unionMembers := make(map[string]struct{}, len(base.UnionMembers))
	for _, m := range base.UnionMembers {
		unionMembers[m] = struct{}{}
	}
	for _, m := range ext.UnionMembers {
		if _, exists := unionMembers[m]; exists {
			continue
		}
		unionMembers[m] = struct{}{}
		base.UnionMembers = append(base.UnionMembers, m)
	}

	implements := make(map[string]struct{}, len(base.Implements))
	for _, i := range base.Implements {
		implements[i] = struct{}{}
	}
	for _, i := range ext.Implements {
		if _, exists := implements[i]; exists {
			continue
		}
		implements[i] = struct{}{}
		base.Implements = append(base.Implements, i)
	}

	return base
}

func computeAllFragments(db *engine.Database, pf registry.ProjectFiles, structureQ *engine.Query[registry.FileId, hir.FileStructureData]) AllFragments {
	byName := make(map[string]hir.FragmentStructure)
	for _, id := range pf.DocumentFileIDs.Get().IDs {
		data := structureQ.Get(db, id)
		for _, frag := range data.Fragments {
			if _, exists := byName[frag.Name]; exists {
				continue // first-seen wins
			}
			byName[frag.Name] = frag
		}
	}
	return AllFragments{ByName: byName}
}

func computeAllOperations(db *engine.Database, pf registry.ProjectFiles, structureQ *engine.Query[registry.FileId, hir.FileStructureData]) AllOperations {
	var all []hir.OperationStructure
	for _, id := range pf.DocumentFileIDs.Get().IDs {
		data := structureQ.Get(db, id)
		all = append(all, data.Operations...)
	}
	return AllOperations{All: all}
}

func computeSpreadsIndex(db *engine.Database, allFragmentsQ *engine.Query[struct{}, AllFragments], parseQ *engine.Query[registry.FileId, gqlparse.Parse]) SpreadsIndex {
	frags := allFragmentsQ.Get(db, struct{}{})
	index := make(map[string]map[string]struct{}, len(frags.ByName))

	// group fragment names by file so each file's Parse is fetched once
	byFile := make(map[registry.FileId][]string)
	for name, fs := range frags.ByName {
		byFile[fs.FileID] = append(byFile[fs.FileID], name)
	}

	for fileID, names := range byFile {
		parse := parseQ.Get(db, fileID)
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
		for _, block := range parse.Blocks {
			if block.QueryDoc == nil {
				continue
			}
			for _, f := range block.QueryDoc.Fragments {
				if !wanted[f.Name] {
					continue
				}
				index[f.Name] = directSpreadNames(f.SelectionSet)
			}
		}
	}
	return SpreadsIndex{DirectSpreads: index}
}

// directSpreadNames walks one selection set (not recursing into
// fragment definitions it spreads, only one level deep as spec.md
// §4.6 specifies) and collects every FragmentSpread's name, including
// ones nested under inline fragments and fields.
func directSpreadNames(set ast.SelectionSet) map[string]struct{} {
	names := make(map[string]struct{})
	var walk func(ast.SelectionSet)
	walk = func(s ast.SelectionSet) {
		for _, sel := range s {
			switch v := sel.(type) {
			case *ast.FragmentSpread:
				names[v.Name] = struct{}{}
			case *ast.InlineFragment:
				walk(v.SelectionSet)
			case *ast.Field:
				walk(v.SelectionSet)
			}
		}
	}
	walk(set)
	return names
}
