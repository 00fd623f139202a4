package ide

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Definition implements spec.md §4.9's definition(pos) feature: resolve
// the symbol under the cursor to its defining name_range, projected
// into the defining file's own coordinates.
func Definition(proj *project.Project, fileID registry.FileId, pos posmap.Position) *Location {
	block, within, ok := findBlockForPosition(proj, fileID, pos)
	if !ok {
		return nil
	}
	offset := offsetInBlock(block, within)
	if offset < 0 {
		return nil
	}
	schema, _ := proj.Schema()

	if block.QueryDoc != nil {
		frames := walkQueryDocFrames(schema, block.QueryDoc, offset)
		if loc := definitionForQueryFrames(proj, schema, frames); loc != nil {
			return loc
		}
	}
	if block.SchemaDoc != nil {
		frames := walkSchemaDocFrames(block.SchemaDoc, offset)
		if loc := definitionForSchemaFrames(proj, schema, frames); loc != nil {
			return loc
		}
	}
	return nil
}

func definitionForQueryFrames(proj *project.Project, schema *ast.Schema, frames []frame) *Location {
	if len(frames) == 0 {
		return nil
	}
	last := frames[len(frames)-1]
	switch last.kind {
	case frameField:
		if schema == nil {
			return nil
		}
		def := schema.Types[last.ownerType]
		if def == nil {
			return nil
		}
		fd := def.Fields.ForName(last.name)
		if fd == nil {
			return nil
		}
		loc, ok := locate(proj, fd.Position)
		if !ok {
			return nil
		}
		return &loc
	case frameFragmentSpread:
		fa := proj.FragmentAST(last.name)
		if fa == nil {
			return nil
		}
		loc, ok := locate(proj, fa.Def.Position)
		if !ok {
			return nil
		}
		return &loc
	case frameInlineFragment:
		if schema == nil {
			return nil
		}
		def := schema.Types[last.name]
		if def == nil {
			return nil
		}
		loc, ok := locate(proj, def.Position)
		if !ok {
			return nil
		}
		return &loc
	}
	return nil
}

func definitionForSchemaFrames(proj *project.Project, schema *ast.Schema, frames []frame) *Location {
	if len(frames) == 0 || schema == nil {
		return nil
	}
	last := frames[len(frames)-1]
	var target string
	switch last.kind {
	case frameFieldDef:
		ownerDef := schema.Types[last.ownerType]
		if ownerDef == nil {
			return nil
		}
		fieldDef := ownerDef.Fields.ForName(last.name)
		if fieldDef == nil || fieldDef.Type == nil {
			return nil
		}
		target = fieldDef.Type.Name()
	default:
		return nil
	}
	def := schema.Types[target]
	if def == nil {
		return nil
	}
	loc, ok := locate(proj, def.Position)
	if !ok {
		return nil
	}
	return &loc
}
