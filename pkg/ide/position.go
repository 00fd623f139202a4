package ide

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// blockSource returns block's own source text, or "" for a block with
// no parsed ast.Source (shouldn't normally happen).
func blockSource(block gqlparse.Block) string {
	if block.Source == nil {
		return ""
	}
	return block.Source.Input
}

// blockLineExtent is the number of lines block's own source spans,
// mirroring pkg/validate.belongsToBlock's block-line-count convention.
func blockLineExtent(block gqlparse.Block) int {
	src := blockSource(block)
	n := 1
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			n++
		}
	}
	return n
}

// findBlockForPosition implements spec.md §4.9's position-mapping step
// 1: locate the Block containing pos by comparing against each block's
// (line, character, line_extent), and return pos translated into that
// block's own coordinate space. Blocks are non-overlapping within a
// file, so the first match wins.
func findBlockForPosition(proj *project.Project, fileID registry.FileId, pos posmap.Position) (gqlparse.Block, posmap.Position, bool) {
	parse := proj.Parse(fileID)
	for _, block := range parse.Blocks {
		lastLine := block.Line + blockLineExtent(block) - 1
		if pos.Line < block.Line || pos.Line > lastLine {
			continue
		}
		within := posmap.Position{Line: pos.Line - block.Line, Character: pos.Character}
		if within.Line == 0 {
			within.Character = pos.Character - block.Character
			if within.Character < 0 {
				continue
			}
		}
		return block, within, true
	}
	return gqlparse.Block{}, posmap.Position{}, false
}

// offsetInBlock converts a block-relative position into a byte offset
// inside block's own source (spec.md §4.9 step 2).
func offsetInBlock(block gqlparse.Block, within posmap.Position) int {
	return posmap.NewLineIndex(blockSource(block)).Offset(within)
}

// toFilePosition implements spec.md §4.9 step 4: project a block-
// relative position back to file-relative coordinates.
func toFilePosition(block gqlparse.Block, within posmap.Position) posmap.Position {
	return posmap.ToFile(posmap.BlockOrigin{Line: block.Line, Character: block.Character}, within)
}

// positionOfAST converts a 1-based *ast.Position into a 0-based
// posmap.Position, the same convention pkg/lint already uses.
func positionOfAST(p *ast.Position) posmap.Position {
	if p == nil {
		return posmap.Position{}
	}
	return posmap.Position{Line: p.Line - 1, Character: p.Column - 1}
}

// rangeOfAST turns p's byte span into a block-relative Range by
// building a LineIndex over p's own source (p.Src is the exact
// *ast.Source the parser attached, shared by every node parsed from
// the same block).
func rangeOfAST(p *ast.Position) Range {
	if p == nil || p.Src == nil {
		return Range{}
	}
	li := posmap.NewLineIndex(p.Src.Input)
	return Range{Start: li.Position(p.Start), End: li.Position(p.End)}
}

// blockForSource finds the Block within fileID whose parsed
// *ast.Source is exactly src — the same pointer the parser attached to
// every position it produced, so pointer equality is precise even
// across a TS/JS file's multiple embedded blocks.
func blockForSource(proj *project.Project, fileID registry.FileId, src *ast.Source) (gqlparse.Block, bool) {
	for _, block := range proj.Parse(fileID).Blocks {
		if block.Source == src {
			return block, true
		}
	}
	return gqlparse.Block{}, false
}

// fileIDForSource resolves src back to the registry.FileId that owns
// it, searching both schema and document files. gqlparser's ast.Source
// carries no FileId, only a Name (the file's URI) and the text, so this
// walks the project's own file lists the same way
// pkg/lint.schemaFileIDForPosition does, extended to document files.
func fileIDForSource(proj *project.Project, src *ast.Source) (registry.FileId, bool) {
	if src == nil {
		return 0, false
	}
	for _, id := range proj.SchemaFileIDs() {
		if _, ok := blockForSource(proj, id, src); ok {
			return id, true
		}
	}
	for _, id := range proj.DocumentFileIDs() {
		if _, ok := blockForSource(proj, id, src); ok {
			return id, true
		}
	}
	return 0, false
}

// locate projects an AST position anywhere in the project (possibly in
// a different file than the one the caller started from) into a
// file-relative Location, resolving which file and block it belongs to
// along the way. Returns false when p carries no recoverable source.
func locate(proj *project.Project, p *ast.Position) (Location, bool) {
	if p == nil || p.Src == nil {
		return Location{}, false
	}
	fileID, ok := fileIDForSource(proj, p.Src)
	if !ok {
		return Location{}, false
	}
	block, ok := blockForSource(proj, fileID, p.Src)
	if !ok {
		return Location{}, false
	}
	r := rangeOfAST(p)
	return Location{
		FileID: fileID,
		Range: Range{
			Start: toFilePosition(block, r.Start),
			End:   toFilePosition(block, r.End),
		},
	}, true
}
