package ide

import (
	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// SelectionRanges implements spec.md §4.9's selection_ranges(file,
// positions) feature: for each position, the linked list of enclosing
// ranges from innermost to outermost, for progressive expand/shrink.
// Grounded on original_source/crates/ide/src/selection_range.rs's
// find_ancestor_ranges/SelectionRange::from_ranges: ranges are
// collected outermost-first (the whole document, then each narrowing
// level), then folded into a chain whose head is the innermost range
// and whose Parent links walk back out to the document.
func SelectionRanges(proj *project.Project, fileID registry.FileId, positions []posmap.Position) []*SelectionRange {
	out := make([]*SelectionRange, 0, len(positions))
	for _, pos := range positions {
		out = append(out, selectionRangeAt(proj, fileID, pos))
	}
	return out
}

func selectionRangeAt(proj *project.Project, fileID registry.FileId, pos posmap.Position) *SelectionRange {
	block, within, ok := findBlockForPosition(proj, fileID, pos)
	if !ok {
		return nil
	}
	offset := offsetInBlock(block, within)
	if offset < 0 {
		return nil
	}

	source := blockSource(block)
	ranges := []Range{{
		Start: posmap.Position{Line: 0, Character: 0},
		End:   posmap.NewLineIndex(source).Position(len(source)),
	}}

	var frames []frame
	if block.QueryDoc != nil {
		frames = walkQueryDocFrames(nil, block.QueryDoc, offset)
	} else if block.SchemaDoc != nil {
		frames = walkSchemaDocFrames(block.SchemaDoc, offset)
	}
	for _, f := range frames {
		if f.pos == nil {
			continue
		}
		ranges = append(ranges, rangeOfAST(f.pos))
	}

	return foldSelectionRanges(block, ranges)
}

// foldSelectionRanges projects each block-relative range to
// file-relative coordinates and folds ranges (outermost-first) into
// the innermost-rooted parent chain.
func foldSelectionRanges(block gqlparse.Block, ranges []Range) *SelectionRange {
	if len(ranges) == 0 {
		return nil
	}
	project := func(r Range) Range {
		return Range{Start: toFilePosition(block, r.Start), End: toFilePosition(block, r.End)}
	}
	result := &SelectionRange{Range: project(ranges[0])}
	for _, r := range ranges[1:] {
		result = &SelectionRange{Range: project(r), Parent: result}
	}
	return result
}
