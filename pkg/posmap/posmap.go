// Package posmap implements the Diagnostics Map (C10): the two-step
// position projection used everywhere a position leaves the query
// engine's block-relative coordinate space — block-relative to
// file-relative, then file-relative to original-file. Both steps are
// additive line/character shifts, applied to `character` only when the
// position falls on the shifted range's first line, so they compose
// commutatively per spec.md §4.10.
package posmap

// Position is a 0-based (line, character) pair, the coordinate space
// editors and the LSP both use.
type Position struct {
	Line      int
	Character int
}

// BlockOrigin is the (line, character) of a block's content start
// within its host file — (0,0) for a pure GraphQL file's single block.
type BlockOrigin struct {
	Line      int
	Character int
}

// ToFile projects a block-relative position to file-relative
// coordinates: block.Line is always added to Line; block.Character is
// added to Character only when pos is on the block's first line
// (Line == 0), since later lines already start at column 0 in the host
// file's own line.
func ToFile(origin BlockOrigin, pos Position) Position {
	out := Position{Line: origin.Line + pos.Line}
	if pos.Line == 0 {
		out.Character = origin.Character + pos.Character
	} else {
		out.Character = pos.Character
	}
	return out
}

// ToOriginal projects a file-relative position to the original file's
// coordinates, when the file itself was produced by an outer
// extraction layer (metadata.LineOffset != 0). When lineOffset is 0
// this is the identity.
func ToOriginal(lineOffset int, pos Position) Position {
	return Position{Line: pos.Line + lineOffset, Character: pos.Character}
}

// FromBlockToOriginal composes ToFile then ToOriginal in one call,
// since every diagnostic that crosses the engine boundary needs both
// steps applied together.
func FromBlockToOriginal(origin BlockOrigin, lineOffset int, pos Position) Position {
	return ToOriginal(lineOffset, ToFile(origin, pos))
}

// LineIndex supports byte-offset <-> (line, character) conversion
// within one block's source text, used by IDE services to translate a
// cursor's byte offset into the CST/AST walk and back.
type LineIndex struct {
	// lineStarts[i] is the byte offset of line i's first character.
	lineStarts []int
}

// NewLineIndex builds a LineIndex over source.
func NewLineIndex(source string) *LineIndex {
	starts := []int{0}
	for i, b := range []byte(source) {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{lineStarts: starts}
}

// Position converts a byte offset into a 0-based (line, character).
func (li *LineIndex) Position(offset int) Position {
	// binary search for the last line start <= offset
	lo, hi := 0, len(li.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Position{Line: lo, Character: offset - li.lineStarts[lo]}
}

// Offset converts a 0-based (line, character) back into a byte offset.
func (li *LineIndex) Offset(pos Position) int {
	if pos.Line < 0 || pos.Line >= len(li.lineStarts) {
		return -1
	}
	return li.lineStarts[pos.Line] + pos.Character
}
