package posmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFile_FirstLineAddsCharacterOffsetTooLaterLinesDont(t *testing.T) {
	origin := BlockOrigin{Line: 10, Character: 4}

	first := ToFile(origin, Position{Line: 0, Character: 3})
	assert.Equal(t, Position{Line: 10, Character: 7}, first)

	later := ToFile(origin, Position{Line: 2, Character: 3})
	assert.Equal(t, Position{Line: 12, Character: 3}, later)
}

func TestToOriginal_IdentityWhenNoLineOffset(t *testing.T) {
	pos := Position{Line: 5, Character: 2}
	assert.Equal(t, pos, ToOriginal(0, pos))
}

func TestFromBlockToOriginal_ComposesBothSteps(t *testing.T) {
	origin := BlockOrigin{Line: 3, Character: 2}
	got := FromBlockToOriginal(origin, 100, Position{Line: 0, Character: 1})
	assert.Equal(t, Position{Line: 103, Character: 3}, got)
}

func TestLineIndex_PositionAndOffsetRoundTrip(t *testing.T) {
	src := "line0\nline1\nline2"
	li := NewLineIndex(src)

	pos := li.Position(7) // 'i' in "line1"
	assert.Equal(t, Position{Line: 1, Character: 1}, pos)

	off := li.Offset(pos)
	assert.Equal(t, 7, off)
}
