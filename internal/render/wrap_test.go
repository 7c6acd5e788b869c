package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

// The builtin face is 7 px per glyph, so widths are exact and the tests
// stay deterministic without font files.
var testFace = basicfont.Face7x13

func TestWrap_ShortTextSingleLine(t *testing.T) {
	lines := Wrap(testFace, "hello world", 200)
	assert.Equal(t, []string{"hello world"}, lines)
}

func TestWrap_GreedyAccumulation(t *testing.T) {
	// 10 chars fit per line at 70 px.
	lines := Wrap(testFace, "aaa bbb ccc ddd", 70)
	assert.Equal(t, []string{"aaa bbb", "ccc ddd"}, lines)
}

func TestWrap_RespectsExplicitNewlines(t *testing.T) {
	lines := Wrap(testFace, "first\nsecond line", 200)
	assert.Equal(t, []string{"first", "second line"}, lines)
}

func TestWrap_OversizedWordEmittedAlone(t *testing.T) {
	long := strings.Repeat("x", 30) // 210 px, wider than any line
	lines := Wrap(testFace, "ab "+long+" cd", 70)
	assert.Equal(t, []string{"ab", long, "cd"}, lines)
}

func TestWrap_EmptyInput(t *testing.T) {
	assert.Nil(t, Wrap(testFace, "", 100))
	assert.Equal(t, []string{""}, WrapOrEmpty(testFace, "", 100))
}

func TestWrap_Idempotent(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog again and again"
	wrapped := Wrap(testFace, text, 120)
	require.NotEmpty(t, wrapped)

	// Feeding each produced line back in reproduces it unchanged.
	for _, line := range wrapped {
		assert.Equal(t, []string{line}, Wrap(testFace, line, 120))
	}
}

func TestTextWidth_BasicFace(t *testing.T) {
	assert.Equal(t, 35.0, textWidth(testFace, "abcde"))
}

func TestAlignX(t *testing.T) {
	assert.Equal(t, 0.0, alignX(100, 40, AlignLeft))
	assert.Equal(t, 30.0, alignX(100, 40, AlignCenter))
	assert.Equal(t, 60.0, alignX(100, 40, AlignRight))

	// Wider than the box: clamped to the origin.
	assert.Equal(t, 0.0, alignX(100, 120, AlignCenter))
	assert.Equal(t, 0.0, alignX(100, 120, AlignRight))
}

func TestAlignX_CenterFloors(t *testing.T) {
	assert.Equal(t, 2.0, alignX(10, 5, AlignCenter))
}
