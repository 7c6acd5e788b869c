package render

import (
	"strings"

	"golang.org/x/image/font"
)

// textWidth returns the advance width of s in pixels.
func textWidth(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// inkBounds returns the tight glyph bounding box of s: its width, height,
// and the ascent above the baseline, all in pixels.
func inkBounds(face font.Face, s string) (w, h, ascent float64) {
	bounds, _ := font.BoundString(face, s)
	w = float64(bounds.Max.X-bounds.Min.X) / 64
	h = float64(bounds.Max.Y-bounds.Min.Y) / 64
	ascent = float64(-bounds.Min.Y) / 64
	return w, h, ascent
}

// lineHeight is the row advance used for multi-line blocks: the ink height
// of a capital plus fixed leading.
func lineHeight(face font.Face) float64 {
	_, h, _ := inkBounds(face, "A")
	if h == 0 {
		h = 15
	}
	return h + 4
}

// Wrap breaks text into lines no wider than maxWidth pixels. Explicit
// newlines start new paragraphs. Words are accumulated greedily; a single
// word wider than maxWidth is emitted on its own line, never hyphenated.
// Empty input yields no lines.
func Wrap(face font.Face, text string, maxWidth float64) []string {
	if text == "" {
		return nil
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if textWidth(face, paragraph) <= maxWidth {
			lines = append(lines, paragraph)
			continue
		}

		var current []string
		for _, word := range strings.Split(paragraph, " ") {
			candidate := strings.Join(append(append([]string(nil), current...), word), " ")
			switch {
			case textWidth(face, candidate) <= maxWidth:
				current = append(current, word)
			case len(current) > 0:
				lines = append(lines, strings.Join(current, " "))
				current = []string{word}
			default:
				// Oversized word, no hyphenation.
				lines = append(lines, word)
				current = nil
			}
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
		}
	}

	return lines
}

// WrapOrEmpty is Wrap, except empty input produces a single empty line
// where callers need one line of output semantically.
func WrapOrEmpty(face font.Face, text string, maxWidth float64) []string {
	lines := Wrap(face, text, maxWidth)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// Align selects horizontal placement of a line on the canvas.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// alignX returns the x origin for a line of lineWidth pixels inside a box
// of boxWidth pixels, clamped to stay on the canvas.
func alignX(boxWidth, lineWidth float64, align Align) float64 {
	var x float64
	switch align {
	case AlignCenter:
		x = float64(int(boxWidth-lineWidth) / 2)
	case AlignRight:
		x = boxWidth - lineWidth
	default:
		x = 0
	}
	if x < 0 {
		x = 0
	}
	return x
}
