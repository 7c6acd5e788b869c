package render

import (
	"image"

	"golang.org/x/image/font"
)

// RenderTextBlock renders a plain block of text as a bitmap, one input line
// per output line, left-aligned. It backs the ad-hoc text slips that used
// to go through the raw text path.
func RenderTextBlock(text string, width int, face font.Face, fontSize int) image.Image {
	if text == "" {
		return newCanvas(width, 10).crop()
	}

	lines := splitLines(text)
	lineH := float64(fontSize + 6)

	c := newCanvas(width, len(lines)*(fontSize+6)+20)
	c.y = 10

	for _, line := range lines {
		c.drawString(face, line, 0, c.y)
		c.y += lineH
	}

	c.y += 10
	return c.crop()
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
