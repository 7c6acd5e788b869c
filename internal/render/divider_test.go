package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func inkAt(t *testing.T, img image.Image, x, y int) bool {
	t.Helper()
	r, g, b, _ := img.At(x, y).RGBA()
	return (r+g+b)/3 < 0xC000
}

func TestDashedLine_AlternatesOnAndOffRuns(t *testing.T) {
	c := newCanvas(100, 20)
	c.dashedLine(0, 5, 100, 5)

	img := c.ctx.Image()

	// First on-run spans x 0..5, then a gap, then the next run at x 10.
	assert.True(t, inkAt(t, img, 2, 5))
	assert.False(t, inkAt(t, img, 8, 5))
	assert.True(t, inkAt(t, img, 12, 5))

	// Nothing above or below the stroke band.
	assert.False(t, inkAt(t, img, 2, 1))
	assert.False(t, inkAt(t, img, 2, 10))
}

// A rounded dash can collapse to a single point. The stroke still has to
// show up with the rule thickness, drawn perpendicular to the line.
func TestDashedLine_DegenerateDashStillInks(t *testing.T) {
	// Shorter than one dash: the single on-run rounds to a point.
	c := newCanvas(20, 20)
	c.dashedLine(10, 10, 10.4, 10.3)

	img := c.ctx.Image()
	assert.True(t, inkAt(t, img, 10, 10) || inkAt(t, img, 10, 9))
}

func TestThickSegment_PerpendicularForVerticalLine(t *testing.T) {
	c := newCanvas(20, 20)
	// Zero-length dash on a vertical line from (5,0) to (5,20).
	c.thickSegment(10, 10, 10, 10, 5, 0, 5, 20)

	img := c.ctx.Image()

	// The replacement stroke runs horizontally through the point.
	assert.True(t, inkAt(t, img, 10, 9) || inkAt(t, img, 10, 10))

	// It does not extend along the line direction.
	assert.False(t, inkAt(t, img, 10, 7))
	assert.False(t, inkAt(t, img, 10, 13))
	assert.False(t, inkAt(t, img, 14, 10))
}

func TestThickSegment_PerpendicularForHorizontalLine(t *testing.T) {
	c := newCanvas(20, 20)
	// Zero-length dash on a horizontal line from (0,10) to (20,10).
	c.thickSegment(10, 10, 10, 10, 0, 10, 20, 10)

	img := c.ctx.Image()

	// The replacement stroke runs vertically through the point.
	assert.True(t, inkAt(t, img, 9, 10) || inkAt(t, img, 10, 10))

	// It does not extend along the line direction.
	assert.False(t, inkAt(t, img, 6, 10))
	assert.False(t, inkAt(t, img, 14, 10))
	assert.False(t, inkAt(t, img, 10, 15))
}
