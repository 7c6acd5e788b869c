package render

import "math"

// Dash pattern for separators: 6 px on, 4 px off, 2 px thick.
const (
	dashOn    = 6.0
	dashOff   = 4.0
	dashWidth = 2.0
)

// drawDashedRule draws a horizontal separator across the full canvas width
// at the current cursor.
func (r *renderer) drawDashedRule() {
	r.canvas.ensureHeight(int(dashWidth) + 4)
	r.canvas.dashedLine(0, r.canvas.y, float64(r.canvas.width), r.canvas.y)
}

// dashedLine walks from (x1,y1) to (x2,y2) alternating on/off runs of the
// dash pattern, emitting a thick stroke for every on-run.
func (c *canvas) dashedLine(x1, y1, x2, y2 float64) {
	xLen := x2 - x1
	yLen := y2 - y1
	length := math.Sqrt(xLen*xLen + yLen*yLen)
	if length == 0 {
		return
	}

	pattern := [2]float64{dashOn, dashOff}
	enabled := true
	position := 0.0

	for position <= length {
		for _, step := range pattern {
			if position > length {
				break
			}
			if enabled {
				start := position / length
				end := math.Min((position+step-1)/length, 1)
				c.thickSegment(
					math.Round(x1+start*xLen), math.Round(y1+start*yLen),
					math.Round(x1+end*xLen), math.Round(y1+end*yLen),
					x1, y1, x2, y2,
				)
			}
			enabled = !enabled
			position += step
		}
	}
}

// thickSegment strokes one dash. A degenerate zero-length segment still has
// to show up with the stroke thickness, so it is replaced by a short stroke
// perpendicular to the overall line direction.
func (c *canvas) thickSegment(sx1, sy1, sx2, sy2, dx1, dy1, dx2, dy2 float64) {
	if sx1 != sx2 || sy1 != sy2 {
		c.ctx.SetLineWidth(dashWidth)
		c.ctx.DrawLine(sx1, sy1, sx2, sy2)
		c.ctx.Stroke()
		return
	}

	x, y := sx1, sy1
	if dy2-dy1 < 0 {
		x--
	}
	if dx2-dx1 < 0 {
		y--
	}

	var px1, py1, px2, py2 float64
	if dy2-dy1 != 0 {
		var k, b float64
		if dx2-dx1 != 0 {
			k = -(dx2 - dx1) / (dy2 - dy1)
			a := 1 / math.Sqrt(1+k*k)
			b = (dashWidth*a - 1) / 2
		} else {
			k = 0
			b = (dashWidth - 1) / 2
		}
		px1 = x - math.Floor(b)
		py1 = y - math.Trunc(k*b)
		px2 = x + math.Ceil(b)
		py2 = y + math.Trunc(k*b)
	} else {
		px1 = x
		py1 = y - math.Floor((dashWidth-1)/2)
		px2 = x
		py2 = y + math.Ceil((dashWidth-1)/2)
	}

	c.ctx.SetLineWidth(1)
	c.ctx.DrawLine(px1, py1, px2, py2)
	c.ctx.Stroke()
}
