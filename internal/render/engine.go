package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/pkg/payload"
)

// Sizes configured in points are scaled down for the 58 mm head.
const (
	fontScaleFactor = 0.8
	bottomPadding   = 10
	minCanvasHeight = 40
	initialHeight   = 2000
)

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders an amount with thousands grouping, e.g. "1,225.00".
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Float64()
	return moneyPrinter.Sprintf("%.2f", f)
}

// Engine renders normalized receipts. It owns the font cache and is safe
// for concurrent use; every Render call draws on its own canvas.
type Engine struct {
	fonts *FontCache
	log   *zap.Logger
}

// NewEngine creates a render engine.
func NewEngine(fonts *FontCache, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{fonts: fonts, log: log}
}

// Render composes the receipt bitmap for one transaction. The record and
// layout are read-only for the duration of the call. A missing body font is
// fatal; missing header/footer images are logged and skipped.
func (e *Engine) Render(rec *payload.Receipt, layout config.Layout, width int) (image.Image, error) {
	titleSize := float64(scaledFontSize(layout.FontSize, 10))
	bodySize := float64(scaledFontSize(layout.FontSizeSmall, 8))

	titleFace, err := e.fonts.Face(layout.FontPath, titleSize)
	if err != nil {
		return nil, err
	}
	bodyFace, err := e.fonts.Face(layout.FontPath, bodySize)
	if err != nil {
		return nil, err
	}

	c := newCanvas(width, initialHeight)
	r := &renderer{
		canvas:    c,
		layout:    layout,
		titleFace: titleFace,
		bodyFace:  bodyFace,
		spacing:   float64(layout.LineSpacing * 2),
		log:       e.log,
	}

	return r.render(rec), nil
}

func scaledFontSize(configured, floor int) int {
	size := int(float64(configured) * fontScaleFactor)
	if size < floor {
		size = floor
	}
	return size
}

// canvas is a white fixed-width drawing surface with a downward-moving
// write cursor. It grows as needed and is cropped to content at the end.
type canvas struct {
	width  int
	height int
	ctx    *gg.Context
	y      float64
}

func newCanvas(width, height int) *canvas {
	ctx := gg.NewContext(width, height)
	ctx.SetColor(color.White)
	ctx.Clear()
	ctx.SetColor(color.Black)
	return &canvas{width: width, height: height, ctx: ctx}
}

// ensureHeight grows the canvas so needed more pixels fit below the cursor.
func (c *canvas) ensureHeight(needed int) {
	if int(c.y)+needed <= c.height {
		return
	}

	newHeight := c.height * 2
	if newHeight < int(c.y)+needed {
		newHeight = int(c.y) + needed + initialHeight
	}

	ctx := gg.NewContext(c.width, newHeight)
	ctx.SetColor(color.White)
	ctx.Clear()
	ctx.DrawImage(c.ctx.Image(), 0, 0)
	ctx.SetColor(color.Black)

	c.ctx = ctx
	c.height = newHeight
}

// drawString draws s with the top of its ink at (x, yTop).
func (c *canvas) drawString(face font.Face, s string, x, yTop float64) {
	_, _, ascent := inkBounds(face, s)
	c.ctx.SetFontFace(face)
	c.ctx.DrawString(s, x, yTop+ascent)
}

// crop returns the content portion of the canvas: full width, height
// clamped to at least the minimum slip height.
func (c *canvas) crop() image.Image {
	finalHeight := int(c.y)
	if finalHeight < minCanvasHeight {
		finalHeight = minCanvasHeight
	}
	if finalHeight > c.height {
		finalHeight = c.height
	}

	img := c.ctx.Image()
	return img.(interface {
		SubImage(r image.Rectangle) image.Image
	}).SubImage(image.Rect(0, 0, c.width, finalHeight))
}
