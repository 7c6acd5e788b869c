package render

import (
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/pkg/payload"
)

// renderer carries the state of one render call.
type renderer struct {
	canvas    *canvas
	layout    config.Layout
	titleFace font.Face
	bodyFace  font.Face
	spacing   float64
	log       *zap.Logger
}

// render runs the composition pipeline top to bottom. Every stage advances
// the cursor by what it drew plus fixed spacing; the cursor never moves up.
func (r *renderer) render(rec *payload.Receipt) image.Image {
	r.drawImage(r.layout.HeaderImage, r.layout.HeaderImageScale)

	r.drawCenteredText(r.layout.HeaderTitle, r.titleFace)
	r.canvas.y += 10 + r.spacing

	r.drawCenteredText(r.layout.HeaderDescription, r.bodyFace)
	r.canvas.y += 16 + r.spacing

	if len(rec.HeaderInfo) > 0 {
		r.canvas.y += 5
		for _, e := range rec.HeaderInfo {
			r.drawKeyValue(e.Key, e.Value)
		}
		r.canvas.y += 25
	}

	r.drawCenteredText(r.layout.ReceiptTitle, r.titleFace)
	r.canvas.y += 5 + r.spacing

	r.drawDashedRule()
	r.canvas.y += r.spacing + 4

	r.drawColumns("Item", "Qty", "Amount", r.bodyFace)
	r.canvas.y += r.spacing

	for _, it := range rec.Items {
		r.drawColumns(it.Name, it.Quantity.String(), formatMoney(it.LineTotal()), r.bodyFace)
		r.canvas.y += 4
	}

	r.canvas.y += 10 + r.spacing
	r.drawDashedRule()
	r.canvas.y += 4 + r.spacing

	r.drawKeyValue("TOTAL", formatMoney(rec.Total))

	if len(rec.FooterInfo) > 0 {
		r.canvas.y += r.spacing
		r.drawDashedRule()
		r.canvas.y += r.spacing
		for _, e := range rec.FooterInfo {
			r.drawKeyValue(e.Key, e.Value)
		}
		r.canvas.y += 6
	}

	r.drawQR(r.layout.FooterQR)

	r.canvas.y += 10 + r.spacing
	r.drawCenteredText(r.layout.FooterLabel, r.titleFace)
	r.canvas.y += 6 + r.spacing

	r.drawImage(r.layout.FooterImage, r.layout.FooterImageScale)

	r.canvas.y += bottomPadding
	return r.canvas.crop()
}

// drawCenteredText wraps text to the canvas width and draws each line
// horizontally centered. Empty text draws nothing.
func (r *renderer) drawCenteredText(text string, face font.Face) {
	if text == "" {
		return
	}

	width := float64(r.canvas.width)
	for _, line := range Wrap(face, text, width) {
		x := alignX(width, textWidth(face, line), AlignCenter)

		_, h, _ := inkBounds(face, line)
		r.canvas.ensureHeight(int(h) + 20)
		r.canvas.drawString(face, line, x, r.canvas.y)
		r.canvas.y += h + 4
	}
}

// drawKeyValue draws key left-aligned and value right-aligned on the same
// baseline. Rows with an empty key or value are skipped.
func (r *renderer) drawKeyValue(key, value string) {
	if key == "" || value == "" {
		return
	}

	width := float64(r.canvas.width)
	vw, vh, _ := inkBounds(r.bodyFace, value)

	r.canvas.ensureHeight(int(vh) + 20)
	r.canvas.drawString(r.bodyFace, key, 0, r.canvas.y)
	r.canvas.drawString(r.bodyFace, value, alignX(width, vw, AlignRight), r.canvas.y)
	r.canvas.y += vh + 10
}

// drawColumns draws one 5:1:2 row: item name, quantity, amount. Each column
// wraps within its own box; the row is as tall as its tallest column.
func (r *renderer) drawColumns(col1, col2, col3 string, face font.Face) {
	available := r.canvas.width
	col1W := available * 5 / 8
	col2W := available / 8
	// Column 3 takes the remainder so the boxes always tile the full width.
	col3W := available - col1W - col2W

	col1Lines := WrapOrEmpty(face, col1, float64(col1W))
	col2Lines := WrapOrEmpty(face, col2, float64(col2W))
	col3Lines := WrapOrEmpty(face, col3, float64(col3W))

	rows := len(col1Lines)
	if len(col2Lines) > rows {
		rows = len(col2Lines)
	}
	if len(col3Lines) > rows {
		rows = len(col3Lines)
	}

	rowHeight := lineHeight(face)
	r.canvas.ensureHeight(int(rowHeight)*rows + 20)

	for i := 0; i < rows; i++ {
		y := r.canvas.y + float64(i)*rowHeight

		if i < len(col1Lines) {
			r.canvas.drawString(face, col1Lines[i], 0, y)
		}
		if i < len(col2Lines) {
			w, _, _ := inkBounds(face, col2Lines[i])
			x := float64(col1W) + alignX(float64(col2W), w, AlignCenter)
			r.canvas.drawString(face, col2Lines[i], x, y)
		}
		if i < len(col3Lines) {
			w, _, _ := inkBounds(face, col3Lines[i])
			x := alignX(float64(r.canvas.width), w, AlignRight)
			r.canvas.drawString(face, col3Lines[i], x, y)
		}
	}

	r.canvas.y += float64(rows) * rowHeight
}
