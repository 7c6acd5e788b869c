package printer

import (
	"bytes"
	"fmt"
	"image"
)

// ESC/POS control bytes.
const (
	esc byte = 0x1B
	gs  byte = 0x1D
)

// Encoder builds an ESC/POS command stream.
type Encoder struct {
	buf *bytes.Buffer
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: new(bytes.Buffer)}
}

// Initialize resets the printer state (ESC @).
func (e *Encoder) Initialize() {
	e.buf.Write([]byte{esc, '@'})
}

// Image emits a raster bit image block (GS v 0). The bitmap must already be
// sized for the head; dark pixels print.
func (e *Encoder) Image(img image.Image) error {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("cannot encode empty image")
	}

	bytesPerRow := (width + 7) / 8
	data := rasterize(img, bytesPerRow)

	e.buf.Write([]byte{gs, 'v', '0', 0})
	e.buf.WriteByte(byte(bytesPerRow & 0xFF))
	e.buf.WriteByte(byte(bytesPerRow >> 8))
	e.buf.WriteByte(byte(height & 0xFF))
	e.buf.WriteByte(byte(height >> 8))
	e.buf.Write(data)

	return nil
}

// Align sets horizontal alignment for the text path (ESC a).
func (e *Encoder) Align(align string) {
	var n byte
	switch align {
	case "center":
		n = 1
	case "right":
		n = 2
	}
	e.buf.Write([]byte{esc, 'a', n})
}

// SmallFont toggles the condensed character font (ESC M).
func (e *Encoder) SmallFont(enabled bool) {
	var n byte
	if enabled {
		n = 1
	}
	e.buf.Write([]byte{esc, 'M', n})
}

// Text writes raw text bytes.
func (e *Encoder) Text(s string) {
	e.buf.WriteString(s)
}

// LineFeed advances one line.
func (e *Encoder) LineFeed() {
	e.buf.WriteByte('\n')
}

// Feed advances the given number of lines.
func (e *Encoder) Feed(lines int) {
	for i := 0; i < lines; i++ {
		e.LineFeed()
	}
}

// Cut performs a full paper cut (GS V).
func (e *Encoder) Cut() {
	e.buf.Write([]byte{gs, 'V', 0})
}

// CashDrawer pulses the drawer kick connector (ESC p). Only pins 2 and 5
// exist on the connector.
func (e *Encoder) CashDrawer(pin int) error {
	var m byte
	switch pin {
	case 2:
		m = 0
	case 5:
		m = 1
	default:
		return fmt.Errorf("invalid cash drawer pin %d: must be 2 or 5", pin)
	}
	e.buf.Write([]byte{esc, 'p', m, 0x19, 0xFA})
	return nil
}

// Bytes returns the accumulated command stream.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Reset clears the stream.
func (e *Encoder) Reset() {
	e.buf.Reset()
}

// rasterize packs an image into row-major 1-bit data, MSB first, one bit
// per pixel with set bits for dark pixels.
func rasterize(img image.Image, bytesPerRow int) []byte {
	bounds := img.Bounds()
	data := make([]byte, bytesPerRow*bounds.Dy())

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if (r+g+b)/3 < 0x8000 {
				data[y*bytesPerRow+x/8] |= 1 << (7 - uint(x%8))
			}
		}
	}

	return data
}
