// Package printer turns rendered bitmaps into ESC/POS byte streams and
// ships them to USB, serial, or network thermal printers.
package printer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const defaultThreshold = 128

// PrepareBitmap normalizes an arbitrary image for the print head: convert
// to grayscale, downscale to fit targetWidth (never upscale), threshold to
// 1-bit, and center on a full-width white canvas. Every returned bitmap is
// exactly targetWidth pixels wide, which is the one property the transport
// relies on.
func PrepareBitmap(img image.Image, targetWidth int) (image.Image, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("image has invalid dimensions")
	}
	if targetWidth < 1 {
		return nil, fmt.Errorf("invalid target width %d", targetWidth)
	}

	gray := imaging.Grayscale(img)

	ratio := math.Min(1.0, float64(targetWidth)/float64(bounds.Dx()))
	newWidth := int(float64(bounds.Dx()) * ratio)
	newHeight := int(float64(bounds.Dy()) * ratio)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	var scaled image.Image = gray
	if newWidth != bounds.Dx() || newHeight != bounds.Dy() {
		scaled = imaging.Resize(gray, newWidth, newHeight, imaging.Lanczos)
	}

	bw := threshold(scaled, defaultThreshold)

	if bw.Bounds().Dx() >= targetWidth {
		return bw, nil
	}

	// Narrower than the head: center on a white full-width canvas, height
	// unchanged.
	canvas := image.NewGray(image.Rect(0, 0, targetWidth, bw.Bounds().Dy()))
	for y := 0; y < canvas.Bounds().Dy(); y++ {
		for x := 0; x < targetWidth; x++ {
			canvas.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	offset := (targetWidth - bw.Bounds().Dx()) / 2
	for y := 0; y < bw.Bounds().Dy(); y++ {
		for x := 0; x < bw.Bounds().Dx(); x++ {
			canvas.SetGray(x+offset, y, bw.GrayAt(x, y))
		}
	}

	return canvas, nil
}

// threshold converts an image to pure black and white at the given cutoff.
func threshold(img image.Image, cutoff uint8) *image.Gray {
	bounds := img.Bounds()
	bw := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray := uint8((r + g + b) / 3 / 257)

			if gray < cutoff {
				bw.SetGray(x, y, color.Gray{Y: 0})
			} else {
				bw.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return bw
}
