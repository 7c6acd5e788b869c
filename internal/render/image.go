package render

import (
	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// drawImage embeds an image file centered on the canvas, scaled to the
// content width and then by the configured percentage. Header and footer
// images are best-effort: a failed load logs a warning and the stage is
// skipped.
func (r *renderer) drawImage(path string, scale int) {
	if path == "" {
		return
	}

	src, err := imaging.Open(path)
	if err != nil {
		r.log.Warn("failed to load image, skipping",
			zap.String("path", path), zap.Error(err))
		return
	}

	gray := imaging.Grayscale(src)

	baseWidth := r.canvas.width
	if baseWidth <= 0 {
		return
	}

	// Aspect ratio always comes from the original width, never iteratively.
	ratio := float64(baseWidth) / float64(gray.Bounds().Dx())
	height := int(float64(gray.Bounds().Dy()) * ratio)
	img := imaging.Resize(gray, baseWidth, height, imaging.Lanczos)

	if scale < 0 {
		scale = 0
	}
	if scale > 100 {
		scale = 100
	}
	if scale != 100 {
		targetW := baseWidth * scale / 100
		targetH := height * scale / 100
		if targetW < 1 {
			targetW = 1
		}
		if targetH < 1 {
			targetH = 1
		}
		img = imaging.Resize(img, targetW, targetH, imaging.Lanczos)
	}

	imgHeight := img.Bounds().Dy()
	r.canvas.ensureHeight(imgHeight + 10)

	x := (r.canvas.width - img.Bounds().Dx()) / 2
	r.canvas.ctx.DrawImage(img, x, int(r.canvas.y))
	r.canvas.y += float64(imgHeight) + 10
}

// drawQR renders an optional QR block centered above the footer label.
func (r *renderer) drawQR(data string) {
	if data == "" {
		return
	}

	code, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		r.log.Warn("failed to build footer QR code, skipping", zap.Error(err))
		return
	}

	size := r.canvas.width / 3
	img := code.Image(size)

	r.canvas.ensureHeight(size + 10)
	x := (r.canvas.width - img.Bounds().Dx()) / 2
	r.canvas.ctx.DrawImage(img, x, int(r.canvas.y))
	r.canvas.y += float64(img.Bounds().Dy()) + 10
}
