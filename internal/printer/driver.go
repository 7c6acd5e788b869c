package printer

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/fuelpos/receiptd/internal/config"
)

// DialFunc opens a transport connection for a printer configuration.
type DialFunc func(config.Printer) (Connection, error)

// Driver drives one physical printer. It connects lazily on the first job
// and keeps the connection open until Disconnect or a write failure.
type Driver struct {
	mu   sync.Mutex
	cfg  config.Printer
	conn Connection
	dial DialFunc
	log  *zap.Logger
}

// NewDriver creates a driver. The connection is not opened until the first
// print call.
func NewDriver(cfg config.Printer, log *zap.Logger) *Driver {
	return newDriver(cfg, Dial, log)
}

func newDriver(cfg config.Printer, dial DialFunc, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{cfg: cfg, dial: dial, log: log}
}

// PrintImage sends a rendered bitmap to the printer. scale is a percentage
// of the head width (1 to 100); the image is shrunk to fit but never
// enlarged, and always padded out to the full head width.
func (d *Driver) PrintImage(img image.Image, scale int) error {
	if scale < 1 || scale > 100 {
		return fmt.Errorf("invalid print scale %d: must be 1-100", scale)
	}

	fitWidth := d.cfg.PixelWidth * scale / 100
	if fitWidth < 1 {
		fitWidth = 1
	}
	if img.Bounds().Dx() > fitWidth {
		img = imaging.Resize(img, fitWidth, 0, imaging.Lanczos)
	}

	bitmap, err := PrepareBitmap(img, d.cfg.PixelWidth)
	if err != nil {
		return fmt.Errorf("failed to prepare bitmap: %w", err)
	}

	enc := NewEncoder()
	enc.Initialize()
	if err := enc.Image(bitmap); err != nil {
		return err
	}
	enc.Feed(4)
	enc.Cut()

	return d.send(enc.Bytes())
}

// PrintText sends a plain text slip through the printer's native text path.
// Each line may start with formatting tokens: <<L>>, <<C>> and <<R>> select
// alignment, <<SM>> switches to the condensed font for that line.
func (d *Driver) PrintText(text string) error {
	enc := NewEncoder()
	enc.Initialize()

	for _, line := range splitTextLines(text) {
		align, small, body := parseLineTokens(line)

		enc.Align(align)
		enc.SmallFont(small)

		for _, wrapped := range wrapRunes(body, d.cfg.LineWidth) {
			encoded, err := d.encodeText(wrapped)
			if err != nil {
				return err
			}
			enc.Text(encoded)
			enc.LineFeed()
		}
	}

	enc.SmallFont(false)
	enc.Align("left")
	enc.Feed(4)
	enc.Cut()

	return d.send(enc.Bytes())
}

// Feed advances the paper without printing.
func (d *Driver) Feed(lines int) error {
	enc := NewEncoder()
	enc.Feed(lines)
	return d.send(enc.Bytes())
}

// Cut cuts the paper.
func (d *Driver) Cut() error {
	enc := NewEncoder()
	enc.Cut()
	return d.send(enc.Bytes())
}

// KickDrawer pulses the cash drawer on the given connector pin (2 or 5).
func (d *Driver) KickDrawer(pin int) error {
	enc := NewEncoder()
	if err := enc.CashDrawer(pin); err != nil {
		return err
	}
	return d.send(enc.Bytes())
}

// Disconnect closes the transport connection if one is open.
func (d *Driver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

func (d *Driver) send(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		conn, err := d.dial(d.cfg)
		if err != nil {
			return fmt.Errorf("printer connection failed: %w", err)
		}
		d.conn = conn
		d.log.Info("printer connected", zap.String("transport", d.cfg.Transport))
	}

	if _, err := d.conn.Write(data); err != nil {
		// Drop the connection so the next job redials.
		d.conn.Close()
		d.conn = nil
		return fmt.Errorf("printer write failed: %w", err)
	}

	return nil
}

// encodeText converts UTF-8 text to the printer's configured code page.
func (d *Driver) encodeText(s string) (string, error) {
	if d.cfg.Encoding == "" {
		return s, nil
	}

	enc, err := ianaindex.IANA.Encoding(d.cfg.Encoding)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unknown printer encoding %q", d.cfg.Encoding)
	}

	encoded, err := enc.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode text for printer: %w", err)
	}
	return encoded, nil
}

// parseLineTokens strips the leading formatting tokens from a line and
// returns the resolved alignment, font selection and remaining text.
func parseLineTokens(line string) (align string, small bool, body string) {
	align = "left"
	body = line

	for {
		switch {
		case strings.HasPrefix(body, "<<L>>"):
			align = "left"
			body = body[5:]
		case strings.HasPrefix(body, "<<C>>"):
			align = "center"
			body = body[5:]
		case strings.HasPrefix(body, "<<R>>"):
			align = "right"
			body = body[5:]
		case strings.HasPrefix(body, "<<SM>>"):
			small = true
			body = body[6:]
		default:
			return align, small, body
		}
	}
}

func splitTextLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// wrapRunes breaks a line into chunks of at most width runes. Empty input
// still produces one empty line so blank lines feed paper.
func wrapRunes(s string, width int) []string {
	if width < 1 || len(s) <= width {
		return []string{s}
	}

	runes := []rune(s)
	if len(runes) <= width {
		return []string{s}
	}

	var lines []string
	for len(runes) > width {
		lines = append(lines, string(runes[:width]))
		runes = runes[width:]
	}
	return append(lines, string(runes))
}
