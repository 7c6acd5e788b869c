// Command receipt-cli composes a receipt from a payload (a file or inline
// JSON) and either saves it as a PNG or sends it straight to the printer.
// It talks to the device directly and does not need receiptd running.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"go.uber.org/zap"

	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/internal/printer"
	"github.com/fuelpos/receiptd/internal/render"
	"github.com/fuelpos/receiptd/pkg/payload"
)

const (
	exitRuntime    = 1
	exitValidation = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := ff.NewFlagSet("receipt-cli")
	var (
		configPath = fs.StringLong("config", "config.json", "path to the configuration file")
		payloadArg = fs.StringLong("payload", "", "payload JSON: a file path or an inline object")
		slip       = fs.BoolLong("slip", "compose a text slip from the payload instead of a bitmap receipt")
		text       = fs.StringLong("text", "", "print a raw text slip instead of a receipt")
		out        = fs.StringLong("out", "", "write the rendered receipt to a PNG instead of printing")
		drawer     = fs.BoolLong("open-drawer", "kick the cash drawer after printing")
		debug      = fs.BoolLong("debug", "enable debug logging")

		transport   = fs.StringLong("transport", "", "override printer transport: usb, serial, network")
		printerHost = fs.StringLong("printer-host", "", "override network printer host")
		printerPort = fs.IntLong("printer-port", 0, "override network printer port")
		device      = fs.StringLong("device", "", "override serial device path")

		fontPath    = fs.StringLong("font", "", "override the layout font file")
		headerTitle = fs.StringLong("header-title", "", "override the header title")
		footerQR    = fs.StringLong("footer-qr", "", "override the footer QR payload")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTD"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitRuntime
	}

	log := zap.NewNop()
	if *debug {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitRuntime
		}
	}
	defer log.Sync()

	if *payloadArg == "" && *text == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: either --payload or --text is required")
		return exitRuntime
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitRuntime
	}

	if *transport != "" {
		cfg.Printer.Transport = *transport
	}
	if *printerHost != "" {
		cfg.Printer.Host = *printerHost
	}
	if *printerPort != 0 {
		cfg.Printer.Port = *printerPort
	}
	if *device != "" {
		cfg.Printer.Device = *device
	}
	if *fontPath != "" {
		cfg.Layout.FontPath = *fontPath
	}
	if *headerTitle != "" {
		cfg.Layout.HeaderTitle = *headerTitle
	}
	if *footerQR != "" {
		cfg.Layout.FooterQR = *footerQR
	}

	if *text != "" {
		return printText(cfg, *text, *drawer, log)
	}

	rec, err := parsePayloadArg(*payloadArg)
	if err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", verr)
			return exitValidation
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitRuntime
	}

	if *slip {
		return printSlip(cfg, rec, *out, *drawer, log)
	}

	engine := render.NewEngine(render.NewFontCache(), log)
	img, err := engine.Render(rec, cfg.Layout, cfg.Printer.PixelWidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitRuntime
	}

	if *out != "" {
		if err := gg.SavePNG(*out, img); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to write %s: %v\n", *out, err)
			return exitRuntime
		}
		fmt.Printf("wrote %s (total %s)\n", *out, rec.Total.StringFixed(2))
		return 0
	}

	driver := printer.NewDriver(cfg.Printer, log)
	defer driver.Disconnect()

	if err := driver.PrintImage(img, 100); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitRuntime
	}

	if *drawer {
		if err := driver.KickDrawer(2); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitRuntime
		}
	}

	fmt.Printf("printed receipt (total %s)\n", rec.Total.StringFixed(2))
	return 0
}

// parsePayloadArg accepts either a path to a JSON file or the JSON object
// itself, so quick tests need no temporary files.
func parsePayloadArg(arg string) (*payload.Receipt, error) {
	if strings.HasPrefix(strings.TrimSpace(arg), "{") {
		return payload.Parse([]byte(arg))
	}
	return payload.ParseFile(arg)
}

// printSlip sends the composed text slip through the printer's native text
// path, or renders it as a bitmap when a PNG path is given.
func printSlip(cfg config.Config, rec *payload.Receipt, out string, drawer bool, log *zap.Logger) int {
	slip := printer.ComposeSlip(rec, cfg.Layout, cfg.Printer.LineWidth)

	if out != "" {
		face, err := render.NewFontCache().Face(cfg.Layout.FontPath, float64(cfg.Layout.FontSize))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitRuntime
		}
		img := render.RenderTextBlock(printer.StripTokens(slip),
			cfg.Printer.PixelWidth, face, cfg.Layout.FontSize)
		if err := gg.SavePNG(out, img); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to write %s: %v\n", out, err)
			return exitRuntime
		}
		fmt.Printf("wrote %s (total %s)\n", out, rec.Total.StringFixed(2))
		return 0
	}

	return printText(cfg, slip, drawer, log)
}

func printText(cfg config.Config, text string, drawer bool, log *zap.Logger) int {
	driver := printer.NewDriver(cfg.Printer, log)
	defer driver.Disconnect()

	if err := driver.PrintText(text); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitRuntime
	}

	if drawer {
		if err := driver.KickDrawer(2); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitRuntime
		}
	}

	fmt.Println("printed text slip")
	return 0
}
