package printer

import (
	"fmt"

	"github.com/fuelpos/receiptd/internal/config"
)

// Connection is a byte sink to a physical printer.
type Connection interface {
	Write(data []byte) (int, error)
	Close() error
}

// Dial opens a connection using the configured transport.
func Dial(cfg config.Printer) (Connection, error) {
	switch cfg.Transport {
	case "usb":
		return dialUSB(cfg.USBVendor, cfg.USBProduct)
	case "serial":
		return dialSerial(cfg.Device, cfg.Baud)
	case "network":
		return dialNetwork(cfg.Host, cfg.Port)
	default:
		return nil, fmt.Errorf("unknown printer transport %q", cfg.Transport)
	}
}
