package printer

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

type serialConnection struct {
	port *serial.Port
}

func dialSerial(device string, baud int) (Connection, error) {
	if baud <= 0 {
		baud = 9600
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	return &serialConnection{port: port}, nil
}

func (c *serialConnection) Write(data []byte) (int, error) {
	return c.port.Write(data)
}

func (c *serialConnection) Close() error {
	return c.port.Close()
}
