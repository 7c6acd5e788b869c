package printer

import (
	"fmt"

	"github.com/google/gousb"
)

// usbConnection talks to a printer over its bulk OUT endpoint.
type usbConnection struct {
	ctx      *gousb.Context
	device   *gousb.Device
	intf     *gousb.Interface
	done     func()
	endpoint *gousb.OutEndpoint
}

func dialUSB(vendor, product uint16) (Connection, error) {
	ctx := gousb.NewContext()

	device, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vendor), gousb.ID(product))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to open USB device %04x:%04x: %w", vendor, product, err)
	}
	if device == nil {
		ctx.Close()
		return nil, fmt.Errorf("USB device %04x:%04x not found", vendor, product)
	}

	if err := device.SetAutoDetach(true); err != nil {
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to detach kernel driver: %w", err)
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("failed to claim USB interface: %w", err)
	}

	var endpoint *gousb.OutEndpoint
	for _, desc := range intf.Setting.Endpoints {
		if desc.Direction == gousb.EndpointDirectionOut {
			endpoint, err = intf.OutEndpoint(desc.Number)
			if err == nil {
				break
			}
		}
	}
	if endpoint == nil {
		done()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("no bulk OUT endpoint on USB device %04x:%04x", vendor, product)
	}

	return &usbConnection{
		ctx:      ctx,
		device:   device,
		intf:     intf,
		done:     done,
		endpoint: endpoint,
	}, nil
}

func (c *usbConnection) Write(data []byte) (int, error) {
	return c.endpoint.Write(data)
}

func (c *usbConnection) Close() error {
	c.done()
	if err := c.device.Close(); err != nil {
		c.ctx.Close()
		return err
	}
	return c.ctx.Close()
}
