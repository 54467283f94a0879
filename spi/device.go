package spi

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Device is one peripheral on a bus: a chip select plus the mode and clock
// it needs. Each call acquires the bus for the duration of one transfer,
// so a Device can be handed to any tinygo.org/x/drivers driver.
type Device struct {
	ctrl *Controller
	bus  Bus
	cs   ChipSelect
	mode Mode
	clk  Clock
}

var _ drivers.SPI = (*Device)(nil)

var errLengthMismatch = errors.New("spi: tx and rx buffer lengths must match")

// NewDevice prepares cs on bus and returns a Device using it.
func (c *Controller) NewDevice(bus Bus, cs ChipSelect, mode Mode, clk Clock) (*Device, error) {
	if err := c.InitCS(bus, cs); err != nil {
		return nil, err
	}
	return &Device{
		ctrl: c,
		bus:  bus,
		cs:   cs,
		mode: mode,
		clk:  clk,
	}, nil
}

// Tx writes w and reads into r in a single chip-select cycle. Either
// slice may be nil; if both are set they must have the same length.
func (d *Device) Tx(w, r []byte) error {
	if w != nil && r != nil && len(w) != len(r) {
		return errLengthMismatch
	}
	if w == nil && r == nil {
		return nil
	}

	d.ctrl.Acquire(d.bus, d.cs, d.mode, d.clk)
	d.ctrl.Transfer(d.bus, d.cs, false, w, r)
	d.ctrl.Release(d.bus)
	return nil
}

// Transfer writes b and returns the byte read in the same frame.
func (d *Device) Transfer(b byte) (byte, error) {
	d.ctrl.Acquire(d.bus, d.cs, d.mode, d.clk)
	rx := d.ctrl.TransferByte(d.bus, d.cs, false, b)
	d.ctrl.Release(d.bus)
	return rx, nil
}

// Bus returns the bus the device sits on
func (d *Device) Bus() Bus {
	return d.bus
}

// ChipSelect returns the device's chip select
func (d *Device) ChipSelect() ChipSelect {
	return d.cs
}
