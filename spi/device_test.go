package spi_test

import (
	"bytes"
	"errors"
	"testing"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/sharpmem"

	"gd32spi/core"
	"gd32spi/sim"
	"gd32spi/spi"
)

func TestNewDevice(t *testing.T) {
	r := newRig(t)

	if _, err := r.ctrl.NewDevice(missingBus, spi.HardwareCS(), spi.Mode0, spi.Clock1MHz); !errors.Is(err, spi.ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice, got %v", err)
	}
	if _, err := r.ctrl.NewDevice(dmaBus, spi.HardwareCS(), spi.Mode0, spi.Clock1MHz); !errors.Is(err, spi.ErrNoChipSelect) {
		t.Errorf("Expected ErrNoChipSelect, got %v", err)
	}

	d, err := r.ctrl.NewDevice(dmaBus, spi.PinCS(pinPB1), spi.Mode2, spi.Clock5MHz)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	if d.Bus() != dmaBus {
		t.Errorf("Expected bus 1, got %d", d.Bus())
	}
	if pin, ok := d.ChipSelect().Pin(); !ok || pin != pinPB1 {
		t.Errorf("Expected chip select PB1, got %v", d.ChipSelect())
	}
	if !r.hw.GPIO.Level(pinPB1) {
		t.Error("Expected chip select inactive after NewDevice")
	}
}

func TestDeviceTx(t *testing.T) {
	r := newRig(t)
	r.dev.SetResponder(func(b byte) byte { return b ^ 0xff })

	d, err := r.ctrl.NewDevice(pollBus, spi.HardwareCS(), spi.Mode0, spi.Clock1MHz)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}

	w := []byte{0x00, 0x0f, 0xf0}
	rd := make([]byte, len(w))
	if err := d.Tx(w, rd); err != nil {
		t.Fatalf("Tx failed: %v", err)
	}
	if !bytes.Equal(rd, []byte{0xff, 0xf0, 0x0f}) {
		t.Errorf("Expected [255 240 15], got %v", rd)
	}

	// The bus must be free again
	r.ctrl.Acquire(pollBus, spi.HardwareCS(), spi.Mode0, spi.Clock1MHz)
	r.ctrl.Release(pollBus)

	if err := d.Tx(w, make([]byte, 2)); err == nil {
		t.Error("Expected error for mismatched buffers")
	}
	if err := d.Tx(nil, nil); err != nil {
		t.Errorf("Expected nil for empty Tx, got %v", err)
	}
}

func TestDeviceTransfer(t *testing.T) {
	r := newRig(t)
	r.dmaDev.SetResponder(func(b byte) byte { return b + 0x10 })

	d, err := r.ctrl.NewDevice(dmaBus, spi.PinCS(pinPB1), spi.Mode0, spi.Clock1MHz)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}

	got, err := d.Transfer(0x22)
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if got != 0x32 {
		t.Errorf("Expected 0x32, got %#x", got)
	}
	if r.hw.DMA.Held(streamTX) {
		t.Error("Expected DMA streams released after Transfer")
	}
}

// writeThrough mimics a tinygo driver that only knows the drivers.SPI
// interface.
func writeThrough(bus drivers.SPI, cmd byte, payload []byte) error {
	if _, err := bus.Transfer(cmd); err != nil {
		return err
	}
	return bus.Tx(payload, nil)
}

func TestDeviceAsDriversSPI(t *testing.T) {
	r := newRig(t)

	d, err := r.ctrl.NewDevice(pollBus, spi.HardwareCS(), spi.Mode3, spi.Clock10MHz)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	if err := writeThrough(d, 0x9f, []byte{1, 2, 3}); err != nil {
		t.Fatalf("writeThrough failed: %v", err)
	}

	if !bytes.Equal(r.dev.Sent(), []byte{0x9f, 1, 2, 3}) {
		t.Errorf("Expected [159 1 2 3] on the wire, got %v", r.dev.Sent())
	}
	falls, rises := r.dev.NSSEdges()
	if falls != 2 || rises != 2 {
		t.Errorf("Expected a select cycle per call, got %d falls %d rises", falls, rises)
	}
}

// gpioPin adapts a simulated GPIO line to sharpmem.Pin
type gpioPin struct {
	gpio *sim.GPIO
	pin  core.Pin
}

func (p gpioPin) High() { p.gpio.Set(p.pin) }
func (p gpioPin) Low()  { p.gpio.Clear(p.pin) }

func TestDeviceDrivesSharpMemoryDisplay(t *testing.T) {
	r := newRig(t)

	// The display's select is active high, so it drives its own line
	d, err := r.ctrl.NewDevice(pollBus, spi.HardwareCS(), spi.Mode0, spi.Clock1MHz)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	scs := gpioPin{gpio: r.hw.GPIO, pin: pinPB1}
	display := sharpmem.New(d, scs)
	display.Configure(sharpmem.ConfigLS011B7DH03)

	if err := display.ClearDisplay(); err != nil {
		t.Fatalf("ClearDisplay failed: %v", err)
	}
	if err := display.Display(); err != nil {
		t.Fatalf("Display failed: %v", err)
	}

	// Clear with VCOM high, then a VCOM-only hold frame
	want := []byte{0x06, 0x00, 0x00, 0x00}
	if !bytes.Equal(r.dev.Sent(), want) {
		t.Errorf("Expected %v on the wire, got %v", want, r.dev.Sent())
	}
	rises, _ := r.hw.GPIO.Edges(pinPB1)
	if rises != 2 {
		t.Errorf("Expected two display frames, got %d", rises)
	}
	if r.hw.GPIO.Level(pinPB1) {
		t.Error("Expected display deselected")
	}
}
