package spi

import (
	"errors"

	"gd32spi/core"
)

// Bus is the index of an SPI controller in the controller's bus table.
type Bus uint8

// Mode represents SPI clock polarity and phase (0-3)
// Mode 0: CPOL=0, CPHA=0 (clock idle low, sample on rising edge)
// Mode 1: CPOL=0, CPHA=1 (clock idle low, sample on falling edge)
// Mode 2: CPOL=1, CPHA=0 (clock idle high, sample on falling edge)
// Mode 3: CPOL=1, CPHA=1 (clock idle high, sample on rising edge)
type Mode uint8

const (
	Mode0 Mode = 0
	Mode1 Mode = CTL0_CKPH
	Mode2 Mode = CTL0_CKPL
	Mode3 Mode = CTL0_CKPL | CTL0_CKPH
)

// Clock is a requested SPI clock frequency in Hz.
type Clock uint32

// Common bus speeds
const (
	Clock100KHz Clock = 100000
	Clock400KHz Clock = 400000
	Clock1MHz   Clock = 1000000
	Clock5MHz   Clock = 5000000
	Clock10MHz  Clock = 10000000
)

// Configuration errors returned by InitCS
var (
	ErrNoDevice          = errors.New("spi: no such bus")
	ErrNoChipSelect      = errors.New("spi: hardware chip select not available")
	ErrInvalidChipSelect = errors.New("spi: invalid chip select")
)

// DMABinding assigns a pair of DMA streams to a bus.
type DMABinding struct {
	TX     core.DMAStream
	TXChan uint8
	RX     core.DMAStream
	RXChan uint8
}

// BusConfig describes one SPI controller and its wiring.
// Unused pins must be set to core.NoPin.
type BusConfig struct {
	Name string    // Human-readable name
	Dev  Registers // Register block

	ClockBus  core.ClockBus // Clock-gate domain
	ClockMask uint32        // Enable bit(s) within the domain

	MOSI, MISO, SCLK, CS         core.Pin
	MOSIAF, MISOAF, SCLKAF, CSAF core.AF

	DMA *DMABinding // nil: polled transfers

	PMMode core.PMMode // Low-power mode blocked while acquired, PMModeNone to disable
}

// HasDMA reports whether transfers on this bus are offloaded to DMA
func (c *BusConfig) HasDMA() bool {
	return c.DMA != nil
}

// GPIOMode selects per-line pin modes for InitWithGPIOMode
type GPIOMode struct {
	MOSI core.GPIOMode
	MISO core.GPIOMode
	SCLK core.GPIOMode
}
