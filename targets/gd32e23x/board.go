//go:build tinygo && gd32e23x

package main

import (
	"gd32spi/core"
	"gd32spi/spi"
)

// Bus indices of spiBuses
const (
	busSPI0 spi.Bus = iota
	busSPI1
)

// GD32E23x SPI bus table. Both controllers use AF0 on their default pins.
// SPI1 moves its data through DMA channels 4 (TX) and 3 (RX) and keeps the
// core out of deep sleep while acquired.
var spiBuses = []spi.BusConfig{
	busSPI0: {
		Name:      "spi0",
		Dev:       spi.MMIO(0x40013000),
		ClockBus:  core.APB2,
		ClockMask: 1 << 12,
		MOSI:      core.PinAt(0, 7),
		MISO:      core.PinAt(0, 6),
		SCLK:      core.PinAt(0, 5),
		CS:        core.PinAt(0, 4),
	},
	busSPI1: {
		Name:      "spi1",
		Dev:       spi.MMIO(0x40003800),
		ClockBus:  core.APB1,
		ClockMask: 1 << 14,
		MOSI:      core.PinAt(1, 15),
		MISO:      core.PinAt(1, 14),
		SCLK:      core.PinAt(1, 13),
		CS:        core.PinAt(1, 12),
		DMA:       &spi.DMABinding{TX: 4, RX: 3},
		PMMode:    core.PMModeDeepSleep,
	},
}
