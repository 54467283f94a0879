// Package sim simulates the GD32E23x peripherals the SPI driver talks to:
// the SPI register block, GPIO ports, the RCU clock tree, the DMA
// controller and the power management layer. It runs on the host and backs
// the driver tests and the spisim tool.
package sim

import "gd32spi/core"

// Hardware bundles the simulated collaborators of one board.
type Hardware struct {
	GPIO  *GPIO
	Clock *Clock
	DMA   *DMA
	PM    *PM
}

// New creates a board with all peripherals in their reset state
func New() *Hardware {
	return &Hardware{
		GPIO:  NewGPIO(),
		Clock: NewClock(),
		DMA:   NewDMA(),
		PM:    NewPM(),
	}
}

// Install registers the simulated drivers with core.
func (h *Hardware) Install() {
	core.SetGPIODriver(h.GPIO)
	core.SetClockDriver(h.Clock)
	core.SetDMADriver(h.DMA)
	core.SetPowerManager(h.PM)
}

// NewSPI creates an SPI block reachable by the board's DMA controller.
func (h *Hardware) NewSPI() *SPI {
	s := NewSPI()
	h.DMA.Attach(s)
	return s
}
