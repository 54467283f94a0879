package core

// DMAStream identifies a DMA channel of the controller.
type DMAStream uint8

// DMADirection is the direction of a DMA transfer relative to the peripheral
type DMADirection uint8

const (
	DMAMemToPeriph DMADirection = iota
	DMAPeriphToMem
)

// DMAWidth is the size of one peripheral access
type DMAWidth uint8

const (
	DMAWidthByte DMAWidth = iota
	DMAWidthHalfWord
	DMAWidthWord
)

// DMAConfig binds a stream to a peripheral data register.
type DMAConfig struct {
	Channel    uint8        // Request line / channel selector
	Periph     uintptr      // Address of the peripheral data register
	Dir        DMADirection // Transfer direction
	Width      DMAWidth     // Peripheral access width
	PeriphIncr bool         // Increment the peripheral address after each access
}

// DMADriver is the abstract DMA interface that core code uses.
type DMADriver interface {
	// Acquire reserves a stream, blocking while another user holds it
	Acquire(s DMAStream)

	// Release gives the stream back
	Release(s DMAStream)

	// Setup binds the stream to a peripheral register
	Setup(s DMAStream, cfg DMAConfig)

	// Prepare sets the memory side of the next transfer.
	// With incr false every transfer uses buf[0].
	Prepare(s DMAStream, buf []byte, n int, incr bool)

	// Start enables the stream
	Start(s DMAStream)

	// Wait blocks until the stream has moved all prepared bytes
	Wait(s DMAStream)
}

// DMAStopper is implemented by DMA engines whose streams stay enabled after
// completion and must be switched off explicitly.
type DMAStopper interface {
	Stop(s DMAStream)
}

// Global singleton used by core code.
var dmaDriver DMADriver

// SetDMADriver is called by target-specific code to register its driver.
func SetDMADriver(d DMADriver) {
	dmaDriver = d
}

// GetDMA returns the DMA driver or nil if the target has none
func GetDMA() DMADriver {
	return dmaDriver
}

// MustDMA returns the configured driver or panics if missing.
func MustDMA() DMADriver {
	if dmaDriver == nil {
		panic("DMA driver not configured")
	}
	return dmaDriver
}
