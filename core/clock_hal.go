package core

// ClockBus identifies a clock-gate domain of the RCU.
type ClockBus uint8

const (
	AHB ClockBus = iota
	APB1
	APB2
)

// String returns the bus name as used in board files
func (b ClockBus) String() string {
	switch b {
	case AHB:
		return "ahb"
	case APB1:
		return "apb1"
	case APB2:
		return "apb2"
	}
	return "unknown"
}

// ClockDriver gates peripheral clocks and reports bus frequencies.
type ClockDriver interface {
	// EnableClock sets the enable bits in mask for the given bus
	EnableClock(bus ClockBus, mask uint32)

	// DisableClock clears the enable bits in mask for the given bus
	DisableClock(bus ClockBus, mask uint32)

	// BusFrequency returns the current frequency of the bus in Hz
	BusFrequency(bus ClockBus) uint32
}

// Global singleton used by core code.
var clockDriver ClockDriver

// SetClockDriver is called by target-specific code to register its driver.
func SetClockDriver(d ClockDriver) {
	clockDriver = d
}

// MustClock returns the configured driver or panics if missing.
func MustClock() ClockDriver {
	if clockDriver == nil {
		panic("clock driver not configured")
	}
	return clockDriver
}
