package core

// Pin identifies a GPIO line as port*16 + number (PA0 = 0, PB3 = 19, ...).
type Pin uint16

// NoPin marks an unassigned line.
const NoPin Pin = 0xffff

// Number of GPIO ports (A..F) and lines per port.
const (
	NumPorts    = 6
	PinsPerPort = 16
)

// PinAt builds a Pin from a port index (0 = A) and line number.
func PinAt(port, num uint8) Pin {
	return Pin(uint16(port)*PinsPerPort + uint16(num))
}

// Port returns the port index (0 = A).
func (p Pin) Port() uint8 {
	return uint8(p / PinsPerPort)
}

// Num returns the line number within the port.
func (p Pin) Num() uint8 {
	return uint8(p % PinsPerPort)
}

// String returns the pin name, e.g. "PA7"
func (p Pin) String() string {
	if p == NoPin || p.Port() >= NumPorts {
		return "NoPin"
	}
	return "P" + string(rune('A'+p.Port())) + Utoa(uint32(p.Num()))
}

// ParsePin parses a pin name such as "PA7" or "pb12".
// Returns NoPin and false if the name is malformed.
func ParsePin(name string) (Pin, bool) {
	if len(name) < 3 || len(name) > 4 {
		return NoPin, false
	}
	if name[0] != 'P' && name[0] != 'p' {
		return NoPin, false
	}

	port := name[1]
	if port >= 'a' && port <= 'z' {
		port -= 'a' - 'A'
	}
	if port < 'A' || port >= 'A'+NumPorts {
		return NoPin, false
	}

	num := 0
	for _, c := range name[2:] {
		if c < '0' || c > '9' {
			return NoPin, false
		}
		num = num*10 + int(c-'0')
	}
	if num >= PinsPerPort {
		return NoPin, false
	}

	return PinAt(port-'A', uint8(num)), true
}

// GPIOMode selects the direction and electrical mode of a pin
type GPIOMode uint8

const (
	GPIOIn GPIOMode = iota
	GPIOInPullDown
	GPIOInPullUp
	GPIOOut
	GPIOOpenDrain
	GPIOOpenDrainPullUp
)

// AF selects one of the alternate functions of a pin (AF0..AF7 on the GD32E23x).
type AF uint8

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// Configure sets the direction/mode of a pin
	Configure(pin Pin, mode GPIOMode) error

	// ConfigureAF hands the pin over to a peripheral alternate function
	ConfigureAF(pin Pin, af AF) error

	// Set drives the pin high
	Set(pin Pin)

	// Clear drives the pin low
	Clear(pin Pin)

	// IsValid reports whether pin names an existing line
	IsValid(pin Pin) bool
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
