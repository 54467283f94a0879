//go:build tinygo && gd32e23x

package main

import (
	"errors"
	"runtime/volatile"
	"sync"
	"unsafe"

	"gd32spi/core"
)

const (
	gpioBase   = 0x48000000
	gpioStride = 0x400

	// AHBEN bit of GPIOA, the other ports follow
	ahbenPAEN = 1 << 17
)

// gpioRegs mirrors one GPIO port
type gpioRegs struct {
	CTL    volatile.Register32 // Mode, 2 bits per pin
	OMODE  volatile.Register32 // 1 = open drain
	OSPD   volatile.Register32 // Output speed, 2 bits per pin
	PUD    volatile.Register32 // Pull-up/down, 2 bits per pin
	ISTAT  volatile.Register32
	OCTL   volatile.Register32
	BOP    volatile.Register32 // Bit set (low half) / reset (high half)
	LOCK   volatile.Register32
	AFSEL0 volatile.Register32 // AF of pins 0..7, 4 bits each
	AFSEL1 volatile.Register32 // AF of pins 8..15
	BC     volatile.Register32 // Bit clear
}

// CTL mode field values
const (
	ctlInput  = 0
	ctlOutput = 1
	ctlAF     = 2
)

// PUD field values
const (
	pudNone = 0
	pudUp   = 1
	pudDown = 2
)

var errNoPort = errors.New("gpio: port not present")

// GD32GPIO implements core.GPIODriver for ports A, B, C, D and F
type GD32GPIO struct {
	mu  sync.Mutex
	clk core.ClockDriver
}

// NewGD32GPIO creates the GPIO driver. clk gates the port clocks.
func NewGD32GPIO(clk core.ClockDriver) *GD32GPIO {
	return &GD32GPIO{clk: clk}
}

func port(pin core.Pin) *gpioRegs {
	return (*gpioRegs)(unsafe.Pointer(uintptr(gpioBase + gpioStride*uintptr(pin.Port()))))
}

func (g *GD32GPIO) IsValid(pin core.Pin) bool {
	// Port E is not bonded out on this family
	return pin != core.NoPin && pin.Port() < core.NumPorts && pin.Port() != 4
}

// field replaces the width-bit field of pin n in r
func field(r *volatile.Register32, n uint8, width uint8, v uint32) {
	shift := uint32(n) * uint32(width)
	mask := uint32(1)<<width - 1
	r.Set(r.Get()&^(mask<<shift) | (v&mask)<<shift)
}

func (g *GD32GPIO) Configure(pin core.Pin, mode core.GPIOMode) error {
	if !g.IsValid(pin) {
		return errNoPort
	}
	g.clk.EnableClock(core.AHB, ahbenPAEN<<pin.Port())

	ctl, pud, od := uint32(ctlInput), uint32(pudNone), uint32(0)
	switch mode {
	case core.GPIOInPullDown:
		pud = pudDown
	case core.GPIOInPullUp:
		pud = pudUp
	case core.GPIOOut:
		ctl = ctlOutput
	case core.GPIOOpenDrain:
		ctl, od = ctlOutput, 1
	case core.GPIOOpenDrainPullUp:
		ctl, od, pud = ctlOutput, 1, pudUp
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	p, n := port(pin), pin.Num()
	field(&p.PUD, n, 2, pud)
	field(&p.OMODE, n, 1, od)
	if ctl == ctlOutput {
		field(&p.OSPD, n, 2, 3) // 50 MHz
	}
	field(&p.CTL, n, 2, ctl)
	return nil
}

func (g *GD32GPIO) ConfigureAF(pin core.Pin, af core.AF) error {
	if !g.IsValid(pin) {
		return errNoPort
	}
	if af > 7 {
		return errors.New("gpio: alternate function out of range")
	}
	g.clk.EnableClock(core.AHB, ahbenPAEN<<pin.Port())

	g.mu.Lock()
	defer g.mu.Unlock()
	p, n := port(pin), pin.Num()
	if n < 8 {
		field(&p.AFSEL0, n, 4, uint32(af))
	} else {
		field(&p.AFSEL1, n-8, 4, uint32(af))
	}
	field(&p.OSPD, n, 2, 3)
	field(&p.CTL, n, 2, ctlAF)
	return nil
}

// Set and Clear are single-store and need no lock
func (g *GD32GPIO) Set(pin core.Pin) {
	port(pin).BOP.Set(1 << pin.Num())
}

func (g *GD32GPIO) Clear(pin core.Pin) {
	port(pin).BC.Set(1 << pin.Num())
}
