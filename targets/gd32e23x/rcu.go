//go:build tinygo && gd32e23x

package main

import (
	"runtime/volatile"
	"sync"
	"unsafe"

	"gd32spi/core"
)

const (
	rcuBase = 0x40021000

	// Core clock after the startup code has switched to the PLL
	sysClockHz = 72000000
)

// rcuRegs mirrors the RCU registers up to APB1EN
type rcuRegs struct {
	CTL0    volatile.Register32 // 0x00
	CFG0    volatile.Register32 // 0x04
	INT     volatile.Register32 // 0x08
	APB2RST volatile.Register32 // 0x0C
	APB1RST volatile.Register32 // 0x10
	AHBEN   volatile.Register32 // 0x14
	APB2EN  volatile.Register32 // 0x18
	APB1EN  volatile.Register32 // 0x1C
}

// CFG0 prescaler fields
const (
	cfg0AHBPSC_Pos  = 4
	cfg0APB1PSC_Pos = 8
	cfg0APB2PSC_Pos = 11
)

// GD32Clock implements core.ClockDriver on the RCU
type GD32Clock struct {
	mu   sync.Mutex // Enable registers are shared read-modify-write
	regs *rcuRegs
}

// NewGD32Clock creates the clock driver
func NewGD32Clock() *GD32Clock {
	return &GD32Clock{regs: (*rcuRegs)(unsafe.Pointer(uintptr(rcuBase)))}
}

func (c *GD32Clock) enableReg(bus core.ClockBus) *volatile.Register32 {
	switch bus {
	case core.AHB:
		return &c.regs.AHBEN
	case core.APB1:
		return &c.regs.APB1EN
	default:
		return &c.regs.APB2EN
	}
}

func (c *GD32Clock) EnableClock(bus core.ClockBus, mask uint32) {
	c.mu.Lock()
	c.enableReg(bus).SetBits(mask)
	c.mu.Unlock()
}

func (c *GD32Clock) DisableClock(bus core.ClockBus, mask uint32) {
	c.mu.Lock()
	c.enableReg(bus).ClearBits(mask)
	c.mu.Unlock()
}

// BusFrequency derives the bus clock from the CFG0 prescalers
func (c *GD32Clock) BusFrequency(bus core.ClockBus) uint32 {
	cfg := c.regs.CFG0.Get()

	ahb := uint32(sysClockHz)
	if psc := (cfg >> cfg0AHBPSC_Pos) & 0xf; psc&0x8 != 0 {
		// 1000 = /2 ... 1011 = /16, then /64 ... /512 (no /32)
		shift := psc&0x7 + 1
		if shift > 4 {
			shift++
		}
		ahb >>= shift
	}
	if bus == core.AHB {
		return ahb
	}

	pos := uint32(cfg0APB2PSC_Pos)
	if bus == core.APB1 {
		pos = cfg0APB1PSC_Pos
	}
	if psc := (cfg >> pos) & 0x7; psc&0x4 != 0 {
		// 100 = /2 ... 111 = /16
		return ahb >> (psc&0x3 + 1)
	}
	return ahb
}
