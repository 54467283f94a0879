//go:build tinygo && gd32e23x

package main

import (
	"runtime"
	"runtime/volatile"
	"sync"
	"unsafe"

	"gd32spi/core"
)

const (
	dmaBase      = 0x40020000
	dmaChannels  = 5
	ahbenDMAEN   = 1 << 0
	dmaChanFlags = 4 // INTF/INTC bits per channel
)

// dmaChannel mirrors the registers of one channel
type dmaChannel struct {
	CTL   volatile.Register32
	CNT   volatile.Register32
	PADDR volatile.Register32
	MADDR volatile.Register32
	_     volatile.Register32
}

type dmaRegs struct {
	INTF volatile.Register32
	INTC volatile.Register32
	CH   [dmaChannels]dmaChannel
}

// CHxCTL bits
const (
	chctlCHEN      = 1 << 0
	chctlDIR       = 1 << 4 // Read from memory
	chctlMNAGA     = 1 << 7 // Memory address increment
	chctlPNAGA     = 1 << 6 // Peripheral address increment
	chctlPWIDTHPos = 8
	chctlMWIDTHPos = 10
	chctlPRIOPos   = 12
)

// INTF flags, shifted by dmaChanFlags*channel
const (
	intfGIF   = 1 << 0
	intfFTFIF = 1 << 1
	intfERRIF = 1 << 3
	intcAll   = 0xf
)

// GD32DMA implements core.DMADriver and core.DMAStopper on DMA0
type GD32DMA struct {
	regs  *dmaRegs
	locks [dmaChannels]sync.Mutex
	ctl   [dmaChannels]uint32 // CTL value from Setup, channel disabled
	empty [dmaChannels]bool   // Prepared with zero length
}

// NewGD32DMA creates the DMA driver and enables its clock
func NewGD32DMA(clk core.ClockDriver) *GD32DMA {
	clk.EnableClock(core.AHB, ahbenDMAEN)
	return &GD32DMA{regs: (*dmaRegs)(unsafe.Pointer(uintptr(dmaBase)))}
}

func (d *GD32DMA) Acquire(s core.DMAStream) {
	d.locks[s].Lock()
}

func (d *GD32DMA) Release(s core.DMAStream) {
	d.regs.CH[s].CTL.Set(0)
	d.locks[s].Unlock()
}

func (d *GD32DMA) Setup(s core.DMAStream, cfg core.DMAConfig) {
	ctl := uint32(cfg.Width)<<chctlPWIDTHPos | uint32(cfg.Width)<<chctlMWIDTHPos | 2<<chctlPRIOPos
	if cfg.Dir == core.DMAMemToPeriph {
		ctl |= chctlDIR
	}
	if cfg.PeriphIncr {
		ctl |= chctlPNAGA
	}
	d.ctl[s] = ctl

	ch := &d.regs.CH[s]
	ch.CTL.Set(0)
	ch.PADDR.Set(uint32(cfg.Periph))
}

func (d *GD32DMA) Prepare(s core.DMAStream, buf []byte, n int, incr bool) {
	ch := &d.regs.CH[s]
	ch.CTL.Set(0)

	d.empty[s] = n == 0
	if n == 0 {
		return
	}

	ctl := d.ctl[s]
	if incr {
		ctl |= chctlMNAGA
	}
	ch.MADDR.Set(uint32(uintptr(unsafe.Pointer(&buf[0]))))
	ch.CNT.Set(uint32(n))
	ch.CTL.Set(ctl)
}

func (d *GD32DMA) Start(s core.DMAStream) {
	if d.empty[s] {
		return
	}
	d.regs.INTC.Set(intcAll << (dmaChanFlags * uint32(s)))
	d.regs.CH[s].CTL.SetBits(chctlCHEN)
}

// Wait spins until the channel reports full transfer or an error
func (d *GD32DMA) Wait(s core.DMAStream) {
	if d.empty[s] {
		return
	}
	done := uint32(intfFTFIF|intfERRIF) << (dmaChanFlags * uint32(s))
	for d.regs.INTF.Get()&done == 0 {
		runtime.Gosched()
	}
}

func (d *GD32DMA) Stop(s core.DMAStream) {
	d.regs.CH[s].CTL.ClearBits(chctlCHEN)
	d.regs.INTC.Set(intcAll << (dmaChanFlags * uint32(s)))
}
