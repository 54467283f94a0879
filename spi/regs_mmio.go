//go:build tinygo

package spi

import (
	"runtime/volatile"
	"unsafe"
)

// regBlock mirrors the memory layout of a GD32E23x SPI controller.
type regBlock struct {
	CTL0    volatile.Register32
	CTL1    volatile.Register32
	STAT    volatile.Register32
	DATA    volatile.Register32
	CRCPOLY volatile.Register32
	RCRC    volatile.Register32
	TCRC    volatile.Register32
	I2SCTL  volatile.Register32
	I2SPSC  volatile.Register32
}

type mmio struct {
	hw   *regBlock
	data *volatile.Register8
}

// MMIO returns the register view of the SPI block mapped at base.
func MMIO(base uintptr) Registers {
	hw := (*regBlock)(unsafe.Pointer(base))
	return &mmio{
		hw:   hw,
		data: (*volatile.Register8)(unsafe.Pointer(&hw.DATA)),
	}
}

func (r *mmio) CTL0() uint32       { return r.hw.CTL0.Get() }
func (r *mmio) SetCTL0(v uint32)   { r.hw.CTL0.Set(v) }
func (r *mmio) CTL1() uint32       { return r.hw.CTL1.Get() }
func (r *mmio) SetCTL1(v uint32)   { r.hw.CTL1.Set(v) }
func (r *mmio) STAT() uint32       { return r.hw.STAT.Get() }
func (r *mmio) ReadData() uint8    { return r.data.Get() }
func (r *mmio) WriteData(b uint8)  { r.data.Set(b) }
func (r *mmio) SetI2SCTL(v uint32) { r.hw.I2SCTL.Set(v) }
func (r *mmio) DataAddr() uintptr  { return uintptr(unsafe.Pointer(&r.hw.DATA)) }
