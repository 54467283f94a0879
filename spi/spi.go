// Package spi drives the SPI controllers of the GD32E23x.
//
// A Controller owns the bus table and one runtime record per bus. Callers
// bracket their transfers with Acquire and Release; the bus lock taken by
// Acquire is the only point where concurrent users of a bus block. Transfers
// either spin on the status register or hand the data to DMA, depending on
// the bus configuration.
//
// Neither transfer path has a timeout. A stalled controller or DMA stream
// hangs the calling goroutine; watchdogs belong to the layer above.
package spi

import (
	"errors"
	"sync"

	"gd32spi/core"
)

// busState is the runtime record of one bus.
// Everything except mu is only touched with mu held or during Init.
// The divider is keyed on the requested clock alone; a change of the bus
// frequency after the first Acquire is not noticed.
type busState struct {
	mu sync.Mutex

	clock   Clock  // Last requested clock, 0 = unset
	busHz   uint32 // Bus frequency the divider was derived from
	divider uint8  // PSC code for clock

	dummy [1]byte // DMA source/sink for a missing buffer
}

// Controller is the process-wide registry of SPI buses.
type Controller struct {
	buses []BusConfig
	state []busState

	gpio core.GPIODriver
	clk  core.ClockDriver
	dma  core.DMADriver
	pm   core.PowerManager
}

// defaultGPIOMode is the pin setup used by InitPins
var defaultGPIOMode = GPIOMode{
	MOSI: core.GPIOOut,
	MISO: core.GPIOIn,
	SCLK: core.GPIOOut,
}

// NewController creates the registry for the given bus table using the
// registered core drivers. A DMA driver is required only if a bus has DMA.
func NewController(buses []BusConfig) *Controller {
	c := &Controller{
		buses: buses,
		state: make([]busState, len(buses)),
		gpio:  core.MustGPIO(),
		clk:   core.MustClock(),
		pm:    core.GetPowerManager(),
	}
	for i := range buses {
		if buses[i].HasDMA() {
			c.dma = core.MustDMA()
			break
		}
	}
	return c
}

// NumBuses returns the number of configured buses
func (c *Controller) NumBuses() int {
	return len(c.buses)
}

// BusName returns the configured name of bus
func (c *Controller) BusName(bus Bus) string {
	c.check(bus)
	return c.buses[bus].Name
}

func (c *Controller) check(bus Bus) {
	if int(bus) >= len(c.buses) {
		panic("spi: bus index out of range")
	}
}

// Init resets the registers of bus and configures its pins.
// Must be called once per bus before any Acquire.
func (c *Controller) Init(bus Bus) {
	c.check(bus)
	conf := &c.buses[bus]

	c.InitPins(bus)

	c.clk.EnableClock(conf.ClockBus, conf.ClockMask)
	conf.Dev.SetCTL0(0)
	conf.Dev.SetI2SCTL(0)
	conf.Dev.SetCTL1(ctl1Settings)
	c.clk.DisableClock(conf.ClockBus, conf.ClockMask)

	core.RecordEvent(core.EvtInit, uint8(bus), 0, 0)
}

// InitPins configures MOSI and SCLK as outputs and MISO as input, each bound
// to its alternate function. Unassigned lines are skipped.
func (c *Controller) InitPins(bus Bus) {
	if err := c.InitWithGPIOMode(bus, defaultGPIOMode); err != nil {
		core.DebugPrintln("[spi] init pins: " + err.Error())
	}
}

// InitWithGPIOMode is InitPins with caller-chosen pin modes.
func (c *Controller) InitWithGPIOMode(bus Bus, mode GPIOMode) error {
	c.check(bus)
	conf := &c.buses[bus]

	lines := [...]struct {
		pin  core.Pin
		mode core.GPIOMode
		af   core.AF
	}{
		{conf.MOSI, mode.MOSI, conf.MOSIAF},
		{conf.MISO, mode.MISO, conf.MISOAF},
		{conf.SCLK, mode.SCLK, conf.SCLKAF},
	}

	var errs []error
	for _, l := range lines {
		if !c.gpio.IsValid(l.pin) {
			continue
		}
		if err := c.gpio.Configure(l.pin, l.mode); err != nil {
			errs = append(errs, err)
		}
		if err := c.gpio.ConfigureAF(l.pin, l.af); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InitCS prepares a chip select for use on bus. Software chip selects are
// left high (inactive).
func (c *Controller) InitCS(bus Bus, cs ChipSelect) error {
	if int(bus) >= len(c.buses) {
		return ErrNoDevice
	}
	conf := &c.buses[bus]

	if cs.IsHardware() {
		if !c.gpio.IsValid(conf.CS) {
			return ErrNoChipSelect
		}
		if err := c.gpio.Configure(conf.CS, core.GPIOOut); err != nil {
			return err
		}
		return c.gpio.ConfigureAF(conf.CS, conf.CSAF)
	}

	pin, _ := cs.Pin()
	if !c.gpio.IsValid(pin) {
		return ErrInvalidChipSelect
	}
	if err := c.gpio.Configure(pin, core.GPIOOut); err != nil {
		return err
	}
	c.gpio.Set(pin)
	return nil
}

// Acquire locks bus and configures it for mode and clk. It blocks until the
// bus is free. Every Acquire must be paired with one Release from the same
// goroutine.
func (c *Controller) Acquire(bus Bus, cs ChipSelect, mode Mode, clk Clock) {
	c.check(bus)
	if mode&^Mode3 != 0 {
		panic("spi: invalid mode")
	}
	if clk == 0 {
		panic("spi: zero clock")
	}
	conf := &c.buses[bus]
	st := &c.state[bus]

	st.mu.Lock()

	if conf.PMMode != core.PMModeNone && c.pm != nil {
		c.pm.Block(conf.PMMode)
	}
	c.clk.EnableClock(conf.ClockBus, conf.ClockMask)

	div := c.divider(conf, st, clk)
	if core.IsDebugEnabled() {
		core.DebugPrintln("[spi] acquire: requested clock: " + core.Utoa(uint32(clk)) +
			", resulting clock: " + core.Utoa(dividedClock(st.busHz, div)) +
			" BR divider: " + core.Utoa(uint32(div)))
	}

	ctl0 := uint32(div)<<CTL0_PSC_Pos | uint32(mode) | CTL0_MSTMOD
	ctl1 := uint32(ctl1Settings)
	if cs.IsHardware() {
		ctl1 |= CTL1_NSSDRV
	} else {
		ctl0 |= CTL0_SWNSSEN | CTL0_SWNSS
	}

	if conf.HasDMA() {
		ctl1 |= CTL1_DMAREN | CTL1_DMATEN
		data := conf.Dev.DataAddr()

		c.dma.Acquire(conf.DMA.TX)
		c.dma.Setup(conf.DMA.TX, core.DMAConfig{
			Channel: conf.DMA.TXChan,
			Periph:  data,
			Dir:     core.DMAMemToPeriph,
			Width:   core.DMAWidthByte,
		})

		c.dma.Acquire(conf.DMA.RX)
		c.dma.Setup(conf.DMA.RX, core.DMAConfig{
			Channel: conf.DMA.RXChan,
			Periph:  data,
			Dir:     core.DMAPeriphToMem,
			Width:   core.DMAWidthByte,
		})
	}

	conf.Dev.SetCTL0(ctl0)
	conf.Dev.SetCTL1(ctl1)

	core.RecordEvent(core.EvtAcquire, uint8(bus), uint32(clk), uint32(div))
}

// divider returns the PSC code for clk, recomputing only when clk differs
// from the cached request. Callers hold st.mu.
func (c *Controller) divider(conf *BusConfig, st *busState, clk Clock) uint8 {
	if clk != st.clock {
		st.busHz = c.clk.BusFrequency(conf.ClockBus)
		st.divider = clockDivider(st.busHz, uint32(clk))
		st.clock = clk
	}
	return st.divider
}

// Release disables bus and unlocks it.
func (c *Controller) Release(bus Bus) {
	c.check(bus)
	conf := &c.buses[bus]
	st := &c.state[bus]

	if conf.HasDMA() {
		c.dma.Release(conf.DMA.TX)
		c.dma.Release(conf.DMA.RX)
	}

	// Clears the DMA and NSS drive bits as well
	conf.Dev.SetCTL0(0)
	conf.Dev.SetCTL1(ctl1Settings)
	c.clk.DisableClock(conf.ClockBus, conf.ClockMask)

	if conf.PMMode != core.PMModeNone && c.pm != nil {
		c.pm.Unblock(conf.PMMode)
	}

	core.RecordEvent(core.EvtRelease, uint8(bus), 0, 0)
	st.mu.Unlock()
}

// Transfer exchanges bytes on an acquired bus. A nil out sends zeros, a nil
// in discards what is received; passing neither is a bug. With cont set the
// chip select stays asserted for the next transfer.
func (c *Controller) Transfer(bus Bus, cs ChipSelect, cont bool, out, in []byte) {
	if out == nil && in == nil {
		panic("spi: transfer without buffers")
	}
	if out != nil && in != nil && len(out) != len(in) {
		panic("spi: tx and rx buffer lengths must match")
	}
	c.check(bus)
	conf := &c.buses[bus]

	n := len(out)
	if out == nil {
		n = len(in)
	}

	// Enabling the device pulls the hardware CS line low
	dev := conf.Dev
	dev.SetCTL0(dev.CTL0() | CTL0_SPIEN)
	pin, sw := cs.Pin()
	if sw {
		c.gpio.Clear(pin)
	}

	var contFlag uint32
	if cont {
		contFlag = 1
	}
	if conf.HasDMA() {
		c.transferDMA(conf, &c.state[bus], out, in, n)
		core.RecordEvent(core.EvtDMA, uint8(bus), uint32(n), contFlag)
	} else {
		transferPolled(dev, out, in, n)
		core.RecordEvent(core.EvtTransfer, uint8(bus), uint32(n), contFlag)
	}

	if !cont {
		dev.SetCTL0(dev.CTL0() &^ CTL0_SPIEN)
		if sw {
			c.gpio.Set(pin)
		}
	}
}

// TransferByte sends out and returns the byte clocked in.
func (c *Controller) TransferByte(bus Bus, cs ChipSelect, cont bool, out byte) byte {
	tx := [1]byte{out}
	var rx [1]byte
	c.Transfer(bus, cs, cont, tx[:], rx[:])
	return rx[0]
}

// TransferReg writes reg followed by out and returns the byte read during
// the second frame.
func (c *Controller) TransferReg(bus Bus, cs ChipSelect, reg, out byte) byte {
	c.TransferByte(bus, cs, true, reg)
	return c.TransferByte(bus, cs, false, out)
}

// TransferRegs writes reg and then exchanges out/in like Transfer.
func (c *Controller) TransferRegs(bus Bus, cs ChipSelect, reg byte, out, in []byte) {
	c.TransferByte(bus, cs, true, reg)
	c.Transfer(bus, cs, false, out, in)
}
