//go:build tinygo && gd32e23x

package main

import (
	"device/arm"
	"image/color"
	"time"

	"tinygo.org/x/drivers/apa102"

	"gd32spi/core"
	"gd32spi/spi"
)

const numLEDs = 8

func main() {
	clk := NewGD32Clock()
	core.SetClockDriver(clk)
	core.SetGPIODriver(NewGD32GPIO(clk))
	core.SetDMADriver(NewGD32DMA(clk))
	guard := &sleepGuard{}
	core.SetPowerManager(guard)

	core.SetDebugWriter(func(s string) { println(s) })
	core.SetDebugEnabled(true)

	ctrl := spi.NewController(spiBuses)
	for i := 0; i < ctrl.NumBuses(); i++ {
		ctrl.Init(spi.Bus(i))
	}

	flash, err := ctrl.NewDevice(busSPI0, spi.HardwareCS(), spi.Mode0, spi.Clock10MHz)
	if err != nil {
		core.DebugPrintln("[main] spi0 flash: " + err.Error())
	} else {
		readJEDEC(flash)
	}

	strip, err := ctrl.NewDevice(busSPI1, spi.HardwareCS(), spi.Mode0, spi.Clock5MHz)
	if err != nil {
		core.DebugPrintln("[main] spi1 leds: " + err.Error())
		core.DumpEventRing()
		for {
			time.Sleep(time.Second)
		}
	}
	leds := apa102.New(strip)

	// Only the acquire trace of the first frame is interesting
	core.SetDebugEnabled(false)

	colors := make([]color.RGBA, numLEDs)
	for frame := uint8(0); ; frame++ {
		for i := range colors {
			colors[i] = wheel(frame + uint8(i*256/numLEDs))
		}
		if _, err := leds.WriteColors(colors); err != nil {
			core.DebugPrintln("[main] leds: " + err.Error())
			core.DumpEventRing()
		}

		if guard.deepest() >= core.PMModeSleep {
			arm.Asm("wfi")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// readJEDEC prints the manufacturer and device ID of a SPI NOR flash
func readJEDEC(d *spi.Device) {
	tx := []byte{0x9f, 0, 0, 0}
	rx := make([]byte, len(tx))
	if err := d.Tx(tx, rx); err != nil {
		core.DebugPrintln("[main] jedec: " + err.Error())
		return
	}
	id := uint32(rx[1])<<16 | uint32(rx[2])<<8 | uint32(rx[3])
	core.DebugPrintln("[main] flash JEDEC id " + core.Htoa(id))
}

// wheel maps 0..255 onto a red-green-blue color circle
func wheel(pos uint8) color.RGBA {
	switch {
	case pos < 85:
		return color.RGBA{R: 255 - pos*3, G: pos * 3, A: 255}
	case pos < 170:
		pos -= 85
		return color.RGBA{G: 255 - pos*3, B: pos * 3, A: 255}
	default:
		pos -= 170
		return color.RGBA{R: pos * 3, B: 255 - pos*3, A: 255}
	}
}
