package spi

import "gd32spi/core"

// waitForEnd spins until the last frame has left the shift register, see
// the reference manual section on disabling the SPI. No timeout, no yield.
func waitForEnd(dev Registers) {
	for dev.STAT()&STAT_TBE == 0 {
	}
	for dev.STAT()&STAT_TRANS != 0 {
	}
}

// transferPolled moves n frames by spinning on the status flags.
func transferPolled(dev Registers, out, in []byte, n int) {
	for i := 0; i < n; i++ {
		for dev.STAT()&STAT_TBE == 0 {
		}
		var b byte
		if out != nil {
			b = out[i]
		}
		dev.WriteData(b)

		if in != nil {
			for dev.STAT()&STAT_RBNE == 0 {
			}
			in[i] = dev.ReadData()
		}
	}

	if in == nil {
		// Nothing was read while sending: let the last frame finish and
		// empty the receive FIFO, which may hold several frames.
		waitForEnd(dev)
		for dev.STAT()&STAT_RBNE != 0 {
			dev.ReadData()
		}
	}

	waitForEnd(dev)
}

// transferDMA moves n frames with the bus's DMA streams. The streams were
// bound to DATA by Acquire.
func (c *Controller) transferDMA(conf *BusConfig, st *busState, out, in []byte, n int) {
	tx, rx := conf.DMA.TX, conf.DMA.RX
	st.dummy[0] = 0

	if out != nil {
		c.dma.Prepare(tx, out, n, true)
	} else {
		c.dma.Prepare(tx, st.dummy[:], n, false)
	}
	if in != nil {
		c.dma.Prepare(rx, in, n, true)
	} else {
		c.dma.Prepare(rx, st.dummy[:], n, false)
	}

	// RX must be armed before TX activity starts clocking frames in
	c.dma.Start(rx)
	c.dma.Start(tx)

	c.dma.Wait(rx)
	c.dma.Wait(tx)

	if s, ok := c.dma.(core.DMAStopper); ok {
		s.Stop(rx)
		s.Stop(tx)
	}

	waitForEnd(conf.Dev)
}
