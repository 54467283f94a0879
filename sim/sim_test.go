package sim

import (
	"testing"

	"gd32spi/core"
	"gd32spi/spi"
)

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

// pollUntil reads STAT until mask is set
func pollUntil(s *SPI, mask uint32) {
	for s.STAT()&mask == 0 {
	}
}

func enabled() *SPI {
	s := NewSPI()
	s.SetCTL1(spi.CTL1_BYTEN | spi.CTL1_DZ8)
	s.SetCTL0(spi.CTL0_MSTMOD | spi.CTL0_SPIEN)
	return s
}

func TestSPIShiftsOnlyWhenEnabled(t *testing.T) {
	s := NewSPI()
	s.SetCTL0(spi.CTL0_MSTMOD)
	s.WriteData(0x42)

	for i := 0; i < 10; i++ {
		if s.STAT()&spi.STAT_TBE != 0 {
			t.Fatal("Expected frame held while the controller is disabled")
		}
	}

	s.SetCTL0(spi.CTL0_MSTMOD | spi.CTL0_SPIEN)
	pollUntil(s, spi.STAT_RBNE)
	if b := s.ReadData(); b != 0x42 {
		t.Errorf("Expected echo 0x42, got %#x", b)
	}
	if !s.Idle() {
		t.Error("Expected controller idle")
	}
}

func TestSPIReceiveOverrun(t *testing.T) {
	s := enabled()

	for i := 0; i < rxFIFODepth+2; i++ {
		pollUntil(s, spi.STAT_TBE)
		s.WriteData(byte(i))
	}
	for s.STAT()&spi.STAT_TRANS != 0 {
	}

	if s.Pending() != rxFIFODepth {
		t.Errorf("Expected %d frames pending, got %d", rxFIFODepth, s.Pending())
	}
	if s.STAT()&spi.STAT_RXORERR == 0 {
		t.Fatal("Expected overrun flag")
	}

	// DATA read then STAT read clears the flag
	s.ReadData()
	s.STAT()
	if s.STAT()&spi.STAT_RXORERR != 0 {
		t.Error("Expected overrun flag cleared")
	}
}

func TestSPISpuriousRead(t *testing.T) {
	s := enabled()
	if b := s.ReadData(); b != 0 {
		t.Errorf("Expected 0 from an empty FIFO, got %#x", b)
	}
	if s.SpuriousReads() != 1 {
		t.Errorf("Expected 1 spurious read, got %d", s.SpuriousReads())
	}
}

func TestSPIStallPanics(t *testing.T) {
	s := NewSPI()
	expectPanic(t, "stalled RBNE wait", func() {
		pollUntil(s, spi.STAT_RBNE)
	})
}

func TestSPINSSTracking(t *testing.T) {
	s := NewSPI()
	s.SetCTL1(spi.CTL1_NSSDRV)
	s.SetCTL0(spi.CTL0_MSTMOD | spi.CTL0_SPIEN)
	if !s.NSSLow() {
		t.Error("Expected NSS low with SPIEN and NSSDRV")
	}
	s.SetCTL0(spi.CTL0_MSTMOD)
	falls, rises := s.NSSEdges()
	if falls != 1 || rises != 1 {
		t.Errorf("Expected one NSS cycle, got %d falls %d rises", falls, rises)
	}
}

func TestSPIUniqueAddresses(t *testing.T) {
	a, b := NewSPI(), NewSPI()
	if a.DataAddr() == b.DataAddr() {
		t.Error("Expected distinct data register addresses")
	}
}

func setupPair(t *testing.T) (*Hardware, *SPI) {
	t.Helper()
	hw := New()
	s := hw.NewSPI()
	s.SetCTL1(spi.CTL1_DMAREN | spi.CTL1_DMATEN)
	s.SetCTL0(spi.CTL0_MSTMOD | spi.CTL0_SPIEN)

	for _, c := range []struct {
		stream core.DMAStream
		dir    core.DMADirection
	}{{1, core.DMAMemToPeriph}, {2, core.DMAPeriphToMem}} {
		hw.DMA.Acquire(c.stream)
		hw.DMA.Setup(c.stream, core.DMAConfig{Periph: s.DataAddr(), Dir: c.dir})
	}
	return hw, s
}

func TestDMAExchange(t *testing.T) {
	hw, s := setupPair(t)
	s.SetResponder(func(b byte) byte { return b * 2 })

	out := []byte{1, 2, 3, 4, 5, 6}
	in := make([]byte, len(out))
	hw.DMA.Prepare(2, in, len(in), true)
	hw.DMA.Prepare(1, out, len(out), true)
	hw.DMA.Start(2)
	hw.DMA.Start(1)
	hw.DMA.Wait(2)
	hw.DMA.Wait(1)

	for i := range out {
		if in[i] != out[i]*2 {
			t.Errorf("byte %d: expected %d, got %d", i, out[i]*2, in[i])
		}
	}
}

func TestDMATxBeforeRxNeverCompletes(t *testing.T) {
	hw, _ := setupPair(t)

	out := []byte{1, 2}
	in := make([]byte, 2)
	hw.DMA.Prepare(2, in, 2, true)
	hw.DMA.Prepare(1, out, 2, true)
	hw.DMA.Start(1)
	hw.DMA.Start(2)

	expectPanic(t, "RX armed late", func() {
		hw.DMA.Wait(2)
	})
}

func TestDMAReservation(t *testing.T) {
	hw := New()

	expectPanic(t, "release unreserved", func() {
		hw.DMA.Release(3)
	})
	expectPanic(t, "setup unreserved", func() {
		hw.DMA.Setup(3, core.DMAConfig{})
	})

	hw.DMA.Acquire(3)
	if !hw.DMA.Held(3) {
		t.Error("Expected stream 3 held")
	}
	expectPanic(t, "unknown peripheral", func() {
		hw.DMA.Setup(3, core.DMAConfig{Periph: 0x1234})
	})
	hw.DMA.Release(3)
	if hw.DMA.Held(3) {
		t.Error("Expected stream 3 free")
	}
}

func TestPMUnblockWithoutBlock(t *testing.T) {
	pm := NewPM()
	pm.Block(core.PMModeSleep)
	pm.Unblock(core.PMModeSleep)
	expectPanic(t, "unbalanced unblock", func() {
		pm.Unblock(core.PMModeSleep)
	})
}

func TestGPIOEdges(t *testing.T) {
	g := NewGPIO()
	p := core.PinAt(1, 1)

	if err := g.Configure(core.NoPin, core.GPIOOut); err == nil {
		t.Error("Expected error for NoPin")
	}

	g.Set(p)
	g.Set(p)
	g.Clear(p)
	rises, falls := g.Edges(p)
	if rises != 1 || falls != 1 {
		t.Errorf("Expected 1 rise and 1 fall, got %d/%d", rises, falls)
	}
}
