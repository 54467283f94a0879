package sim

import (
	"sync"

	"gd32spi/core"
	"gd32spi/spi"
)

// Responder produces the byte a peripheral shifts back for each byte it
// receives.
type Responder func(b byte) byte

// Echo returns every byte unchanged (MISO wired to MOSI).
func Echo(b byte) byte { return b }

const (
	rxFIFODepth = 4       // Frames held by the receive FIFO in byte mode
	shiftPolls  = 2       // STAT reads a frame spends in the shift register
	stallPolls  = 1 << 20 // STAT reads without progress before giving up
)

var (
	addrMu   sync.Mutex
	nextBase uintptr = 0x40013000
)

// SPI models the register block of one GD32E23x SPI controller wired to a
// peripheral. Time advances with every STAT read.
type SPI struct {
	mu   sync.Mutex
	base uintptr

	ctl0, ctl1, i2sctl uint32

	txFull bool
	txByte byte

	shifting  bool
	shiftByte byte
	shiftLeft int

	rx        []byte
	overrun   bool
	ovrRead   bool
	respond   Responder
	sent      []byte
	idlePolls int

	ctl0Writes    int
	spuriousReads int
	nssLow        bool
	nssFalls      int
	nssRises      int
}

var _ spi.Registers = (*SPI)(nil)

// NewSPI creates a controller with an echoing peripheral at a fresh address.
func NewSPI() *SPI {
	addrMu.Lock()
	base := nextBase
	nextBase += 0x400
	addrMu.Unlock()

	return &SPI{base: base, respond: Echo}
}

// SetResponder replaces the peripheral model
func (s *SPI) SetResponder(r Responder) {
	s.mu.Lock()
	s.respond = r
	s.mu.Unlock()
}

func (s *SPI) running() bool {
	return s.ctl0&spi.CTL0_SPIEN != 0 && s.ctl0&spi.CTL0_MSTMOD != 0
}

// updateNSS tracks the level of the hardware NSS output
func (s *SPI) updateNSS() {
	low := s.ctl0&spi.CTL0_SPIEN != 0 && s.ctl1&spi.CTL1_NSSDRV != 0
	if low && !s.nssLow {
		s.nssFalls++
	} else if !low && s.nssLow {
		s.nssRises++
	}
	s.nssLow = low
}

// step advances the shift register by one poll.
func (s *SPI) step() {
	progressed := false

	if s.shifting {
		s.shiftLeft--
		progressed = true
		if s.shiftLeft <= 0 {
			s.shifting = false
			b := s.respond(s.shiftByte)
			if len(s.rx) < rxFIFODepth {
				s.rx = append(s.rx, b)
			} else {
				s.overrun = true
			}
		}
	}

	if !s.shifting && s.txFull && s.running() {
		s.shifting = true
		s.shiftByte = s.txByte
		s.shiftLeft = shiftPolls
		s.txFull = false
		s.sent = append(s.sent, s.txByte)
		progressed = true
	}

	if progressed {
		s.idlePolls = 0
		return
	}
	s.idlePolls++
	if s.idlePolls > stallPolls {
		panic("sim: SPI at " + core.Htoa(uint32(s.base)) + " stalled")
	}
}

func (s *SPI) CTL0() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl0
}

func (s *SPI) SetCTL0(v uint32) {
	s.mu.Lock()
	s.ctl0 = v
	s.ctl0Writes++
	s.idlePolls = 0
	s.updateNSS()
	s.mu.Unlock()
}

func (s *SPI) CTL1() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl1
}

func (s *SPI) SetCTL1(v uint32) {
	s.mu.Lock()
	s.ctl1 = v
	s.idlePolls = 0
	s.updateNSS()
	s.mu.Unlock()
}

func (s *SPI) STAT() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.step()

	var stat uint32
	if len(s.rx) > 0 {
		stat |= spi.STAT_RBNE
	}
	if !s.txFull {
		stat |= spi.STAT_TBE
	}
	if s.shifting || s.txFull {
		stat |= spi.STAT_TRANS
	}
	if s.overrun {
		stat |= spi.STAT_RXORERR
		// Cleared by a DATA read followed by a STAT read
		if s.ovrRead {
			s.overrun = false
			s.ovrRead = false
		}
	}
	return stat
}

func (s *SPI) ReadData() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idlePolls = 0
	if s.overrun {
		s.ovrRead = true
	}
	if len(s.rx) == 0 {
		s.spuriousReads++
		return 0
	}
	b := s.rx[0]
	s.rx = s.rx[1:]
	return b
}

func (s *SPI) WriteData(b uint8) {
	s.mu.Lock()
	s.txByte = b
	s.txFull = true
	s.idlePolls = 0
	s.mu.Unlock()
}

func (s *SPI) SetI2SCTL(v uint32) {
	s.mu.Lock()
	s.i2sctl = v
	s.mu.Unlock()
}

func (s *SPI) DataAddr() uintptr {
	return s.base + spi.OffDATA
}

// DMARequests reports whether the TX and RX DMA requests are enabled
func (s *SPI) DMARequests() (tx, rx bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl1&spi.CTL1_DMATEN != 0, s.ctl1&spi.CTL1_DMAREN != 0
}

// Sent returns a copy of every byte shifted out so far
func (s *SPI) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.sent...)
}

// ResetSent forgets the transmit log
func (s *SPI) ResetSent() {
	s.mu.Lock()
	s.sent = nil
	s.mu.Unlock()
}

// Pending returns the number of frames waiting in the receive FIFO
func (s *SPI) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rx)
}

// Idle reports whether nothing is queued or shifting
func (s *SPI) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.txFull && !s.shifting
}

// CTL0Writes counts writes to CTL0
func (s *SPI) CTL0Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl0Writes
}

// SpuriousReads counts DATA reads with an empty receive FIFO
func (s *SPI) SpuriousReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spuriousReads
}

// I2SCTL returns the last value written to I2SCTL
func (s *SPI) I2SCTL() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.i2sctl
}

// NSSEdges returns how often the hardware NSS line fell and rose
func (s *SPI) NSSEdges() (falls, rises int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nssFalls, s.nssRises
}

// NSSLow reports whether the hardware NSS line is asserted
func (s *SPI) NSSLow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nssLow
}
