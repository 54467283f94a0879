package sim

import (
	"sync"

	"gd32spi/core"
	"gd32spi/spi"
)

// Port is a peripheral data register DMA streams can be bound to.
type Port interface {
	STAT() uint32
	ReadData() uint8
	WriteData(b uint8)
	DataAddr() uintptr
	DMARequests() (tx, rx bool)
}

// DMAOp is one recorded stream operation
type DMAOp struct {
	Op     string // "start" or "stop"
	Stream core.DMAStream
}

type stream struct {
	lock sync.Mutex // Reservation

	held     bool
	cfg      core.DMAConfig
	bound    bool
	buf      []byte
	n        int
	incr     bool
	running  bool
	done     int
	prepared bool
}

// DMA models a DMA controller whose streams move bytes between memory and
// attached ports. A memory-to-peripheral stream runs its whole transfer when
// started, feeding the peripheral-to-memory stream of the same port only if
// that stream is already running.
type DMA struct {
	mu      sync.Mutex
	streams map[core.DMAStream]*stream
	ports   map[uintptr]Port
	ops     []DMAOp
}

var (
	_ core.DMADriver  = (*DMA)(nil)
	_ core.DMAStopper = (*DMA)(nil)
)

// NewDMA creates the DMA model
func NewDMA() *DMA {
	return &DMA{
		streams: make(map[core.DMAStream]*stream),
		ports:   make(map[uintptr]Port),
	}
}

// Attach makes p reachable at its data register address
func (d *DMA) Attach(p Port) {
	d.mu.Lock()
	d.ports[p.DataAddr()] = p
	d.mu.Unlock()
}

func (d *DMA) stream(s core.DMAStream) *stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.streams[s]
	if !ok {
		st = &stream{}
		d.streams[s] = st
	}
	return st
}

func (d *DMA) Acquire(s core.DMAStream) {
	st := d.stream(s)
	st.lock.Lock()
	d.mu.Lock()
	st.held = true
	d.mu.Unlock()
}

func (d *DMA) Release(s core.DMAStream) {
	st := d.stream(s)
	d.mu.Lock()
	if !st.held {
		d.mu.Unlock()
		panic("sim: release of unreserved DMA stream")
	}
	st.held = false
	st.bound = false
	st.running = false
	d.mu.Unlock()
	st.lock.Unlock()
}

func (d *DMA) Setup(s core.DMAStream, cfg core.DMAConfig) {
	st := d.stream(s)
	d.mu.Lock()
	defer d.mu.Unlock()
	if !st.held {
		panic("sim: setup of unreserved DMA stream")
	}
	if _, ok := d.ports[cfg.Periph]; !ok {
		panic("sim: DMA bound to unknown peripheral address " + core.Htoa(uint32(cfg.Periph)))
	}
	st.cfg = cfg
	st.bound = true
}

func (d *DMA) Prepare(s core.DMAStream, buf []byte, n int, incr bool) {
	st := d.stream(s)
	d.mu.Lock()
	defer d.mu.Unlock()
	if !st.bound {
		panic("sim: prepare of unbound DMA stream")
	}
	if n > 0 && (len(buf) == 0 || (incr && len(buf) < n)) {
		panic("sim: DMA buffer too short")
	}
	st.buf = buf
	st.n = n
	st.incr = incr
	st.done = 0
	st.running = false
	st.prepared = true
}

func (d *DMA) Start(s core.DMAStream) {
	st := d.stream(s)
	d.mu.Lock()
	if !st.prepared {
		d.mu.Unlock()
		panic("sim: start of unprepared DMA stream")
	}
	st.running = true
	st.prepared = false
	d.ops = append(d.ops, DMAOp{Op: "start", Stream: s})
	if st.cfg.Dir != core.DMAMemToPeriph {
		d.mu.Unlock()
		return
	}

	port := d.ports[st.cfg.Periph]
	var rx *stream
	for _, other := range d.streams {
		if other != st && other.running && other.bound &&
			other.cfg.Dir == core.DMAPeriphToMem && other.cfg.Periph == st.cfg.Periph {
			rx = other
		}
	}
	d.mu.Unlock()

	txReq, rxReq := port.DMARequests()
	if !txReq {
		panic("sim: TX DMA request disabled on peripheral")
	}
	if !rxReq {
		rx = nil
	}

	for i := 0; i < st.n; i++ {
		for port.STAT()&spi.STAT_TBE == 0 {
		}
		if st.incr {
			port.WriteData(st.buf[i])
		} else {
			port.WriteData(st.buf[0])
		}
		if rx == nil {
			continue
		}
		for port.STAT()&spi.STAT_RBNE == 0 {
		}
		b := port.ReadData()
		if rx.incr {
			rx.buf[rx.done] = b
		} else {
			rx.buf[0] = b
		}
		rx.done++
	}
	st.done = st.n
}

func (d *DMA) Wait(s core.DMAStream) {
	st := d.stream(s)
	d.mu.Lock()
	defer d.mu.Unlock()
	if !st.running {
		panic("sim: wait on a stream that was not started")
	}
	if st.done < st.n {
		panic("sim: DMA stream would never complete")
	}
}

func (d *DMA) Stop(s core.DMAStream) {
	st := d.stream(s)
	d.mu.Lock()
	st.running = false
	d.ops = append(d.ops, DMAOp{Op: "stop", Stream: s})
	d.mu.Unlock()
}

// Ops returns the recorded start/stop operations
func (d *DMA) Ops() []DMAOp {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DMAOp(nil), d.ops...)
}

// ResetOps forgets the recorded operations
func (d *DMA) ResetOps() {
	d.mu.Lock()
	d.ops = nil
	d.mu.Unlock()
}

// Held reports whether stream s is reserved
func (d *DMA) Held(s core.DMAStream) bool {
	st := d.stream(s)
	d.mu.Lock()
	defer d.mu.Unlock()
	return st.held
}

// Bound returns the configuration of stream s
func (d *DMA) Bound(s core.DMAStream) (core.DMAConfig, bool) {
	st := d.stream(s)
	d.mu.Lock()
	defer d.mu.Unlock()
	return st.cfg, st.bound
}
