package sim

import (
	"sync"

	"gd32spi/core"
)

// PM counts blocks per low-power mode.
type PM struct {
	mu      sync.Mutex
	blocked map[core.PMMode]int
}

var _ core.PowerManager = (*PM)(nil)

// NewPM creates the power management model
func NewPM() *PM {
	return &PM{blocked: make(map[core.PMMode]int)}
}

func (p *PM) Block(mode core.PMMode) {
	p.mu.Lock()
	p.blocked[mode]++
	p.mu.Unlock()
}

func (p *PM) Unblock(mode core.PMMode) {
	p.mu.Lock()
	if p.blocked[mode] == 0 {
		p.mu.Unlock()
		panic("sim: unblock of a mode that is not blocked")
	}
	p.blocked[mode]--
	p.mu.Unlock()
}

// Blocked returns the number of outstanding blocks of mode
func (p *PM) Blocked(mode core.PMMode) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blocked[mode]
}
