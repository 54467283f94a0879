//go:build tinygo && gd32e23x

package main

import (
	"sync"

	"gd32spi/core"
)

// sleepGuard implements core.PowerManager by counting blocks per mode. The
// idle loop asks it which low-power mode may be entered.
type sleepGuard struct {
	mu      sync.Mutex
	blocked [core.PMModeStandby + 1]int
}

func (g *sleepGuard) Block(mode core.PMMode) {
	g.mu.Lock()
	g.blocked[mode]++
	g.mu.Unlock()
}

func (g *sleepGuard) Unblock(mode core.PMMode) {
	g.mu.Lock()
	if g.blocked[mode] > 0 {
		g.blocked[mode]--
	}
	g.mu.Unlock()
}

// deepest returns the deepest mode nobody blocks. Blocking a mode also
// blocks every deeper one.
func (g *sleepGuard) deepest() core.PMMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	for m := core.PMModeSleep; m <= core.PMModeStandby; m++ {
		if g.blocked[m] > 0 {
			return m - 1
		}
	}
	return core.PMModeStandby
}
