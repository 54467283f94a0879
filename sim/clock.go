package sim

import (
	"sync"

	"gd32spi/core"
)

// DefaultBusHz is the frequency of every bus after reset of the model
const DefaultBusHz = 72000000

// Clock models the RCU clock gates and bus frequencies.
type Clock struct {
	mu      sync.Mutex
	freq    map[core.ClockBus]uint32
	enabled map[core.ClockBus]uint32
	reads   int
}

var _ core.ClockDriver = (*Clock)(nil)

// NewClock creates the clock model with every bus at DefaultBusHz
func NewClock() *Clock {
	return &Clock{
		freq: map[core.ClockBus]uint32{
			core.AHB:  DefaultBusHz,
			core.APB1: DefaultBusHz,
			core.APB2: DefaultBusHz,
		},
		enabled: make(map[core.ClockBus]uint32),
	}
}

// SetFrequency changes the frequency reported for bus
func (c *Clock) SetFrequency(bus core.ClockBus, hz uint32) {
	c.mu.Lock()
	c.freq[bus] = hz
	c.mu.Unlock()
}

func (c *Clock) EnableClock(bus core.ClockBus, mask uint32) {
	c.mu.Lock()
	c.enabled[bus] |= mask
	c.mu.Unlock()
}

func (c *Clock) DisableClock(bus core.ClockBus, mask uint32) {
	c.mu.Lock()
	c.enabled[bus] &^= mask
	c.mu.Unlock()
}

func (c *Clock) BusFrequency(bus core.ClockBus) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	return c.freq[bus]
}

// Enabled reports whether all bits of mask are enabled on bus
func (c *Clock) Enabled(bus core.ClockBus, mask uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled[bus]&mask == mask
}

// FrequencyReads counts BusFrequency calls
func (c *Clock) FrequencyReads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
