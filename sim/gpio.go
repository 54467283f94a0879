package sim

import (
	"errors"
	"sync"

	"gd32spi/core"
)

var errInvalidPin = errors.New("sim: invalid pin")

type pinState struct {
	mode       core.GPIOMode
	configured bool
	af         core.AF
	hasAF      bool
	level      bool
	rises      int
	falls      int
}

// GPIO models the GPIO ports A..F. Lines start low and unconfigured.
type GPIO struct {
	mu    sync.Mutex
	pins  map[core.Pin]*pinState
	fails map[core.Pin]error
}

var _ core.GPIODriver = (*GPIO)(nil)

// NewGPIO creates the GPIO model
func NewGPIO() *GPIO {
	return &GPIO{
		pins:  make(map[core.Pin]*pinState),
		fails: make(map[core.Pin]error),
	}
}

func (g *GPIO) pin(p core.Pin) *pinState {
	st, ok := g.pins[p]
	if !ok {
		st = &pinState{}
		g.pins[p] = st
	}
	return st
}

// FailConfigure makes every Configure/ConfigureAF of pin return err
func (g *GPIO) FailConfigure(pin core.Pin, err error) {
	g.mu.Lock()
	g.fails[pin] = err
	g.mu.Unlock()
}

func (g *GPIO) Configure(pin core.Pin, mode core.GPIOMode) error {
	if !g.IsValid(pin) {
		return errInvalidPin
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fails[pin]; err != nil {
		return err
	}
	st := g.pin(pin)
	st.mode = mode
	st.configured = true
	st.hasAF = false
	return nil
}

func (g *GPIO) ConfigureAF(pin core.Pin, af core.AF) error {
	if !g.IsValid(pin) {
		return errInvalidPin
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fails[pin]; err != nil {
		return err
	}
	st := g.pin(pin)
	st.af = af
	st.hasAF = true
	return nil
}

func (g *GPIO) Set(pin core.Pin) {
	g.mu.Lock()
	st := g.pin(pin)
	if !st.level {
		st.rises++
	}
	st.level = true
	g.mu.Unlock()
}

func (g *GPIO) Clear(pin core.Pin) {
	g.mu.Lock()
	st := g.pin(pin)
	if st.level {
		st.falls++
	}
	st.level = false
	g.mu.Unlock()
}

func (g *GPIO) IsValid(pin core.Pin) bool {
	return pin != core.NoPin && pin.Port() < core.NumPorts
}

// Level returns the output level of pin
func (g *GPIO) Level(pin core.Pin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pin(pin).level
}

// Mode returns the configured mode of pin
func (g *GPIO) Mode(pin core.Pin) (core.GPIOMode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.pin(pin)
	return st.mode, st.configured
}

// AF returns the alternate function bound to pin
func (g *GPIO) AF(pin core.Pin) (core.AF, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.pin(pin)
	return st.af, st.hasAF
}

// Edges returns how often pin rose and fell
func (g *GPIO) Edges(pin core.Pin) (rises, falls int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.pin(pin)
	return st.rises, st.falls
}
