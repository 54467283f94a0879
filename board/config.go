// Package board turns a JSON board description into the bus table and
// device list the SPI driver works with.
package board

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gd32spi/core"
	"gd32spi/spi"
)

// RegistersFunc returns the register view of the bus named name at base
type RegistersFunc func(name string, base uint32) spi.Registers

// Device is a resolved DeviceSpec
type Device struct {
	Name  string
	Bus   spi.Bus
	CS    spi.ChipSelect
	Mode  spi.Mode
	Clock spi.Clock
}

// LoadConfig parses a JSON board description and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigFile reads and parses the board file at path
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}
	config, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	if config.Clocks == nil {
		config.Clocks = make(map[string]uint32)
	}
	for _, bus := range []string{"ahb", "apb1", "apb2"} {
		if config.Clocks[bus] == 0 {
			config.Clocks[bus] = 72000000
		}
	}

	for i := range config.Buses {
		bus := &config.Buses[i]
		if bus.ClockBus == "" {
			bus.ClockBus = "apb2"
		}
	}

	for i := range config.Devices {
		dev := &config.Devices[i]
		if dev.CS == "" {
			dev.CS = "hw"
		}
		if dev.Clock == 0 {
			dev.Clock = uint32(spi.Clock1MHz)
		}
		if dev.Bus == "" && len(config.Buses) > 0 {
			dev.Bus = config.Buses[0].Name
		}
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool)
	for _, bus := range c.Buses {
		if bus.Name == "" {
			return fmt.Errorf("bus without name")
		}
		if seen[bus.Name] {
			return fmt.Errorf("duplicate bus %q", bus.Name)
		}
		seen[bus.Name] = true

		if _, err := parseClockBus(bus.ClockBus); err != nil {
			return fmt.Errorf("bus %s: %w", bus.Name, err)
		}
		if _, err := parsePMMode(bus.PMMode); err != nil {
			return fmt.Errorf("bus %s: %w", bus.Name, err)
		}
		for _, pin := range []string{bus.MOSI, bus.MISO, bus.SCLK, bus.CS} {
			if _, err := parseOptionalPin(pin); err != nil {
				return fmt.Errorf("bus %s: %w", bus.Name, err)
			}
		}
	}

	for _, dev := range c.Devices {
		if dev.Mode > 3 {
			return fmt.Errorf("device %s: invalid mode %d", dev.Name, dev.Mode)
		}
		if !seen[dev.Bus] {
			return fmt.Errorf("device %s: unknown bus %q", dev.Name, dev.Bus)
		}
		if _, err := ParseChipSelect(dev.CS); err != nil {
			return fmt.Errorf("device %s: %w", dev.Name, err)
		}
	}
	return nil
}

// Frequencies returns the bus clock table keyed by clock domain
func (c *Config) Frequencies() map[core.ClockBus]uint32 {
	freqs := make(map[core.ClockBus]uint32, len(c.Clocks))
	for name, hz := range c.Clocks {
		if bus, err := parseClockBus(name); err == nil {
			freqs[bus] = hz
		}
	}
	return freqs
}

// BusTable builds the driver's bus table, asking regs for each register block.
func (c *Config) BusTable(regs RegistersFunc) ([]spi.BusConfig, error) {
	table := make([]spi.BusConfig, 0, len(c.Buses))
	for _, b := range c.Buses {
		clockBus, err := parseClockBus(b.ClockBus)
		if err != nil {
			return nil, fmt.Errorf("bus %s: %w", b.Name, err)
		}
		pm, err := parsePMMode(b.PMMode)
		if err != nil {
			return nil, fmt.Errorf("bus %s: %w", b.Name, err)
		}

		var pins [4]core.Pin
		for i, name := range []string{b.MOSI, b.MISO, b.SCLK, b.CS} {
			if pins[i], err = parseOptionalPin(name); err != nil {
				return nil, fmt.Errorf("bus %s: %w", b.Name, err)
			}
		}

		conf := spi.BusConfig{
			Name:      b.Name,
			Dev:       regs(b.Name, b.Base),
			ClockBus:  clockBus,
			ClockMask: b.ClockMask,
			MOSI:      pins[0],
			MISO:      pins[1],
			SCLK:      pins[2],
			CS:        pins[3],
			MOSIAF:    core.AF(b.AF),
			MISOAF:    core.AF(b.AF),
			SCLKAF:    core.AF(b.AF),
			CSAF:      core.AF(b.AF),
			PMMode:    pm,
		}
		if b.DMA != nil {
			conf.DMA = &spi.DMABinding{
				TX:     core.DMAStream(b.DMA.TX),
				TXChan: b.DMA.TXChan,
				RX:     core.DMAStream(b.DMA.RX),
				RXChan: b.DMA.RXChan,
			}
		}
		table = append(table, conf)
	}
	return table, nil
}

// Device resolves the device called name
func (c *Config) Device(name string) (Device, error) {
	for _, d := range c.Devices {
		if d.Name != name {
			continue
		}
		cs, err := ParseChipSelect(d.CS)
		if err != nil {
			return Device{}, fmt.Errorf("device %s: %w", name, err)
		}
		for i, b := range c.Buses {
			if b.Name == d.Bus {
				return Device{
					Name:  d.Name,
					Bus:   spi.Bus(i),
					CS:    cs,
					Mode:  spi.Mode(d.Mode),
					Clock: spi.Clock(d.Clock),
				}, nil
			}
		}
		return Device{}, fmt.Errorf("device %s: unknown bus %q", name, d.Bus)
	}
	return Device{}, fmt.Errorf("unknown device %q", name)
}

// ParseChipSelect accepts "hw", a pin name such as "PB1", or a raw
// chip-select number in decimal or 0x hex.
func ParseChipSelect(s string) (spi.ChipSelect, error) {
	if strings.EqualFold(s, "hw") {
		return spi.HardwareCS(), nil
	}
	if pin, ok := core.ParsePin(s); ok {
		return spi.PinCS(pin), nil
	}
	raw, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return spi.ChipSelect{}, fmt.Errorf("invalid chip select %q", s)
	}
	return spi.ParseChipSelect(uint32(raw))
}

func parseOptionalPin(name string) (core.Pin, error) {
	if name == "" {
		return core.NoPin, nil
	}
	pin, ok := core.ParsePin(name)
	if !ok {
		return core.NoPin, fmt.Errorf("invalid pin %q", name)
	}
	return pin, nil
}

func parseClockBus(name string) (core.ClockBus, error) {
	switch strings.ToLower(name) {
	case "ahb":
		return core.AHB, nil
	case "apb1":
		return core.APB1, nil
	case "apb2":
		return core.APB2, nil
	}
	return 0, fmt.Errorf("unknown clock bus %q", name)
}

func parsePMMode(name string) (core.PMMode, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return core.PMModeNone, nil
	case "sleep":
		return core.PMModeSleep, nil
	case "deepsleep":
		return core.PMModeDeepSleep, nil
	case "standby":
		return core.PMModeStandby, nil
	}
	return 0, fmt.Errorf("unknown power mode %q", name)
}

// DefaultConfig returns the two-bus GD32E23x layout: SPI0 polled on port A,
// SPI1 on DMA on port B.
func DefaultConfig() *Config {
	return &Config{
		Clocks: map[string]uint32{
			"ahb":  72000000,
			"apb1": 72000000,
			"apb2": 72000000,
		},
		Buses: []BusSpec{
			{
				Name:      "spi0",
				Base:      0x40013000,
				ClockBus:  "apb2",
				ClockMask: 1 << 12,
				MOSI:      "PA7",
				MISO:      "PA6",
				SCLK:      "PA5",
				CS:        "PA4",
				AF:        0,
			},
			{
				Name:      "spi1",
				Base:      0x40003800,
				ClockBus:  "apb1",
				ClockMask: 1 << 14,
				MOSI:      "PB15",
				MISO:      "PB14",
				SCLK:      "PB13",
				CS:        "PB12",
				AF:        0,
				DMA:       &DMASpec{TX: 4, RX: 3},
				PMMode:    "deepsleep",
			},
		},
		Devices: []DeviceSpec{
			{Name: "flash", Bus: "spi0", CS: "hw", Mode: 0, Clock: 10000000},
			{Name: "leds", Bus: "spi1", CS: "PB1", Mode: 0, Clock: 5000000},
		},
	}
}
