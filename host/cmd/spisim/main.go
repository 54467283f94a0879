package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"tinygo.org/x/drivers/sharpmem"

	"gd32spi/board"
	"gd32spi/core"
	hostserial "gd32spi/host/serial"
	"gd32spi/sim"
	"gd32spi/spi"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	config  string
	device  string
	tx      string
	read    int
	demo    string
	verbose bool
	console string
	baud    int
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("spisim", flag.ContinueOnError)
	opts := &options{}
	fs.StringVar(&opts.config, "config", "", "Board file (JSON), built-in GD32E23x layout if empty")
	fs.StringVar(&opts.device, "device", "flash", "Device name from the board file")
	fs.StringVar(&opts.tx, "tx", "", "Bytes to send, in hex")
	fs.IntVar(&opts.read, "read", 0, "Bytes to read when -tx is empty")
	fs.StringVar(&opts.demo, "demo", "", "Drive a display driver instead of raw bytes (sharpmem)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Print driver debug output and the bus event log")
	fs.StringVar(&opts.console, "console", "", "Also send debug output to this serial device")
	fs.IntVar(&opts.baud, "baud", 115200, "Baud rate of the serial console")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// simBoard is a board description brought up on simulated hardware
type simBoard struct {
	hw    *sim.Hardware
	ctrl  *spi.Controller
	buses map[string]*sim.SPI
}

func newSimBoard(cfg *board.Config) (*simBoard, error) {
	b := &simBoard{
		hw:    sim.New(),
		buses: make(map[string]*sim.SPI),
	}
	b.hw.Install()
	for bus, hz := range cfg.Frequencies() {
		b.hw.Clock.SetFrequency(bus, hz)
	}

	table, err := cfg.BusTable(func(name string, base uint32) spi.Registers {
		dev := b.hw.NewSPI()
		b.buses[name] = dev
		return dev
	})
	if err != nil {
		return nil, err
	}

	b.ctrl = spi.NewController(table)
	for i := range table {
		b.ctrl.Init(spi.Bus(i))
	}
	return b, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg := board.DefaultConfig()
	if opts.config != "" {
		if cfg, err = board.LoadConfigFile(opts.config); err != nil {
			return err
		}
	}

	writers := []core.DebugWriter{func(s string) { fmt.Fprintln(stdout, s) }}
	if opts.console != "" {
		scfg := hostserial.DefaultConfig(opts.console)
		scfg.Baud = opts.baud
		port, err := hostserial.Open(scfg)
		if err != nil {
			return err
		}
		defer port.Close()
		if err := port.Flush(); err != nil {
			return fmt.Errorf("failed to flush %s: %w", opts.console, err)
		}
		sink, stats := hostserial.DebugSink(port)
		writers = append(writers, sink)
		defer func() {
			if n, err := stats.Errors(); n > 0 {
				fmt.Fprintf(stdout, "console: %d failed writes, last: %v\n", n, err)
			}
		}()
	}
	core.SetDebugWriter(func(s string) {
		for _, w := range writers {
			w(s)
		}
	})
	core.SetDebugEnabled(opts.verbose)
	defer core.SetDebugEnabled(false)
	core.ClearEventRing()

	sb, err := newSimBoard(cfg)
	if err != nil {
		return err
	}

	dev, err := cfg.Device(opts.device)
	if err != nil {
		return err
	}
	d, err := sb.ctrl.NewDevice(dev.Bus, dev.CS, dev.Mode, dev.Clock)
	if err != nil {
		return fmt.Errorf("device %s: %w", dev.Name, err)
	}
	wire := sb.buses[sb.ctrl.BusName(dev.Bus)]

	switch opts.demo {
	case "":
		if err := transfer(d, opts, stdout); err != nil {
			return err
		}
	case "sharpmem":
		if err := drawDisplay(d, sb.hw.GPIO, stdout); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown demo %q", opts.demo)
	}

	fmt.Fprintf(stdout, "wire: %d bytes on %s\n", len(wire.Sent()), sb.ctrl.BusName(dev.Bus))
	if opts.verbose {
		core.DumpEventRing()
	}
	return nil
}

func transfer(d *spi.Device, opts *options, stdout io.Writer) error {
	tx, err := hex.DecodeString(strings.ReplaceAll(opts.tx, " ", ""))
	if err != nil {
		return fmt.Errorf("invalid -tx: %w", err)
	}

	var rx []byte
	switch {
	case len(tx) > 0:
		rx = make([]byte, len(tx))
	case opts.read > 0:
		rx = make([]byte, opts.read)
		tx = nil
	default:
		return errors.New("nothing to do: pass -tx or -read")
	}

	if err := d.Tx(tx, rx); err != nil {
		return err
	}
	if tx != nil {
		fmt.Fprintf(stdout, "tx: %s\n", hex.EncodeToString(tx))
	}
	fmt.Fprintf(stdout, "rx: %s\n", hex.EncodeToString(rx))
	return nil
}

// gpioPin drives a simulated GPIO line for drivers that manage their own
// select signal
type gpioPin struct {
	gpio core.GPIODriver
	pin  core.Pin
}

func (p gpioPin) High() { p.gpio.Set(p.pin) }
func (p gpioPin) Low()  { p.gpio.Clear(p.pin) }

// drawDisplay renders a diagonal on a Sharp memory display. Its select line
// is active high and sits on PB0.
func drawDisplay(d *spi.Device, gpio core.GPIODriver, stdout io.Writer) error {
	scs := gpioPin{gpio: gpio, pin: core.PinAt(1, 0)}
	if err := gpio.Configure(scs.pin, core.GPIOOut); err != nil {
		return err
	}

	display := sharpmem.New(d, scs)
	display.Configure(sharpmem.ConfigLS011B7DH03)
	if err := display.Clear(); err != nil {
		return err
	}

	w, h := display.Size()
	ink := color.RGBA{R: 1, A: 255}
	for i := int16(0); i < w && i < h; i++ {
		display.SetPixel(i, i, ink)
	}
	if err := display.Display(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "display: %dx%d frame sent\n", w, h)
	return nil
}
