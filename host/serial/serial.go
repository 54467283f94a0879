package serial

import (
	"io"
	"sync"

	"gd32spi/core"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the debug console
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the settings of a GD32 USART debug console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// DebugSink returns a core.DebugWriter that writes each message to port as
// one CRLF-terminated line. Write errors are counted, not reported, since
// debug output must never stall the driver.
func DebugSink(port Port) (core.DebugWriter, *SinkStats) {
	stats := &SinkStats{}
	var mu sync.Mutex
	return func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		if _, err := port.Write([]byte(msg + "\r\n")); err != nil {
			stats.add(err)
		}
	}, stats
}

// SinkStats counts failed writes of a DebugSink
type SinkStats struct {
	mu      sync.Mutex
	errors  int
	lastErr error
}

func (s *SinkStats) add(err error) {
	s.mu.Lock()
	s.errors++
	s.lastErr = err
	s.mu.Unlock()
}

// Errors returns the number of failed writes and the last error seen
func (s *SinkStats) Errors() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors, s.lastErr
}
