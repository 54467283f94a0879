package board

// BusSpec describes one SPI controller and its wiring
type BusSpec struct {
	Name      string   // Bus name used by devices, e.g. "spi0"
	Base      uint32   // Register block base address
	ClockBus  string   // "apb1" or "apb2"
	ClockMask uint32   // Enable bit(s) in the bus clock register
	MOSI      string   // Pin names, "" if unassigned
	MISO      string
	SCLK      string
	CS        string   // Hardware NSS pin, "" if none
	AF        uint8    // Alternate function shared by all lines
	DMA       *DMASpec // nil for polled transfers
	PMMode    string   // "", "sleep", "deepsleep" or "standby"
}

// DMASpec binds a bus to two DMA channels
type DMASpec struct {
	TX     uint8 // Memory to peripheral stream
	RX     uint8 // Peripheral to memory stream
	TXChan uint8 // Request selector, unused on the GD32E23x
	RXChan uint8
}

// DeviceSpec describes a peripheral on one of the buses
type DeviceSpec struct {
	Name  string
	Bus   string // Name of the bus
	CS    string // Pin name, "hw" or a raw chip-select number
	Mode  uint8  // SPI mode 0..3
	Clock uint32 // Requested clock in Hz
}

// Config is a complete board description
type Config struct {
	Clocks  map[string]uint32 // Bus frequencies keyed by "ahb", "apb1", "apb2"
	Buses   []BusSpec
	Devices []DeviceSpec
}
