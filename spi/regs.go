package spi

// Registers is a view over the register block of one SPI controller.
// All hardware access of the driver goes through this interface.
type Registers interface {
	CTL0() uint32
	SetCTL0(v uint32)
	CTL1() uint32
	SetCTL1(v uint32)
	STAT() uint32

	// ReadData and WriteData perform 8-bit accesses to DATA; with the
	// byte-access FIFO threshold set a 16-bit access would move two frames.
	ReadData() uint8
	WriteData(b uint8)

	SetI2SCTL(v uint32)

	// DataAddr is the bus address of DATA, used as the DMA peripheral address.
	DataAddr() uintptr
}

// Register offsets within the SPI block
const (
	OffCTL0    = 0x00
	OffCTL1    = 0x04
	OffSTAT    = 0x08
	OffDATA    = 0x0C
	OffCRCPOLY = 0x10
	OffRCRC    = 0x14
	OffTCRC    = 0x18
	OffI2SCTL  = 0x1C
	OffI2SPSC  = 0x20
)

// CTL0 bits
const (
	CTL0_CKPH    = 1 << 0  // Clock phase
	CTL0_CKPL    = 1 << 1  // Clock polarity
	CTL0_MSTMOD  = 1 << 2  // Master mode
	CTL0_PSC_Pos = 3       // Prescaler (BR) field position
	CTL0_PSC_Msk = 7 << 3  // Prescaler field
	CTL0_SPIEN   = 1 << 6  // SPI enable
	CTL0_LF      = 1 << 7  // LSB first
	CTL0_SWNSS   = 1 << 8  // NSS level in software mode
	CTL0_SWNSSEN = 1 << 9  // NSS software mode
	CTL0_RO      = 1 << 10 // Receive only
	CTL0_CRCNT   = 1 << 12
	CTL0_CRCEN   = 1 << 13
	CTL0_BDOEN   = 1 << 14
	CTL0_BDEN    = 1 << 15
)

// CTL1 bits
const (
	CTL1_DMAREN = 1 << 0 // Receive buffer DMA enable
	CTL1_DMATEN = 1 << 1 // Transmit buffer DMA enable
	CTL1_NSSDRV = 1 << 2 // Drive NSS output
	CTL1_NSSP   = 1 << 3
	CTL1_TMOD   = 1 << 4
	CTL1_ERRIE  = 1 << 5
	CTL1_RBNEIE = 1 << 6
	CTL1_TBEIE  = 1 << 7
	CTL1_DZ_Pos = 8        // Data size field position
	CTL1_DZ_Msk = 0xf << 8 // Data size field
	CTL1_BYTEN  = 1 << 12  // RBNE set on 8-bit FIFO level
	CTL1_DZ8    = 0x7 << 8 // 8-bit frames
)

// STAT bits
const (
	STAT_RBNE    = 1 << 0 // Receive buffer not empty
	STAT_TBE     = 1 << 1 // Transmit buffer empty
	STAT_TXURERR = 1 << 3
	STAT_CRCERR  = 1 << 4
	STAT_CONFERR = 1 << 5
	STAT_RXORERR = 1 << 6 // Receive overrun
	STAT_TRANS   = 1 << 7 // Transmission ongoing
	STAT_FERR    = 1 << 8
)

// ctl1Settings is the CTL1 base value: 8-bit frames, byte FIFO threshold.
const ctl1Settings = CTL1_BYTEN | CTL1_DZ8
