package spi

import "math/bits"

const (
	// dividerMax is the largest PSC code (3-bit field, fPCLK/256).
	dividerMax = 7

	// clockShift makes the divider calculation fixed point.
	clockShift = 4
	clockMult  = 1 << clockShift
)

// clockDivider returns the smallest PSC code whose SPI clock busHz/2^(code+1)
// does not exceed reqHz, or dividerMax when even that is too fast.
func clockDivider(busHz, reqHz uint32) uint8 {
	// Round the fixed point ratio up so a truncated fraction can never
	// select a faster clock than requested.
	den := 2 * uint64(reqHz)
	div := (uint64(busHz)<<clockShift + den - 1) / den

	// Divider of 2 or smaller, keeping the fixed point in mind
	if div <= clockMult {
		return 0
	}

	// MSB position, compensated for the fixed point shift
	code := bits.Len64(div) - 1 - clockShift
	if div&(div-1) != 0 {
		// Not a power of two: round towards the slower clock
		code++
	}
	if code > dividerMax {
		return dividerMax
	}
	return uint8(code)
}

// dividedClock is the SPI clock produced by code at busHz.
func dividedClock(busHz uint32, code uint8) uint32 {
	return busHz >> (code + 1)
}
