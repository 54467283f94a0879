package spi

import "testing"

// referenceDivider finds the divider by trying every code
func referenceDivider(busHz, reqHz uint32) uint8 {
	for d := uint8(0); d < dividerMax; d++ {
		if uint64(busHz) <= uint64(reqHz)<<(d+1) {
			return d
		}
	}
	return dividerMax
}

func TestClockDividerExamples(t *testing.T) {
	cases := []struct {
		busHz, reqHz uint32
		want         uint8
	}{
		{48000000, 8000000, 2},
		{16000000, 16000000, 0},
		{72000000, 36000000, 0},
		{72000000, 18000000, 1},
		{72000000, 5000000, 3},
		{72000000, 1000000, 6},
		{72000000, 100000, 7},
		{48000000, 23900000, 1},
		{33, 16, 1},
		{8000000, 100000000, 0},
	}

	for _, c := range cases {
		got := clockDivider(c.busHz, c.reqHz)
		if got != c.want {
			t.Errorf("clockDivider(%d, %d): expected %d, got %d", c.busHz, c.reqHz, c.want, got)
		}
	}
}

func TestClockDividerEffectiveClock(t *testing.T) {
	if got := dividedClock(48000000, 2); got != 6000000 {
		t.Errorf("Expected 6000000 Hz, got %d", got)
	}
	if got := dividedClock(16000000, 0); got != 8000000 {
		t.Errorf("Expected 8000000 Hz, got %d", got)
	}
	if got := dividedClock(72000000, 7); got != 281250 {
		t.Errorf("Expected 281250 Hz, got %d", got)
	}
}

func TestClockDividerNeverExceedsRequest(t *testing.T) {
	busClocks := []uint32{33, 1000003, 8000000, 16000000, 24000000, 48000000, 64000000, 72000000, 120000000}

	for _, busHz := range busClocks {
		for reqHz := uint32(1); reqHz < 2*busHz && reqHz < 400000000; reqHz += reqHz/7 + 1 {
			d := clockDivider(busHz, reqHz)
			if d > dividerMax {
				t.Fatalf("clockDivider(%d, %d) = %d out of range", busHz, reqHz, d)
			}

			if want := referenceDivider(busHz, reqHz); d != want {
				t.Errorf("clockDivider(%d, %d): expected %d, got %d", busHz, reqHz, want, d)
			}

			// Effective clock must not exceed the request unless clamped
			if d < dividerMax && uint64(busHz) > uint64(reqHz)<<(d+1) {
				t.Errorf("clockDivider(%d, %d) = %d gives %d Hz", busHz, reqHz, d, dividedClock(busHz, d))
			}

			// The next faster code must exceed the request
			if d > 0 && uint64(busHz) <= uint64(reqHz)<<d {
				t.Errorf("clockDivider(%d, %d) = %d is not the fastest code", busHz, reqHz, d)
			}
		}
	}
}
