package spi

import "gd32spi/core"

// HWCSMask is the numeric chip-select value that selects the controller's
// hardware NSS line. Raw values with all mask bits set and any other bit set
// are malformed.
const HWCSMask uint32 = 0xffffff00

// ChipSelect is either the controller's hardware NSS line or a GPIO driven
// in software. The zero value is hardware CS.
type ChipSelect struct {
	pin core.Pin
	sw  bool
}

// HardwareCS selects the controller-driven NSS line.
func HardwareCS() ChipSelect {
	return ChipSelect{}
}

// PinCS selects a GPIO driven by the driver, active low.
func PinCS(pin core.Pin) ChipSelect {
	return ChipSelect{pin: pin, sw: true}
}

// IsHardware reports whether cs is the hardware NSS line
func (cs ChipSelect) IsHardware() bool {
	return !cs.sw
}

// Pin returns the software chip-select pin
func (cs ChipSelect) Pin() (core.Pin, bool) {
	return cs.pin, cs.sw
}

// Raw returns the numeric encoding of cs (see ParseChipSelect)
func (cs ChipSelect) Raw() uint32 {
	if !cs.sw {
		return HWCSMask
	}
	return uint32(cs.pin)
}

// String returns "hw" or the pin name
func (cs ChipSelect) String() string {
	if !cs.sw {
		return "hw"
	}
	return cs.pin.String()
}

// ParseChipSelect decodes a numeric chip-select value: HWCSMask selects
// hardware CS, anything else names a pin.
func ParseChipSelect(raw uint32) (ChipSelect, error) {
	if raw == HWCSMask {
		return HardwareCS(), nil
	}
	if raw&HWCSMask == HWCSMask {
		return ChipSelect{}, ErrInvalidChipSelect
	}
	if raw >= uint32(core.NoPin) {
		return ChipSelect{}, ErrInvalidChipSelect
	}
	return PinCS(core.Pin(raw)), nil
}
