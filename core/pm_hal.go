package core

// PMMode identifies a low-power mode that can be blocked while a peripheral is busy.
// PMModeNone means no mode is blocked.
type PMMode uint8

const (
	PMModeNone PMMode = iota
	PMModeSleep
	PMModeDeepSleep
	PMModeStandby
)

// PowerManager blocks entry into low-power modes.
type PowerManager interface {
	Block(mode PMMode)
	Unblock(mode PMMode)
}

var powerManager PowerManager

// SetPowerManager registers the target's power management layer.
func SetPowerManager(pm PowerManager) {
	powerManager = pm
}

// GetPowerManager returns the registered power manager or nil.
func GetPowerManager() PowerManager {
	return powerManager
}
