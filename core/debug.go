package core

import "sync"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// BusEvent captures a bus operation for post-mortem analysis
type BusEvent struct {
	EventType uint8  // Event type code
	Bus       uint8  // Bus index
	Seq       uint32 // Global sequence number
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtInit     = 1 // Bus registers reset
	EvtAcquire  = 2 // Bus acquired (v1=requested clock, v2=divider)
	EvtTransfer = 3 // Polled transfer (v1=length, v2=continue)
	EvtDMA      = 4 // DMA transfer (v1=length, v2=continue)
	EvtRelease  = 5 // Bus released
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer, shared by all buses
	ringMu       sync.Mutex
	eventRing    [EventRingSize]BusEvent
	eventRingPos uint8
	eventSeq     uint32
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a bus event in the ring buffer
func RecordEvent(eventType, bus uint8, value1, value2 uint32) {
	ringMu.Lock()
	eventSeq++
	eventRing[eventRingPos] = BusEvent{
		EventType: eventType,
		Bus:       bus,
		Seq:       eventSeq,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingPos = (eventRingPos + 1) % EventRingSize
	ringMu.Unlock()
}

// EventRingSnapshot returns the recorded events from oldest to newest
func EventRingSnapshot() []BusEvent {
	ringMu.Lock()
	defer ringMu.Unlock()

	events := make([]BusEvent, 0, EventRingSize)
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(eventRingPos+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range EventRingSnapshot() {
		var name string
		switch evt.EventType {
		case EvtInit:
			name = "INIT"
		case EvtAcquire:
			name = "ACQUIRE"
		case EvtTransfer:
			name = "TRANSFER"
		case EvtDMA:
			name = "DMA"
		case EvtRelease:
			name = "RELEASE"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[EVENTS] " + name +
			" bus=" + itoa(int(evt.Bus)) +
			" seq=" + Utoa(evt.Seq) +
			" v1=" + Utoa(evt.Value1) +
			" v2=" + Utoa(evt.Value2))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	ringMu.Lock()
	for i := range eventRing {
		eventRing[i] = BusEvent{}
	}
	eventRingPos = 0
	eventSeq = 0
	ringMu.Unlock()
}
