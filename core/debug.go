package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Error writes "msg: err". It is safe on a nil writer.
func (w DebugWriter) Error(msg string, err error) {
	if w == nil || err == nil {
		return
	}
	w(msg + ": " + err.Error())
}

// EventType classifies an entry in the event ring
type EventType uint8

// Event type codes
const (
	EvtStartup   EventType = 1 // Gauge primed; V1=duty V2=max duty
	EvtCommand   EventType = 2 // Command applied; V1=byte V2=duty
	EvtReadError EventType = 3 // Transport read failed
	EvtPWMError  EventType = 4 // Duty write failed; V1=byte
	EvtLEDError  EventType = 5 // Indicator write failed
	EvtEchoStall EventType = 6 // Echo gave up; V1=written V2=requested
)

func (e EventType) String() string {
	switch e {
	case EvtStartup:
		return "STARTUP"
	case EvtCommand:
		return "COMMAND"
	case EvtReadError:
		return "READ_ERR"
	case EvtPWMError:
		return "PWM_ERR"
	case EvtLEDError:
		return "LED_ERR"
	case EvtEchoStall:
		return "ECHO_STALL"
	default:
		return "UNKNOWN"
	}
}

// Event captures one loop event for post-mortem analysis
type Event struct {
	Type  EventType
	Clock uint32 // Platform clock at event, 0 if no clock is set
	V1    uint32 // Context-dependent value
	V2    uint32 // Context-dependent value
}

// EventRingSize is the number of events kept
const EventRingSize = 32

// EventRing keeps the most recent events. Recording never blocks or allocates.
type EventRing struct {
	ring [EventRingSize]Event
	head uint8 // Next write position
	n    uint8
}

// Record stores an event, overwriting the oldest when full
func (r *EventRing) Record(e Event) {
	r.ring[r.head] = e
	r.head = (r.head + 1) % EventRingSize
	if r.n < EventRingSize {
		r.n++
	}
}

// Len returns the number of stored events
func (r *EventRing) Len() int {
	return int(r.n)
}

// Events returns stored events from oldest to newest
func (r *EventRing) Events() []Event {
	out := make([]Event, 0, r.n)
	start := (r.head + EventRingSize - r.n) % EventRingSize
	for i := uint8(0); i < r.n; i++ {
		out = append(out, r.ring[(start+i)%EventRingSize])
	}
	return out
}

// Clear empties the ring
func (r *EventRing) Clear() {
	*r = EventRing{}
}

// Dump writes the ring through w, oldest first
func (r *EventRing) Dump(w DebugWriter) {
	if w == nil {
		return
	}

	w("[EVENTS] === Event Ring Dump ===")
	for _, evt := range r.Events() {
		w("[EVENTS] " + evt.Type.String() +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.V1) +
			" v2=" + utoa(evt.V2))
	}
	w("[EVENTS] === End Dump ===")
}
