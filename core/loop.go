// Serial command loop
// Polls the transport, applies the first byte of each receive event to the
// gauge and echoes the whole event back to the host.
package core

import "gaugedrive/protocol"

// State is the command loop state
type State uint8

const (
	StateWaitForData State = iota // Polling the transport
	StateConsume                  // Interpreting the command byte
	StateEcho                     // Writing the event back
	StateIdle                     // Resetting the indicator
)

func (s State) String() string {
	switch s {
	case StateWaitForData:
		return "WaitForData"
	case StateConsume:
		return "Consume"
	case StateEcho:
		return "Echo"
	case StateIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// ErrorPolicy decides what a failed operation does to the loop
type ErrorPolicy uint8

const (
	// LogAndContinue reports the failure and carries on with the iteration
	LogAndContinue ErrorPolicy = iota

	// Escalate returns the failure from Step
	Escalate
)

// LoopConfig configures the command loop
type LoopConfig struct {
	Echo   EchoPolicy
	Errors ErrorPolicy
	Debug  DebugWriter   // Optional debug output
	Clock  func() uint32 // Optional timestamp source for events
}

// DefaultLoopConfig returns the reference behaviour: unbounded echo retry,
// errors logged and ignored.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Echo:   EchoPolicy{MaxAttempts: 0},
		Errors: LogAndContinue,
	}
}

// LoopStats counts loop activity since start
type LoopStats struct {
	Events      uint32 // Receive events with at least one byte
	Commands    uint32 // Commands applied to the gauge
	EchoedBytes uint32
	ReadErrors  uint32
	PWMErrors   uint32
	LEDErrors   uint32
	EchoStalls  uint32
}

// CommandLoop exclusively owns the transport, gauge and indicator.
// It is single-threaded; Step must not be called concurrently.
type CommandLoop struct {
	transport Transport
	gauge     *Gauge
	status    Indicator
	cfg       LoopConfig

	buf    protocol.EchoBuffer
	state  State
	stats  LoopStats
	events EventRing
}

// NewCommandLoop creates a loop over already initialised collaborators.
// status may be nil for boards without an indicator.
func NewCommandLoop(t Transport, g *Gauge, status Indicator, cfg LoopConfig) *CommandLoop {
	l := &CommandLoop{
		transport: t,
		gauge:     g,
		status:    status,
		cfg:       cfg,
	}
	l.record(EvtStartup, uint32(g.Duty()), g.MaxDuty())
	l.debug("gauge primed duty=" + utoa(uint32(g.Duty())) + " max=" + utoa(g.MaxDuty()))
	return l
}

// Run steps the loop forever. It returns only when a step fails under the
// Escalate policy.
func (l *CommandLoop) Run() error {
	for {
		if err := l.Step(); err != nil {
			return err
		}
	}
}

// Step runs one loop iteration. It never blocks except inside an unbounded
// echo retry.
func (l *CommandLoop) Step() error {
	l.state = StateWaitForData
	if !l.transport.Poll() {
		return nil
	}

	err := l.handleEvent()

	l.state = StateIdle
	if l.status != nil {
		if ierr := l.status.Idle(); ierr != nil {
			l.stats.LEDErrors++
			l.record(EvtLEDError, 0, 0)
			if rerr := l.report("indicator idle failed", ierr); err == nil {
				err = rerr
			}
		}
	}
	l.state = StateWaitForData
	return err
}

// handleEvent reads one receive event, applies its first byte and echoes it
func (l *CommandLoop) handleEvent() error {
	count, err := l.transport.Read(l.buf[:])
	if err != nil {
		l.stats.ReadErrors++
		l.record(EvtReadError, 0, 0)
		return l.report("read failed", err)
	}
	if count <= 0 {
		return nil
	}
	if count > len(l.buf) {
		count = len(l.buf)
	}
	l.stats.Events++

	l.state = StateConsume
	cmd := l.buf[0]
	duty, err := l.gauge.SetCommand(cmd)
	if err != nil {
		l.stats.PWMErrors++
		l.record(EvtPWMError, uint32(cmd), 0)
		if rerr := l.report("duty write failed", err); rerr != nil {
			return rerr
		}
	} else {
		l.stats.Commands++
		l.record(EvtCommand, uint32(cmd), uint32(duty))
		l.debug("cmd=" + hexByte(cmd) +
			" pct=" + itoa(int(protocol.PercentFromByte(cmd))) +
			" duty=" + utoa(uint32(duty)))
	}

	if l.status != nil {
		if err := l.status.Active(); err != nil {
			l.stats.LEDErrors++
			l.record(EvtLEDError, 0, 0)
			if rerr := l.report("indicator active failed", err); rerr != nil {
				return rerr
			}
		}
	}

	l.state = StateEcho
	n, err := WriteAll(l.transport, l.buf[:count], l.cfg.Echo)
	l.stats.EchoedBytes += uint32(n)
	if err != nil {
		l.stats.EchoStalls++
		l.record(EvtEchoStall, uint32(n), uint32(count))
		return l.report("echo stalled after "+itoa(n)+" of "+itoa(count)+" bytes ["+hexBytes(l.buf[:count])+"]", err)
	}
	return nil
}

// report applies the error policy. It returns err only under Escalate.
func (l *CommandLoop) report(msg string, err error) error {
	l.cfg.Debug.Error(msg, err)
	if l.cfg.Errors == Escalate {
		return err
	}
	return nil
}

func (l *CommandLoop) record(t EventType, v1, v2 uint32) {
	var clock uint32
	if l.cfg.Clock != nil {
		clock = l.cfg.Clock()
	}
	l.events.Record(Event{Type: t, Clock: clock, V1: v1, V2: v2})
}

func (l *CommandLoop) debug(msg string) {
	if l.cfg.Debug != nil {
		l.cfg.Debug(msg)
	}
}

// State returns the current state; outside Step it is always WaitForData
func (l *CommandLoop) State() State {
	return l.state
}

// Stats returns a copy of the loop counters
func (l *CommandLoop) Stats() LoopStats {
	return l.stats
}

// Events returns the event ring
func (l *CommandLoop) Events() *EventRing {
	return &l.events
}

// DumpEvents writes the event ring through the configured debug writer
func (l *CommandLoop) DumpEvents() {
	l.events.Dump(l.cfg.Debug)
}

// Gauge returns the gauge driven by the loop
func (l *CommandLoop) Gauge() *Gauge {
	return l.gauge
}
