package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gaugedrive/protocol"
)

func newTestLoop(t *testing.T, tr Transport, cfg LoopConfig) (*CommandLoop, *MockPWMDriver, *MockGPIODriver) {
	t.Helper()

	pwm := NewMockPWMDriver(12499)
	g, err := NewGauge(pwm, DefaultGaugeConfig())
	if err != nil {
		t.Fatalf("NewGauge failed: %v", err)
	}
	gpio := NewMockGPIODriver()
	led, err := NewStatusLED(gpio, 25, true)
	if err != nil {
		t.Fatalf("NewStatusLED failed: %v", err)
	}
	gpio.history = nil

	return NewCommandLoop(tr, g, led, cfg), pwm, gpio
}

func TestLoopNoDataStaysWaiting(t *testing.T) {
	tr := &mockTransport{}
	loop, pwm, gpio := newTestLoop(t, tr, DefaultLoopConfig())
	before := pwm.duty[Channel2]

	for i := 0; i < 10; i++ {
		if err := loop.Step(); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	if loop.State() != StateWaitForData {
		t.Errorf("Expected WaitForData, got %s", loop.State())
	}
	if pwm.duty[Channel2] != before {
		t.Error("Duty changed without a command")
	}
	if len(tr.written) != 0 || len(gpio.history) != 0 {
		t.Errorf("Expected no echo and no indicator writes, got %v / %v", tr.written, gpio.history)
	}
}

func TestLoopAppliesFirstByteAndEchoesAll(t *testing.T) {
	event := []byte{0x80, 0x01, 0x02, 0xff}
	tr := &mockTransport{events: [][]byte{event}, chunk: 3}
	loop, pwm, gpio := newTestLoop(t, tr, DefaultLoopConfig())

	if err := loop.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	want := ClampDuty(DutyCycle(ReadingFromPercentage(protocol.PercentFromByte(0x80))), 12499)
	if pwm.duty[Channel2] != want || pwm.duty[Channel3] != want {
		t.Errorf("Expected duty %d on channels 2 and 3, got %d and %d", want, pwm.duty[Channel2], pwm.duty[Channel3])
	}
	if !bytes.Equal(tr.written, event) {
		t.Errorf("Echoed %v, expected %v", tr.written, event)
	}

	// Active (low) during the iteration, idle (high) at its end
	if len(gpio.history) != 2 || gpio.history[0] != false || gpio.history[1] != true {
		t.Errorf("Expected indicator pulse [false true], got %v", gpio.history)
	}

	stats := loop.Stats()
	if stats.Events != 1 || stats.Commands != 1 || stats.EchoedBytes != 4 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestLoopIdempotentCommand(t *testing.T) {
	tr := &mockTransport{events: [][]byte{{0x42}, {0x42}}}
	loop, pwm, _ := newTestLoop(t, tr, DefaultLoopConfig())

	_ = loop.Step()
	first := pwm.duty[Channel2]
	_ = loop.Step()
	second := pwm.duty[Channel2]

	if first != second {
		t.Errorf("Same command produced different duties: %d vs %d", first, second)
	}
	if pwm.duty[Channel3] != second {
		t.Errorf("Channel 3 out of sync: %d vs %d", pwm.duty[Channel3], second)
	}
}

func TestLoopMostRecentCommandWins(t *testing.T) {
	tr := &mockTransport{events: [][]byte{{0}, {255}, {10}}}
	loop, pwm, _ := newTestLoop(t, tr, DefaultLoopConfig())

	for i := 0; i < 3; i++ {
		_ = loop.Step()
		if pwm.duty[Channel2] != pwm.duty[Channel3] {
			t.Fatalf("Step %d: channels out of sync", i)
		}
	}

	want := loop.Gauge().DutyFor(ReadingFromPercentage(protocol.PercentFromByte(10)))
	if pwm.duty[Channel2] != want {
		t.Errorf("Expected last command duty %d, got %d", want, pwm.duty[Channel2])
	}
	if !bytes.Equal(tr.written, []byte{0, 255, 10}) {
		t.Errorf("Echo order wrong: %v", tr.written)
	}
}

func TestLoopReadErrorLogAndContinue(t *testing.T) {
	var logs []string
	cfg := DefaultLoopConfig()
	cfg.Debug = func(s string) { logs = append(logs, s) }

	tr := &mockTransport{readErrs: []error{errMockRead}, events: [][]byte{{0x10}}}
	loop, _, gpio := newTestLoop(t, tr, cfg)

	if err := loop.Step(); err != nil {
		t.Fatalf("Expected read error to be swallowed, got %v", err)
	}
	if err := loop.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if loop.Stats().ReadErrors != 1 || loop.Stats().Commands != 1 {
		t.Errorf("Unexpected stats: %+v", loop.Stats())
	}
	// First iteration still ends idle
	if len(gpio.history) == 0 || gpio.history[0] != true {
		t.Errorf("Expected idle write after read error, got %v", gpio.history)
	}

	found := false
	for _, l := range logs {
		if strings.Contains(l, "read failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected read failure in debug output, got %v", logs)
	}
}

func TestLoopReadErrorEscalate(t *testing.T) {
	cfg := DefaultLoopConfig()
	cfg.Errors = Escalate

	tr := &mockTransport{readErrs: []error{errMockRead}}
	loop, _, gpio := newTestLoop(t, tr, cfg)

	if err := loop.Step(); !errors.Is(err, errMockRead) {
		t.Fatalf("Expected escalated read error, got %v", err)
	}
	if len(gpio.history) != 1 || gpio.history[0] != true {
		t.Errorf("Expected indicator idle even on escalation, got %v", gpio.history)
	}
}

func TestLoopRunReturnsOnEscalation(t *testing.T) {
	cfg := DefaultLoopConfig()
	cfg.Errors = Escalate

	tr := &mockTransport{events: [][]byte{{1}, {2}}, readErrs: nil}
	loop, _, _ := newTestLoop(t, tr, cfg)
	tr.readErrs = []error{errMockRead}

	if err := loop.Run(); !errors.Is(err, errMockRead) {
		t.Errorf("Expected Run to return the escalated error, got %v", err)
	}
}

func TestLoopPWMErrorStillEchoes(t *testing.T) {
	tr := &mockTransport{events: [][]byte{{0x20, 0x21}}}
	loop, pwm, _ := newTestLoop(t, tr, DefaultLoopConfig())
	pwm.failSet = errors.New("timer fault")

	if err := loop.Step(); err != nil {
		t.Fatalf("Expected PWM error to be swallowed, got %v", err)
	}
	if !bytes.Equal(tr.written, []byte{0x20, 0x21}) {
		t.Errorf("Expected echo despite PWM failure, got %v", tr.written)
	}
	if loop.Stats().PWMErrors != 1 || loop.Stats().Commands != 0 {
		t.Errorf("Unexpected stats: %+v", loop.Stats())
	}
}

func TestLoopBoundedEchoStall(t *testing.T) {
	cfg := DefaultLoopConfig()
	cfg.Echo = EchoPolicy{MaxAttempts: 4}
	cfg.Errors = Escalate

	tr := &mockTransport{events: [][]byte{{0x33}}, zeroWrites: 1 << 30}
	loop, pwm, _ := newTestLoop(t, tr, cfg)

	if err := loop.Step(); !errors.Is(err, ErrEchoStalled) {
		t.Fatalf("Expected ErrEchoStalled, got %v", err)
	}

	// The command was applied before the echo stalled
	want := loop.Gauge().DutyFor(ReadingFromPercentage(protocol.PercentFromByte(0x33)))
	if pwm.duty[Channel2] != want {
		t.Errorf("Expected duty %d, got %d", want, pwm.duty[Channel2])
	}

	evts := loop.Events().Events()
	last := evts[len(evts)-1]
	if last.Type != EvtEchoStall || last.V1 != 0 || last.V2 != 1 {
		t.Errorf("Expected echo stall event, got %+v", last)
	}
}

func TestLoopEventsAndClock(t *testing.T) {
	var now uint32 = 1000
	cfg := DefaultLoopConfig()
	cfg.Clock = func() uint32 { now += 5; return now }

	tr := &mockTransport{events: [][]byte{{0xff}}}
	loop, _, _ := newTestLoop(t, tr, cfg)
	_ = loop.Step()

	evts := loop.Events().Events()
	if len(evts) != 2 {
		t.Fatalf("Expected startup and command events, got %d", len(evts))
	}
	if evts[0].Type != EvtStartup || evts[1].Type != EvtCommand {
		t.Errorf("Unexpected event types: %s, %s", evts[0].Type, evts[1].Type)
	}
	if evts[1].V1 != 0xff || evts[1].Clock <= evts[0].Clock {
		t.Errorf("Unexpected command event: %+v", evts[1])
	}
}

func TestLoopNilIndicator(t *testing.T) {
	pwm := NewMockPWMDriver(12499)
	g, _ := NewGauge(pwm, DefaultGaugeConfig())
	tr := &mockTransport{events: [][]byte{{7}}}

	loop := NewCommandLoop(tr, g, nil, DefaultLoopConfig())
	if err := loop.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !bytes.Equal(tr.written, []byte{7}) {
		t.Errorf("Expected echo, got %v", tr.written)
	}
}

func TestStateString(t *testing.T) {
	testCases := map[State]string{
		StateWaitForData: "WaitForData",
		StateConsume:     "Consume",
		StateEcho:        "Echo",
		StateIdle:        "Idle",
		State(42):        "Unknown",
	}
	for s, want := range testCases {
		if s.String() != want {
			t.Errorf("State(%d).String() = %s, expected %s", s, s.String(), want)
		}
	}
}
