package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestSweepCycle(t *testing.T) {
	s := NewSweep(DefaultSweepConfig())

	if s.Period() != 2000 {
		t.Fatalf("Expected period 2000, got %d", s.Period())
	}

	var seq []float64
	var pauses []float64
	for i := 0; i < s.Period(); i++ {
		pct, pause := s.Next()
		seq = append(seq, pct)
		if pause {
			pauses = append(pauses, pct)
		}
	}

	if seq[0] != 0 || seq[1000] != 100 || seq[1999] != 0.1 {
		t.Errorf("Unexpected sweep shape: start=%v top=%v end=%v", seq[0], seq[1000], seq[1999])
	}

	// Next cycle starts at 0 again
	if pct, pause := s.Next(); pct != 0 || !pause {
		t.Errorf("Expected cycle to restart at 0 with a pause, got %v %v", pct, pause)
	}

	want := []float64{0, 33.3, 50, 66.7, 100, 66.7, 50, 33.3}
	if len(pauses) != len(want) {
		t.Fatalf("Expected pauses at %v, got %v", want, pauses)
	}
	for i := range want {
		if math.Abs(pauses[i]-want[i]) > 1e-9 {
			t.Errorf("Pause %d: expected %v, got %v", i, want[i], pauses[i])
		}
	}
}

func TestSweepStaysInRange(t *testing.T) {
	s := NewSweep(SweepConfig{Step: 7})
	for i := 0; i < 100; i++ {
		pct, _ := s.Next()
		if pct < 0 || pct > 100 {
			t.Fatalf("Step %d out of range: %v", i, pct)
		}
	}
}

func TestSweepInvalidStepUsesDefault(t *testing.T) {
	s := NewSweep(SweepConfig{Step: -1})
	if s.Period() != 2000 {
		t.Errorf("Expected default step, period %d", s.Period())
	}
}

func TestSweepDelay(t *testing.T) {
	cfg := DefaultSweepConfig()
	s := NewSweep(cfg)
	if s.Delay(true) != cfg.PauseDelay || s.Delay(false) != cfg.StepDelay {
		t.Errorf("Unexpected delays %v %v", s.Delay(true), s.Delay(false))
	}
}

func TestSweepDrive(t *testing.T) {
	pwm := NewMockPWMDriver(12499)
	g, err := NewGauge(pwm, DefaultGaugeConfig())
	if err != nil {
		t.Fatalf("NewGauge failed: %v", err)
	}
	ind := &mockIndicator{}
	s := NewSweep(DefaultSweepConfig())

	var sleeps []time.Duration
	sleep := func(d time.Duration) { sleeps = append(sleeps, d) }

	// Step 0 sits on the 0 mark, step 1 does not
	s.Drive(g, ind, nil, sleep)
	s.Drive(g, ind, nil, sleep)

	if ind.active != 1 || ind.idle != 1 {
		t.Errorf("Expected one indicator pulse, got active=%d idle=%d", ind.active, ind.idle)
	}
	want := []time.Duration{167 * time.Millisecond, 417 * time.Microsecond}
	if len(sleeps) != 2 || sleeps[0] != want[0] || sleeps[1] != want[1] {
		t.Errorf("Expected sleeps %v, got %v", want, sleeps)
	}
	if g.Duty() != g.DutyFor(ReadingFromPercentage(0.1)) {
		t.Errorf("Expected duty for 0.1%%, got %d", g.Duty())
	}
}

func TestSweepDriveReportsErrors(t *testing.T) {
	pwm := NewMockPWMDriver(12499)
	g, err := NewGauge(pwm, DefaultGaugeConfig())
	if err != nil {
		t.Fatalf("NewGauge failed: %v", err)
	}
	pwm.failSet = errors.New("timer fault")
	ind := &mockIndicator{
		failActive: errors.New("led stuck"),
		failIdle:   errors.New("led gone"),
	}

	var lines []string
	debug := DebugWriter(func(s string) { lines = append(lines, s) })
	s := NewSweep(DefaultSweepConfig())

	s.Drive(g, ind, debug, func(time.Duration) {})

	got := strings.Join(lines, "\n")
	for _, want := range []string{
		"sweep: duty write failed: timer fault",
		"sweep: indicator active failed: led stuck",
		"sweep: indicator idle failed: led gone",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Missing %q in debug output:\n%s", want, got)
		}
	}

	// Nil writer and nil indicator are tolerated
	s.Drive(g, nil, nil, func(time.Duration) {})
}
