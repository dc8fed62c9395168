package core

import (
	"math"
	"time"
)

// SweepConfig configures a calibration sweep
type SweepConfig struct {
	Step       float64       // Percentage increment per step
	Hysteresis float64       // Distance from a mark that still counts as on it
	Marks      []float64     // Percentages where the sweep pauses
	StepDelay  time.Duration // Dwell between steps
	PauseDelay time.Duration // Dwell at a mark
}

// DefaultSweepConfig pauses at the dial's printed marks
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Step:       0.1,
		Hysteresis: 0.03,
		Marks:      []float64{0, 33.3, 50, 66.7, 100},
		StepDelay:  417 * time.Microsecond,
		PauseDelay: 167 * time.Millisecond,
	}
}

// Sweep walks the needle from 0 to 100 percent and back, forever.
// Positions are derived from an integer step index so the ends are exact.
type Sweep struct {
	cfg   SweepConfig
	steps int // Steps from 0 to 100
	index int
	up    bool
}

// NewSweep creates a sweep starting at 0 percent, ramping up
func NewSweep(cfg SweepConfig) *Sweep {
	if cfg.Step <= 0 || cfg.Step > 100 {
		cfg.Step = DefaultSweepConfig().Step
	}
	return &Sweep{
		cfg:   cfg,
		steps: int(math.Round(100 / cfg.Step)),
		up:    true,
	}
}

// Next returns the current percentage and whether it sits on a mark,
// then advances one step.
func (s *Sweep) Next() (pct float64, pause bool) {
	pct = 100 * float64(s.index) / float64(s.steps)
	pause = s.onMark(pct)

	if s.up && s.index == s.steps {
		s.up = false
	} else if !s.up && s.index == 0 {
		s.up = true
	}
	if s.up {
		s.index++
	} else {
		s.index--
	}
	return pct, pause
}

// Drive applies the next sweep position to g. At a mark the indicator is
// held active for the pause delay. Failures are reported through debug and
// never stop the sweep. ind and debug may be nil.
func (s *Sweep) Drive(g *Gauge, ind Indicator, debug DebugWriter, sleep func(time.Duration)) {
	pct, pause := s.Next()
	if _, err := g.SetPercentage(pct); err != nil {
		debug.Error("sweep: duty write failed", err)
	}

	if pause && ind != nil {
		debug.Error("sweep: indicator active failed", ind.Active())
		sleep(s.Delay(true))
		debug.Error("sweep: indicator idle failed", ind.Idle())
		return
	}
	sleep(s.Delay(pause))
}

// Period returns the number of steps in one full up-and-down cycle
func (s *Sweep) Period() int {
	return 2 * s.steps
}

// Delay returns the dwell after a step
func (s *Sweep) Delay(pause bool) time.Duration {
	if pause {
		return s.cfg.PauseDelay
	}
	return s.cfg.StepDelay
}

func (s *Sweep) onMark(pct float64) bool {
	for _, m := range s.cfg.Marks {
		if math.Abs(pct-m) <= s.cfg.Hysteresis {
			return true
		}
	}
	return false
}
