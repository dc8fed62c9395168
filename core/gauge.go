package core

import "gaugedrive/protocol"

// DefaultPWMFrequency is the operating switching frequency of the gauge drive
const DefaultPWMFrequency = 10000

// GaugeConfig configures the gauge channel driver
type GaugeConfig struct {
	FrequencyHz    uint32  // PWM switching frequency
	DefaultReading float64 // Reading applied before the first command
	Curve          Curve   // Calibration curve
}

// DefaultGaugeConfig returns the reference configuration
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		FrequencyHz:    DefaultPWMFrequency,
		DefaultReading: DefaultGaugeReading,
		Curve:          DefaultCurve(),
	}
}

// Gauge owns the three PWM channels of the gauge movement.
// Channels 2 and 3 are always written together with the same duty.
type Gauge struct {
	pwm     PWMDriver
	curve   Curve
	maxDuty uint32
	duty    PWMValue
}

// NewGauge configures the timer, enables all three channels and primes
// channels 2 and 3 with the duty for cfg.DefaultReading.
func NewGauge(pwm PWMDriver, cfg GaugeConfig) (*Gauge, error) {
	if pwm == nil {
		return nil, ErrNoDriver
	}
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = DefaultPWMFrequency
	}
	if cfg.Curve == (Curve{}) {
		cfg.Curve = DefaultCurve()
	}

	if err := pwm.Configure(cfg.FrequencyHz); err != nil {
		return nil, err
	}
	for _, ch := range []PWMChannel{Channel1, Channel2, Channel3} {
		if err := pwm.Enable(ch); err != nil {
			return nil, err
		}
	}

	g := &Gauge{
		pwm:     pwm,
		curve:   cfg.Curve,
		maxDuty: pwm.MaxDuty(),
	}
	if _, err := g.SetReading(cfg.DefaultReading); err != nil {
		return nil, err
	}
	return g, nil
}

// MaxDuty returns the counter period queried at startup
func (g *Gauge) MaxDuty() uint32 {
	return g.maxDuty
}

// Duty returns the duty last written to channels 2 and 3
func (g *Gauge) Duty() PWMValue {
	return g.duty
}

// Curve returns the calibration in use
func (g *Gauge) Curve() Curve {
	return g.curve
}

// SetDuty writes the same duty to channels 3 and 2.
// Values above MaxDuty are limited to MaxDuty.
func (g *Gauge) SetDuty(value PWMValue) error {
	if uint32(value) > g.maxDuty {
		value = PWMValue(g.maxDuty)
	}
	if err := g.pwm.SetDuty(Channel3, value); err != nil {
		return err
	}
	if err := g.pwm.SetDuty(Channel2, value); err != nil {
		return err
	}
	g.duty = value
	return nil
}

// DutyFor returns the clamped duty for a gauge reading without applying it
func (g *Gauge) DutyFor(reading float64) PWMValue {
	return ClampDuty(g.curve.DutyCycle(reading), g.maxDuty)
}

// SetReading drives the needle to a gauge reading
func (g *Gauge) SetReading(reading float64) (PWMValue, error) {
	duty := g.DutyFor(reading)
	return duty, g.SetDuty(duty)
}

// SetPercentage drives the needle to a percentage of full scale
func (g *Gauge) SetPercentage(pct float64) (PWMValue, error) {
	return g.SetReading(ReadingFromPercentage(pct))
}

// SetCommand drives the needle from a command byte
func (g *Gauge) SetCommand(b byte) (PWMValue, error) {
	return g.SetPercentage(protocol.PercentFromByte(b))
}
