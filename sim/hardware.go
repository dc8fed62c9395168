// Package sim runs the gauge firmware core against in-memory hardware.
// It stands in for a connected gauge in host-side tests and dry runs.
package sim

import (
	"errors"

	"gaugedrive/core"
)

// DefaultMaxDuty is the counter top of the simulated timer: an RP2040 slice at
// 10kHz from a 125MHz system clock.
const DefaultMaxDuty = 12499

var errUnknownChannel = errors.New("sim: unknown channel")

// PWM is an in-memory core.PWMDriver
type PWM struct {
	FrequencyHz uint32
	Max         uint32
	Enabled     [4]bool
	Duty        [4]core.PWMValue
	Writes      int
}

// NewPWM creates a simulated timer with the given counter top
func NewPWM(max uint32) *PWM {
	return &PWM{Max: max}
}

func (p *PWM) Configure(frequencyHz uint32) error {
	p.FrequencyHz = frequencyHz
	return nil
}

func (p *PWM) Enable(ch core.PWMChannel) error {
	if ch < core.Channel1 || ch > core.Channel3 {
		return errUnknownChannel
	}
	p.Enabled[ch] = true
	return nil
}

func (p *PWM) SetDuty(ch core.PWMChannel, value core.PWMValue) error {
	if ch < core.Channel1 || ch > core.Channel3 || !p.Enabled[ch] {
		return errUnknownChannel
	}
	p.Duty[ch] = value
	p.Writes++
	return nil
}

func (p *PWM) MaxDuty() uint32 {
	return p.Max
}

// GPIO is an in-memory core.GPIODriver that counts level changes
type GPIO struct {
	Levels  map[core.GPIOPin]bool
	Toggles int
}

// NewGPIO creates simulated GPIO
func NewGPIO() *GPIO {
	return &GPIO{Levels: make(map[core.GPIOPin]bool)}
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.Levels[pin] = false
	return nil
}

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	if g.Levels[pin] != value {
		g.Toggles++
	}
	g.Levels[pin] = value
	return nil
}

func (g *GPIO) GetPin(pin core.GPIOPin) (bool, error) {
	return g.Levels[pin], nil
}
