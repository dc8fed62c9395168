//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"gaugedrive/core"
)

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

var errUnknownChannel = errors.New("pwm: unknown gauge channel")

// gaugeOutput is one timer channel of the gauge
type gaugeOutput struct {
	pin     machine.Pin
	slice   uint8
	pwm     pwmPeripheral
	channel uint8
	enabled bool
}

// RP2040PWMDriver implements core.PWMDriver for the three gauge channels.
// The channels may span slices; every slice runs at the same period so
// they share one counter top.
type RP2040PWMDriver struct {
	outputs [3]gaugeOutput
	top     uint32
}

// NewRP2040PWMDriver maps gauge channels 1..3 onto pins.
// Pins must be in GPIO0-31; see core.SliceForPin.
func NewRP2040PWMDriver(pins [3]machine.Pin) (*RP2040PWMDriver, error) {
	d := &RP2040PWMDriver{}
	for i, pin := range pins {
		slice, err := core.SliceForPin(core.GPIOPin(pin))
		if err != nil {
			return nil, err
		}
		d.outputs[i] = gaugeOutput{
			pin:   pin,
			slice: slice,
			pwm:   getPWMPeripheral(slice),
		}
	}
	return d, nil
}

// Configure sets the switching frequency on every slice used by the gauge
func (d *RP2040PWMDriver) Configure(frequencyHz uint32) error {
	if frequencyHz == 0 {
		return errors.New("pwm: zero frequency")
	}
	period := uint64(1000000000) / uint64(frequencyHz)

	var done [8]bool
	for i := range d.outputs {
		o := &d.outputs[i]
		if done[o.slice] {
			continue
		}
		if err := o.pwm.Configure(machine.PWMConfig{Period: period}); err != nil {
			return err
		}
		done[o.slice] = true
	}

	d.top = d.outputs[1].pwm.Top()
	return nil
}

// Enable hands the pin to its PWM slice
func (d *RP2040PWMDriver) Enable(ch core.PWMChannel) error {
	o, err := d.output(ch)
	if err != nil {
		return err
	}
	channel, err := o.pwm.Channel(o.pin)
	if err != nil {
		return err
	}
	o.channel = channel
	o.enabled = true
	o.pwm.Set(channel, 0)
	return nil
}

// SetDuty writes the compare value; the slice latches it at wrap
func (d *RP2040PWMDriver) SetDuty(ch core.PWMChannel, value core.PWMValue) error {
	o, err := d.output(ch)
	if err != nil {
		return err
	}
	if !o.enabled {
		return errUnknownChannel
	}
	o.pwm.Set(o.channel, uint32(value))
	return nil
}

// MaxDuty returns the counter top of the configured period
func (d *RP2040PWMDriver) MaxDuty() uint32 {
	return d.top
}

func (d *RP2040PWMDriver) output(ch core.PWMChannel) (*gaugeOutput, error) {
	if ch < core.Channel1 || ch > core.Channel3 {
		return nil, errUnknownChannel
	}
	return &d.outputs[ch-core.Channel1], nil
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
// Returns a pwmPeripheral interface that wraps TinyGo's unexported *pwmGroup type
func getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		// Should never happen with proper masking
		return machine.PWM0
	}
}
