package core

// Indicator is a two-valued activity output
type Indicator interface {
	// Active shows that a command is being processed
	Active() error

	// Idle returns the output to its resting state
	Idle() error
}

// StatusLED drives a single GPIO as an Indicator
type StatusLED struct {
	gpio      GPIODriver
	pin       GPIOPin
	activeLow bool
	active    bool
}

// NewStatusLED configures pin as an output and leaves it idle.
// With activeLow the LED is lit by driving the pin low.
func NewStatusLED(gpio GPIODriver, pin GPIOPin, activeLow bool) (*StatusLED, error) {
	if gpio == nil {
		return nil, ErrNoDriver
	}
	if err := gpio.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	led := &StatusLED{gpio: gpio, pin: pin, activeLow: activeLow}
	if err := led.Idle(); err != nil {
		return nil, err
	}
	return led, nil
}

// Active turns the LED on
func (l *StatusLED) Active() error {
	return l.set(true)
}

// Idle turns the LED off
func (l *StatusLED) Idle() error {
	return l.set(false)
}

// IsActive reports the last value written
func (l *StatusLED) IsActive() bool {
	return l.active
}

func (l *StatusLED) set(active bool) error {
	// active-low: on = pin low
	level := active != l.activeLow
	if err := l.gpio.SetPin(l.pin, level); err != nil {
		return err
	}
	l.active = active
	return nil
}
