package core

// PWMChannel identifies one output channel of the gauge timer
type PWMChannel uint8

// Timer channels wired to the gauge. Channels 2 and 3 drive the movement in
// parallel; channel 1 is enabled but carries no command data.
const (
	Channel1 PWMChannel = 1
	Channel2 PWMChannel = 2
	Channel3 PWMChannel = 3
)

// PWMValue is the duty cycle value (0 to MaxDuty)
type PWMValue uint32

// PWMDriver is the abstract PWM interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type PWMDriver interface {
	// Configure sets the switching frequency shared by all channels
	Configure(frequencyHz uint32) error

	// Enable starts PWM output on a channel
	Enable(ch PWMChannel) error

	// SetDuty sets the compare value for a channel.
	// The hardware latches it at the next period boundary.
	// Values above MaxDuty are undefined; callers clamp first.
	SetDuty(ch PWMChannel, value PWMValue) error

	// MaxDuty returns the counter period for the configured frequency
	MaxDuty() uint32
}

// MaxPWMPin is the highest GPIO with a PWM slice in 0-7. RP2350B pins from
// GPIO32 up sit on slices 8-11 and are not supported.
const MaxPWMPin GPIOPin = 31

// SliceForPin returns the RP2040/RP2350 PWM slice of a GPIO.
// GPIO N maps to slice (N >> 1) & 7, channel N & 1.
func SliceForPin(pin GPIOPin) (uint8, error) {
	if pin > MaxPWMPin {
		return 0, ErrNoPWMSlice
	}
	return uint8((pin >> 1) & 0x7), nil
}
