package core

import "errors"

var (
	// ErrNoDriver is returned when a required hardware driver is missing
	ErrNoDriver = errors.New("driver not configured")

	// ErrEchoStalled is returned when a bounded echo makes no progress
	ErrEchoStalled = errors.New("echo write stalled")

	// ErrNoPWMSlice is returned for a pin outside the supported PWM range
	ErrNoPWMSlice = errors.New("pin has no supported PWM slice")
)
