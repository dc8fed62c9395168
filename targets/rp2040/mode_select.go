//go:build rp2040 || rp2350

package main

import (
	"machine"

	"gaugedrive/core"
)

// Mode selects what the firmware does after bring-up
type Mode uint8

const (
	// ModeSerial follows command bytes from the USB serial link
	ModeSerial Mode = iota

	// ModeSweep ramps the needle up and down for calibration
	ModeSweep
)

// IndicatorKind selects the status indicator hardware
type IndicatorKind uint8

const (
	IndicatorLED   IndicatorKind = iota // Plain GPIO LED
	IndicatorPixel                      // WS2812 RGB pixel
)

// BoardConfig is the compile-time firmware configuration
type BoardConfig struct {
	Mode Mode

	// Gauge drive pins for timer channels 1, 2 and 3.
	// GPIO0-31 only: slices 0-7 serve both chips, RP2350B slices 8-11 are unused.
	PWMPins [3]machine.Pin

	// Status indicator
	Indicator    IndicatorKind
	IndicatorPin machine.Pin
	LEDActiveLow bool

	// Debug UART; USB CDC carries only echo data
	DebugEnabled bool
	DebugTX      machine.Pin
	DebugRX      machine.Pin
	DebugBaud    uint32

	Gauge core.GaugeConfig
	Loop  core.LoopConfig
	Sweep core.SweepConfig
}

// GetConfig returns the firmware configuration.
// Change it here and reflash; nothing is read at runtime.
func GetConfig() BoardConfig {
	return BoardConfig{
		Mode: ModeSerial,

		// GP2/GP3 share slice 1, GP4 is on slice 2
		PWMPins: [3]machine.Pin{machine.GPIO2, machine.GPIO3, machine.GPIO4},

		Indicator:    IndicatorLED,
		IndicatorPin: machine.LED,
		LEDActiveLow: true,

		DebugEnabled: false,
		DebugTX:      machine.GPIO0,
		DebugRX:      machine.GPIO1,
		DebugBaud:    115200,

		Gauge: core.DefaultGaugeConfig(),
		Loop:  core.DefaultLoopConfig(),
		Sweep: core.DefaultSweepConfig(),
	}
}
