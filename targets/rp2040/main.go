//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"gaugedrive/core"
)

func main() {
	cfg := GetConfig()

	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	var debug core.DebugWriter
	if cfg.DebugEnabled {
		if w := InitDebugUART(cfg); w != nil {
			debug = w
		}
	}

	// Gauge is primed with the default reading before anything else runs
	pwm, err := NewRP2040PWMDriver(cfg.PWMPins)
	if err != nil {
		fatal(err, debug)
	}
	gauge, err := core.NewGauge(pwm, cfg.Gauge)
	if err != nil {
		fatal(err, debug)
	}

	indicator, err := newIndicator(cfg)
	if err != nil {
		fatal(err, debug)
	}

	if cfg.Mode == ModeSweep {
		RunSweepMode(gauge, indicator, cfg.Sweep, debug)
	}

	usb := InitUSB(debug)

	loopCfg := cfg.Loop
	loopCfg.Debug = debug
	loopCfg.Clock = GetHardwareTime
	loop := core.NewCommandLoop(usb, gauge, indicator, loopCfg)

	// Runs until reset unless the loop is configured to escalate
	if err := loop.Run(); err != nil {
		loop.DumpEvents()
		fatal(err, debug)
	}
}

// fatal reports err and blinks the on-board LED forever
func fatal(err error, debug core.DebugWriter) {
	debug.Error("fatal", err)
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
