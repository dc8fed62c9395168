//go:build rp2040 || rp2350

package main

import (
	"time"

	"gaugedrive/core"
)

// RunSweepMode ramps the needle between 0 and 100 percent forever,
// dwelling at the dial marks so they can be checked against the face.
// No serial commands are processed in this mode.
func RunSweepMode(g *core.Gauge, ind core.Indicator, cfg core.SweepConfig, debug core.DebugWriter) {
	sweep := core.NewSweep(cfg)
	for {
		sweep.Drive(g, ind, debug, time.Sleep)
	}
}
