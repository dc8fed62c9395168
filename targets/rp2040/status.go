//go:build rp2040 || rp2350

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"gaugedrive/core"
)

// PixelIndicator shows loop activity on a WS2812 RGB pixel, for boards
// that have one instead of a plain LED.
type PixelIndicator struct {
	dev    ws2812.Device
	active color.RGBA
	idle   color.RGBA
}

// NewPixelIndicator configures the pixel pin and leaves the pixel idle
func NewPixelIndicator(pin machine.Pin) (*PixelIndicator, error) {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p := &PixelIndicator{
		dev:    ws2812.New(pin),
		active: color.RGBA{R: 0, G: 24, B: 0, A: 255},
		idle:   color.RGBA{},
	}
	if err := p.Idle(); err != nil {
		return nil, err
	}
	return p, nil
}

// Active lights the pixel
func (p *PixelIndicator) Active() error {
	return p.dev.WriteColors([]color.RGBA{p.active})
}

// Idle turns the pixel off
func (p *PixelIndicator) Idle() error {
	return p.dev.WriteColors([]color.RGBA{p.idle})
}

var _ core.Indicator = (*PixelIndicator)(nil)

// newIndicator builds the configured status indicator
func newIndicator(cfg BoardConfig) (core.Indicator, error) {
	switch cfg.Indicator {
	case IndicatorPixel:
		return NewPixelIndicator(cfg.IndicatorPin)
	default:
		return core.NewStatusLED(NewRPGPIODriver(), core.GPIOPin(cfg.IndicatorPin), cfg.LEDActiveLow)
	}
}
