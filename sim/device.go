package sim

import (
	"errors"
	"io"
	"sync"

	"gaugedrive/core"
	"gaugedrive/protocol"
)

// LEDPin is the simulated status LED, active low like the reference board
const LEDPin core.GPIOPin = 25

var (
	// ErrClosed is returned after Close
	ErrClosed = errors.New("sim: device closed")

	// ErrEchoFull is returned with a short count when the host has not read
	// enough echo to make room for more input
	ErrEchoFull = errors.New("sim: echo buffer full")
)

// Options configures a simulated gauge
type Options struct {
	MaxDuty    uint32          // Timer counter top; 0 uses DefaultMaxDuty
	Gauge      core.GaugeConfig
	Loop       core.LoopConfig
	WriteChunk int  // Largest echo write the link accepts at once
	DropEcho   bool // Stop accepting echo bytes after StallAfter bytes
	StallAfter int
}

// Device is a simulated gauge that speaks the serial protocol.
// It implements the host serial.Port interface; every host Write runs the
// firmware command loop until the written bytes are consumed.
type Device struct {
	mu        sync.Mutex
	transport *Transport
	pwm       *PWM
	gpio      *GPIO
	loop      *core.CommandLoop
	closed    bool
}

// New builds and primes a simulated gauge
func New(opts Options) (*Device, error) {
	if opts.MaxDuty == 0 {
		opts.MaxDuty = DefaultMaxDuty
	}
	if opts.Gauge == (core.GaugeConfig{}) {
		opts.Gauge = core.DefaultGaugeConfig()
	}
	if opts.DropEcho && opts.Loop.Echo.MaxAttempts == 0 {
		// An unbounded echo into a host that never drains would hang the caller
		opts.Loop.Echo.MaxAttempts = 8
	}

	pwm := NewPWM(opts.MaxDuty)
	gauge, err := core.NewGauge(pwm, opts.Gauge)
	if err != nil {
		return nil, err
	}

	gpio := NewGPIO()
	led, err := core.NewStatusLED(gpio, LEDPin, true)
	if err != nil {
		return nil, err
	}

	tr := NewTransport(1024)
	tr.WriteChunk = opts.WriteChunk
	tr.DropEcho = opts.DropEcho
	tr.StallAfter = opts.StallAfter

	return &Device{
		transport: tr,
		pwm:       pwm,
		gpio:      gpio,
		loop:      core.NewCommandLoop(tr, gauge, led, opts.Loop),
	}, nil
}

// Write delivers host bytes to the device and runs the loop over them.
// Input is accepted one receive event at a time and only while its echo
// fits; once the echo buffer is full Write returns the count accepted so
// far and ErrEchoFull, like a serial port whose host stopped reading.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}

	written := 0
	for written < len(p) {
		n := min(len(p)-written, protocol.EchoBufferSize, d.transport.Free())
		if n == 0 {
			return written, ErrEchoFull
		}
		written += d.transport.Push(p[written : written+n])
		if err := d.drain(); err != nil {
			return written, err
		}
	}
	return written, nil
}

// drain steps the loop until every received byte has been consumed
func (d *Device) drain() error {
	for d.transport.Poll() {
		if err := d.loop.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Read returns echoed bytes. With nothing pending it returns io.EOF,
// as a serial port read that timed out does.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	n := d.transport.Pull(p)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Flush discards pending bytes in both directions
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.transport.Reset()
	return nil
}

// Close stops the device
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	return nil
}

// Duty returns the duty on a timer channel
func (d *Device) Duty(ch core.PWMChannel) core.PWMValue {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pwm.Duty[ch]
}

// MaxDuty returns the timer counter top
func (d *Device) MaxDuty() uint32 {
	return d.pwm.Max
}

// LEDActive reports whether the status LED is lit
func (d *Device) LEDActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// active low
	return !d.gpio.Levels[LEDPin]
}

// LEDToggles returns how many times the LED changed level
func (d *Device) LEDToggles() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.gpio.Toggles
}

// Stats returns the firmware loop counters
func (d *Device) Stats() core.LoopStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.loop.Stats()
}

// Events returns a copy of the firmware event ring, oldest first
func (d *Device) Events() []core.Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.loop.Events().Events()
}
