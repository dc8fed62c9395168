//go:build rp2040 || rp2350

package main

import (
	"machine"

	"gaugedrive/core"
)

// USBTransport implements core.Transport over USB CDC.
// On RP2040 machine.Serial is the USB CDC-ACM port; descriptors and VID/PID
// come from the TinyGo board definition.
type USBTransport struct {
	port machine.Serialer
}

// InitUSB configures USB serial and returns its transport.
// A configure failure is reported but not fatal; the port is still used.
func InitUSB(debug core.DebugWriter) *USBTransport {
	// Baud rate is advisory on CDC; USB framing governs throughput
	err := machine.Serial.Configure(machine.UARTConfig{BaudRate: 1000000})
	debug.Error("usb: configure failed", err)
	return &USBTransport{port: machine.Serial}
}

// Poll reports whether received bytes are waiting
func (t *USBTransport) Poll() bool {
	return t.port.Buffered() > 0
}

// Read drains up to len(buf) buffered bytes without blocking
func (t *USBTransport) Read(buf []byte) (int, error) {
	n := 0
	for n < len(buf) && t.port.Buffered() > 0 {
		b, err := t.port.ReadByte()
		if err != nil {
			return n, err
		}
		buf[n] = b
		n++
	}
	return n, nil
}

// Write queues bytes for the host
func (t *USBTransport) Write(buf []byte) (int, error) {
	return t.port.Write(buf)
}

var _ core.Transport = (*USBTransport)(nil)
