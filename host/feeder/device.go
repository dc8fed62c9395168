package feeder

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"gaugedrive/host/serial"
)

var (
	// ErrNotConnected is returned by Send before Connect or Attach
	ErrNotConnected = errors.New("feeder: not connected to gauge")

	// ErrNoEcho means the gauge did not echo within the read timeout
	ErrNoEcho = errors.New("feeder: no echo from gauge")

	// ErrEchoMismatch means the echo did not start with the sent byte
	ErrEchoMismatch = errors.New("feeder: echo mismatch")
)

// settleDelay gives a freshly enumerated USB device time to start its loop
const settleDelay = 100 * time.Millisecond

// Device is the host side of the gauge serial link
type Device struct {
	mu        sync.Mutex
	port      serial.Port
	logger    *slog.Logger
	connected bool
}

// NewDevice creates a device that is not yet connected
func NewDevice(logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{logger: logger}
}

// Connect opens the gauge on a serial device path with default settings
func (d *Device) Connect(device string) error {
	return d.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens the gauge with a custom serial config
func (d *Device) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	time.Sleep(settleDelay)

	d.Attach(port)
	d.logger.Info("gauge connected", "device", cfg.Device, "baud", cfg.Baud)
	return nil
}

// Attach uses an already open port, such as a simulated gauge.
// Stale input on the port is discarded.
func (d *Device) Attach(port serial.Port) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := port.Flush(); err != nil {
		d.logger.Warn("flush failed", "error", err)
	}
	d.port = port
	d.connected = true
}

// Close closes the port
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connected = false
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port = nil
	return err
}

// IsConnected returns whether the gauge is connected
func (d *Device) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.connected
}

// Send writes one command byte and waits for its echo. The returned slice
// holds everything read back, which is the whole receive event the gauge saw.
func (d *Device) Send(b byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil, ErrNotConnected
	}

	if err := d.writeAll([]byte{b}); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}
	d.logger.Debug("tx", "bytes", hex.EncodeToString([]byte{b}))

	buf := make([]byte, 64)
	n, err := d.port.Read(buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, ErrNoEcho
		}
		return nil, fmt.Errorf("read echo: %w", err)
	}
	echo := buf[:n]
	d.logger.Debug("rx", "bytes", hex.EncodeToString(echo))

	if echo[0] != b {
		return echo, fmt.Errorf("%w: sent %02x, got %s", ErrEchoMismatch, b, hex.EncodeToString(echo))
	}
	return echo, nil
}

// writeAll retries short writes until every byte is accepted
func (d *Device) writeAll(data []byte) error {
	for len(data) > 0 {
		n, err := d.port.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}
