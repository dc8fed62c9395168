package feeder

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaugedrive/core"
	"gaugedrive/sim"
)

func newSimDevice(t *testing.T, opts sim.Options) (*Device, *sim.Device) {
	t.Helper()

	gauge, err := sim.New(opts)
	require.NoError(t, err)

	dev := NewDevice(nil)
	dev.Attach(gauge)
	return dev, gauge
}

func TestSendEcho(t *testing.T) {
	dev, gauge := newSimDevice(t, sim.Options{})

	echo, err := dev.Send(0xFF)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, echo)
	assert.Equal(t, core.PWMValue(960), gauge.Duty(core.Channel3))
}

func TestSendNoEcho(t *testing.T) {
	dev, _ := newSimDevice(t, sim.Options{DropEcho: true})

	_, err := dev.Send(0x10)
	assert.ErrorIs(t, err, ErrNoEcho)
}

func TestSendNotConnected(t *testing.T) {
	dev := NewDevice(nil)

	_, err := dev.Send(0x10)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, dev.IsConnected())
}

// loopbackPort echoes a fixed reply and accepts one byte per write
type loopbackPort struct {
	reply   []byte
	written bytes.Buffer
	flushed bool
	closed  bool
}

func (p *loopbackPort) Read(b []byte) (int, error) {
	if len(p.reply) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.reply)
	p.reply = p.reply[n:]
	return n, nil
}

func (p *loopbackPort) Write(b []byte) (int, error) {
	return p.written.Write(b[:1])
}

func (p *loopbackPort) Close() error {
	p.closed = true
	return nil
}

func (p *loopbackPort) Flush() error {
	p.flushed = true
	return nil
}

func TestSendEchoMismatch(t *testing.T) {
	port := &loopbackPort{reply: []byte{0x01}}
	dev := NewDevice(nil)
	dev.Attach(port)
	assert.True(t, port.flushed)

	echo, err := dev.Send(0x02)
	assert.ErrorIs(t, err, ErrEchoMismatch)
	assert.Equal(t, []byte{0x01}, echo)
	assert.Equal(t, []byte{0x02}, port.written.Bytes())
}

func TestClose(t *testing.T) {
	port := &loopbackPort{}
	dev := NewDevice(nil)
	dev.Attach(port)
	require.True(t, dev.IsConnected())

	require.NoError(t, dev.Close())
	assert.True(t, port.closed)
	assert.False(t, dev.IsConnected())

	// Closing twice is harmless
	require.NoError(t, dev.Close())
}
