package sim

import "gaugedrive/protocol"

// Transport is an in-memory core.Transport. Bytes pushed by the host are
// delivered in receive events of up to protocol.EchoBufferSize bytes.
type Transport struct {
	rx *protocol.FifoBuffer
	tx *protocol.FifoBuffer

	// WriteChunk limits how many bytes one Write accepts; 0 is unlimited
	WriteChunk int

	// DropEcho makes every Write accept nothing after StallAfter bytes
	DropEcho   bool
	StallAfter int
	accepted   int
}

// NewTransport creates a transport with the given buffer sizes
func NewTransport(size int) *Transport {
	return &Transport{
		rx: protocol.NewFifoBuffer(size),
		tx: protocol.NewFifoBuffer(size),
	}
}

// Push queues bytes from the host and returns how many fit
func (t *Transport) Push(data []byte) int {
	return t.rx.Write(data)
}

// Pull drains bytes sent to the host
func (t *Transport) Pull(buf []byte) int {
	return t.tx.Read(buf)
}

// Pending returns the number of bytes waiting for the host
func (t *Transport) Pending() int {
	return t.tx.Available()
}

// Free returns how many more echo bytes fit before the host must read
func (t *Transport) Free() int {
	return t.tx.Free()
}

// Reset discards both directions
func (t *Transport) Reset() {
	t.rx.Reset()
	t.tx.Reset()
}

func (t *Transport) Poll() bool {
	return !t.rx.IsEmpty()
}

func (t *Transport) Read(buf []byte) (int, error) {
	if len(buf) > protocol.EchoBufferSize {
		buf = buf[:protocol.EchoBufferSize]
	}
	return t.rx.Read(buf), nil
}

func (t *Transport) Write(buf []byte) (int, error) {
	if t.DropEcho && t.accepted >= t.StallAfter {
		return 0, nil
	}
	if t.WriteChunk > 0 && len(buf) > t.WriteChunk {
		buf = buf[:t.WriteChunk]
	}
	if t.DropEcho && t.accepted+len(buf) > t.StallAfter {
		buf = buf[:t.StallAfter-t.accepted]
	}
	n := t.tx.Write(buf)
	t.accepted += n
	return n, nil
}
