package core

// Transport is a non-blocking byte stream, normally a USB CDC serial port.
// Every method returns immediately.
type Transport interface {
	// Poll services the link and reports whether a receive event is pending
	Poll() bool

	// Read copies the pending receive event into buf
	Read(buf []byte) (int, error)

	// Write queues bytes for the host and returns how many were accepted.
	// Accepting fewer bytes than requested, including zero, is not an error.
	Write(buf []byte) (int, error)
}
