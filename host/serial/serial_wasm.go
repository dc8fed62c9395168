//go:build wasm

package serial

import "errors"

// ErrUnsupported is returned by Open in builds without native serial ports
var ErrUnsupported = errors.New("serial: native ports not available on wasm")

// Open always fails on wasm; attach a simulated device instead
func Open(cfg *Config) (Port, error) {
	return nil, ErrUnsupported
}
