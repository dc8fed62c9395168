//go:build wasm

package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenUnsupportedOnWasm(t *testing.T) {
	port, err := Open(DefaultConfig("/dev/ttyACM0"))
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, port)
}
