//go:build !wasm

package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(DefaultConfig("/dev/gauge-does-not-exist"))
	assert.Error(t, err)
}
