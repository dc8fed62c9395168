package core

import (
	"errors"
	"testing"
)

func TestSliceForPin(t *testing.T) {
	tests := []struct {
		pin   GPIOPin
		slice uint8
	}{
		{0, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{15, 7},
		{16, 0},
		{25, 4},
		{31, 7},
	}

	for _, tt := range tests {
		slice, err := SliceForPin(tt.pin)
		if err != nil {
			t.Errorf("GPIO%d: unexpected error %v", tt.pin, err)
			continue
		}
		if slice != tt.slice {
			t.Errorf("GPIO%d: expected slice %d, got %d", tt.pin, tt.slice, slice)
		}
	}
}

func TestSliceForPinRejectsHighPins(t *testing.T) {
	for _, pin := range []GPIOPin{32, 40, 47} {
		if _, err := SliceForPin(pin); !errors.Is(err, ErrNoPWMSlice) {
			t.Errorf("GPIO%d: expected ErrNoPWMSlice, got %v", pin, err)
		}
	}
}
