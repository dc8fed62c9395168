// Gauge command wire format
//
// A command is one unframed byte. The host writes exactly one byte per
// command and the device echoes every byte it receives; there is no
// acknowledgement, checksum or addressing beyond that echo.
package protocol

import (
	"errors"
	"math"
)

// CommandMax is the largest command value, meaning full scale
const CommandMax = 255

// ErrInvalidRange is returned when a value range is empty or inverted
var ErrInvalidRange = errors.New("protocol: invalid value range")

// PercentFromByte decodes a command byte as a percentage of full scale.
// The result is in [0, 100] for every byte value.
func PercentFromByte(b byte) float64 {
	return float64(b) / CommandMax * 100
}

// ByteFromPercent encodes a percentage as a command byte.
// Values outside [0, 100] are clamped; the result is rounded to nearest.
func ByteFromPercent(pct float64) byte {
	if math.IsNaN(pct) || pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return CommandMax
	}
	return byte(math.Round(pct / 100 * CommandMax))
}

// ByteFromValue maps v linearly from [min, max] onto the command range.
// Values outside the range are clamped to 0 or CommandMax.
func ByteFromValue(v, min, max float64) (byte, error) {
	if !(max > min) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return 0, ErrInvalidRange
	}
	return ByteFromPercent((v - min) / (max - min) * 100), nil
}
