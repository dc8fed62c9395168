//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"
)

// Timer peripheral register offsets, identical on RP2040 and RP2350
const timerTIMERAWL = 0x28 // Raw timer low word, no latching side effects

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerBase + timerTIMERAWL)))

// GetHardwareTime reads the low 32 bits of the 1MHz microsecond timer.
// Used to timestamp loop events; wraps every ~71 minutes.
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}
