//go:build rp2040 || rp2350

package main

import (
	"machine"
)

var debugUART *machine.UART

// InitDebugUART initializes UART0 for debug output and returns its writer.
// Returns nil when the UART cannot be configured.
func InitDebugUART(cfg BoardConfig) func(string) {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: cfg.DebugBaud,
		TX:       cfg.DebugTX,
		RX:       cfg.DebugRX,
	})
	if err != nil {
		debugUART = nil
		return nil
	}

	DebugPrintln("=== Gauge Debug UART Initialized ===")
	return DebugPrintln
}

// DebugPrintln writes a string to the debug UART with newline
func DebugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
