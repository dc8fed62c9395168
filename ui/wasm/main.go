//go:build js && wasm

package main

import (
	"encoding/hex"
	"errors"
	"syscall/js"

	"gaugedrive/core"
	"gaugedrive/protocol"
	"gaugedrive/sim"
)

// Simulated gauge backing the browser preview
var gauge *sim.Device

func main() {
	js.Global().Set("gaugeWasm", js.ValueOf(map[string]interface{}{
		"byteFromPercent": js.FuncOf(byteFromPercentWrapper),
		"percentFromByte": js.FuncOf(percentFromByteWrapper),
		"byteFromValue":   js.FuncOf(byteFromValueWrapper),
		"dutyForByte":     js.FuncOf(dutyForByteWrapper),
		"fitCurve":        js.FuncOf(fitCurveWrapper),
		"createGauge":     js.FuncOf(createGaugeWrapper),
		"send":            js.FuncOf(sendWrapper),
	}))

	// Keep the program running
	select {}
}

// byteFromPercentWrapper encodes a percentage as a command byte
// Args: pct (number)
// Returns: number
func byteFromPercentWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}
	return js.ValueOf(int(protocol.ByteFromPercent(args[0].Float())))
}

// percentFromByteWrapper decodes a command byte
// Args: b (number)
// Returns: number
func percentFromByteWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}
	return js.ValueOf(protocol.PercentFromByte(byte(args[0].Int())))
}

// byteFromValueWrapper maps a value in [min, max] to a command byte
// Args: value, min, max (number)
// Returns: {byte: number, error: string}
func byteFromValueWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeResult("byte", 0, "missing arguments")
	}
	b, err := protocol.ByteFromValue(args[0].Float(), args[1].Float(), args[2].Float())
	if err != nil {
		return makeResult("byte", 0, err.Error())
	}
	return makeResult("byte", int(b), "")
}

// dutyForByteWrapper returns the duty the default curve produces for a command
// byte on the reference timer
// Args: b (number)
// Returns: number
func dutyForByteWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}
	pct := protocol.PercentFromByte(byte(args[0].Int()))
	duty := core.DutyCycle(core.ReadingFromPercentage(pct))
	return js.ValueOf(int(core.ClampDuty(duty, sim.DefaultMaxDuty)))
}

// fitCurveWrapper fits a calibration curve to measured points
// Args: points ([[reading, duty], ...]); omitted uses the bench points
// Returns: {a, b, c: number, error: string}
func fitCurveWrapper(this js.Value, args []js.Value) interface{} {
	points := core.CalibrationPoints()
	if len(args) > 0 && args[0].Length() > 0 {
		points = points[:0]
		for i := 0; i < args[0].Length(); i++ {
			p := args[0].Index(i)
			points = append(points, core.CalibrationPoint{
				Reading: p.Index(0).Float(),
				Duty:    p.Index(1).Float(),
			})
		}
	}

	curve, err := core.FitQuadratic(points)
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	return js.ValueOf(map[string]interface{}{
		"a":     curve.A,
		"b":     curve.B,
		"c":     curve.C,
		"error": errStr,
	})
}

// createGaugeWrapper starts a fresh simulated gauge
// Returns: error string, empty on success
func createGaugeWrapper(this js.Value, args []js.Value) interface{} {
	g, err := sim.New(sim.Options{})
	if err != nil {
		return js.ValueOf(err.Error())
	}
	gauge = g
	return js.ValueOf("")
}

// sendWrapper sends bytes to the simulated gauge
// Args: hexString (string)
// Returns: {echo: string (hex), duty: number, error: string}
func sendWrapper(this js.Value, args []js.Value) interface{} {
	if gauge == nil {
		return makeSendResult("", 0, "gauge not created")
	}
	if len(args) < 1 {
		return makeSendResult("", 0, "missing hex string argument")
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeSendResult("", 0, "invalid hex string: "+err.Error())
	}

	// Drain the echo whenever the simulated link fills up
	echo := make([]byte, 0, len(data))
	buf := make([]byte, 256)
	for len(data) > 0 {
		n, err := gauge.Write(data)
		if err != nil && !errors.Is(err, sim.ErrEchoFull) {
			return makeSendResult(hex.EncodeToString(echo), 0, err.Error())
		}
		data = data[n:]
		for {
			m, rerr := gauge.Read(buf)
			if rerr != nil {
				break
			}
			echo = append(echo, buf[:m]...)
		}
	}
	return makeSendResult(hex.EncodeToString(echo), int(gauge.Duty(core.Channel3)), "")
}

func makeResult(key string, value int, errStr string) js.Value {
	return js.ValueOf(map[string]interface{}{
		key:     value,
		"error": errStr,
	})
}

func makeSendResult(echo string, duty int, errStr string) js.Value {
	return js.ValueOf(map[string]interface{}{
		"echo":  echo,
		"duty":  duty,
		"error": errStr,
	})
}
