package core

import "testing"

func TestStatusLEDActiveLow(t *testing.T) {
	gpio := NewMockGPIODriver()
	pin := GPIOPin(25)

	led, err := NewStatusLED(gpio, pin, true)
	if err != nil {
		t.Fatalf("NewStatusLED failed: %v", err)
	}
	if !gpio.configured[pin] {
		t.Error("Pin not configured as output")
	}

	// Idle is high on an active-low LED
	if !gpio.pins[pin] || led.IsActive() {
		t.Error("Expected LED idle (pin high) after construction")
	}

	if err := led.Active(); err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if gpio.pins[pin] || !led.IsActive() {
		t.Error("Expected pin low when active")
	}

	if err := led.Idle(); err != nil {
		t.Fatalf("Idle failed: %v", err)
	}
	if !gpio.pins[pin] || led.IsActive() {
		t.Error("Expected pin high when idle")
	}
}

func TestStatusLEDActiveHigh(t *testing.T) {
	gpio := NewMockGPIODriver()
	led, err := NewStatusLED(gpio, 2, false)
	if err != nil {
		t.Fatalf("NewStatusLED failed: %v", err)
	}

	_ = led.Active()
	if !gpio.pins[2] {
		t.Error("Expected pin high when active")
	}
	_ = led.Idle()
	if gpio.pins[2] {
		t.Error("Expected pin low when idle")
	}
}

func TestStatusLEDNoDriver(t *testing.T) {
	if _, err := NewStatusLED(nil, 0, true); err != ErrNoDriver {
		t.Errorf("Expected ErrNoDriver, got %v", err)
	}
}
