package core

import "errors"

// MockPWMDriver is a test implementation of PWMDriver
type MockPWMDriver struct {
	frequency uint32
	max       uint32
	enabled   map[PWMChannel]bool
	duty      map[PWMChannel]PWMValue
	writes    []PWMChannel
	failSet   error
}

func NewMockPWMDriver(max uint32) *MockPWMDriver {
	return &MockPWMDriver{
		max:     max,
		enabled: make(map[PWMChannel]bool),
		duty:    make(map[PWMChannel]PWMValue),
	}
}

func (m *MockPWMDriver) Configure(frequencyHz uint32) error {
	m.frequency = frequencyHz
	return nil
}

func (m *MockPWMDriver) Enable(ch PWMChannel) error {
	m.enabled[ch] = true
	return nil
}

func (m *MockPWMDriver) SetDuty(ch PWMChannel, value PWMValue) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.duty[ch] = value
	m.writes = append(m.writes, ch)
	return nil
}

func (m *MockPWMDriver) MaxDuty() uint32 {
	return m.max
}

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	pins       map[GPIOPin]bool
	configured map[GPIOPin]bool
	history    []bool
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		pins:       make(map[GPIOPin]bool),
		configured: make(map[GPIOPin]bool),
	}
}

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.configured[pin] = true
	return nil
}

func (m *MockGPIODriver) SetPin(pin GPIOPin, value bool) error {
	m.pins[pin] = value
	m.history = append(m.history, value)
	return nil
}

func (m *MockGPIODriver) GetPin(pin GPIOPin) (bool, error) {
	return m.pins[pin], nil
}

var errMockRead = errors.New("mock read failure")

// mockTransport delivers scripted receive events and accepts writes in
// chunks of at most chunk bytes, after zeroWrites rejected attempts.
type mockTransport struct {
	events     [][]byte
	readErrs   []error
	chunk      int
	zeroWrites int
	writeErr   error

	written  []byte
	attempts int
}

func (m *mockTransport) Poll() bool {
	return len(m.events) > 0 || len(m.readErrs) > 0
}

func (m *mockTransport) Read(buf []byte) (int, error) {
	if len(m.readErrs) > 0 {
		err := m.readErrs[0]
		m.readErrs = m.readErrs[1:]
		return 0, err
	}
	if len(m.events) == 0 {
		return 0, nil
	}
	n := copy(buf, m.events[0])
	m.events = m.events[1:]
	return n, nil
}

func (m *mockTransport) Write(buf []byte) (int, error) {
	m.attempts++
	if m.zeroWrites > 0 {
		m.zeroWrites--
		return 0, m.writeErr
	}
	n := len(buf)
	if m.chunk > 0 && n > m.chunk {
		n = m.chunk
	}
	m.written = append(m.written, buf[:n]...)
	return n, nil
}

// mockIndicator counts transitions and can fail either one
type mockIndicator struct {
	active     int
	idle       int
	failActive error
	failIdle   error
}

func (m *mockIndicator) Active() error {
	m.active++
	return m.failActive
}

func (m *mockIndicator) Idle() error {
	m.idle++
	return m.failIdle
}
