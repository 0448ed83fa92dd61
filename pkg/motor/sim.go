package motor

import "sync"

// Sim is an in-memory motor for running the robot program without a CAN
// bus. It records the held command so telemetry and tests can read it.
type Sim struct {
	mu      sync.RWMutex
	voltage float64
	idle    IdleMode
}

// NewSim returns a sim motor coasting at zero volts.
func NewSim() *Sim {
	return &Sim{}
}

func (m *Sim) SetVoltage(volts float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voltage = volts
	return nil
}

func (m *Sim) SetIdleMode(mode IdleMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle = mode
	return nil
}

func (m *Sim) Close() error { return nil }

// Voltage returns the held voltage command.
func (m *Sim) Voltage() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.voltage
}

// IdleMode returns the configured idle behavior.
func (m *Sim) IdleMode() IdleMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idle
}

var _ Motor = (*Sim)(nil)
