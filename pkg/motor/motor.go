// Package motor provides the actuator handle used by the intake arm: a
// minimal voltage-mode motor controller interface plus a CAN bus backed
// implementation. Only the operations the robot actually uses are exposed,
// so tests can substitute a recording fake.
package motor

// IdleMode selects the motor behavior at zero command.
type IdleMode int

const (
	// Coast lets the rotor spin freely at zero command.
	Coast IdleMode = iota
	// Brake shorts the windings at zero command.
	Brake
)

// Type is the motor construction tag sent with configuration frames.
type Type int

const (
	// Brushed motor on a legacy controller.
	Brushed Type = iota
	// Brushless motor with integrated encoder.
	Brushless
)

// Motor is a voltage-mode motor controller handle.
type Motor interface {
	// SetVoltage commands the given output voltage. Last write wins;
	// the controller holds the command until the next write.
	SetVoltage(volts float64) error

	// SetIdleMode configures the zero-command behavior.
	SetIdleMode(mode IdleMode) error

	// Close releases the underlying bus connection.
	Close() error
}
