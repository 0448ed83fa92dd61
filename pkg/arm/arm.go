// Package arm controls the intake arm: one voltage-mode motor that either
// runs at the fixed intake voltage or holds zero. There is no state machine
// beyond that, and no timeout; the operator (or a command) decides when to
// stop.
package arm

import (
	"fmt"

	"github.com/hightide-robotics/reefbot/internal/deploy"
	"github.com/hightide-robotics/reefbot/internal/log"
	"github.com/hightide-robotics/reefbot/pkg/motor"
)

// Controller owns the intake arm motor.
type Controller struct {
	motor   motor.Motor
	running bool
}

// NewController configures the motor for intake duty (brake at zero
// command) and returns the controller. A configuration failure here means
// the actuator is miswired or misaddressed and is fatal to the caller.
func NewController(m motor.Motor) (*Controller, error) {
	if err := m.SetIdleMode(motor.Brake); err != nil {
		return nil, fmt.Errorf("arm: configure idle mode: %w", err)
	}
	return &Controller{motor: m}, nil
}

// Intake runs the arm at the fixed intake voltage. Idempotent while
// already running; the last voltage command wins.
func (c *Controller) Intake() {
	if err := c.motor.SetVoltage(deploy.IntakeVoltage); err != nil {
		log.Warn("arm: intake command failed", "err", err)
		return
	}
	c.running = true
}

// Stop commands zero voltage. Safe to call at any time, including before
// the first Intake.
func (c *Controller) Stop() {
	if err := c.motor.SetVoltage(0); err != nil {
		log.Warn("arm: stop command failed", "err", err)
		return
	}
	c.running = false
}

// Running reports whether the last successful command was an intake.
func (c *Controller) Running() bool {
	return c.running
}

// HasPiece reports whether a game piece is held. No sensor is wired in on
// this robot, so this always returns false; see HasPieceSensor.
func (c *Controller) HasPiece() bool {
	return false
}

// HasPieceSensor reports whether a piece-detection sensor is installed.
// Always false today. When a sensor lands, HasPiece gets a real answer and
// this starts returning true.
func (c *Controller) HasPieceSensor() bool {
	return false
}
