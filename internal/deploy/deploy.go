// Package deploy locates the deploy-time configuration tree and holds the
// fixed robot constants shared by the subsystems.
package deploy

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Robot constants. These mirror the numbers flashed alongside the deploy
// tree; changing them requires re-characterizing the drivetrain.
const (
	// MaxSpeed is the attainable chassis speed in meters per second.
	MaxSpeed = 4.5

	// IntakeCANID is the CAN bus ID of the intake arm motor.
	IntakeCANID = 9

	// IntakeVoltage is the fixed voltage applied while intaking.
	IntakeVoltage = 6.0

	// ControlHz is the rate of the main command scheduler loop.
	ControlHz = 50
)

// Default odometry reset position: the center of the field.
const (
	ResetPoseX       = 8.774 // meters
	ResetPoseY       = 4.026 // meters
	ResetPoseHeading = 0.0   // radians
)

// Fixed acceleration limits used when building path constraints.
const (
	PathLinearAccel  = 4.0                 // m/s^2
	PathAngularAccel = 720 * math.Pi / 180 // rad/s^2
)

// DefaultDir is the deploy tree used when DEPLOY_DIR is not set.
const DefaultDir = "deploy"

// Dir returns the deploy directory from the DEPLOY_DIR env var,
// falling back to the default relative path.
func Dir() string {
	if dir := os.Getenv("DEPLOY_DIR"); dir != "" {
		return dir
	}
	return DefaultDir
}

// SwerveDir returns the swerve configuration subdirectory of the deploy
// tree, verifying that it exists. A missing tree is a fatal misdeploy.
func SwerveDir() (string, error) {
	dir := filepath.Join(Dir(), "swerve")
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("swerve deploy directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("swerve deploy path %s is not a directory", dir)
	}
	return dir, nil
}
