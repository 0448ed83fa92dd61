// Package swerve models the drive handle the chassis controller delegates
// to. The handle is an interface exposing only the operations the robot
// uses; the module-level kinematics behind it belong to the drive backend,
// not to this repository. A simulated backend is provided for tests and
// for running the robot program off-hardware.
package swerve

import "github.com/hightide-robotics/reefbot/pkg/geometry"

// Drive is the chassis drive handle.
type Drive interface {
	// DriveFieldOriented commands field-frame speeds; the handle rotates
	// them into the robot frame using its current heading estimate.
	DriveFieldOriented(speeds geometry.ChassisSpeeds)

	// Drive commands robot-frame speeds together with per-module linear
	// force feedforwards produced by the autonomous layer.
	Drive(robotRelative geometry.ChassisSpeeds, feedforwards []float64)

	// SetChassisSpeeds commands robot-frame speeds without feedforwards.
	SetChassisSpeeds(robotRelative geometry.ChassisSpeeds)

	// Pose returns the current estimated field pose.
	Pose() geometry.Pose2d

	// ResetOdometry overwrites the pose estimate. No blending.
	ResetOdometry(pose geometry.Pose2d)

	// RobotVelocity returns the current robot-frame chassis velocity.
	RobotVelocity() geometry.ChassisSpeeds

	// LockPose arranges the modules in an X pattern to resist pushing.
	// Any held speed command is dropped.
	LockPose()

	// SynchronizeModuleEncoders reseeds the relative steering encoders
	// from the absolute encoders.
	SynchronizeModuleEncoders()

	// PushOffsetsToEncoders writes the configured absolute encoder
	// offsets down to the encoder hardware.
	PushOffsetsToEncoders()

	// MaxVelocity returns the attainable chassis speed in m/s.
	MaxVelocity() float64

	// MaxAngularVelocity returns the attainable chassis rotation rate in
	// rad/s.
	MaxAngularVelocity() float64
}

// Options are the drive behaviors configured once at construction.
type Options struct {
	// HeadingCorrection holds the last commanded heading when no
	// rotation input is present.
	HeadingCorrection bool

	// AngularVelocityCompensation skews translation to counter the
	// chassis rotating while translating. Applied in teleop and/or
	// autonomous with the given coefficient.
	AngularVelocityCompensationTeleop bool
	AngularVelocityCompensationAuto   bool
	AngularVelocityCoefficient        float64

	// CosineCompensator scales module drive output by the cosine of the
	// steering error. Disabled under simulation, where steering error
	// is always zero.
	CosineCompensator bool

	// ModuleEncoderAutoSync periodically reseeds relative encoders from
	// the absolute encoders while the modules are idle.
	ModuleEncoderAutoSync         bool
	ModuleEncoderAutoSyncDeadband float64 // seconds
}

// DefaultOptions returns the competition drive options.
// simulation disables the cosine compensator.
func DefaultOptions(simulation bool) Options {
	return Options{
		HeadingCorrection:                 true,
		AngularVelocityCompensationTeleop: true,
		AngularVelocityCompensationAuto:   true,
		AngularVelocityCoefficient:        0.1,
		CosineCompensator:                 !simulation,
		ModuleEncoderAutoSync:             true,
		ModuleEncoderAutoSyncDeadband:     1,
	}
}
