package swerve

import (
	"sync"
	"time"

	"github.com/hightide-robotics/reefbot/pkg/geometry"
)

// SimDrive is the simulated drive backend. It holds the commanded chassis
// speeds and integrates them into the pose estimate when stepped; there is
// no module-level model. Safe for concurrent use: telemetry reads while
// the control loop writes.
type SimDrive struct {
	opts          Options
	maxVelocity   float64
	maxAngularVel float64

	mu     sync.RWMutex
	pose   geometry.Pose2d
	speeds geometry.ChassisSpeeds // robot frame
	locked bool
	lastFF []float64
}

// NewSim builds a simulated drive from the deploy configuration with the
// given speed ceiling and initial pose.
func NewSim(cfg *Config, opts Options, maxSpeed float64, initialPose geometry.Pose2d) *SimDrive {
	radius := cfg.DriveBaseRadius()
	angular := maxSpeed
	if radius > 0 {
		angular = maxSpeed / radius
	}
	return &SimDrive{
		opts:          opts,
		maxVelocity:   maxSpeed,
		maxAngularVel: angular,
		pose:          initialPose,
	}
}

// DriveFieldOriented rotates field-frame speeds into the robot frame using
// the current heading estimate and holds them as the commanded velocity.
func (d *SimDrive) DriveFieldOriented(speeds geometry.ChassisSpeeds) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speeds = geometry.FromFieldRelative(speeds, d.pose.Rotation)
	d.locked = false
	d.lastFF = nil
}

// Drive holds robot-frame speeds plus module force feedforwards.
func (d *SimDrive) Drive(robotRelative geometry.ChassisSpeeds, feedforwards []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speeds = robotRelative
	d.lastFF = feedforwards
	d.locked = false
}

// SetChassisSpeeds holds robot-frame speeds without feedforwards.
func (d *SimDrive) SetChassisSpeeds(robotRelative geometry.ChassisSpeeds) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speeds = robotRelative
	d.lastFF = nil
	d.locked = false
}

// Pose returns the current estimated field pose.
func (d *SimDrive) Pose() geometry.Pose2d {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pose
}

// ResetOdometry overwrites the pose estimate.
func (d *SimDrive) ResetOdometry(pose geometry.Pose2d) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pose = pose
}

// RobotVelocity returns the commanded robot-frame chassis velocity.
func (d *SimDrive) RobotVelocity() geometry.ChassisSpeeds {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.locked {
		return geometry.ChassisSpeeds{}
	}
	return d.speeds
}

// LockPose drops the held speed command and marks the modules locked in an
// X pattern.
func (d *SimDrive) LockPose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speeds = geometry.ChassisSpeeds{}
	d.locked = true
}

// LastFeedforwards returns the module force feedforwards from the most
// recent Drive call, or nil when the last command carried none.
func (d *SimDrive) LastFeedforwards() []float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastFF
}

// Locked reports whether the modules are in the X arrangement.
func (d *SimDrive) Locked() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locked
}

// SynchronizeModuleEncoders is a no-op in simulation; the relative and
// absolute encoders never disagree.
func (d *SimDrive) SynchronizeModuleEncoders() {}

// PushOffsetsToEncoders is a no-op in simulation.
func (d *SimDrive) PushOffsetsToEncoders() {}

// MaxVelocity returns the attainable chassis speed in m/s.
func (d *SimDrive) MaxVelocity() float64 { return d.maxVelocity }

// MaxAngularVelocity returns the attainable rotation rate in rad/s.
func (d *SimDrive) MaxAngularVelocity() float64 { return d.maxAngularVel }

// Step advances the pose estimate by integrating the held speed command
// over dt. Called once per control cycle by the sim loop.
func (d *SimDrive) Step(dt time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return
	}
	sec := dt.Seconds()
	field := geometry.ToFieldRelative(d.speeds, d.pose.Rotation)
	d.pose = geometry.Pose2d{
		Translation: d.pose.Translation.Plus(geometry.Translation2d{
			X: field.VX * sec,
			Y: field.VY * sec,
		}),
		Rotation: d.pose.Rotation.Plus(geometry.NewRotation2d(field.Omega * sec)),
	}
}

var _ Drive = (*SimDrive)(nil)
