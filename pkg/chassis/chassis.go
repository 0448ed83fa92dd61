// Package chassis wraps the swerve drive handle behind the operations the
// rest of the robot program uses: pose access, field-oriented driving,
// wheel lock, and handing targets to the autonomous layer.
package chassis

import (
	"fmt"

	"github.com/hightide-robotics/reefbot/internal/deploy"
	"github.com/hightide-robotics/reefbot/internal/log"
	"github.com/hightide-robotics/reefbot/pkg/auto"
	"github.com/hightide-robotics/reefbot/pkg/command"
	"github.com/hightide-robotics/reefbot/pkg/ds"
	"github.com/hightide-robotics/reefbot/pkg/geometry"
	"github.com/hightide-robotics/reefbot/pkg/swerve"
)

// enableFeedForward selects the autonomous output path: module force
// feedforwards from the follower, or plain chassis speeds.
const enableFeedForward = true

// SpeedsSource supplies one field-frame velocity sample per control tick.
type SpeedsSource func() geometry.ChassisSpeeds

// Controller owns the drive handle.
type Controller struct {
	drive   swerve.Drive
	builder *auto.Builder
	station *ds.Station
}

// New wires the chassis controller to its drive handle, the autonomous
// builder, and the driver station. The handle's configured encoder offsets
// are pushed down to the encoder hardware once here.
func New(drive swerve.Drive, builder *auto.Builder, station *ds.Station) *Controller {
	drive.PushOffsetsToEncoders()
	return &Controller{
		drive:   drive,
		builder: builder,
		station: station,
	}
}

// DefaultResetPose is the field position ResetOdometry returns to.
func DefaultResetPose() geometry.Pose2d {
	return geometry.NewPose2d(deploy.ResetPoseX, deploy.ResetPoseY,
		geometry.NewRotation2d(deploy.ResetPoseHeading))
}

// SetupAutonomous registers the chassis with the autonomous layer: pose
// and velocity callbacks, the output consumer, holonomic gains, the robot
// physical configuration from the deploy tree, and the alliance flip
// predicate. Failure is logged and returned but never propagates further;
// the robot stays drivable without autonomous.
func (c *Controller) SetupAutonomous(deployDir string, sched *command.Scheduler) error {
	robotCfg, err := auto.LoadRobotConfig(deployDir)
	if err != nil {
		err = fmt.Errorf("autonomous setup: %w", err)
		log.Error("autonomous unavailable", "err", err)
		return err
	}

	cb := auto.Callbacks{
		Pose:      c.Pose,
		ResetPose: c.ResetOdometryTo,
		Velocity:  c.Velocity,
		Output: func(speeds geometry.ChassisSpeeds, feedforwards []float64) {
			if enableFeedForward {
				c.drive.Drive(speeds, feedforwards)
			} else {
				c.drive.SetChassisSpeeds(speeds)
			}
		},
		ShouldFlip: func() bool {
			alliance, ok := c.station.Alliance()
			return ok && alliance == ds.Red
		},
	}

	if err := c.builder.Configure(cb, auto.DefaultHolonomicConfig(), robotCfg); err != nil {
		err = fmt.Errorf("autonomous setup: %w", err)
		log.Error("autonomous unavailable", "err", err)
		return err
	}

	sched.Schedule(c.builder.Warmup())
	log.Info("autonomous configured", "modules", robotCfg.ModuleCount, "mass_kg", robotCfg.MassKG)
	return nil
}

// DriveFieldOriented returns a command that pulls a velocity sample from
// source on every tick and commands the drive field-relative. The command
// never finishes on its own; when canceled it commands zero speeds so the
// chassis does not keep the last sample.
func (c *Controller) DriveFieldOriented(source SpeedsSource) command.Command {
	return &command.FuncCommand{
		CommandName: "drive-field-oriented",
		OnExecute: func() {
			c.drive.DriveFieldOriented(source())
		},
		OnEnd: func(interrupted bool) {
			c.drive.DriveFieldOriented(geometry.ChassisSpeeds{})
		},
	}
}

// LockWheels arranges the modules in an X pattern to resist pushing.
func (c *Controller) LockWheels() {
	c.drive.LockPose()
}

// ResetOdometry resets the pose estimate to the default field position.
func (c *Controller) ResetOdometry() {
	c.drive.ResetOdometry(DefaultResetPose())
}

// ResetOdometryTo overwrites the pose estimate with an explicit pose.
func (c *Controller) ResetOdometryTo(pose geometry.Pose2d) {
	c.drive.ResetOdometry(pose)
}

// Pose returns the current estimated field pose.
func (c *Controller) Pose() geometry.Pose2d {
	return c.drive.Pose()
}

// Velocity returns the current robot-frame chassis velocity.
func (c *Controller) Velocity() geometry.ChassisSpeeds {
	return c.drive.RobotVelocity()
}

// DriveToPose returns a command that drives to target via the autonomous
// path finder, constrained by the drive's configured maxima and the fixed
// acceleration limits.
func (c *Controller) DriveToPose(target geometry.Pose2d) command.Command {
	constraints := auto.PathConstraints{
		MaxVelocity:        c.drive.MaxVelocity(),
		MaxAcceleration:    deploy.PathLinearAccel,
		MaxAngularVelocity: c.drive.MaxAngularVelocity(),
		MaxAngularAccel:    deploy.PathAngularAccel,
	}
	return c.builder.PathfindToPose(target, constraints, 0)
}

// Drive exposes the underlying drive handle.
func (c *Controller) Drive() swerve.Drive {
	return c.drive
}
