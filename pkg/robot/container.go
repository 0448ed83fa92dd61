// Package robot assembles the subsystem controllers. Each controller is
// constructed exactly once here and handed out by reference; there are no
// package-level singletons to reach for.
package robot

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/hightide-robotics/reefbot/internal/deploy"
	"github.com/hightide-robotics/reefbot/internal/log"
	"github.com/hightide-robotics/reefbot/pkg/arm"
	"github.com/hightide-robotics/reefbot/pkg/auto"
	"github.com/hightide-robotics/reefbot/pkg/chassis"
	"github.com/hightide-robotics/reefbot/pkg/command"
	"github.com/hightide-robotics/reefbot/pkg/ds"
	"github.com/hightide-robotics/reefbot/pkg/geometry"
	"github.com/hightide-robotics/reefbot/pkg/motor"
	"github.com/hightide-robotics/reefbot/pkg/swerve"
	"github.com/hightide-robotics/reefbot/pkg/telemetry"
)

// Config selects how the container builds its hardware handles.
type Config struct {
	// DeployDir is the root of the deploy-time configuration tree.
	DeployDir string

	// CANInterface is the socketcan interface name, e.g. "can0".
	// Ignored under simulation.
	CANInterface string

	// Simulation swaps the CAN motor and hardware drive for in-memory
	// backends and steps the drive model from the scheduler.
	Simulation bool

	// DashboardAddr is the telemetry listen address; empty disables the
	// dashboard.
	DashboardAddr string

	// Verbosity controls the telemetry stream.
	Verbosity telemetry.Verbosity
}

// Container owns every subsystem controller for the process lifetime.
type Container struct {
	cfg  Config
	opts swerve.Options

	station   *ds.Station
	builder   *auto.Builder
	scheduler *command.Scheduler

	drive      *swerve.SimDrive
	armMotor   motor.Motor
	armCtrl    *arm.Controller
	chassisCtl *chassis.Controller
	dashboard  *telemetry.Server

	tick uint64
}

// New constructs every controller. Any failure here — a missing deploy
// tree, a bad module file, an unreachable actuator — is unrecoverable and
// returned for main to treat as fatal.
func New(ctx context.Context, cfg Config) (*Container, error) {
	swerveCfg, err := swerve.LoadDir(filepath.Join(cfg.DeployDir, "swerve"))
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}

	opts := swerve.DefaultOptions(cfg.Simulation)
	drive := swerve.NewSim(
		swerveCfg,
		opts,
		deploy.MaxSpeed,
		chassis.DefaultResetPose(),
	)

	var armMotor motor.Motor
	if cfg.Simulation {
		armMotor = motor.NewSim()
	} else {
		armMotor, err = motor.NewSparkMax(ctx, cfg.CANInterface, deploy.IntakeCANID, motor.Brushless)
		if err != nil {
			return nil, fmt.Errorf("container: %w", err)
		}
	}

	armCtrl, err := arm.NewController(armMotor)
	if err != nil {
		armMotor.Close()
		return nil, fmt.Errorf("container: %w", err)
	}

	station := ds.New()
	builder := auto.NewBuilder()
	chassisCtl := chassis.New(drive, builder, station)
	scheduler := command.NewScheduler(time.Second / deploy.ControlHz)

	c := &Container{
		cfg:        cfg,
		opts:       opts,
		station:    station,
		builder:    builder,
		scheduler:  scheduler,
		drive:      drive,
		armMotor:   armMotor,
		armCtrl:    armCtrl,
		chassisCtl: chassisCtl,
	}

	if cfg.DashboardAddr != "" {
		c.dashboard = telemetry.NewServer(cfg.DashboardAddr, cfg.Verbosity)
	}

	log.Info("container ready",
		"modules", len(swerveCfg.ModuleConfigs),
		"simulation", cfg.Simulation,
	)
	return c, nil
}

// Arm returns the intake arm controller. Always the same instance.
func (c *Container) Arm() *arm.Controller { return c.armCtrl }

// Chassis returns the chassis controller. Always the same instance.
func (c *Container) Chassis() *chassis.Controller { return c.chassisCtl }

// Scheduler returns the command scheduler.
func (c *Container) Scheduler() *command.Scheduler { return c.scheduler }

// Station returns the driver station state.
func (c *Container) Station() *ds.Station { return c.station }

// Dashboard returns the telemetry server, or nil when disabled.
func (c *Container) Dashboard() *telemetry.Server { return c.dashboard }

// Start wires the housekeeping commands and launches the scheduler and
// dashboard. Autonomous registration runs best-effort: its failure is
// logged inside SetupAutonomous and does not stop startup.
func (c *Container) Start() {
	_ = c.chassisCtl.SetupAutonomous(c.cfg.DeployDir, c.scheduler)

	if c.cfg.Simulation {
		c.scheduler.Schedule(command.Run("sim-step", func() {
			c.drive.Step(time.Second / deploy.ControlHz)
		}))
	}

	if c.opts.ModuleEncoderAutoSync {
		syncTicks := uint64(c.opts.ModuleEncoderAutoSyncDeadband * deploy.ControlHz)
		if syncTicks == 0 {
			syncTicks = deploy.ControlHz
		}
		var ticks uint64
		c.scheduler.Schedule(command.Run("encoder-auto-sync", func() {
			ticks++
			if ticks%syncTicks == 0 {
				c.drive.SynchronizeModuleEncoders()
			}
		}))
	}

	if c.dashboard != nil {
		c.scheduler.Schedule(command.Run("telemetry-publish", func() {
			c.tick++
			c.dashboard.Publish(c.snapshot())
		}))
		go func() {
			if err := c.dashboard.Run(); err != nil {
				log.Error("dashboard stopped", "err", err)
			}
		}()
	}

	go c.scheduler.Run()
}

// Stop shuts the scheduler and dashboard down and releases the actuator.
func (c *Container) Stop() {
	c.armCtrl.Stop()
	c.scheduler.Stop()
	if c.dashboard != nil {
		_ = c.dashboard.Shutdown()
	}
	_ = c.armMotor.Close()
}

func (c *Container) snapshot() telemetry.State {
	pose := c.chassisCtl.Pose()
	speeds := c.chassisCtl.Velocity()
	return telemetry.State{
		Pose: telemetry.PoseUpdate{
			X:          pose.X(),
			Y:          pose.Y(),
			HeadingDeg: pose.Rotation.Degrees(),
		},
		Speeds: telemetry.SpeedsUpdate{
			VX:    speeds.VX,
			VY:    speeds.VY,
			Omega: speeds.Omega,
		},
		WheelsLocked:  c.drive.Locked(),
		IntakeRunning: c.armCtrl.Running(),
		AutoReady:     c.builder.Configured(),
		Tick:          c.tick,
	}
}

// BindTeleop routes dashboard drive commands into a field-oriented drive
// command, scaling the [-1, 1] command range onto the drive maxima.
func (c *Container) BindTeleop() {
	if c.dashboard == nil {
		return
	}

	var mu sync.RWMutex
	var latest telemetry.DriveCommand

	c.dashboard.OnDriveCommand = func(cmd telemetry.DriveCommand) {
		mu.Lock()
		latest = cmd
		mu.Unlock()
	}

	drive := c.drive
	c.scheduler.Schedule(c.chassisCtl.DriveFieldOriented(func() geometry.ChassisSpeeds {
		mu.RLock()
		cmd := latest
		mu.RUnlock()
		return geometry.ChassisSpeeds{
			VX:    cmd.VX * drive.MaxVelocity(),
			VY:    cmd.VY * drive.MaxVelocity(),
			Omega: cmd.Omega * drive.MaxAngularVelocity(),
		}
	}))
}
