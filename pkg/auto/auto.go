// Package auto is the registration surface between the subsystems and the
// autonomous path-following layer. The chassis registers its pose and
// velocity callbacks here once at startup; path search and trajectory
// following are owned by whatever Pathfinder implementation is plugged in,
// not by this package.
package auto

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hightide-robotics/reefbot/internal/log"
	"github.com/hightide-robotics/reefbot/pkg/command"
	"github.com/hightide-robotics/reefbot/pkg/geometry"
)

// PIDConstants is one feedback gain triple.
type PIDConstants struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
}

// HolonomicConfig holds the drive controller gains: one triple for
// translation, one for rotation.
type HolonomicConfig struct {
	Translation PIDConstants `json:"translation"`
	Rotation    PIDConstants `json:"rotation"`
}

// DefaultHolonomicConfig returns the competition gains.
func DefaultHolonomicConfig() HolonomicConfig {
	return HolonomicConfig{
		Translation: PIDConstants{P: 5.0},
		Rotation:    PIDConstants{P: 5.0},
	}
}

// RobotConfig is the robot physical description the path follower needs.
// Loaded from the deploy tree; see LoadRobotConfig.
type RobotConfig struct {
	MassKG      float64 `json:"mass_kg"`
	MOI         float64 `json:"moi"`
	WheelRadius float64 `json:"wheel_radius"`
	ModuleCount int     `json:"module_count"`
}

// LoadRobotConfig reads the robot physical configuration from
// <deployDir>/pathplanner/settings.json.
func LoadRobotConfig(deployDir string) (RobotConfig, error) {
	path := filepath.Join(deployDir, "pathplanner", "settings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return RobotConfig{}, fmt.Errorf("robot config: %w", err)
	}
	var cfg RobotConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RobotConfig{}, fmt.Errorf("robot config %s: %w", path, err)
	}
	if cfg.MassKG <= 0 || cfg.ModuleCount < 2 {
		return RobotConfig{}, fmt.Errorf("robot config %s: mass %v kg, %d modules", path, cfg.MassKG, cfg.ModuleCount)
	}
	return cfg, nil
}

// PathConstraints bounds the trajectories the path finder may produce.
type PathConstraints struct {
	MaxVelocity        float64 // m/s
	MaxAcceleration    float64 // m/s^2
	MaxAngularVelocity float64 // rad/s
	MaxAngularAccel    float64 // rad/s^2
}

// Callbacks are the four function references the chassis registers.
type Callbacks struct {
	// Pose returns the current estimated field pose.
	Pose func() geometry.Pose2d

	// ResetPose overwrites the odometry estimate.
	ResetPose func(geometry.Pose2d)

	// Velocity returns the current robot-frame chassis velocity.
	Velocity func() geometry.ChassisSpeeds

	// Output consumes robot-frame speed commands plus per-module linear
	// force feedforwards from the path follower.
	Output func(speeds geometry.ChassisSpeeds, feedforwards []float64)

	// ShouldFlip reports whether paths should be mirrored for the
	// current alliance (true on the red alliance).
	ShouldFlip func() bool
}

// Pathfinder produces commands that drive to a target pose. The search and
// trajectory following inside the returned command are the implementation's
// own business.
type Pathfinder interface {
	// PathfindToPose builds a command that drives to target within the
	// given constraints, ending at goalEndVelocity.
	PathfindToPose(target geometry.Pose2d, constraints PathConstraints, goalEndVelocity float64) command.Command
}

// Warmer is implemented by pathfinders that want a warmup pass at startup
// so the first real request does not pay cold-start cost.
type Warmer interface {
	WarmupCommand() command.Command
}

// Builder holds the one-shot autonomous registration. The zero value is
// unconfigured.
type Builder struct {
	mu         sync.RWMutex
	configured bool
	callbacks  Callbacks
	holonomic  HolonomicConfig
	robot      RobotConfig
	pathfinder Pathfinder
}

// NewBuilder returns an unconfigured builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Configure registers the chassis callbacks, controller gains, and robot
// physical configuration. All four data callbacks are required; a nil
// ShouldFlip defaults to never flipping.
func (b *Builder) Configure(cb Callbacks, holonomic HolonomicConfig, robot RobotConfig) error {
	if cb.Pose == nil || cb.ResetPose == nil || cb.Velocity == nil || cb.Output == nil {
		return fmt.Errorf("auto configure: all of pose, reset, velocity, and output callbacks are required")
	}
	if cb.ShouldFlip == nil {
		cb.ShouldFlip = func() bool { return false }
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.configured {
		return fmt.Errorf("auto configure: already configured")
	}
	b.callbacks = cb
	b.holonomic = holonomic
	b.robot = robot
	b.configured = true
	return nil
}

// Configured reports whether Configure has succeeded.
func (b *Builder) Configured() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.configured
}

// ShouldFlip reports whether paths should be mirrored for the current
// alliance. False when unconfigured.
func (b *Builder) ShouldFlip() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.configured {
		return false
	}
	return b.callbacks.ShouldFlip()
}

// Pose returns the registered pose estimate. Zero when unconfigured.
func (b *Builder) Pose() geometry.Pose2d {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.configured {
		return geometry.Pose2d{}
	}
	return b.callbacks.Pose()
}

// Velocity returns the registered chassis velocity. Zero when unconfigured.
func (b *Builder) Velocity() geometry.ChassisSpeeds {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.configured {
		return geometry.ChassisSpeeds{}
	}
	return b.callbacks.Velocity()
}

// ResetPose invokes the registered odometry reset. No-op when unconfigured.
func (b *Builder) ResetPose(pose geometry.Pose2d) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.configured {
		b.callbacks.ResetPose(pose)
	}
}

// Output sends a speed command through the registered consumer. No-op when
// unconfigured.
func (b *Builder) Output(speeds geometry.ChassisSpeeds, feedforwards []float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.configured {
		b.callbacks.Output(speeds, feedforwards)
	}
}

// SetPathfinder plugs in the path finding backend.
func (b *Builder) SetPathfinder(p Pathfinder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pathfinder = p
}

// PathfindToPose returns a command that drives to target. When no
// pathfinder is registered the returned command logs once and finishes
// immediately; autonomous stays best-effort.
func (b *Builder) PathfindToPose(target geometry.Pose2d, constraints PathConstraints, goalEndVelocity float64) command.Command {
	b.mu.RLock()
	p := b.pathfinder
	b.mu.RUnlock()

	if p == nil {
		return command.RunOnce("pathfind-unavailable", func() {
			log.Warn("pathfind requested with no pathfinder registered",
				"target_x", target.X(), "target_y", target.Y())
		})
	}
	return p.PathfindToPose(target, constraints, goalEndVelocity)
}

// Warmup returns the pathfinder's warmup command, or a no-op when the
// backend has none.
func (b *Builder) Warmup() command.Command {
	b.mu.RLock()
	p := b.pathfinder
	b.mu.RUnlock()

	if w, ok := p.(Warmer); ok {
		return w.WarmupCommand()
	}
	return command.RunOnce("pathfind-warmup-noop", func() {})
}
