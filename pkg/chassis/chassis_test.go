package chassis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hightide-robotics/reefbot/pkg/auto"
	"github.com/hightide-robotics/reefbot/pkg/command"
	"github.com/hightide-robotics/reefbot/pkg/ds"
	"github.com/hightide-robotics/reefbot/pkg/geometry"
)

// fakeDrive records the operations the controller issues.
type fakeDrive struct {
	pose         geometry.Pose2d
	velocity     geometry.ChassisSpeeds
	fieldCmds    []geometry.ChassisSpeeds
	ffCmds       [][]float64
	plainCmds    []geometry.ChassisSpeeds
	locks        int
	offsetPushes int
	syncs        int
}

func (d *fakeDrive) DriveFieldOriented(s geometry.ChassisSpeeds) {
	d.fieldCmds = append(d.fieldCmds, s)
}
func (d *fakeDrive) Drive(s geometry.ChassisSpeeds, ff []float64) {
	d.velocity = s
	d.ffCmds = append(d.ffCmds, ff)
}
func (d *fakeDrive) SetChassisSpeeds(s geometry.ChassisSpeeds) { d.plainCmds = append(d.plainCmds, s) }
func (d *fakeDrive) Pose() geometry.Pose2d                     { return d.pose }
func (d *fakeDrive) ResetOdometry(p geometry.Pose2d)           { d.pose = p }
func (d *fakeDrive) RobotVelocity() geometry.ChassisSpeeds     { return d.velocity }
func (d *fakeDrive) LockPose()                                 { d.locks++ }
func (d *fakeDrive) SynchronizeModuleEncoders()                { d.syncs++ }
func (d *fakeDrive) PushOffsetsToEncoders()                    { d.offsetPushes++ }
func (d *fakeDrive) MaxVelocity() float64                      { return 4.5 }
func (d *fakeDrive) MaxAngularVelocity() float64               { return 10.26 }

func newTestController(t *testing.T) (*Controller, *fakeDrive, *auto.Builder, *ds.Station) {
	t.Helper()
	d := &fakeDrive{}
	b := auto.NewBuilder()
	s := ds.New()
	return New(d, b, s), d, b, s
}

func writeRobotConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ppDir := filepath.Join(dir, "pathplanner")
	if err := os.MkdirAll(ppDir, 0755); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(auto.RobotConfig{MassKG: 52.5, MOI: 6.1, WheelRadius: 0.0508, ModuleCount: 4})
	if err := os.WriteFile(filepath.Join(ppDir, "settings.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestNew_PushesOffsetsOnce(t *testing.T) {
	_, d, _, _ := newTestController(t)
	if d.offsetPushes != 1 {
		t.Errorf("offset pushes: got %d, want 1", d.offsetPushes)
	}
}

func TestResetOdometry_Default(t *testing.T) {
	c, d, _, _ := newTestController(t)
	d.pose = geometry.NewPose2d(1, 1, geometry.Rotation2dFromDegrees(90))

	c.ResetOdometry()

	p := c.Pose()
	if p.X() != 8.774 || p.Y() != 4.026 || p.Rotation.Radians() != 0 {
		t.Errorf("pose after default reset: got (%v, %v, %v)", p.X(), p.Y(), p.Rotation.Degrees())
	}
}

func TestResetOdometryTo_Exact(t *testing.T) {
	c, _, _, _ := newTestController(t)
	want := geometry.NewPose2d(2.5, 6.0, geometry.Rotation2dFromDegrees(-45))

	c.ResetOdometryTo(want)

	if got := c.Pose(); got != want {
		t.Errorf("pose: got %+v, want %+v", got, want)
	}
}

func TestDriveFieldOriented_PullsSourceEachTick(t *testing.T) {
	c, d, _, _ := newTestController(t)
	sched := command.NewScheduler(20 * time.Millisecond)

	sample := geometry.ChassisSpeeds{VX: 1}
	id := sched.Schedule(c.DriveFieldOriented(func() geometry.ChassisSpeeds { return sample }))

	sched.Tick()
	sample = geometry.ChassisSpeeds{VX: 2, Omega: 0.5}
	sched.Tick()

	if len(d.fieldCmds) != 2 {
		t.Fatalf("field commands: got %d, want 2", len(d.fieldCmds))
	}
	if d.fieldCmds[0].VX != 1 || d.fieldCmds[1].VX != 2 {
		t.Errorf("commands: got %+v", d.fieldCmds)
	}

	// Never finishes on its own.
	for i := 0; i < 20; i++ {
		sched.Tick()
	}
	if sched.ActiveCount() != 1 {
		t.Errorf("active count: got %d, want 1", sched.ActiveCount())
	}

	// Cancellation zeroes the drive command.
	sched.Cancel(id)
	sched.Tick()
	last := d.fieldCmds[len(d.fieldCmds)-1]
	if last != (geometry.ChassisSpeeds{}) {
		t.Errorf("command after cancel: got %+v, want zero", last)
	}
}

func TestLockWheels(t *testing.T) {
	c, d, _, _ := newTestController(t)
	c.LockWheels()
	if d.locks != 1 {
		t.Errorf("locks: got %d, want 1", d.locks)
	}
}

func TestSetupAutonomous_RegistersCallbacks(t *testing.T) {
	c, d, b, s := newTestController(t)
	sched := command.NewScheduler(20 * time.Millisecond)

	if err := c.SetupAutonomous(writeRobotConfig(t), sched); err != nil {
		t.Fatal(err)
	}
	if !b.Configured() {
		t.Fatal("builder not configured")
	}

	// Pose flows through.
	d.pose = geometry.NewPose2d(3, 2, geometry.Rotation2dFromDegrees(10))
	if b.Pose() != d.pose {
		t.Errorf("builder pose: got %+v, want %+v", b.Pose(), d.pose)
	}

	// Output uses the feedforward drive path.
	ff := []float64{1, 2, 3, 4}
	b.Output(geometry.ChassisSpeeds{VX: 1.5}, ff)
	if len(d.ffCmds) != 1 || len(d.plainCmds) != 0 {
		t.Errorf("ff commands %d, plain commands %d; want 1, 0", len(d.ffCmds), len(d.plainCmds))
	}

	// Alliance predicate: unknown -> false, red -> true, blue -> false.
	if b.ShouldFlip() {
		t.Error("flip with unknown alliance")
	}
	s.SetAlliance(ds.Red)
	if !b.ShouldFlip() {
		t.Error("no flip on red alliance")
	}
	s.SetAlliance(ds.Blue)
	if b.ShouldFlip() {
		t.Error("flip on blue alliance")
	}

	// Warmup was scheduled.
	sched.Tick()
}

func TestSetupAutonomous_FailureIsNonFatal(t *testing.T) {
	c, d, b, _ := newTestController(t)
	sched := command.NewScheduler(20 * time.Millisecond)

	// No pathplanner settings in an empty deploy dir.
	if err := c.SetupAutonomous(t.TempDir(), sched); err == nil {
		t.Fatal("expected error for missing robot config")
	}
	if b.Configured() {
		t.Error("builder configured despite failure")
	}

	// Teleop still works afterwards.
	sched.Schedule(c.DriveFieldOriented(func() geometry.ChassisSpeeds {
		return geometry.ChassisSpeeds{VY: 1}
	}))
	sched.Tick()
	if len(d.fieldCmds) != 1 {
		t.Errorf("field commands after failed setup: got %d, want 1", len(d.fieldCmds))
	}
}

func TestDriveToPose_BuildsConstraintsFromDriveMaxima(t *testing.T) {
	c, _, b, _ := newTestController(t)
	pf := &recordingPathfinder{}
	b.SetPathfinder(pf)

	target := geometry.NewPose2d(5, 5, geometry.Rotation2dFromDegrees(180))
	cmd := c.DriveToPose(target)
	if cmd == nil {
		t.Fatal("nil command")
	}

	if pf.constraints.MaxVelocity != 4.5 {
		t.Errorf("max velocity: got %v, want 4.5", pf.constraints.MaxVelocity)
	}
	if pf.constraints.MaxAcceleration != 4.0 {
		t.Errorf("max acceleration: got %v, want 4.0", pf.constraints.MaxAcceleration)
	}
	if pf.constraints.MaxAngularVelocity != 10.26 {
		t.Errorf("max angular velocity: got %v, want 10.26", pf.constraints.MaxAngularVelocity)
	}
	if pf.endVelocity != 0 {
		t.Errorf("goal end velocity: got %v, want 0", pf.endVelocity)
	}
	if pf.target != target {
		t.Errorf("target: got %+v, want %+v", pf.target, target)
	}
}

type recordingPathfinder struct {
	target      geometry.Pose2d
	constraints auto.PathConstraints
	endVelocity float64
}

func (p *recordingPathfinder) PathfindToPose(target geometry.Pose2d, constraints auto.PathConstraints, goalEndVelocity float64) command.Command {
	p.target = target
	p.constraints = constraints
	p.endVelocity = goalEndVelocity
	return command.Run("recorded-pathfind", func() {})
}
