package robot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hightide-robotics/reefbot/pkg/auto"
)

const chassisFile = `{
  "imu": {"type": "navx", "id": 0},
  "modules": ["frontleft", "frontright", "backleft", "backright"]
}`

const moduleTemplate = `{
  "location": {"front": %s, "left": %s},
  "absolute_encoder_offset": 0,
  "drive": {"id": %s, "gear_ratio": 6.75, "conversion_factor": 0.048},
  "angle": {"id": %s, "gear_ratio": 21.43, "conversion_factor": 16.8}
}`

func writeDeployTree(t *testing.T, withAuto bool) string {
	t.Helper()
	dir := t.TempDir()
	swerveDir := filepath.Join(dir, "swerve")
	moduleDir := filepath.Join(swerveDir, "modules")
	if err := os.MkdirAll(moduleDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(swerveDir, "swervedrive.json"), []byte(chassisFile), 0644); err != nil {
		t.Fatal(err)
	}

	modules := map[string][4]string{
		"frontleft":  {"0.31", "0.31", "1", "2"},
		"frontright": {"0.31", "-0.31", "3", "4"},
		"backleft":   {"-0.31", "0.31", "5", "6"},
		"backright":  {"-0.31", "-0.31", "7", "8"},
	}
	for stem, v := range modules {
		data := []byte(fmt.Sprintf(moduleTemplate, v[0], v[1], v[2], v[3]))
		if err := os.WriteFile(filepath.Join(moduleDir, stem+".json"), data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if withAuto {
		ppDir := filepath.Join(dir, "pathplanner")
		if err := os.MkdirAll(ppDir, 0755); err != nil {
			t.Fatal(err)
		}
		data, _ := json.Marshal(auto.RobotConfig{MassKG: 52.5, MOI: 6.1, WheelRadius: 0.0508, ModuleCount: 4})
		if err := os.WriteFile(filepath.Join(ppDir, "settings.json"), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestContainer(t *testing.T, withAuto bool) *Container {
	t.Helper()
	c, err := New(t.Context(), Config{
		DeployDir:  writeDeployTree(t, withAuto),
		Simulation: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNew_FatalOnMissingDeployTree(t *testing.T) {
	_, err := New(t.Context(), Config{DeployDir: t.TempDir(), Simulation: true})
	if err == nil {
		t.Fatal("expected error for empty deploy dir")
	}
}

func TestAccessors_ReturnSameInstance(t *testing.T) {
	c := newTestContainer(t, true)

	if c.Arm() != c.Arm() {
		t.Error("Arm returned different instances")
	}
	if c.Chassis() != c.Chassis() {
		t.Error("Chassis returned different instances")
	}
	if c.Scheduler() != c.Scheduler() {
		t.Error("Scheduler returned different instances")
	}
}

func TestStart_AutonomousFailureIsNonFatal(t *testing.T) {
	c := newTestContainer(t, false) // no pathplanner settings
	c.Start()
	defer c.Stop()

	// Chassis is still usable after a failed autonomous registration.
	c.Chassis().ResetOdometry()
	p := c.Chassis().Pose()
	if p.X() != 8.774 {
		t.Errorf("pose x: got %v, want 8.774", p.X())
	}
}

func TestContainer_InitialPoseIsResetPose(t *testing.T) {
	c := newTestContainer(t, true)
	p := c.Chassis().Pose()
	if p.X() != 8.774 || p.Y() != 4.026 {
		t.Errorf("initial pose: got (%v, %v), want (8.774, 4.026)", p.X(), p.Y())
	}
}
