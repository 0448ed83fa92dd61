package swerve

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the deploy-time description of the drivetrain: one chassis
// file plus one file per module under modules/. Files may be JSON or YAML.
type Config struct {
	// IMU is the heading sensor description.
	IMU IMUConfig `json:"imu" yaml:"imu"`

	// InvertedIMU flips the gyro sign for boards mounted upside down.
	InvertedIMU bool `json:"inverted_imu" yaml:"inverted_imu"`

	// Modules lists the module file stems, e.g. "frontleft".
	Modules []string `json:"modules" yaml:"modules"`

	// ModuleConfigs is populated by LoadDir from the modules directory.
	ModuleConfigs []ModuleConfig `json:"-" yaml:"-"`
}

// IMUConfig identifies the heading sensor.
type IMUConfig struct {
	Type string `json:"type" yaml:"type"`
	ID   int    `json:"id" yaml:"id"`
}

// ModuleConfig describes one swerve module: where it sits on the chassis,
// its gearing, and its absolute encoder offset.
type ModuleConfig struct {
	// Location of the module relative to the robot center, meters.
	// Front is +X, left is +Y.
	Location struct {
		Front float64 `json:"front" yaml:"front"`
		Left  float64 `json:"left" yaml:"left"`
	} `json:"location" yaml:"location"`

	// AbsoluteEncoderOffset in degrees.
	AbsoluteEncoderOffset float64 `json:"absolute_encoder_offset" yaml:"absolute_encoder_offset"`

	Drive MotorConfig `json:"drive" yaml:"drive"`
	Angle MotorConfig `json:"angle" yaml:"angle"`

	name string
}

// Name returns the module file stem.
func (m ModuleConfig) Name() string { return m.name }

// MotorConfig describes one motor channel of a module.
type MotorConfig struct {
	ID               int     `json:"id" yaml:"id"`
	GearRatio        float64 `json:"gear_ratio" yaml:"gear_ratio"`
	ConversionFactor float64 `json:"conversion_factor" yaml:"conversion_factor"`
	Inverted         bool    `json:"inverted" yaml:"inverted"`
}

// LoadDir reads and validates the swerve configuration tree rooted at dir:
// a swervedrive.(json|yaml) chassis file and modules/<stem>.(json|yaml)
// for every listed module. Any missing or malformed file is an error; the
// caller treats that as a fatal misdeploy.
func LoadDir(dir string) (*Config, error) {
	var cfg Config
	if err := decodeFirst(dir, "swervedrive", &cfg); err != nil {
		return nil, fmt.Errorf("swerve config: %w", err)
	}
	if len(cfg.Modules) < 2 {
		return nil, fmt.Errorf("swerve config: %d modules listed, need at least 2", len(cfg.Modules))
	}

	moduleDir := filepath.Join(dir, "modules")
	for _, stem := range cfg.Modules {
		var mc ModuleConfig
		if err := decodeFirst(moduleDir, stem, &mc); err != nil {
			return nil, fmt.Errorf("swerve module %s: %w", stem, err)
		}
		mc.name = stem
		if err := mc.validate(); err != nil {
			return nil, fmt.Errorf("swerve module %s: %w", stem, err)
		}
		cfg.ModuleConfigs = append(cfg.ModuleConfigs, mc)
	}
	return &cfg, nil
}

func (m ModuleConfig) validate() error {
	if m.Drive.GearRatio <= 0 || m.Angle.GearRatio <= 0 {
		return fmt.Errorf("gear ratios must be positive (drive %v, angle %v)", m.Drive.GearRatio, m.Angle.GearRatio)
	}
	if m.Drive.ID == m.Angle.ID {
		return fmt.Errorf("drive and angle motors share CAN ID %d", m.Drive.ID)
	}
	if m.Location.Front == 0 && m.Location.Left == 0 {
		return fmt.Errorf("module location is the robot center")
	}
	return nil
}

// DriveBaseRadius returns the distance from the robot center to the
// farthest module, in meters.
func (c *Config) DriveBaseRadius() float64 {
	var radius float64
	for _, m := range c.ModuleConfigs {
		r := math.Hypot(m.Location.Front, m.Location.Left)
		if r > radius {
			radius = r
		}
	}
	return radius
}

// decodeFirst decodes dir/<stem>.json or dir/<stem>.yaml (or .yml) into v,
// whichever exists first in that order.
func decodeFirst(dir, stem string, v any) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, stem+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		if strings.HasSuffix(ext, "json") {
			if err := json.Unmarshal(data, v); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		}
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("no %s.json or %s.yaml in %s", stem, stem, dir)
}
