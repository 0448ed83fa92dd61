// Package geometry provides the field-coordinate value types shared by the
// chassis, autonomous, and telemetry layers: 2D translations, normalized
// headings, poses, and chassis velocities.
package geometry

import "math"

// Rotation2d is a heading on the field, stored in radians and always
// normalized to (-pi, pi].
type Rotation2d struct {
	radians float64
}

// NewRotation2d returns a rotation normalized to (-pi, pi].
func NewRotation2d(radians float64) Rotation2d {
	return Rotation2d{radians: normalizeAngle(radians)}
}

// Rotation2dFromDegrees returns a rotation from a heading in degrees.
func Rotation2dFromDegrees(degrees float64) Rotation2d {
	return NewRotation2d(degrees * math.Pi / 180)
}

// Radians returns the heading in radians, in (-pi, pi].
func (r Rotation2d) Radians() float64 { return r.radians }

// Degrees returns the heading in degrees.
func (r Rotation2d) Degrees() float64 { return r.radians * 180 / math.Pi }

// Cos returns the cosine of the heading.
func (r Rotation2d) Cos() float64 { return math.Cos(r.radians) }

// Sin returns the sine of the heading.
func (r Rotation2d) Sin() float64 { return math.Sin(r.radians) }

// Plus returns the sum of two rotations, normalized.
func (r Rotation2d) Plus(other Rotation2d) Rotation2d {
	return NewRotation2d(r.radians + other.radians)
}

// Minus returns the difference of two rotations, normalized.
func (r Rotation2d) Minus(other Rotation2d) Rotation2d {
	return NewRotation2d(r.radians - other.radians)
}

// normalizeAngle wraps an angle into (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Translation2d is a point on the field in meters.
type Translation2d struct {
	X float64
	Y float64
}

// Plus returns the vector sum of two translations.
func (t Translation2d) Plus(other Translation2d) Translation2d {
	return Translation2d{X: t.X + other.X, Y: t.Y + other.Y}
}

// Distance returns the Euclidean distance to another translation.
func (t Translation2d) Distance(other Translation2d) float64 {
	return math.Hypot(other.X-t.X, other.Y-t.Y)
}

// Pose2d is a field position plus heading.
type Pose2d struct {
	Translation Translation2d
	Rotation    Rotation2d
}

// NewPose2d builds a pose from field coordinates in meters and a heading.
func NewPose2d(x, y float64, rotation Rotation2d) Pose2d {
	return Pose2d{Translation: Translation2d{X: x, Y: y}, Rotation: rotation}
}

// X returns the field X coordinate in meters.
func (p Pose2d) X() float64 { return p.Translation.X }

// Y returns the field Y coordinate in meters.
func (p Pose2d) Y() float64 { return p.Translation.Y }
