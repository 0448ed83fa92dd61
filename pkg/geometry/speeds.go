package geometry

// ChassisSpeeds is a chassis velocity: linear meters per second plus angular
// radians per second. The frame (robot or field) is determined by context;
// conversion helpers are below.
type ChassisSpeeds struct {
	VX    float64 // forward, m/s
	VY    float64 // left, m/s
	Omega float64 // counter-clockwise, rad/s
}

// FromFieldRelative converts field-frame speeds into the robot frame given
// the robot's current heading.
func FromFieldRelative(field ChassisSpeeds, heading Rotation2d) ChassisSpeeds {
	cos, sin := heading.Cos(), heading.Sin()
	return ChassisSpeeds{
		VX:    field.VX*cos + field.VY*sin,
		VY:    -field.VX*sin + field.VY*cos,
		Omega: field.Omega,
	}
}

// ToFieldRelative converts robot-frame speeds into the field frame given the
// robot's current heading.
func ToFieldRelative(robot ChassisSpeeds, heading Rotation2d) ChassisSpeeds {
	cos, sin := heading.Cos(), heading.Sin()
	return ChassisSpeeds{
		VX:    robot.VX*cos - robot.VY*sin,
		VY:    robot.VX*sin + robot.VY*cos,
		Omega: robot.Omega,
	}
}
