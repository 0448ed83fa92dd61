package telemetry

// Verbosity selects how much drive state goes out per tick.
type Verbosity int

const (
	// None publishes nothing.
	None Verbosity = iota
	// Low publishes pose only.
	Low
	// High publishes pose, speeds, and subsystem state.
	High
)

// PoseUpdate is the field pose in dashboard units.
type PoseUpdate struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	HeadingDeg float64 `json:"heading_deg"`
}

// SpeedsUpdate is the robot-frame chassis velocity.
type SpeedsUpdate struct {
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Omega float64 `json:"omega"`
}

// State is one telemetry sample, published once per control tick.
type State struct {
	Pose          PoseUpdate   `json:"pose"`
	Speeds        SpeedsUpdate `json:"speeds,omitempty"`
	WheelsLocked  bool         `json:"wheels_locked,omitempty"`
	IntakeRunning bool         `json:"intake_running,omitempty"`
	AutoReady     bool         `json:"auto_ready,omitempty"`
	Tick          uint64       `json:"tick"`
}

// DriveCommand is an inbound teleop request: field-frame speeds scaled to
// [-1, 1] of the drive maxima.
type DriveCommand struct {
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Omega float64 `json:"omega"`
}
