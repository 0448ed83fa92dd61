// Package ds exposes the driver station state the robot program consumes.
// The field management system bridge publishes into it; subsystems only
// read. Before the bridge reports in, the alliance is unknown.
package ds

import "sync"

// Alliance is the alliance color reported by the driver station.
type Alliance int

const (
	// Invalid means no alliance has been reported yet.
	Invalid Alliance = iota
	Red
	Blue
)

func (a Alliance) String() string {
	switch a {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "invalid"
	}
}

// Station is a snapshot of driver station state. Safe for concurrent use.
type Station struct {
	mu       sync.RWMutex
	alliance Alliance
	attached bool
}

// New returns a station with no alliance reported.
func New() *Station {
	return &Station{}
}

// Alliance returns the reported alliance color. ok is false when the
// driver station has not reported an alliance.
func (s *Station) Alliance() (Alliance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached || s.alliance == Invalid {
		return Invalid, false
	}
	return s.alliance, true
}

// SetAlliance records the alliance reported by the FMS bridge.
func (s *Station) SetAlliance(a Alliance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alliance = a
	s.attached = a != Invalid
}
