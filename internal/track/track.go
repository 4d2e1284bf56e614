package track

import (
	"fmt"
	"math"
)

// Identification is the IFF classification of a track.
type Identification string

const (
	IdentFriendly Identification = "FRIENDLY"
	IdentUnknown  Identification = "UNKNOWN"
	IdentHostile  Identification = "HOSTILE"
)

// State represents the lifecycle state of a track.
//
// Live is the initial state for every track the engine evaluates. Engaged is
// terminal: the engine never reverts an engaged track, and engaged tracks are
// excluded from further evaluation.
type State string

const (
	StateLive    State = "LIVE"
	StateEngaged State = "ENGAGED"
)

// Track is a monitored object record as persisted in the track store. The
// external producer owns position, speed and identification; this engine owns
// ThreatScore and the Live->Engaged transition of State.
type Track struct {
	ID          int64
	ExternalRef string

	// Kinematics (world frame, same coordinate space as the protected point)
	X        float64
	Y        float64
	SpeedMps float64

	Identification Identification
	ThreatScore    int
	State          State

	CreatedUnix float64
	UpdatedUnix float64
}

// ParseIdentification validates a raw identification string from the store.
func ParseIdentification(s string) (Identification, error) {
	switch Identification(s) {
	case IdentFriendly, IdentUnknown, IdentHostile:
		return Identification(s), nil
	}
	return "", fmt.Errorf("%w: identification %q", ErrBadRecord, s)
}

// ParseState validates a raw lifecycle state string from the store.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateLive, StateEngaged:
		return State(s), nil
	}
	return "", fmt.Errorf("%w: state %q", ErrBadRecord, s)
}

// ValidateKinematics rejects records whose position or speed cannot be scored.
// Speed must be a finite non-negative magnitude and both coordinates finite.
func (t *Track) ValidateKinematics() error {
	if math.IsNaN(t.SpeedMps) || math.IsInf(t.SpeedMps, 0) || t.SpeedMps < 0 {
		return fmt.Errorf("%w: track %d speed %v", ErrBadRecord, t.ID, t.SpeedMps)
	}
	if math.IsNaN(t.X) || math.IsInf(t.X, 0) || math.IsNaN(t.Y) || math.IsInf(t.Y, 0) {
		return fmt.Errorf("%w: track %d position (%v, %v)", ErrBadRecord, t.ID, t.X, t.Y)
	}
	return nil
}
