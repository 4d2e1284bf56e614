package track

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadRecord marks a track record whose attributes fall outside the values
// the scoring functions accept. Callers skip the record and keep the cycle
// going; it never aborts evaluation of other tracks.
var ErrBadRecord = errors.New("bad track record")

// Point is a 2D reference location in the tracking coordinate frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance from p to (x, y).
func (p Point) Distance(x, y float64) float64 {
	return math.Hypot(x-p.X, y-p.Y)
}

// SpeedRisk maps a speed magnitude to a 0-100 risk value: a linear ramp that
// reaches 100 at ceiling and stays capped above it. Zero speed is zero risk.
func SpeedRisk(speedMps, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return math.Min(100, speedMps/ceiling*100)
}

// ProximityRisk maps distance-to-protected-point to a 0-100 risk value as a
// step function of the two configured radii:
//
//	d <  inner          -> 100
//	inner <= d < outer  -> 50
//	d >= outer          -> 0
//
// The steps are deliberate: risk contribution changes abruptly at the radii
// rather than decaying smoothly, and the boundary points themselves belong to
// the outer band.
func ProximityRisk(x, y float64, ref Point, innerRadius, outerRadius float64) float64 {
	d := ref.Distance(x, y)
	switch {
	case d < innerRadius:
		return 100
	case d < outerRadius:
		return 50
	default:
		return 0
	}
}

// IdentificationRisk maps IFF classification to a 0-100 risk value. Any value
// outside the known set is a data error, not a default.
func IdentificationRisk(id Identification) (float64, error) {
	switch id {
	case IdentFriendly:
		return 0, nil
	case IdentUnknown:
		return 40, nil
	case IdentHostile:
		return 100, nil
	}
	return 0, fmt.Errorf("%w: identification %q", ErrBadRecord, id)
}
