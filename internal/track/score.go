package track

// ScoringParams carries every input to the threat score besides the track
// itself. The protected point is explicit configuration so multiple instances
// (or tests) can score against different reference locations.
type ScoringParams struct {
	SpeedCeilingMps float64
	InnerRadiusM    float64
	OuterRadiusM    float64
	ProtectedPoint  Point

	WeightSpeed          float64
	WeightProximity      float64
	WeightIdentification float64
}

// Score computes the normalized threat score for a track: the three risk
// factors combined under the configured weights, clamped to [0, 100] and
// truncated toward zero. Identical inputs always produce the identical score;
// there is no hidden state and no history beyond the snapshot itself.
func Score(t *Track, p ScoringParams) (int, error) {
	if err := t.ValidateKinematics(); err != nil {
		return 0, err
	}

	identRisk, err := IdentificationRisk(t.Identification)
	if err != nil {
		return 0, err
	}

	speedRisk := SpeedRisk(t.SpeedMps, p.SpeedCeilingMps)
	proxRisk := ProximityRisk(t.X, t.Y, p.ProtectedPoint, p.InnerRadiusM, p.OuterRadiusM)

	raw := p.WeightSpeed*speedRisk + p.WeightProximity*proxRisk + p.WeightIdentification*identRisk
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	return int(raw), nil
}
