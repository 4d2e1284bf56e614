package engine

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CycleStats summarizes a single evaluation cycle for the operator API.
type CycleStats struct {
	RanAtUnix float64 `json:"ran_at_unix"`

	Evaluated   int `json:"evaluated"`    // live tracks scored this cycle
	Skipped     int `json:"skipped"`      // records dropped as data errors
	ScoreWrites int `json:"score_writes"` // persists that cleared the dead-band
	Escalations int `json:"escalations"`  // LIVE->ENGAGED transitions

	// Distribution of the freshly computed scores (zero when no tracks).
	MeanScore float64 `json:"mean_score"`
	MaxScore  float64 `json:"max_score"`
	P50Score  float64 `json:"p50_score"`
	P95Score  float64 `json:"p95_score"`
}

// summarizeScores fills the distribution fields from the cycle's computed
// scores. The slice is sorted in place.
func (s *CycleStats) summarizeScores(scores []float64) {
	if len(scores) == 0 {
		return
	}
	sort.Float64s(scores)
	s.MeanScore = stat.Mean(scores, nil)
	s.MaxScore = scores[len(scores)-1]
	s.P50Score = stat.Quantile(0.5, stat.Empirical, scores, nil)
	s.P95Score = stat.Quantile(0.95, stat.Empirical, scores, nil)
}
