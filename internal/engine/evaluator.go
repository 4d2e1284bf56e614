package engine

import (
	"context"
	"sync"
	"time"

	"github.com/skyfence-labs/skyfence/internal/config"
	"github.com/skyfence-labs/skyfence/internal/monitoring"
	"github.com/skyfence-labs/skyfence/internal/store"
	"github.com/skyfence-labs/skyfence/internal/timeutil"
	"github.com/skyfence-labs/skyfence/internal/track"
)

// Params carries the evaluator tuning: scoring inputs, the dead-band below
// which recomputed scores are not persisted, the escalation threshold, and
// the poll interval between cycles.
type Params struct {
	Scoring             track.ScoringParams
	DeadBand            int
	EscalationThreshold int
	Interval            time.Duration
}

// ParamsFromTuning builds evaluator params from a loaded tuning config.
func ParamsFromTuning(cfg *config.EngineConfig) Params {
	return Params{
		Scoring: track.ScoringParams{
			SpeedCeilingMps: cfg.GetSpeedCeilingMps(),
			InnerRadiusM:    cfg.GetInnerRadiusM(),
			OuterRadiusM:    cfg.GetOuterRadiusM(),
			ProtectedPoint: track.Point{
				X: cfg.GetProtectedX(),
				Y: cfg.GetProtectedY(),
			},
			WeightSpeed:          cfg.GetWeightSpeed(),
			WeightProximity:      cfg.GetWeightProximity(),
			WeightIdentification: cfg.GetWeightIdentification(),
		},
		DeadBand:            cfg.GetDeadBand(),
		EscalationThreshold: cfg.GetEscalationThreshold(),
		Interval:            cfg.GetPollInterval(),
	}
}

// Evaluator is the threat evaluation loop: each cycle it pulls the live track
// snapshot, recomputes every score from scratch, persists scores that moved
// past the dead-band, and engages tracks whose computed score crosses the
// escalation threshold.
//
// The evaluator is stateless across cycles beyond what the store persists.
// Run at most one evaluator instance per store: concurrent instances would
// race on score and status writes.
type Evaluator struct {
	Store    store.TrackStore
	Params   Params
	Clock    timeutil.Clock
	StopChan chan struct{}

	mu        sync.Mutex
	lastStats CycleStats
}

// NewEvaluator creates an evaluator over the given store gateway.
func NewEvaluator(s store.TrackStore, p Params) *Evaluator {
	return &Evaluator{
		Store:    s,
		Params:   p,
		Clock:    timeutil.RealClock{},
		StopChan: make(chan struct{}),
	}
}

// Start runs the periodic evaluation loop in a goroutine. Recoverable cycle
// errors are logged and the loop keeps its cadence; only Stop (or process
// exit) ends it.
func (e *Evaluator) Start() {
	go func() {
		ticker := e.Clock.NewTicker(e.Params.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if _, err := e.RunOnce(context.Background()); err != nil {
					monitoring.Logf("evaluator cycle error: %v", err)
				}
			case <-e.StopChan:
				return
			}
		}
	}()
}

// Stop requests the evaluation loop to stop.
func (e *Evaluator) Stop() {
	close(e.StopChan)
}

// LastStats returns the most recently completed cycle's summary.
func (e *Evaluator) LastStats() CycleStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStats
}

// RunOnce executes a single evaluation cycle. A fetch failure aborts the
// cycle with a CategoryFetch error; data and persist failures are logged,
// counted, and never abort the cycle.
func (e *Evaluator) RunOnce(ctx context.Context) (CycleStats, error) {
	stats := CycleStats{RanAtUnix: float64(e.Clock.Now().UnixNano()) / 1e9}

	tracks, err := e.Store.FetchLiveTracks(ctx)
	if err != nil {
		return stats, fetchError(err)
	}

	scores := make([]float64, 0, len(tracks))
	for i := range tracks {
		t := &tracks[i]

		score, err := track.Score(t, e.Params.Scoring)
		if err != nil {
			// Data error: drop this record, keep the cycle going.
			monitoring.Logf("evaluator: skipping track %d (%s): %v", t.ID, t.ExternalRef, err)
			stats.Skipped++
			continue
		}
		stats.Evaluated++
		scores = append(scores, float64(score))

		// Dead-band filter: persist only when the score moved strictly more
		// than the configured band from its stored value.
		if abs(score-t.ThreatScore) > e.Params.DeadBand {
			if err := e.Store.PersistScore(ctx, t.ID, score); err != nil {
				monitoring.Logf("evaluator: persist score for track %d: %v", t.ID, err)
			} else {
				stats.ScoreWrites++
				monitoring.Logf("evaluator: track %d score %d -> %d", t.ID, t.ThreatScore, score)
			}
		}

		// Escalation runs against the freshly computed score regardless of
		// whether the dead-band suppressed the score write.
		if track.ShouldEngage(score, t.State, e.Params.EscalationThreshold) {
			if err := e.Store.PersistStatus(ctx, t.ID, track.StateEngaged); err != nil {
				monitoring.Logf("evaluator: engage track %d: %v", t.ID, err)
			} else {
				stats.Escalations++
				monitoring.Logf("evaluator: track %d ENGAGED (score %d > %d)", t.ID, score, e.Params.EscalationThreshold)
			}
		}
	}

	stats.summarizeScores(scores)

	e.mu.Lock()
	e.lastStats = stats
	e.mu.Unlock()

	return stats, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
