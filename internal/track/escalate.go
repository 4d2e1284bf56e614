package track

// ShouldEngage decides whether a freshly computed score warrants the one-way
// Live->Engaged transition. Escalation fires on a strictly greater comparison
// against the threshold and only for live tracks; Engaged is terminal and
// there is no de-escalation path in this engine.
//
// The caller passes the computed score of the current cycle, not the persisted
// one: escalation is independent of the dead-band filter, so a track can
// engage on a cycle where its stored score did not change.
func ShouldEngage(score int, state State, threshold int) bool {
	return state == StateLive && score > threshold
}
