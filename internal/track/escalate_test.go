package track

import "testing"

func TestShouldEngage(t *testing.T) {
	const threshold = 90

	tests := []struct {
		name  string
		score int
		state State
		want  bool
	}{
		{"below threshold", 70, StateLive, false},
		{"exactly at threshold does not engage", 90, StateLive, false},
		{"just above threshold engages", 91, StateLive, true},
		{"maximum score engages", 100, StateLive, true},
		{"engaged track never re-engages", 100, StateEngaged, false},
		{"zero score", 0, StateLive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldEngage(tt.score, tt.state, threshold); got != tt.want {
				t.Errorf("ShouldEngage(%d, %s, %d) = %v, want %v", tt.score, tt.state, threshold, got, tt.want)
			}
		})
	}
}
