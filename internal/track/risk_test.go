package track

import (
	"errors"
	"testing"
)

func TestSpeedRisk(t *testing.T) {
	const ceiling = 1500

	tests := []struct {
		name  string
		speed float64
		want  float64
	}{
		{"zero speed is zero risk", 0, 0},
		{"half ceiling", 750, 50},
		{"at ceiling", 1500, 100},
		{"double ceiling capped at 100", 3000, 100},
		{"slow mover", 150, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpeedRisk(tt.speed, ceiling)
			if got != tt.want {
				t.Errorf("SpeedRisk(%v, %v) = %v, want %v", tt.speed, ceiling, got, tt.want)
			}
		})
	}
}

func TestSpeedRiskZeroCeiling(t *testing.T) {
	if got := SpeedRisk(100, 0); got != 0 {
		t.Errorf("SpeedRisk with zero ceiling = %v, want 0", got)
	}
}

func TestProximityRiskBoundaries(t *testing.T) {
	ref := Point{X: 0, Y: 0}
	const inner, outer = 100, 300

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"at protected point", 0, 0, 100},
		{"just inside inner radius", 99.9, 0, 100},
		{"exactly at inner radius", 100.0, 0, 50},
		{"mid band", 200, 0, 50},
		{"just inside outer radius", 299.9, 0, 50},
		{"exactly at outer radius", 300.0, 0, 0},
		{"far out", 5000, 0, 0},
		{"diagonal inside inner", 50, 50, 100}, // d ≈ 70.7
		{"diagonal in band", 150, 150, 50},     // d ≈ 212
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProximityRisk(tt.x, tt.y, ref, inner, outer)
			if got != tt.want {
				t.Errorf("ProximityRisk(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestProximityRiskOffsetReferencePoint(t *testing.T) {
	// The protected point is configuration, not a constant: the same track
	// position scores differently against a different reference.
	ref := Point{X: 1000, Y: 1000}
	if got := ProximityRisk(1000, 1050, ref, 100, 300); got != 100 {
		t.Errorf("ProximityRisk near offset reference = %v, want 100", got)
	}
	if got := ProximityRisk(0, 0, ref, 100, 300); got != 0 {
		t.Errorf("ProximityRisk far from offset reference = %v, want 0", got)
	}
}

func TestIdentificationRisk(t *testing.T) {
	tests := []struct {
		id   Identification
		want float64
	}{
		{IdentFriendly, 0},
		{IdentUnknown, 40},
		{IdentHostile, 100},
	}

	for _, tt := range tests {
		got, err := IdentificationRisk(tt.id)
		if err != nil {
			t.Fatalf("IdentificationRisk(%s) returned error: %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("IdentificationRisk(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestIdentificationRiskUnknownValue(t *testing.T) {
	_, err := IdentificationRisk(Identification("NEUTRAL"))
	if err == nil {
		t.Fatal("expected error for identification outside the known set")
	}
	if !errors.Is(err, ErrBadRecord) {
		t.Errorf("error = %v, want ErrBadRecord in chain", err)
	}
}
