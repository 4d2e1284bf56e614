package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyEngineConfig()

	if got := cfg.GetPollInterval(); got != 500*time.Millisecond {
		t.Errorf("GetPollInterval = %v, want 500ms", got)
	}
	if got := cfg.GetSpeedCeilingMps(); got != 1500 {
		t.Errorf("GetSpeedCeilingMps = %v, want 1500", got)
	}
	if got := cfg.GetInnerRadiusM(); got != 100 {
		t.Errorf("GetInnerRadiusM = %v, want 100", got)
	}
	if got := cfg.GetOuterRadiusM(); got != 300 {
		t.Errorf("GetOuterRadiusM = %v, want 300", got)
	}
	if got := cfg.GetWeightSpeed(); got != 0.30 {
		t.Errorf("GetWeightSpeed = %v, want 0.30", got)
	}
	if got := cfg.GetWeightProximity(); got != 0.40 {
		t.Errorf("GetWeightProximity = %v, want 0.40", got)
	}
	if got := cfg.GetWeightIdentification(); got != 0.30 {
		t.Errorf("GetWeightIdentification = %v, want 0.30", got)
	}
	if got := cfg.GetDeadBand(); got != 2 {
		t.Errorf("GetDeadBand = %v, want 2", got)
	}
	if got := cfg.GetEscalationThreshold(); got != 90 {
		t.Errorf("GetEscalationThreshold = %v, want 90", got)
	}
	if x, y := cfg.GetProtectedX(), cfg.GetProtectedY(); x != 0 || y != 0 {
		t.Errorf("protected point = (%v, %v), want origin", x, y)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, `{"poll_interval": "2s", "dead_band": 5}`)

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}

	if got := cfg.GetPollInterval(); got != 2*time.Second {
		t.Errorf("GetPollInterval = %v, want 2s", got)
	}
	if got := cfg.GetDeadBand(); got != 5 {
		t.Errorf("GetDeadBand = %v, want 5", got)
	}
	// untouched fields keep their defaults
	if got := cfg.GetEscalationThreshold(); got != 90 {
		t.Errorf("GetEscalationThreshold = %v, want 90", got)
	}
}

func TestLoadConfigRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantSub  string
	}{
		{
			name:     "weights not summing to one",
			contents: `{"weight_speed": 0.5, "weight_proximity": 0.5, "weight_identification": 0.5}`,
			wantSub:  "weights must sum to 1.0",
		},
		{
			name:     "outer radius inside inner",
			contents: `{"inner_radius_m": 300, "outer_radius_m": 100}`,
			wantSub:  "outer_radius_m",
		},
		{
			name:     "negative dead band",
			contents: `{"dead_band": -1}`,
			wantSub:  "dead_band",
		},
		{
			name:     "escalation threshold out of range",
			contents: `{"escalation_threshold": 150}`,
			wantSub:  "escalation_threshold",
		},
		{
			name:     "unparseable poll interval",
			contents: `{"poll_interval": "fast"}`,
			wantSub:  "poll_interval",
		},
		{
			name:     "negative poll interval",
			contents: `{"poll_interval": "-1s"}`,
			wantSub:  "poll_interval",
		},
		{
			name:     "zero speed ceiling",
			contents: `{"speed_ceiling_mps": 0}`,
			wantSub:  "speed_ceiling_mps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.contents)
			_, err := LoadEngineConfig(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidWeightsRedistributed(t *testing.T) {
	path := writeConfig(t, `{"weight_speed": 0.2, "weight_proximity": 0.5, "weight_identification": 0.3}`)
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig: %v", err)
	}
	if got := cfg.GetWeightProximity(); got != 0.5 {
		t.Errorf("GetWeightProximity = %v, want 0.5", got)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("canonical defaults failed validation: %v", err)
	}
	if got := cfg.GetEscalationThreshold(); got != 90 {
		t.Errorf("defaults file escalation_threshold = %d, want 90", got)
	}
}
