package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default engine tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// EngineConfig represents the tuning parameters of the threat evaluation
// engine. All fields are optional pointers so partial config files are safe:
// anything omitted from the JSON falls back to the Get* defaults.
type EngineConfig struct {
	// Evaluator pacing
	PollInterval *string `json:"poll_interval,omitempty"` // duration string like "500ms"

	// Risk factor params
	SpeedCeilingMps *float64 `json:"speed_ceiling_mps,omitempty"`
	InnerRadiusM    *float64 `json:"inner_radius_m,omitempty"`
	OuterRadiusM    *float64 `json:"outer_radius_m,omitempty"`
	ProtectedX      *float64 `json:"protected_x,omitempty"`
	ProtectedY      *float64 `json:"protected_y,omitempty"`

	// Score combination weights; must sum to 1.0
	WeightSpeed          *float64 `json:"weight_speed,omitempty"`
	WeightProximity      *float64 `json:"weight_proximity,omitempty"`
	WeightIdentification *float64 `json:"weight_identification,omitempty"`

	// Persistence and escalation thresholds
	DeadBand            *int `json:"dead_band,omitempty"`
	EscalationThreshold *int `json:"escalation_threshold,omitempty"`
}

// EmptyEngineConfig returns an EngineConfig with all fields set to nil, so
// every accessor answers its default. Use LoadEngineConfig to load actual
// values from a file.
func EmptyEngineConfig() *EngineConfig {
	return &EngineConfig{}
}

// LoadEngineConfig loads an EngineConfig from a JSON file. The file must have
// a .json extension and stay under the max file size. Fields omitted from the
// file retain their defaults, so partial configs are safe.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyEngineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and common parent
// directories. Panics if the file cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *EngineConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/<pkg>/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadEngineConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are internally consistent.
func (c *EngineConfig) Validate() error {
	if c.PollInterval != nil && *c.PollInterval != "" {
		d, err := time.ParseDuration(*c.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval '%s': %w", *c.PollInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("poll_interval must be positive, got %s", d)
		}
	}

	if c.SpeedCeilingMps != nil && *c.SpeedCeilingMps <= 0 {
		return fmt.Errorf("speed_ceiling_mps must be positive, got %f", *c.SpeedCeilingMps)
	}

	inner := c.GetInnerRadiusM()
	outer := c.GetOuterRadiusM()
	if inner <= 0 {
		return fmt.Errorf("inner_radius_m must be positive, got %f", inner)
	}
	if outer <= inner {
		return fmt.Errorf("outer_radius_m (%f) must be greater than inner_radius_m (%f)", outer, inner)
	}

	// The three weights must sum to 1.0 so a full-risk track scores exactly 100.
	sum := c.GetWeightSpeed() + c.GetWeightProximity() + c.GetWeightIdentification()
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}

	if c.DeadBand != nil && *c.DeadBand < 0 {
		return fmt.Errorf("dead_band must be non-negative, got %d", *c.DeadBand)
	}

	if c.EscalationThreshold != nil {
		if *c.EscalationThreshold < 0 || *c.EscalationThreshold > 100 {
			return fmt.Errorf("escalation_threshold must be between 0 and 100, got %d", *c.EscalationThreshold)
		}
	}

	return nil
}

// GetPollInterval parses and returns the PollInterval as a time.Duration.
func (c *EngineConfig) GetPollInterval() time.Duration {
	if c.PollInterval == nil || *c.PollInterval == "" {
		return 500 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.PollInterval)
	if err != nil {
		return 500 * time.Millisecond // default on parse error
	}
	return d
}

// GetSpeedCeilingMps returns the speed_ceiling_mps value or the default.
func (c *EngineConfig) GetSpeedCeilingMps() float64 {
	if c.SpeedCeilingMps == nil {
		return 1500
	}
	return *c.SpeedCeilingMps
}

// GetInnerRadiusM returns the inner_radius_m value or the default.
func (c *EngineConfig) GetInnerRadiusM() float64 {
	if c.InnerRadiusM == nil {
		return 100
	}
	return *c.InnerRadiusM
}

// GetOuterRadiusM returns the outer_radius_m value or the default.
func (c *EngineConfig) GetOuterRadiusM() float64 {
	if c.OuterRadiusM == nil {
		return 300
	}
	return *c.OuterRadiusM
}

// GetProtectedX returns the protected_x value or the default.
func (c *EngineConfig) GetProtectedX() float64 {
	if c.ProtectedX == nil {
		return 0
	}
	return *c.ProtectedX
}

// GetProtectedY returns the protected_y value or the default.
func (c *EngineConfig) GetProtectedY() float64 {
	if c.ProtectedY == nil {
		return 0
	}
	return *c.ProtectedY
}

// GetWeightSpeed returns the weight_speed value or the default.
func (c *EngineConfig) GetWeightSpeed() float64 {
	if c.WeightSpeed == nil {
		return 0.30
	}
	return *c.WeightSpeed
}

// GetWeightProximity returns the weight_proximity value or the default.
func (c *EngineConfig) GetWeightProximity() float64 {
	if c.WeightProximity == nil {
		return 0.40
	}
	return *c.WeightProximity
}

// GetWeightIdentification returns the weight_identification value or the default.
func (c *EngineConfig) GetWeightIdentification() float64 {
	if c.WeightIdentification == nil {
		return 0.30
	}
	return *c.WeightIdentification
}

// GetDeadBand returns the dead_band value or the default.
func (c *EngineConfig) GetDeadBand() int {
	if c.DeadBand == nil {
		return 2
	}
	return *c.DeadBand
}

// GetEscalationThreshold returns the escalation_threshold value or the default.
func (c *EngineConfig) GetEscalationThreshold() int {
	if c.EscalationThreshold == nil {
		return 90
	}
	return *c.EscalationThreshold
}
