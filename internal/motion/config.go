package motion

import (
	"fmt"
	"time"

	"github.com/banshee-data/shieldball/internal/config"
)

// Config holds the speed ramp and orbit parameters of the Controller.
type Config struct {
	BaseSpeed        float64 // Interpolation fraction per tick before factors (default: 0.05)
	MaxSpeedFactor   float64 // Ceiling for the time factor (default: 5)
	TimeRate         float64 // Time factor growth per second of dwell (default: 0.2)
	ArrivalThreshold float64 // Pre-step distance that counts as arrived (default: 4)

	// Near-field boost, overriding the ratio factors below NearFieldDistance
	NearFieldDistance float64       // default: 10
	NearFieldBase     float64       // default: 2.0
	NearFieldSlope    float64       // Added per unit inside NearFieldDistance (default: 0.3)
	StallAfter        time.Duration // Dwell after which the boost escalates (default: 3s)
	StallRate         float64       // Escalation per second past StallAfter, uncapped (default: 0.5)

	// Ratio factors relative to the initial distance
	CloseRatio     float64 // default: 0.3
	CloseFactor    float64 // default: 1.5
	ApproachRatio  float64 // default: 0.8
	ApproachFactor float64 // default: 1.2

	// Idle orbit around the anchor
	AngularSpeed   float64 // Radians per second (default: 3.0)
	ShieldedRadius float64 // default: 1.5
	ExposedRadius  float64 // default: 2.0
}

// DefaultConfig returns a Config loaded from the canonical tuning defaults
// file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		BaseSpeed:         cfg.GetBaseSpeed(),
		MaxSpeedFactor:    cfg.GetMaxSpeedFactor(),
		TimeRate:          cfg.GetTimeRate(),
		ArrivalThreshold:  cfg.GetArrivalThreshold(),
		NearFieldDistance: cfg.GetNearFieldDistance(),
		NearFieldBase:     cfg.GetNearFieldBase(),
		NearFieldSlope:    cfg.GetNearFieldSlope(),
		StallAfter:        cfg.GetStallAfter(),
		StallRate:         cfg.GetStallRate(),
		CloseRatio:        cfg.GetCloseRatio(),
		CloseFactor:       cfg.GetCloseFactor(),
		ApproachRatio:     cfg.GetApproachRatio(),
		ApproachFactor:    cfg.GetApproachFactor(),
		AngularSpeed:      cfg.GetAngularSpeed(),
		ShieldedRadius:    cfg.GetShieldedRadius(),
		ExposedRadius:     cfg.GetExposedRadius(),
	}
}

// Validate checks the configuration for values the controller cannot use.
func (c Config) Validate() error {
	if c.BaseSpeed <= 0 {
		return fmt.Errorf("BaseSpeed must be positive, got %f", c.BaseSpeed)
	}
	if c.MaxSpeedFactor < 1 {
		return fmt.Errorf("MaxSpeedFactor must be at least 1, got %f", c.MaxSpeedFactor)
	}
	if c.TimeRate < 0 {
		return fmt.Errorf("TimeRate must be non-negative, got %f", c.TimeRate)
	}
	if c.ArrivalThreshold <= 0 {
		return fmt.Errorf("ArrivalThreshold must be positive, got %f", c.ArrivalThreshold)
	}
	if c.NearFieldDistance < 0 || c.NearFieldBase < 0 || c.NearFieldSlope < 0 {
		return fmt.Errorf("near-field parameters must be non-negative")
	}
	if c.StallAfter < 0 || c.StallRate < 0 {
		return fmt.Errorf("stall parameters must be non-negative")
	}
	if c.CloseRatio <= 0 || c.CloseRatio > c.ApproachRatio || c.ApproachRatio > 1 {
		return fmt.Errorf("ratios must satisfy 0 < CloseRatio (%f) <= ApproachRatio (%f) <= 1", c.CloseRatio, c.ApproachRatio)
	}
	if c.ShieldedRadius < 0 || c.ExposedRadius < 0 {
		return fmt.Errorf("orbit radii must be non-negative")
	}
	return nil
}

// orbitRadius returns the maintain radius for phase.
func (c Config) orbitRadius(p Phase) float64 {
	if p == PhaseExposed {
		return c.ExposedRadius
	}
	return c.ShieldedRadius
}
