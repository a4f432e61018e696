package occlusion

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/shieldball/internal/config"
)

// Config holds the classifier thresholds. It is copied into the Classifier
// at construction and never modified afterwards.
type Config struct {
	ExposedMargin  float64    // Exposed when nearest exposed anchor is closer (default: 15)
	ShieldedMargin float64    // Shielded when nearest shielded anchor is closer (default: 15)
	SampleCount    int        // Ring samples per call (default: 12)
	SampleRadius   float64    // Ring radius in pixels (default: 8)
	ColorTolerance int        // Per-channel 8-bit tolerance (default: 30)
	ShieldedRatio  float64    // Fraction of matching samples that must be exceeded (default: 0.3)
	BarrierColor   color.RGBA // Colour the barriers are rasterised with
}

// DefaultConfig returns a Config loaded from the canonical tuning defaults
// file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		ExposedMargin:  cfg.GetExposedMargin(),
		ShieldedMargin: cfg.GetShieldedMargin(),
		SampleCount:    cfg.GetSampleCount(),
		SampleRadius:   cfg.GetSampleRadius(),
		ColorTolerance: cfg.GetColorTolerance(),
		ShieldedRatio:  cfg.GetShieldedRatio(),
		BarrierColor:   cfg.GetBarrierColor(),
	}
}

// Validate checks the configuration for values the classifier cannot use.
func (c Config) Validate() error {
	if c.ExposedMargin < 0 {
		return fmt.Errorf("ExposedMargin must be non-negative, got %f", c.ExposedMargin)
	}
	if c.ShieldedMargin < 0 {
		return fmt.Errorf("ShieldedMargin must be non-negative, got %f", c.ShieldedMargin)
	}
	if c.SampleCount <= 0 {
		return fmt.Errorf("SampleCount must be positive, got %d", c.SampleCount)
	}
	if c.SampleRadius < 0 {
		return fmt.Errorf("SampleRadius must be non-negative, got %f", c.SampleRadius)
	}
	if c.ColorTolerance < 0 || c.ColorTolerance > 255 {
		return fmt.Errorf("ColorTolerance must be in [0, 255], got %d", c.ColorTolerance)
	}
	if c.ShieldedRatio < 0 || c.ShieldedRatio >= 1 {
		return fmt.Errorf("ShieldedRatio must be in [0, 1), got %f", c.ShieldedRatio)
	}
	return nil
}
