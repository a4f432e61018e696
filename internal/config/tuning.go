package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// Every field is optional: a nil pointer means "use the built-in default",
// which the Get* accessors return. The same schema is accepted as JSON or
// YAML so hand-edited level files can use either.
type TuningConfig struct {
	// Occlusion classifier
	ExposedMargin  *float64 `json:"exposed_margin,omitempty" yaml:"exposed_margin,omitempty"`
	ShieldedMargin *float64 `json:"shielded_margin,omitempty" yaml:"shielded_margin,omitempty"`
	SampleCount    *int     `json:"sample_count,omitempty" yaml:"sample_count,omitempty"`
	SampleRadius   *float64 `json:"sample_radius,omitempty" yaml:"sample_radius,omitempty"`
	ColorTolerance *int     `json:"color_tolerance,omitempty" yaml:"color_tolerance,omitempty"`
	ShieldedRatio  *float64 `json:"shielded_ratio,omitempty" yaml:"shielded_ratio,omitempty"`
	BarrierColor   *string  `json:"barrier_color,omitempty" yaml:"barrier_color,omitempty"` // "#rrggbb"

	// Motion controller
	BaseSpeed         *float64 `json:"base_speed,omitempty" yaml:"base_speed,omitempty"`
	MaxSpeedFactor    *float64 `json:"max_speed_factor,omitempty" yaml:"max_speed_factor,omitempty"`
	TimeRate          *float64 `json:"time_rate,omitempty" yaml:"time_rate,omitempty"`
	ArrivalThreshold  *float64 `json:"arrival_threshold,omitempty" yaml:"arrival_threshold,omitempty"`
	NearFieldDistance *float64 `json:"near_field_distance,omitempty" yaml:"near_field_distance,omitempty"`
	NearFieldBase     *float64 `json:"near_field_base,omitempty" yaml:"near_field_base,omitempty"`
	NearFieldSlope    *float64 `json:"near_field_slope,omitempty" yaml:"near_field_slope,omitempty"`
	StallAfter        *string  `json:"stall_after,omitempty" yaml:"stall_after,omitempty"` // duration string like "3s"
	StallRate         *float64 `json:"stall_rate,omitempty" yaml:"stall_rate,omitempty"`
	CloseRatio        *float64 `json:"close_ratio,omitempty" yaml:"close_ratio,omitempty"`
	CloseFactor       *float64 `json:"close_factor,omitempty" yaml:"close_factor,omitempty"`
	ApproachRatio     *float64 `json:"approach_ratio,omitempty" yaml:"approach_ratio,omitempty"`
	ApproachFactor    *float64 `json:"approach_factor,omitempty" yaml:"approach_factor,omitempty"`
	AngularSpeed      *float64 `json:"angular_speed,omitempty" yaml:"angular_speed,omitempty"` // rad/s
	ShieldedRadius    *float64 `json:"shielded_radius,omitempty" yaml:"shielded_radius,omitempty"`
	ExposedRadius     *float64 `json:"exposed_radius,omitempty" yaml:"exposed_radius,omitempty"`

	// Arena / scheduler
	Rows              *int     `json:"rows,omitempty" yaml:"rows,omitempty"`
	Cols              *int     `json:"cols,omitempty" yaml:"cols,omitempty"`
	CellSize          *float64 `json:"cell_size,omitempty" yaml:"cell_size,omitempty"`
	BarrierDensity    *float64 `json:"barrier_density,omitempty" yaml:"barrier_density,omitempty"`
	SwayAmplitude     *float64 `json:"sway_amplitude,omitempty" yaml:"sway_amplitude,omitempty"`
	SwayPeriod        *string  `json:"sway_period,omitempty" yaml:"sway_period,omitempty"`
	RockAmplitudeDeg  *float64 `json:"rock_amplitude_deg,omitempty" yaml:"rock_amplitude_deg,omitempty"`
	MaxFrameDelta     *string  `json:"max_frame_delta,omitempty" yaml:"max_frame_delta,omitempty"`
	ShieldedPhaseHold *string  `json:"shielded_phase_hold,omitempty" yaml:"shielded_phase_hold,omitempty"`
	ExposedPhaseHold  *string  `json:"exposed_phase_hold,omitempty" yaml:"exposed_phase_hold,omitempty"`
	BallRadius        *float64 `json:"ball_radius,omitempty" yaml:"ball_radius,omitempty"`

	// Outline extraction
	ContourTolerance   *float64 `json:"contour_tolerance,omitempty" yaml:"contour_tolerance,omitempty"`
	ContourHighQuality *bool    `json:"contour_high_quality,omitempty" yaml:"contour_high_quality,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the built-in defaults. It needs no file on disk.
func DefaultTuningConfig() *TuningConfig {
	c := EmptyTuningConfig()
	return &TuningConfig{
		ExposedMargin:  ptrFloat64(c.GetExposedMargin()),
		ShieldedMargin: ptrFloat64(c.GetShieldedMargin()),
		SampleCount:    ptrInt(c.GetSampleCount()),
		SampleRadius:   ptrFloat64(c.GetSampleRadius()),
		ColorTolerance: ptrInt(c.GetColorTolerance()),
		ShieldedRatio:  ptrFloat64(c.GetShieldedRatio()),
		BarrierColor:   ptrString(defaultBarrierColor),

		BaseSpeed:         ptrFloat64(c.GetBaseSpeed()),
		MaxSpeedFactor:    ptrFloat64(c.GetMaxSpeedFactor()),
		TimeRate:          ptrFloat64(c.GetTimeRate()),
		ArrivalThreshold:  ptrFloat64(c.GetArrivalThreshold()),
		NearFieldDistance: ptrFloat64(c.GetNearFieldDistance()),
		NearFieldBase:     ptrFloat64(c.GetNearFieldBase()),
		NearFieldSlope:    ptrFloat64(c.GetNearFieldSlope()),
		StallAfter:        ptrString(c.GetStallAfter().String()),
		StallRate:         ptrFloat64(c.GetStallRate()),
		CloseRatio:        ptrFloat64(c.GetCloseRatio()),
		CloseFactor:       ptrFloat64(c.GetCloseFactor()),
		ApproachRatio:     ptrFloat64(c.GetApproachRatio()),
		ApproachFactor:    ptrFloat64(c.GetApproachFactor()),
		AngularSpeed:      ptrFloat64(c.GetAngularSpeed()),
		ShieldedRadius:    ptrFloat64(c.GetShieldedRadius()),
		ExposedRadius:     ptrFloat64(c.GetExposedRadius()),

		Rows:              ptrInt(c.GetRows()),
		Cols:              ptrInt(c.GetCols()),
		CellSize:          ptrFloat64(c.GetCellSize()),
		BarrierDensity:    ptrFloat64(c.GetBarrierDensity()),
		SwayAmplitude:     ptrFloat64(c.GetSwayAmplitude()),
		SwayPeriod:        ptrString(c.GetSwayPeriod().String()),
		RockAmplitudeDeg:  ptrFloat64(c.GetRockAmplitudeDeg()),
		MaxFrameDelta:     ptrString(c.GetMaxFrameDelta().String()),
		ShieldedPhaseHold: ptrString(c.GetShieldedPhaseHold().String()),
		ExposedPhaseHold:  ptrString(c.GetExposedPhaseHold().String()),
		BallRadius:        ptrFloat64(c.GetBallRadius()),

		ContourTolerance:   ptrFloat64(c.GetContourTolerance()),
		ContourHighQuality: ptrBool(c.GetContourHighQuality()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file.
// The file is validated to ensure it has a supported extension and is under
// the max file size. Fields omitted from the file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	positive := []struct {
		name string
		v    *float64
	}{
		{"exposed_margin", c.ExposedMargin},
		{"shielded_margin", c.ShieldedMargin},
		{"sample_radius", c.SampleRadius},
		{"base_speed", c.BaseSpeed},
		{"max_speed_factor", c.MaxSpeedFactor},
		{"arrival_threshold", c.ArrivalThreshold},
		{"near_field_distance", c.NearFieldDistance},
		{"cell_size", c.CellSize},
		{"ball_radius", c.BallRadius},
	}
	for _, p := range positive {
		if p.v != nil && *p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", p.name, *p.v)
		}
	}

	if c.ShieldedRatio != nil && (*c.ShieldedRatio < 0 || *c.ShieldedRatio > 1) {
		return fmt.Errorf("shielded_ratio must be between 0 and 1, got %f", *c.ShieldedRatio)
	}
	if c.BarrierDensity != nil && (*c.BarrierDensity < 0 || *c.BarrierDensity > 1) {
		return fmt.Errorf("barrier_density must be between 0 and 1, got %f", *c.BarrierDensity)
	}
	if c.SampleCount != nil && *c.SampleCount < 1 {
		return fmt.Errorf("sample_count must be at least 1, got %d", *c.SampleCount)
	}
	if c.ColorTolerance != nil && (*c.ColorTolerance < 0 || *c.ColorTolerance > 255) {
		return fmt.Errorf("color_tolerance must be in [0, 255], got %d", *c.ColorTolerance)
	}
	if c.Rows != nil && *c.Rows < 1 {
		return fmt.Errorf("rows must be at least 1, got %d", *c.Rows)
	}
	if c.Cols != nil && *c.Cols < 1 {
		return fmt.Errorf("cols must be at least 1, got %d", *c.Cols)
	}
	if c.BarrierColor != nil {
		if _, err := parseHexColor(*c.BarrierColor); err != nil {
			return fmt.Errorf("invalid barrier_color %q: %w", *c.BarrierColor, err)
		}
	}

	durations := []struct {
		name string
		v    *string
	}{
		{"stall_after", c.StallAfter},
		{"sway_period", c.SwayPeriod},
		{"max_frame_delta", c.MaxFrameDelta},
		{"shielded_phase_hold", c.ShieldedPhaseHold},
		{"exposed_phase_hold", c.ExposedPhaseHold},
	}
	for _, d := range durations {
		if d.v == nil || *d.v == "" {
			continue
		}
		if _, err := time.ParseDuration(*d.v); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", d.name, *d.v, err)
		}
	}

	return nil
}

func float64Or(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}

// GetExposedMargin returns the exposed_margin value or the default.
func (c *TuningConfig) GetExposedMargin() float64 { return float64Or(c.ExposedMargin, 15) }

// GetShieldedMargin returns the shielded_margin value or the default.
func (c *TuningConfig) GetShieldedMargin() float64 { return float64Or(c.ShieldedMargin, 15) }

// GetSampleCount returns the sample_count value or the default.
func (c *TuningConfig) GetSampleCount() int { return intOr(c.SampleCount, 12) }

// GetSampleRadius returns the sample_radius value or the default.
func (c *TuningConfig) GetSampleRadius() float64 { return float64Or(c.SampleRadius, 8) }

// GetColorTolerance returns the color_tolerance value or the default.
func (c *TuningConfig) GetColorTolerance() int { return intOr(c.ColorTolerance, 30) }

// GetShieldedRatio returns the shielded_ratio value or the default.
func (c *TuningConfig) GetShieldedRatio() float64 { return float64Or(c.ShieldedRatio, 0.3) }

const defaultBarrierColor = "#3a5f8a"

// GetBarrierColor returns the parsed barrier_color or the default slate blue.
func (c *TuningConfig) GetBarrierColor() color.RGBA {
	if c.BarrierColor != nil {
		if rgba, err := parseHexColor(*c.BarrierColor); err == nil {
			return rgba
		}
	}
	rgba, _ := parseHexColor(defaultBarrierColor)
	return rgba
}

// GetBaseSpeed returns the base_speed value or the default.
func (c *TuningConfig) GetBaseSpeed() float64 { return float64Or(c.BaseSpeed, 0.05) }

// GetMaxSpeedFactor returns the max_speed_factor value or the default.
func (c *TuningConfig) GetMaxSpeedFactor() float64 { return float64Or(c.MaxSpeedFactor, 5) }

// GetTimeRate returns the time_rate value or the default.
func (c *TuningConfig) GetTimeRate() float64 { return float64Or(c.TimeRate, 0.2) }

// GetArrivalThreshold returns the arrival_threshold value or the default.
func (c *TuningConfig) GetArrivalThreshold() float64 { return float64Or(c.ArrivalThreshold, 4) }

// GetNearFieldDistance returns the near_field_distance value or the default.
func (c *TuningConfig) GetNearFieldDistance() float64 { return float64Or(c.NearFieldDistance, 10) }

// GetNearFieldBase returns the near_field_base value or the default.
func (c *TuningConfig) GetNearFieldBase() float64 { return float64Or(c.NearFieldBase, 2.0) }

// GetNearFieldSlope returns the near_field_slope value or the default.
func (c *TuningConfig) GetNearFieldSlope() float64 { return float64Or(c.NearFieldSlope, 0.3) }

// GetStallAfter parses and returns the StallAfter as a time.Duration.
func (c *TuningConfig) GetStallAfter() time.Duration {
	return durationOr(c.StallAfter, 3*time.Second)
}

// GetStallRate returns the stall_rate value or the default.
func (c *TuningConfig) GetStallRate() float64 { return float64Or(c.StallRate, 0.5) }

// GetCloseRatio returns the close_ratio value or the default.
func (c *TuningConfig) GetCloseRatio() float64 { return float64Or(c.CloseRatio, 0.3) }

// GetCloseFactor returns the close_factor value or the default.
func (c *TuningConfig) GetCloseFactor() float64 { return float64Or(c.CloseFactor, 1.5) }

// GetApproachRatio returns the approach_ratio value or the default.
func (c *TuningConfig) GetApproachRatio() float64 { return float64Or(c.ApproachRatio, 0.8) }

// GetApproachFactor returns the approach_factor value or the default.
func (c *TuningConfig) GetApproachFactor() float64 { return float64Or(c.ApproachFactor, 1.2) }

// GetAngularSpeed returns the angular_speed value (rad/s) or the default.
func (c *TuningConfig) GetAngularSpeed() float64 { return float64Or(c.AngularSpeed, 3.0) }

// GetShieldedRadius returns the shielded_radius value or the default.
func (c *TuningConfig) GetShieldedRadius() float64 { return float64Or(c.ShieldedRadius, 1.5) }

// GetExposedRadius returns the exposed_radius value or the default.
func (c *TuningConfig) GetExposedRadius() float64 { return float64Or(c.ExposedRadius, 2.0) }

// GetRows returns the rows value or the default.
func (c *TuningConfig) GetRows() int { return intOr(c.Rows, 6) }

// GetCols returns the cols value or the default.
func (c *TuningConfig) GetCols() int { return intOr(c.Cols, 8) }

// GetCellSize returns the cell_size value or the default.
func (c *TuningConfig) GetCellSize() float64 { return float64Or(c.CellSize, 40) }

// GetBarrierDensity returns the barrier_density value or the default.
func (c *TuningConfig) GetBarrierDensity() float64 { return float64Or(c.BarrierDensity, 0.25) }

// GetSwayAmplitude returns the sway_amplitude value or the default.
func (c *TuningConfig) GetSwayAmplitude() float64 { return float64Or(c.SwayAmplitude, 12) }

// GetSwayPeriod parses and returns the SwayPeriod as a time.Duration.
func (c *TuningConfig) GetSwayPeriod() time.Duration {
	return durationOr(c.SwayPeriod, 6*time.Second)
}

// GetRockAmplitudeDeg returns the rock_amplitude_deg value or the default.
func (c *TuningConfig) GetRockAmplitudeDeg() float64 { return float64Or(c.RockAmplitudeDeg, 4) }

// GetMaxFrameDelta parses and returns the MaxFrameDelta as a time.Duration.
func (c *TuningConfig) GetMaxFrameDelta() time.Duration {
	return durationOr(c.MaxFrameDelta, 100*time.Millisecond)
}

// GetShieldedPhaseHold parses and returns the ShieldedPhaseHold as a time.Duration.
func (c *TuningConfig) GetShieldedPhaseHold() time.Duration {
	return durationOr(c.ShieldedPhaseHold, 2*time.Second)
}

// GetExposedPhaseHold parses and returns the ExposedPhaseHold as a time.Duration.
func (c *TuningConfig) GetExposedPhaseHold() time.Duration {
	return durationOr(c.ExposedPhaseHold, 1500*time.Millisecond)
}

// GetBallRadius returns the ball_radius value or the default.
func (c *TuningConfig) GetBallRadius() float64 { return float64Or(c.BallRadius, 6) }

// GetContourTolerance returns the contour_tolerance value or the default.
func (c *TuningConfig) GetContourTolerance() float64 { return float64Or(c.ContourTolerance, 0.25) }

// GetContourHighQuality returns the contour_high_quality value or the default.
func (c *TuningConfig) GetContourHighQuality() bool {
	if c.ContourHighQuality == nil {
		return false
	}
	return *c.ContourHighQuality
}

// parseHexColor parses "#rrggbb" or "rrggbb" into an opaque colour.
func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("expected 6 hex digits, got %d", len(s))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
