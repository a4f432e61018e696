package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.ExposedMargin == nil || *cfg.ExposedMargin != 15 {
		t.Errorf("Expected ExposedMargin 15, got %v", cfg.ExposedMargin)
	}
	if cfg.SampleCount == nil || *cfg.SampleCount != 12 {
		t.Errorf("Expected SampleCount 12, got %v", cfg.SampleCount)
	}
	if cfg.StallAfter == nil || *cfg.StallAfter != "3s" {
		t.Errorf("Expected StallAfter '3s', got %v", cfg.StallAfter)
	}
	if cfg.MaxFrameDelta == nil || *cfg.MaxFrameDelta != "100ms" {
		t.Errorf("Expected MaxFrameDelta '100ms', got %v", cfg.MaxFrameDelta)
	}

	if cfg.GetBaseSpeed() != 0.05 {
		t.Errorf("GetBaseSpeed() = %f, want 0.05", cfg.GetBaseSpeed())
	}
	if cfg.GetExposedPhaseHold() != 1500*time.Millisecond {
		t.Errorf("GetExposedPhaseHold() = %v, want 1.5s", cfg.GetExposedPhaseHold())
	}
	require.NoError(t, cfg.Validate())
}

func TestEmptyTuningConfig_GettersReturnDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	assert.Equal(t, 15.0, cfg.GetExposedMargin())
	assert.Equal(t, 15.0, cfg.GetShieldedMargin())
	assert.Equal(t, 8.0, cfg.GetSampleRadius())
	assert.Equal(t, 30, cfg.GetColorTolerance())
	assert.Equal(t, 0.3, cfg.GetShieldedRatio())
	assert.Equal(t, 5.0, cfg.GetMaxSpeedFactor())
	assert.Equal(t, 4.0, cfg.GetArrivalThreshold())
	assert.Equal(t, 3*time.Second, cfg.GetStallAfter())
	assert.Equal(t, 100*time.Millisecond, cfg.GetMaxFrameDelta())
	assert.False(t, cfg.GetContourHighQuality())
	assert.Equal(t, color.RGBA{R: 0x3a, G: 0x5f, B: 0x8a, A: 0xff}, cfg.GetBarrierColor())
}

func TestLoadTuningConfig_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "exposed_margin": 20,
  "sample_count": 16,
  "stall_after": "2500ms",
  "barrier_color": "#102030"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, 20.0, cfg.GetExposedMargin())
	assert.Equal(t, 16, cfg.GetSampleCount())
	assert.Equal(t, 2500*time.Millisecond, cfg.GetStallAfter())
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, cfg.GetBarrierColor())
	// Omitted fields keep defaults
	assert.Equal(t, 15.0, cfg.GetShieldedMargin())
}

func TestLoadTuningConfig_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "level.yaml")

	testYAML := "rows: 4\ncols: 5\ncell_size: 32\nexposed_phase_hold: 750ms\ncontour_high_quality: true\n"
	require.NoError(t, os.WriteFile(configPath, []byte(testYAML), 0644))

	cfg, err := LoadTuningConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.GetRows())
	assert.Equal(t, 5, cfg.GetCols())
	assert.Equal(t, 32.0, cfg.GetCellSize())
	assert.Equal(t, 750*time.Millisecond, cfg.GetExposedPhaseHold())
	assert.True(t, cfg.GetContourHighQuality())
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("bad extension", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(tmpDir, "config.toml"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(tmpDir, "missing.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		p := filepath.Join(tmpDir, "bad.json")
		require.NoError(t, os.WriteFile(p, []byte("{not json"), 0644))
		_, err := LoadTuningConfig(p)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		p := filepath.Join(tmpDir, "invalid.json")
		require.NoError(t, os.WriteFile(p, []byte(`{"shielded_ratio": 1.5}`), 0644))
		_, err := LoadTuningConfig(p)
		assert.ErrorContains(t, err, "shielded_ratio")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{"empty", EmptyTuningConfig(), false},
		{"negative margin", &TuningConfig{ExposedMargin: ptrFloat64(-1)}, true},
		{"zero base speed", &TuningConfig{BaseSpeed: ptrFloat64(0)}, true},
		{"zero samples", &TuningConfig{SampleCount: ptrInt(0)}, true},
		{"tolerance too large", &TuningConfig{ColorTolerance: ptrInt(300)}, true},
		{"bad duration", &TuningConfig{StallAfter: ptrString("soon")}, true},
		{"bad colour", &TuningConfig{BarrierColor: ptrString("#12")}, true},
		{"density out of range", &TuningConfig{BarrierDensity: ptrFloat64(2)}, true},
		{"valid overrides", &TuningConfig{Rows: ptrInt(3), ContourHighQuality: ptrBool(true)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	defaults := DefaultTuningConfig()

	assert.Equal(t, defaults.GetBaseSpeed(), cfg.GetBaseSpeed())
	assert.Equal(t, defaults.GetStallAfter(), cfg.GetStallAfter())
	assert.Equal(t, defaults.GetBarrierColor(), cfg.GetBarrierColor())
	assert.Equal(t, defaults.GetRows(), cfg.GetRows())
}
