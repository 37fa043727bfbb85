package config

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"dermacheck/internal/infrastructure/vision"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(NewDefaultViper())
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "memory", cfg.Storage.Type)
	require.Equal(t, "none", cfg.Describer.Provider)
	require.Equal(t, "native", cfg.VisionBackend)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 100, cfg.Intake.MinImageSide)
	require.Equal(t, int64(20<<20), cfg.Intake.MaxImageBytes)
}

func TestFromViper_Validation(t *testing.T) {
	v := NewDefaultViper()
	v.Set("storage_type", "redis")
	_, err := FromViper(v)
	require.Error(t, err)

	v = NewDefaultViper()
	v.Set("describer_provider", "gemini")
	_, err = FromViper(v)
	require.ErrorContains(t, err, "DESCRIBER_API_KEY")

	v.Set("describer_api_key", "key")
	cfg, err := FromViper(v)
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.Describer.Provider)

	v = NewDefaultViper()
	v.Set("min_image_side", 0)
	_, err = FromViper(v)
	require.ErrorContains(t, err, "min_image_side")

	v = NewDefaultViper()
	v.Set("http_addr", "")
	_, err = FromViper(v)
	require.Error(t, err)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/derma.db")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MIN_IMAGE_SIDE", "256")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Storage.Type)
	require.Equal(t, "/tmp/derma.db", cfg.Storage.SQLitePath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 256, cfg.Intake.MinImageSide)
}

func TestLoadPolicy_EmptyPathIsDefault(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	require.Equal(t, vision.DefaultPolicy(), p)
}

func TestLoadPolicy_ExampleFile(t *testing.T) {
	p, err := LoadPolicy("policy.example.toml")
	require.NoError(t, err)
	require.Equal(t, vision.DefaultPolicy(), p)
}

func TestParsePolicy_Overrides(t *testing.T) {
	p, err := ParsePolicy([]byte(`
low_max = 3
medium_max = 7
border_cuts = [0.3, 0.7]

[[calibration_tiers]]
name = "phone"
min_width = 0
pixels_per_mm = 10.0
`))
	require.NoError(t, err)
	require.Equal(t, 3, p.LowMax)
	require.Equal(t, 7, p.MediumMax)
	require.Equal(t, [2]float64{0.3, 0.7}, p.BorderCuts)
	require.Len(t, p.CalibrationTiers, 1)
	require.Equal(t, 0.6, p.CenterWindow)
}

func TestParsePolicy_RejectsLooseAreaBound(t *testing.T) {
	_, err := ParsePolicy([]byte("max_area_fraction = 0.7\n"))
	require.ErrorIs(t, err, vision.ErrInvalidPolicy)
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.toml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
