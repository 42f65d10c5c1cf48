package profile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/stride/internal/config"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	assert.False(t, Exists())
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stride setup")

	want := &Profile{Name: "Ada", Units: "mi", CaloriesPerKm: 70, DefaultFormat: "json", OutputDir: "runs"}
	require.NoError(t, Save(want))
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunSetupAcceptsDefaults(t *testing.T) {
	var out bytes.Buffer
	prof, err := RunSetup(strings.NewReader("Ada\n\n\n\n\n"), &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "Ada", prof.Name)
	assert.Equal(t, config.UnitsKm, prof.Units)
	assert.Equal(t, 62.0, prof.CaloriesPerKm)
	assert.Equal(t, "markdown", prof.DefaultFormat)
	assert.Equal(t, ".", prof.OutputDir)
	assert.Contains(t, out.String(), "first-time setup")
}

func TestRunSetupEditMode(t *testing.T) {
	existing := &Profile{Name: "Ada", Units: "km", CaloriesPerKm: 60, DefaultFormat: "markdown", OutputDir: "."}
	prof, err := RunSetup(strings.NewReader("\nmi\n75\njson\nexports"), &bytes.Buffer{}, existing)
	require.NoError(t, err)

	assert.Equal(t, &Profile{Name: "Ada", Units: "mi", CaloriesPerKm: 75, DefaultFormat: "json", OutputDir: "exports"}, prof)
	assert.Equal(t, 60.0, existing.CaloriesPerKm, "existing profile must not be mutated")
}

func TestRunSetupRejectsBadCalories(t *testing.T) {
	_, err := RunSetup(strings.NewReader("Ada\nkm\nlots\n"), &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive number")
}

func TestRunSetupEOF(t *testing.T) {
	_, err := RunSetup(strings.NewReader(""), &bytes.Buffer{}, nil)
	assert.Error(t, err)
}

func TestFillConfig(t *testing.T) {
	cfg := config.Defaults()
	(&Profile{Units: "mi", CaloriesPerKm: 80}).FillConfig(&cfg)
	assert.Equal(t, "mi", cfg.Units)
	assert.Equal(t, 80.0, cfg.CaloriesPerKm)

	// Explicit config wins over the profile.
	cfg = config.Defaults()
	cfg.CaloriesPerKm = 55
	(&Profile{CaloriesPerKm: 80}).FillConfig(&cfg)
	assert.Equal(t, 55.0, cfg.CaloriesPerKm)

	var nilProfile *Profile
	nilProfile.FillConfig(&cfg)
	assert.Equal(t, 55.0, cfg.CaloriesPerKm)
}
