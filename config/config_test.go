package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultStiffness, cfg.Controller.Stiffness)
	assert.Equal(t, Vec3{}, cfg.Gravity)
	assert.True(t, cfg.Perturbation.Enabled)
	assert.Equal(t, 3.0, cfg.Perturbation.Interval)
	assert.Equal(t, mgl64.Vec3{10, 0, 0}, cfg.Perturbation.Acceleration.Mgl())
	require.Len(t, cfg.Bodies, 1)
	assert.Equal(t, ShapeBox, cfg.Bodies[0].Shape)
}

func TestTargetOrientation_Normalized(t *testing.T) {
	q := Default().TargetOrientation()

	want := mgl64.Quat{W: 4, V: mgl64.Vec3{1, 2, 3}}.Normalize()
	assert.InDelta(t, 1.0, q.Len(), 1e-12)
	assert.InDelta(t, want.W, q.W, 1e-12)
	assert.InDelta(t, want.V.X(), q.V.X(), 1e-12)
	assert.InDelta(t, want.V.Y(), q.V.Y(), 1e-12)
	assert.InDelta(t, want.V.Z(), q.V.Z(), 1e-12)
}

func TestQuat_ZeroIsIdentity(t *testing.T) {
	assert.Equal(t, mgl64.QuatIdent(), Quat{}.Mgl())
}

func TestParse_OverridesDefaults(t *testing.T) {
	data := []byte(`
dt: 0.001
duration: 2
controller:
  stiffness: 12
  target: {w: 1}
perturbation:
  enabled: false
bodies:
  - shape: sphere
    radius: 0.25
    density: 3
    angular_velocity: [0, 1, 0]
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 0.001, cfg.Dt)
	assert.Equal(t, 2.0, cfg.Duration)
	assert.Equal(t, 12.0, cfg.Controller.Stiffness)
	// Omitted components are zero, not the default target's
	assert.Equal(t, Quat{W: 1}, cfg.Controller.Target)
	assert.False(t, cfg.Perturbation.Enabled)
	require.Len(t, cfg.Bodies, 1)
	assert.Equal(t, ShapeSphere, cfg.Bodies[0].Shape)
	assert.Equal(t, Vec3{0, 1, 0}, cfg.Bodies[0].AngularVelocity)
	assert.Equal(t, mgl64.QuatIdent(), cfg.Bodies[0].Orientation.Mgl())
	// Untouched fields keep their defaults
	assert.Equal(t, DefaultSubsteps, cfg.Substeps)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative dt", "dt: -1"},
		{"zero duration", "duration: 0"},
		{"zero stiffness", "controller: {stiffness: 0}"},
		{"zero target", "controller: {target: {w: 0}}"},
		{"zero interval", "perturbation: {enabled: true, interval: 0}"},
		{"unknown shape", "bodies: [{shape: cone, density: 1}]"},
		{"flat box", "bodies: [{shape: box, half_extents: [1, 0, 1], density: 1}]"},
		{"sphere without radius", "bodies: [{shape: sphere, density: 1}]"},
		{"negative density", "bodies: [{shape: sphere, radius: 1, density: -1}]"},
		{"negative substeps", "substeps: -2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "error %v should wrap ErrInvalid", err)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("dt: [not, a, number"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Dt = 0
	cfg.Controller.Stiffness = math.Inf(1)
	cfg.Bodies[0].Shape = "cone"

	err := cfg.Validate()
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 3)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := GetPreset("tumble")
	require.NotNil(t, cfg)

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"anchored", "demo", "tumble", "upright"}, names)

	for _, name := range names {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.NoError(t, cfg.Validate(), name)
	}

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestGetPreset_ReturnsFreshCopies(t *testing.T) {
	a := GetPreset("demo")
	a.Bodies[0].Density = 42

	b := GetPreset("demo")
	assert.Equal(t, DefaultDensity, b.Bodies[0].Density)
}
