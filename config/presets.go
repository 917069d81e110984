package config

import "sort"

// Presets builds ready-made scenes by name.
var Presets = map[string]func() *Config{
	// demo is the default scene.
	"demo": Default,

	// upright holds a cube at the identity orientation through the perturbation.
	"upright": func() *Config {
		cfg := Default()
		cfg.Controller.Target = Quat{W: 1}
		return cfg
	},

	// tumble starts several shapes spinning away from the target.
	"tumble": func() *Config {
		cfg := Default()
		cfg.Duration = 15
		cfg.Bodies = []BodyConfig{
			{
				Shape: ShapeBox, HalfExtents: Vec3{1, 0.5, 0.25}, Density: 1,
				Orientation: Quat{W: 1}, AngularVelocity: Vec3{2, -1, 0.5},
			},
			{
				Shape: ShapeSphere, Radius: 0.5, Density: 2, Position: Vec3{3, 0, 0},
				Orientation: Quat{W: 0, X: 1}, AngularVelocity: Vec3{0, 0, 4},
			},
			{
				Shape: ShapeBox, HalfExtents: Vec3{0.2, 1.5, 0.2}, Density: 0.5, Position: Vec3{-3, 0, 0},
				Orientation: Quat{W: 0.5, X: 0.5, Y: -0.5, Z: 0.5}, AngularDamping: 0.05,
			},
		}
		return cfg
	},

	// anchored mixes a static body into the tracked set; controllers report it and carry on.
	"anchored": func() *Config {
		cfg := Default()
		anchor := DefaultBody()
		anchor.Static = true
		anchor.Position = Vec3{0, -2, 0}
		cfg.Bodies = append(cfg.Bodies, anchor)
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the preset names in order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
