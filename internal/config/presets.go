package config

// Presets are named landing scenarios selectable from the CLI.
var Presets = map[string]*Config{
	"soft-landing": func() *Config {
		c := DefaultConfig()
		c.Initial.Altitude = 3.0
		c.Initial.DescentRate = 1.0
		return c
	}(),
	"hard-landing": func() *Config {
		c := DefaultConfig()
		c.Initial.Altitude = 5.0
		c.Initial.DescentRate = 4.0
		return c
	}(),
	"drop-test": func() *Config {
		c := DefaultConfig()
		c.Initial.Altitude = 2.0
		c.Initial.DescentRate = 0.0
		c.Duration = 10.0
		return c
	}(),
	"crosswind-rollout": func() *Config {
		c := DefaultConfig()
		c.Initial.Altitude = 0.0
		c.Initial.DescentRate = 0.0
		c.Initial.Yaw = 0.08
		c.Duration = 20.0
		return c
	}(),
}

// GetPreset returns a copy of a named preset, or nil if unknown. The copy
// owns its gear slice, so callers may mutate it freely.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	c.Gears = make([]GearConfig, len(p.Gears))
	copy(c.Gears, p.Gears)
	return &c
}

// ListPresets returns the preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
