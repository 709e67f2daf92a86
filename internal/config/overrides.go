package config

// Overrides holds per-invocation CLI settings that take priority over the
// loaded config. Zero values leave the config untouched; booleans only ever
// switch a setting on.
type Overrides struct {
	Debug     bool
	Epsilon   float64
	Parallel  bool
	BodyParts bool
	MaxBones  int
	PadBones  bool
}

// Apply lays the overrides over cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.Epsilon > 0 {
		cfg.Export.Epsilon = float32(o.Epsilon)
	}
	if o.Parallel {
		cfg.Export.Parallel = true
	}
	if o.BodyParts {
		cfg.Skin.BodyParts = true
	}
	if o.MaxBones > 0 {
		cfg.Skin.MaxBonesPerPartition = o.MaxBones
	}
	if o.PadBones {
		cfg.Skin.PadBones = true
	}
}
