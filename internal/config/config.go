// Package config handles exporter configuration loading and management.
package config

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Skin    SkinConfig    `yaml:"skin"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds geometry export settings.
type ExportConfig struct {
	// Epsilon is the attribute comparison tolerance for vertex welding.
	Epsilon float32 `yaml:"epsilon"`
	// MaxUVLayers caps the UV channels; 0 means unlimited.
	MaxUVLayers int `yaml:"max_uv_layers"`
	// TangentMode is "arrays" or "blob".
	TangentMode string `yaml:"tangent_mode"`
	// Parallel processes material groups concurrently.
	Parallel bool `yaml:"parallel"`
}

// SkinConfig holds skinning and partitioning settings.
type SkinConfig struct {
	MaxBonesPerPartition int `yaml:"max_bones_per_partition"`
	MaxBonesPerVertex    int `yaml:"max_bones_per_vertex"`
	// RecommendedBones triggers an advisory warning when the configured
	// per-partition limit differs; 0 disables the check.
	RecommendedBones    int  `yaml:"recommended_bones"`
	PadBones            bool `yaml:"pad_bones"`
	MaximizeBoneSharing bool `yaml:"maximize_bone_sharing"`
	// WeightPolicy is "redistribute" or "truncate".
	WeightPolicy   string  `yaml:"weight_policy"`
	WeightLossWarn float32 `yaml:"weight_loss_warn"`
	BodyParts      bool    `yaml:"body_parts"`
	PartOrder      []int   `yaml:"part_order"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Epsilon:     0.005,
			MaxUVLayers: 0,
			TangentMode: "arrays",
			Parallel:    false,
		},
		Skin: SkinConfig{
			MaxBonesPerPartition: 18,
			MaxBonesPerVertex:    4,
			RecommendedBones:     0,
			PadBones:             false,
			MaximizeBoneSharing:  false,
			WeightPolicy:         "redistribute",
			WeightLossWarn:       0.005,
			BodyParts:            false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
