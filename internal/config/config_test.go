package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/trishape/pkg/export"
	"github.com/Faultbox/trishape/pkg/partition"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Epsilon != 0.005 {
		t.Errorf("expected epsilon 0.005, got %f", cfg.Export.Epsilon)
	}
	if cfg.Export.TangentMode != "arrays" {
		t.Errorf("expected tangent mode 'arrays', got %s", cfg.Export.TangentMode)
	}
	if cfg.Export.Parallel {
		t.Error("expected parallel to be false by default")
	}

	if cfg.Skin.MaxBonesPerPartition != 18 {
		t.Errorf("expected max bones per partition 18, got %d", cfg.Skin.MaxBonesPerPartition)
	}
	if cfg.Skin.MaxBonesPerVertex != 4 {
		t.Errorf("expected max bones per vertex 4, got %d", cfg.Skin.MaxBonesPerVertex)
	}
	if cfg.Skin.WeightPolicy != "redistribute" {
		t.Errorf("expected weight policy 'redistribute', got %s", cfg.Skin.WeightPolicy)
	}
	if cfg.Skin.WeightLossWarn != 0.005 {
		t.Errorf("expected weight loss warn 0.005, got %f", cfg.Skin.WeightLossWarn)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  epsilon: 0.01
  max_uv_layers: 1
  tangent_mode: "blob"
  parallel: true

skin:
  max_bones_per_partition: 4
  max_bones_per_vertex: 2
  recommended_bones: 18
  pad_bones: true
  maximize_bone_sharing: true
  weight_policy: "truncate"
  weight_loss_warn: 0.01
  body_parts: true
  part_order: [9, 5]

logging:
  level: "debug"
  log_file: "export.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Epsilon != 0.01 {
		t.Errorf("expected epsilon 0.01, got %f", cfg.Export.Epsilon)
	}
	if cfg.Export.MaxUVLayers != 1 {
		t.Errorf("expected max uv layers 1, got %d", cfg.Export.MaxUVLayers)
	}
	if cfg.Export.TangentMode != "blob" {
		t.Errorf("expected tangent mode 'blob', got %s", cfg.Export.TangentMode)
	}
	if !cfg.Export.Parallel {
		t.Error("expected parallel to be true")
	}

	if cfg.Skin.MaxBonesPerPartition != 4 {
		t.Errorf("expected max bones per partition 4, got %d", cfg.Skin.MaxBonesPerPartition)
	}
	if !cfg.Skin.PadBones {
		t.Error("expected pad_bones to be true")
	}
	if cfg.Skin.WeightPolicy != "truncate" {
		t.Errorf("expected weight policy 'truncate', got %s", cfg.Skin.WeightPolicy)
	}
	if len(cfg.Skin.PartOrder) != 2 || cfg.Skin.PartOrder[0] != 9 {
		t.Errorf("expected part order [9 5], got %v", cfg.Skin.PartOrder)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "export.log" {
		t.Errorf("expected log file 'export.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
export:
  epsilon: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestOverridesApply(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
		verify    func(*Config)
	}{
		{
			name:      "debug",
			overrides: Overrides{Debug: true},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name:      "epsilon",
			overrides: Overrides{Epsilon: 0.02},
			verify: func(cfg *Config) {
				if cfg.Export.Epsilon != 0.02 {
					t.Errorf("expected epsilon 0.02, got %f", cfg.Export.Epsilon)
				}
			},
		},
		{
			name:      "max bones",
			overrides: Overrides{MaxBones: 24},
			verify: func(cfg *Config) {
				if cfg.Skin.MaxBonesPerPartition != 24 {
					t.Errorf("expected max bones 24, got %d", cfg.Skin.MaxBonesPerPartition)
				}
			},
		},
		{
			name:      "pad bones",
			overrides: Overrides{PadBones: true},
			verify: func(cfg *Config) {
				if !cfg.Skin.PadBones {
					t.Error("expected pad_bones to be true")
				}
			},
		},
		{
			name:      "zero values leave config untouched",
			overrides: Overrides{},
			verify: func(cfg *Config) {
				def := Default()
				if cfg.Export.Epsilon != def.Export.Epsilon ||
					cfg.Skin.MaxBonesPerPartition != def.Skin.MaxBonesPerPartition ||
					cfg.Logging.Level != def.Logging.Level {
					t.Error("zero-value overrides changed the config")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.overrides.Apply(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  epsilon: 0.01
skin:
  max_bones_per_partition: 8
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	// CLI overrides beat the file value.
	Overrides{MaxBones: 16}.Apply(cfg)

	if cfg.Skin.MaxBonesPerPartition != 16 {
		t.Errorf("expected max bones 16 from override, got %d", cfg.Skin.MaxBonesPerPartition)
	}
	// Epsilon comes from the file since no override.
	if cfg.Export.Epsilon != 0.01 {
		t.Errorf("expected epsilon 0.01 from file, got %f", cfg.Export.Epsilon)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Export.Epsilon = 0.02
	cfg.Export.TangentMode = "blob"
	cfg.Skin.MaxBonesPerPartition = 4
	cfg.Skin.PartOrder = []int{9, 5}
	cfg.Logging.Level = "debug"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	if loaded.Export.Epsilon != 0.02 {
		t.Errorf("epsilon = %f, want 0.02", loaded.Export.Epsilon)
	}
	if loaded.Export.TangentMode != "blob" {
		t.Errorf("tangent mode = %s, want blob", loaded.Export.TangentMode)
	}
	if loaded.Skin.MaxBonesPerPartition != 4 {
		t.Errorf("max bones per partition = %d, want 4", loaded.Skin.MaxBonesPerPartition)
	}
	if len(loaded.Skin.PartOrder) != 2 || loaded.Skin.PartOrder[0] != 9 || loaded.Skin.PartOrder[1] != 5 {
		t.Errorf("part order = %v, want [9 5]", loaded.Skin.PartOrder)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("log level = %s, want debug", loaded.Logging.Level)
	}
}

func TestExportOptions(t *testing.T) {
	cfg := Default()
	cfg.Export.TangentMode = "blob"
	cfg.Skin.WeightPolicy = "truncate"

	opts := cfg.ExportOptions(nil)
	if opts.TangentMode != export.TangentBlob {
		t.Error("tangent mode 'blob' not mapped")
	}
	if opts.WeightPolicy != partition.Truncate {
		t.Error("weight policy 'truncate' not mapped")
	}
	if opts.Epsilon != cfg.Export.Epsilon {
		t.Errorf("epsilon = %f, want %f", opts.Epsilon, cfg.Export.Epsilon)
	}
	if opts.MaxBonesPerPartition != 18 {
		t.Errorf("max bones per partition = %d, want 18", opts.MaxBonesPerPartition)
	}
}
