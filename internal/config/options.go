package config

import (
	"go.uber.org/zap"

	"github.com/Faultbox/trishape/pkg/export"
	"github.com/Faultbox/trishape/pkg/partition"
)

// ExportOptions converts the config into pipeline options. Unknown mode
// strings fall back to the defaults ("arrays", "redistribute").
func (c *Config) ExportOptions(log *zap.Logger) export.Options {
	opts := export.Options{
		Epsilon:              c.Export.Epsilon,
		MaxUVLayers:          c.Export.MaxUVLayers,
		MaxBonesPerPartition: c.Skin.MaxBonesPerPartition,
		MaxBonesPerVertex:    c.Skin.MaxBonesPerVertex,
		RecommendedBones:     c.Skin.RecommendedBones,
		PadBones:             c.Skin.PadBones,
		MaximizeBoneSharing:  c.Skin.MaximizeBoneSharing,
		WeightLossWarn:       c.Skin.WeightLossWarn,
		BodyParts:            c.Skin.BodyParts,
		PartOrder:            c.Skin.PartOrder,
		Parallel:             c.Export.Parallel,
		Logger:               log,
	}
	if c.Export.TangentMode == "blob" {
		opts.TangentMode = export.TangentBlob
	}
	if c.Skin.WeightPolicy == "truncate" {
		opts.WeightPolicy = partition.Truncate
	}
	return opts
}
