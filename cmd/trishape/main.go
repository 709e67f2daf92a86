// trishape is a CLI utility for exporting scene files as indexed,
// skin-partitioned triangle shapes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/trishape/internal/config"
	"github.com/Faultbox/trishape/internal/logger"
	"github.com/Faultbox/trishape/pkg/export"
	"github.com/Faultbox/trishape/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "export", "x":
		cmdExport(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trishape - triangle shape export utility

Usage:
  trishape <command> [options]

Commands:
  info <scene.yaml>               Show scene information
  export <scene.yaml> [options]   Export the scene to indexed shapes
  config init [-o <file>]         Write a default config file

Export options:
  -o <file>        Output file (default: stdout)
  -config <file>   Config file (default: trishape.yaml if present)
  -epsilon <f>     Vertex weld tolerance
  -max-bones <n>   Max bones per partition
  -pad-bones       Pad bone tables and weight slots to their limits
  -parallel        Process material groups concurrently
  -body-parts      Require body part tags and partition by them
  -debug           Enable debug logging

Examples:
  trishape info character.yaml
  trishape export character.yaml -o character.json
  trishape export character.yaml -config strict.yaml -body-parts
  trishape config init -o trishape.yaml`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trishape info <scene.yaml>")
		os.Exit(1)
	}

	scene, err := mesh.LoadScene(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := scene.Mesh
	fmt.Printf("Mesh:      %s\n", m.Name)
	fmt.Printf("Vertices:  %d\n", len(m.Positions))
	fmt.Printf("Polygons:  %d\n", len(m.Polygons))
	fmt.Printf("Corners:   %d\n", m.LoopCount())
	fmt.Printf("Materials: %d\n", m.MaterialCount())
	fmt.Printf("UV layers: %d\n", len(m.UVLayers))
	fmt.Printf("Normals:   %v\n", m.HasNormals())
	fmt.Printf("Tangents:  %v\n", m.HasTangents())
	fmt.Printf("Groups:    %d\n", len(m.GroupNames))

	if scene.Armature != nil {
		fmt.Println()
		fmt.Printf("Armature:  %s\n", scene.Armature.Name)
		fmt.Printf("Bones:     %d\n", len(scene.Armature.BoneNames()))
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default: stdout)")
	configPath := fs.String("config", "", "Config file")
	epsilon := fs.Float64("epsilon", 0, "Vertex weld tolerance")
	maxBones := fs.Int("max-bones", 0, "Max bones per partition")
	padBones := fs.Bool("pad-bones", false, "Pad bone tables and weight slots to their limits")
	parallel := fs.Bool("parallel", false, "Process material groups concurrently")
	bodyParts := fs.Bool("body-parts", false, "Require body part tags")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trishape export <scene.yaml> [options]")
		os.Exit(1)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.Overrides{
		Debug:     *debug,
		Epsilon:   *epsilon,
		Parallel:  *parallel,
		BodyParts: *bodyParts,
		MaxBones:  *maxBones,
		PadBones:  *padBones,
	}.Apply(cfg)

	log := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	defer logger.Sync()

	scene, err := mesh.LoadScene(fs.Arg(0))
	if err != nil {
		log.Error("loading scene failed", zap.String("path", fs.Arg(0)), zap.Error(err))
		os.Exit(1)
	}

	result, err := export.Export(scene.Mesh, scene.Armature, cfg.ExportOptions(log))
	if err != nil {
		log.Error("export failed", zap.Error(err))
		os.Exit(1)
	}

	if err := writeResult(result, *output); err != nil {
		log.Error("writing output failed", zap.Error(err))
		os.Exit(1)
	}
	if *output != "" {
		log.Info("export written", zap.String("path", *output), zap.Int("shapes", len(result.Shapes)))
	}
}

func cmdConfig(args []string) {
	if len(args) < 1 || args[0] != "init" {
		fmt.Fprintln(os.Stderr, "Usage: trishape config init [-o <file>]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default: user config dir)")
	fs.Parse(args[1:])

	cfg := config.Default()
	path := *output
	var err error
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config: %s\n", path)
}

// writeResult dumps the export result as indented JSON, to a file or stdout.
func writeResult(result *export.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
