package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stardust-xr/stardust/pkg/codegen"
	"github.com/stardust-xr/stardust/pkg/config"
	"github.com/stardust-xr/stardust/pkg/idl"
)

var (
	schemaDirs []string
	outPath    string
	outPackage string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Go bindings from .kdl protocol schemas",
	Long: `Parse every *.kdl file in the given schema directories, resolve
aspect inheritance and opcode hashing across all of them, and write a
single generated Go file binding the result to pkg/datamap and pkg/node.

With no --schema-dir, the directories listed under schema.paths in the
config file (or its defaults) are used.

Examples:
  stardustgen generate --schema-dir ./schemas --out pkg/generated/stardustgen.go
  stardustgen generate --out internal/protocol/zz_generated.go`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVar(&schemaDirs, "schema-dir", nil, "directory to search for *.kdl schema files (repeatable, default: config schema.paths)")
	generateCmd.Flags().StringVar(&outPath, "out", "", "output file path (required)")
	generateCmd.Flags().StringVar(&outPackage, "package", "stardustgen", "package name for the generated file")
	generateCmd.MarkFlagRequired("out")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dirs := schemaDirs
	if len(dirs) == 0 {
		cfg, err := config.Load(GetConfigFile())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dirs = cfg.Schema.Paths
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no schema directories given (pass --schema-dir or set schema.paths)")
	}

	files, err := collectSchemaFiles(dirs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no *.kdl files found in %v", dirs)
	}

	protocols := make([]*idl.Protocol, 0, len(files))
	for _, f := range files {
		p, err := idl.ParseFile(f)
		if err != nil {
			return fmt.Errorf("parse %s: %w", f, err)
		}
		protocols = append(protocols, p)
	}

	if err := idl.Resolve(protocols); err != nil {
		return fmt.Errorf("resolve protocols: %w", err)
	}

	src, err := codegen.Generate(protocols, codegen.Options{Package: outPackage})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d protocol(s), %d schema file(s))\n", outPath, len(protocols), len(files))
	return nil
}

// collectSchemaFiles finds every *.kdl file directly under each directory,
// in directory order then lexical order within a directory (deterministic
// input ordering is what makes codegen.Generate's output reproducible).
func collectSchemaFiles(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read schema dir %s: %w", dir, err)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".kdl" {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, n := range names {
			files = append(files, filepath.Join(dir, n))
		}
	}
	return files, nil
}
