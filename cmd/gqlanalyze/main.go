// Command gqlanalyze is the CLI front end for the incremental GraphQL
// analysis engine: validate documents against a schema, lint them, and
// (in --watch mode) keep re-checking files as they change on disk.
// Grounded on teacher's cmd/graphql-go-gen/main.go cobra root/subcommand
// layout and config discovery fallback, generalized per SPEC_FULL.md §4's
// CLI section from a single "generate" command to validate/lint/check
// subcommands (plus mcp, registered in mcp.go).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/graphlang/gqlanalyzer/internal/obs"
	"github.com/graphlang/gqlanalyzer/pkg/config"
)

var (
	version = "0.1.0"
	cfgFile string
	verbose bool
	format  string
	watch   bool
)

var rootCmd = &cobra.Command{
	Use:     "gqlanalyze",
	Short:   "Incremental GraphQL analysis for IDEs and CI",
	Long:    `Validates and lints GraphQL documents extracted from .graphql/.ts/.js files against a schema, incrementally.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: auto-discover .graphqlrc/graphql.config.*)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&format, "format", "human", "output format: human, json, github")
	rootCmd.PersistentFlags().BoolVarP(&watch, "watch", "w", false, "keep running and re-check files as they change")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig loads the effective config.Config and returns it
// alongside the directory it was found in (every relative path in the
// config, and document discovery, is rooted there).
func resolveConfig() (*config.Config, string, error) {
	var configPath string
	var err error

	if cfgFile != "" {
		configPath = cfgFile
	} else {
		configPath, err = config.DiscoverConfig("")
		if err != nil {
			return nil, "", fmt.Errorf("discovering config: %w", err)
		}
	}

	var cfg *config.Config
	if filepath.Base(configPath) == "package.json" {
		cfg, err = config.LoadFromPackageJSON(configPath)
	} else {
		cfg, err = config.LoadFile(configPath)
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}

	root := filepath.Dir(configPath)
	if verbose {
		cfg.Verbose = true
	}
	return cfg, root, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	return obs.New(cfg.Verbose, format == "json")
}
