package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphlang/gqlanalyzer/internal/mcpserver"
	"github.com/graphlang/gqlanalyzer/internal/projectload"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve analysis tools over MCP (stdio) for editors and agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := resolveConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		cacheDir := os.Getenv("GQLANALYZE_CACHE_DIR")

		res, err := projectload.Load(context.Background(), cfg, root, cacheDir, log)
		if err != nil {
			return err
		}

		return mcpserver.New(cfg, res, log).Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
