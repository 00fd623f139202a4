package main

import (
	"github.com/spf13/cobra"

	"github.com/graphlang/gqlanalyzer/internal/projectload"
	"github.com/graphlang/gqlanalyzer/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate and lint in one pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(checkFindings)
	},
}

func checkFindings(cfg *config.Config, res *projectload.Result) map[string][]finding {
	byFile := validateFindings(cfg, res)
	for path, findings := range lintFindings(cfg, res) {
		byFile[path] = append(byFile[path], findings...)
	}
	return byFile
}
