package main

import (
	"github.com/spf13/cobra"

	"github.com/graphlang/gqlanalyzer/internal/projectload"
	"github.com/graphlang/gqlanalyzer/pkg/config"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
	"github.com/graphlang/gqlanalyzer/pkg/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate GraphQL documents against the configured schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(validateFindings)
	},
}

func validateFindings(cfg *config.Config, res *projectload.Result) map[string][]finding {
	return fanOutFindings(res, func(p *project.Project, id registry.FileId) []finding {
		return fromValidate(res.Paths[id], validate.File(p, id))
	})
}
