package main

import (
	"github.com/spf13/cobra"

	"github.com/graphlang/gqlanalyzer/internal/projectload"
	"github.com/graphlang/gqlanalyzer/pkg/config"
	"github.com/graphlang/gqlanalyzer/pkg/lint"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run lint rules over the project's GraphQL documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(lintFindings)
	},
}

func lintFindings(cfg *config.Config, res *projectload.Result) map[string][]finding {
	runner := lint.NewRunner(cfg.Extensions.ToLintConfig())

	byFile := fanOutFindings(res, func(p *project.Project, id registry.FileId) []finding {
		return fromLint(res.Paths[id], runner.File(p, id))
	})

	for _, d := range runner.Project(res.Project) {
		path := res.Paths[d.FileID]
		byFile[path] = append(byFile[path], fromLint(path, []lint.Diagnostic{d})...)
	}
	return byFile
}
