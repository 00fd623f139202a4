package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/graphlang/gqlanalyzer/pkg/lint"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/validate"
)

// finding is a format-agnostic diagnostic, merging pkg/validate and
// pkg/lint's distinct Diagnostic shapes so every subcommand can share
// one reporter.
type finding struct {
	File     string
	Rule     string
	Severity string
	Position posmap.Position
	Message  string
}

type fileReport struct {
	File     string    `json:"file"`
	Errors   int       `json:"errors"`
	Warnings int       `json:"warnings"`
	Findings []finding `json:"-"`
}

func fromValidate(path string, diags []validate.Diagnostic) []finding {
	out := make([]finding, 0, len(diags))
	for _, d := range diags {
		sev := "error"
		if d.Severity == validate.SeverityWarning {
			sev = "warning"
		}
		rule := d.Rule
		if rule == "" {
			rule = "validate"
		}
		out = append(out, finding{File: path, Rule: rule, Severity: sev, Position: d.Position, Message: d.Message})
	}
	return out
}

func fromLint(path string, diags []lint.Diagnostic) []finding {
	out := make([]finding, 0, len(diags))
	for _, d := range diags {
		sev := string(d.Severity)
		if sev == "" {
			sev = "warn"
		}
		out = append(out, finding{File: path, Rule: d.RuleName, Severity: sev, Position: d.Position, Message: d.Message})
	}
	return out
}

// report renders findings grouped by file in the requested format and
// returns the process exit code: 1 if any "error"-severity finding
// exists, 0 otherwise.
func report(byFile map[string][]finding, format string) int {
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	exitCode := 0
	reports := make([]fileReport, 0, len(files))
	for _, f := range files {
		diags := byFile[f]
		sort.Slice(diags, func(i, j int) bool {
			if diags[i].Position.Line != diags[j].Position.Line {
				return diags[i].Position.Line < diags[j].Position.Line
			}
			return diags[i].Position.Character < diags[j].Position.Character
		})
		fr := fileReport{File: f, Findings: diags}
		for _, d := range diags {
			if d.Severity == "error" {
				fr.Errors++
				exitCode = 1
			} else {
				fr.Warnings++
			}
		}
		reports = append(reports, fr)
	}

	switch format {
	case "json":
		renderJSON(reports)
	case "github":
		renderGithub(reports)
	default:
		renderHuman(reports)
	}
	return exitCode
}

func renderHuman(reports []fileReport) {
	totalErrors, totalWarnings := 0, 0
	for _, fr := range reports {
		if len(fr.Findings) == 0 {
			continue
		}
		fmt.Printf("%s\n", fr.File)
		for _, d := range fr.Findings {
			fmt.Printf("  %d:%d  %-7s  %s  (%s)\n", d.Position.Line+1, d.Position.Character+1, d.Severity, d.Message, d.Rule)
		}
		totalErrors += fr.Errors
		totalWarnings += fr.Warnings
	}
	fmt.Printf("\n%d error(s), %d warning(s) across %d file(s)\n", totalErrors, totalWarnings, len(reports))
}

func renderGithub(reports []fileReport) {
	for _, fr := range reports {
		for _, d := range fr.Findings {
			level := "warning"
			if d.Severity == "error" {
				level = "error"
			}
			fmt.Printf("::%s file=%s,line=%d,col=%d::%s (%s)\n", level, fr.File, d.Position.Line+1, d.Position.Character+1, d.Message, d.Rule)
		}
	}
}

func renderJSON(reports []fileReport) {
	type jsonFinding struct {
		Rule     string `json:"rule"`
		Severity string `json:"severity"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
		Message  string `json:"message"`
	}
	type jsonFile struct {
		File     string        `json:"file"`
		Errors   []jsonFinding `json:"errors"`
		Warnings []jsonFinding `json:"warnings"`
	}
	out := struct {
		Success bool       `json:"success"`
		Files   []jsonFile `json:"files"`
		Stats   struct {
			Errors   int `json:"errors"`
			Warnings int `json:"warnings"`
		} `json:"stats"`
	}{}

	for _, fr := range reports {
		jf := jsonFile{File: fr.File, Errors: []jsonFinding{}, Warnings: []jsonFinding{}}
		for _, d := range fr.Findings {
			jd := jsonFinding{
				Rule: d.Rule, Severity: d.Severity,
				Line: d.Position.Line + 1, Column: d.Position.Character + 1,
				Message: d.Message,
			}
			if d.Severity == "error" {
				jf.Errors = append(jf.Errors, jd)
			} else {
				jf.Warnings = append(jf.Warnings, jd)
			}
		}
		out.Files = append(out.Files, jf)
		out.Stats.Errors += fr.Errors
		out.Stats.Warnings += fr.Warnings
	}
	out.Success = out.Stats.Errors == 0

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
