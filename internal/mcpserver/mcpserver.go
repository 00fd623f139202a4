// Package mcpserver exposes the analysis engine as an MCP tool server,
// so an editor or agent can validate/lint ad-hoc documents without
// shelling out to the CLI. Tool surface grounded on
// original_source/crates/graphql-mcp/src/service.rs's
// validate_document/lint_document/project_diagnostics (its list_projects
// has no counterpart here, since one Server serves one project) —
// a feature the distilled spec dropped, supplemented here per
// SPEC_FULL.md §9. The pack's only other MCP usage
// (rohankatakam-coderisk's internal/mcp) hand-rolls its own
// handler/transport rather than calling the SDK, so this package
// follows github.com/modelcontextprotocol/go-sdk's own documented
// mcp.NewServer/mcp.AddTool shape instead of a pack precedent.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/graphlang/gqlanalyzer/internal/projectload"
	"github.com/graphlang/gqlanalyzer/pkg/config"
	"github.com/graphlang/gqlanalyzer/pkg/lint"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
	"github.com/graphlang/gqlanalyzer/pkg/validate"
)

// Server wraps a single loaded project and registers its capabilities
// as MCP tools. One Server serves one project directory, mirroring the
// "shared mode" simplification the original's owned/shared split made
// unnecessary once there is exactly one analysis host per process.
type Server struct {
	cfg *config.Config
	res *projectload.Result
	log *logrus.Logger
}

// New builds a Server over an already-loaded project.
func New(cfg *config.Config, res *projectload.Result, log *logrus.Logger) *Server {
	return &Server{cfg: cfg, res: res, log: log}
}

// Serve registers all tools on a fresh MCP server and runs it over
// stdio until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{Name: "gqlanalyze", Version: "0.1.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_document",
		Description: "Validate a GraphQL document against the project's schema",
	}, s.validateDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "lint_document",
		Description: "Run lint rules over a GraphQL document",
	}, s.lintDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "project_diagnostics",
		Description: "Validate and lint every document currently loaded in the project",
	}, s.projectDiagnostics)

	return server.Run(ctx, &mcp.StdioTransport{})
}

type diagnosticInfo struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Rule     string `json:"rule,omitempty"`
}

type validateParams struct {
	Document string `json:"document"`
	FilePath string `json:"filePath,omitempty"`
}

type validateResult struct {
	Valid        bool             `json:"valid"`
	ErrorCount   int              `json:"errorCount"`
	WarningCount int              `json:"warningCount"`
	Diagnostics  []diagnosticInfo `json:"diagnostics"`
}

func (s *Server) validateDocument(ctx context.Context, req *mcp.CallToolRequest, p validateParams) (*mcp.CallToolResult, validateResult, error) {
	filePath := p.FilePath
	if filePath == "" {
		filePath = "document.graphql"
	}

	id := s.res.Registry.AddFile(registry.FileUri("mcp://"+filePath), p.Document, registry.LanguageGraphQL, registry.DocumentKindExecutable)
	defer s.res.Registry.RemoveFile(id)

	diags := validate.File(s.res.Project, id)
	result := validateResult{Diagnostics: make([]diagnosticInfo, 0, len(diags))}
	for _, d := range diags {
		sev := "error"
		if d.Severity == validate.SeverityWarning {
			sev = "warning"
			result.WarningCount++
		} else {
			result.ErrorCount++
		}
		result.Diagnostics = append(result.Diagnostics, diagnosticInfo{
			Severity: sev, Message: d.Message,
			Line: d.Position.Line + 1, Column: d.Position.Character + 1, Rule: d.Rule,
		})
	}
	result.Valid = result.ErrorCount == 0

	return nil, result, nil
}

type lintParams struct {
	Document string `json:"document"`
	FilePath string `json:"filePath,omitempty"`
}

type lintResult struct {
	IssueCount  int              `json:"issueCount"`
	Diagnostics []diagnosticInfo `json:"diagnostics"`
}

func (s *Server) lintDocument(ctx context.Context, req *mcp.CallToolRequest, p lintParams) (*mcp.CallToolResult, lintResult, error) {
	filePath := p.FilePath
	if filePath == "" {
		filePath = "document.graphql"
	}

	id := s.res.Registry.AddFile(registry.FileUri("mcp://"+filePath), p.Document, registry.LanguageGraphQL, registry.DocumentKindExecutable)
	defer s.res.Registry.RemoveFile(id)

	runner := lint.NewRunner(s.cfg.Extensions.ToLintConfig())
	diags := runner.File(s.res.Project, id)

	result := lintResult{IssueCount: len(diags), Diagnostics: make([]diagnosticInfo, 0, len(diags))}
	for _, d := range diags {
		result.Diagnostics = append(result.Diagnostics, diagnosticInfo{
			Severity: string(d.Severity), Message: d.Message,
			Line: d.Position.Line + 1, Column: d.Position.Character + 1, Rule: d.RuleName,
		})
	}
	return nil, result, nil
}

type fileDiagnostics struct {
	File        string           `json:"file"`
	Diagnostics []diagnosticInfo `json:"diagnostics"`
}

type projectDiagnosticsParams struct{}

type projectDiagnosticsResult struct {
	FileCount  int               `json:"fileCount"`
	TotalCount int               `json:"totalCount"`
	Files      []fileDiagnostics `json:"files"`
}

func (s *Server) projectDiagnostics(ctx context.Context, req *mcp.CallToolRequest, _ projectDiagnosticsParams) (*mcp.CallToolResult, projectDiagnosticsResult, error) {
	runner := lint.NewRunner(s.cfg.Extensions.ToLintConfig())
	result := projectDiagnosticsResult{}

	for _, id := range s.res.Project.DocumentFileIDs() {
		path := s.res.Paths[id]
		var diags []diagnosticInfo
		for _, d := range validate.File(s.res.Project, id) {
			sev := "error"
			if d.Severity == validate.SeverityWarning {
				sev = "warning"
			}
			diags = append(diags, diagnosticInfo{Severity: sev, Message: d.Message, Line: d.Position.Line + 1, Column: d.Position.Character + 1, Rule: d.Rule})
		}
		for _, d := range runner.File(s.res.Project, id) {
			diags = append(diags, diagnosticInfo{Severity: string(d.Severity), Message: d.Message, Line: d.Position.Line + 1, Column: d.Position.Character + 1, Rule: d.RuleName})
		}
		if len(diags) == 0 {
			continue
		}
		result.Files = append(result.Files, fileDiagnostics{File: path, Diagnostics: diags})
		result.TotalCount += len(diags)
	}
	result.FileCount = len(result.Files)

	return nil, result, nil
}
