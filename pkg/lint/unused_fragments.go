package lint

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

const RuleUnusedFragments = "unused_fragments"

// UnusedFragments is a project-wide rule (spec.md §4.8 category 3): a
// fragment is used if it is reachable, by project.TransitiveClosure,
// from some operation's direct fragment spreads. This calls the exact
// same closure helper pkg/validate uses to suppress gqlparser's
// "fragment is never used" error, so the two packages can never
// disagree about which fragments are live (property P6).
func UnusedFragments(proj *project.Project) []Diagnostic {
	spreads := proj.FragmentSpreadsIndex()
	operations := proj.AllOperations().All
	fragments := proj.AllFragments().ByName

	roots := make([]string, 0, len(operations))
	for _, op := range operations {
		body := proj.OperationBody(op.FileID, op.Index)
		if body == nil {
			continue
		}
		for name := range directSpreads(body.SelectionSet) {
			roots = append(roots, name)
		}
	}

	used := project.TransitiveClosure(roots, spreads)

	var out []Diagnostic
	for name, frag := range fragments {
		if _, ok := used[name]; ok {
			continue
		}
		_, pos, found := fragmentPosition(proj, frag.FileID, name)
		if !found {
			pos = posmap.Position{}
		}
		out = append(out, Diagnostic{
			RuleName: RuleUnusedFragments,
			Severity: SeverityWarn,
			FileID:   frag.FileID,
			Position: pos,
			Message:  "fragment \"" + name + "\" is never used",
		})
	}
	return out
}

// directSpreads walks one selection set collecting every FragmentSpread
// name reachable through fields and inline fragments, one level (not
// recursing into a spread fragment's own body).
func directSpreads(set ast.SelectionSet) map[string]struct{} {
	names := make(map[string]struct{})
	var walk func(ast.SelectionSet)
	walk = func(s ast.SelectionSet) {
		for _, sel := range s {
			switch v := sel.(type) {
			case *ast.FragmentSpread:
				names[v.Name] = struct{}{}
			case *ast.InlineFragment:
				walk(v.SelectionSet)
			case *ast.Field:
				walk(v.SelectionSet)
			}
		}
	}
	walk(set)
	return names
}

// fragmentPosition locates the block that defines fragment name within
// fileID, returning its origin-adjusted name position.
func fragmentPosition(proj *project.Project, fileID registry.FileId, name string) (gqlparse.Block, posmap.Position, bool) {
	parse := proj.Parse(fileID)
	for _, block := range parse.Blocks {
		if block.QueryDoc == nil {
			continue
		}
		for _, f := range block.QueryDoc.Fragments {
			if f.Name != name {
				continue
			}
			pos := posmap.Position{}
			if f.Position != nil {
				pos = posmap.Position{Line: f.Position.Line - 1, Character: f.Position.Column - 1}
			}
			return block, posmap.ToFile(posmap.BlockOrigin{Line: block.Line, Character: block.Character}, pos), true
		}
	}
	return gqlparse.Block{}, posmap.Position{}, false
}
