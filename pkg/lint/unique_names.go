package lint

import (
	"github.com/graphlang/gqlanalyzer/pkg/hir"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
)

const RuleUniqueNames = "unique_names"

// UniqueNames is a project-wide rule (spec.md §4.8 category 3): named
// operations and fragments must be unique across the whole project.
// The first file (by registry.ProjectFiles' DocumentFileIds order) to
// define a name is not flagged; every later file redefining the same
// name gets a warning, matching how pkg/project's all_operations /
// all_fragments queries already resolve the collision (first-seen
// wins) — see DESIGN.md's Open Question decision for this rule.
func UniqueNames(proj *project.Project) []Diagnostic {
	var out []Diagnostic
	out = append(out, duplicateOperationNames(proj)...)
	out = append(out, duplicateFragmentNames(proj)...)
	return out
}

func duplicateOperationNames(proj *project.Project) []Diagnostic {
	firstSeen := make(map[string]bool)
	var out []Diagnostic
	for _, op := range proj.AllOperations().All {
		if op.Name == "" {
			continue
		}
		if !firstSeen[op.Name] {
			firstSeen[op.Name] = true
			continue
		}
		pos, _ := operationNamePosition(proj, op)
		out = append(out, Diagnostic{
			RuleName: RuleUniqueNames,
			Severity: SeverityWarn,
			FileID:   op.FileID,
			Position: pos,
			Message:  "operation name \"" + op.Name + "\" is already defined in another file",
		})
	}
	return out
}

func duplicateFragmentNames(proj *project.Project) []Diagnostic {
	// all_fragments already resolves name collisions first-seen-wins, so
	// every duplicate beyond the first must be rediscovered by walking
	// every document file directly (in DocumentFileIds order) rather
	// than reading AllFragments().
	firstSeen := make(map[string]bool)
	var out []Diagnostic

	for _, id := range proj.DocumentFileIDs() {
		data := proj.FileStructure(id)
		for _, fr := range data.Fragments {
			if !firstSeen[fr.Name] {
				firstSeen[fr.Name] = true
				continue
			}
			_, pos, found := fragmentPosition(proj, id, fr.Name)
			if !found {
				pos = posmap.Position{}
			}
			out = append(out, Diagnostic{
				RuleName: RuleUniqueNames,
				Severity: SeverityWarn,
				FileID:   id,
				Position: pos,
				Message:  "fragment name \"" + fr.Name + "\" is already defined in another file",
			})
		}
	}
	return out
}

func operationNamePosition(proj *project.Project, op hir.OperationStructure) (posmap.Position, bool) {
	parse := proj.Parse(op.FileID)
	blockIndex := op.Index / hir.BlockIndexOffset
	if blockIndex >= len(parse.Blocks) {
		return posmap.Position{}, false
	}
	block := parse.Blocks[blockIndex]

	body := proj.OperationBody(op.FileID, op.Index)
	if body == nil || body.Position == nil {
		return posmap.ToFile(posmap.BlockOrigin{Line: block.Line, Character: block.Character}, posmap.Position{}), true
	}
	pos := posmap.Position{Line: body.Position.Line - 1, Character: body.Position.Column - 1}
	return posmap.ToFile(posmap.BlockOrigin{Line: block.Line, Character: block.Character}, pos), true
}
