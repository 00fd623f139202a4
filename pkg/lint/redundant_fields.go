package lint

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

const RuleRedundantFields = "redundant_fields"

// RedundantFields is a single-document rule (spec.md §4.8 category 1):
// within each selection set, flag a field whose (name, alias) either
// repeats a sibling field already selected, or already appears in the
// transitive closure of any sibling FragmentSpread's own direct field
// selections. Cross-file resolution goes through proj.AllFragments /
// proj.FragmentSpreadsIndex, so a fragment defined in another file is
// still considered (spec.md §4.8, "Redundant-fields cross-file
// resolution").
func RedundantFields(proj *project.Project, fileID registry.FileId) []Diagnostic {
	parse := proj.Parse(fileID)
	spreads := proj.FragmentSpreadsIndex()

	var out []Diagnostic
	for _, block := range parse.Blocks {
		if block.QueryDoc == nil {
			continue
		}
		for _, op := range block.QueryDoc.Operations {
			out = append(out, walkForRedundancy(proj, fileID, block, op.SelectionSet, spreads)...)
		}
		for _, frag := range block.QueryDoc.Fragments {
			out = append(out, walkForRedundancy(proj, fileID, block, frag.SelectionSet, spreads)...)
		}
	}
	return out
}

func walkForRedundancy(proj *project.Project, fileID registry.FileId, block gqlparse.Block, set ast.SelectionSet, spreads project.SpreadsIndex) []Diagnostic {
	var out []Diagnostic

	siblingFragNames := make([]string, 0)
	for _, sel := range set {
		if fs, ok := sel.(*ast.FragmentSpread); ok {
			siblingFragNames = append(siblingFragNames, fs.Name)
		}
	}
	closure := project.TransitiveClosure(siblingFragNames, spreads)
	siblingKeys := make(map[string]bool)
	for name := range closure {
		body := proj.FragmentBody(name)
		if body == nil {
			continue
		}
		for _, sel := range body.SelectionSet {
			if f, ok := sel.(*ast.Field); ok {
				siblingKeys[fieldKey(f)] = true
			}
		}
	}

	seen := make(map[string]*ast.Field)
	for _, sel := range set {
		switch v := sel.(type) {
		case *ast.Field:
			key := fieldKey(v)
			if prior, dup := seen[key]; dup {
				out = append(out, redundantFieldDiagnostic(fileID, block, v, "duplicates field \""+responseKey(prior)+"\" already selected in this selection set"))
			} else if siblingKeys[key] {
				out = append(out, redundantFieldDiagnostic(fileID, block, v, "already selected via a sibling fragment spread"))
			} else {
				seen[key] = v
			}
			out = append(out, walkForRedundancy(proj, fileID, block, v.SelectionSet, spreads)...)
		case *ast.InlineFragment:
			out = append(out, walkForRedundancy(proj, fileID, block, v.SelectionSet, spreads)...)
		}
	}
	return out
}

// responseKey is the name a field's result appears under: its alias if
// one was given, else its own name.
func responseKey(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func fieldKey(f *ast.Field) string {
	return responseKey(f) + "|" + f.Name
}

func redundantFieldDiagnostic(fileID registry.FileId, block gqlparse.Block, field *ast.Field, reason string) Diagnostic {
	pos := posmap.Position{}
	if field.Position != nil {
		pos = posmap.Position{Line: field.Position.Line - 1, Character: field.Position.Column - 1}
	}
	pos = posmap.ToFile(posmap.BlockOrigin{Line: block.Line, Character: block.Character}, pos)

	return Diagnostic{
		RuleName: RuleRedundantFields,
		Severity: SeverityWarn,
		FileID:   fileID,
		Position: pos,
		Message:  "redundant field \"" + responseKey(field) + "\": " + reason,
		Fix:      autofixDeleteField(block, field),
	}
}

// autofixDeleteField builds a TextEdit deleting the field's byte range
// from the block's own source; if the field is the only non-whitespace
// token on its line, the edit widens to remove the whole line
// (including its trailing newline) per spec.md §4.8.
func autofixDeleteField(block gqlparse.Block, field *ast.Field) *TextEdit {
	if field.Position == nil || block.Source == nil {
		return nil
	}
	src := block.Source.Input
	start, end := field.Position.Start, field.Position.End
	if start < 0 || end > len(src) || start > end {
		return nil
	}

	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	lineEnd := strings.IndexByte(src[end:], '\n')
	if lineEnd == -1 {
		lineEnd = len(src)
	} else {
		lineEnd += end
	}
	line := src[lineStart:lineEnd]
	fieldText := src[start:end]
	if strings.TrimSpace(strings.Replace(line, fieldText, "", 1)) == "" {
		deleteEnd := lineEnd
		if deleteEnd < len(src) && src[deleteEnd] == '\n' {
			deleteEnd++
		}
		return &TextEdit{Start: lineStart, End: deleteEnd, NewText: ""}
	}
	return &TextEdit{Start: start, End: end, NewText: ""}
}
