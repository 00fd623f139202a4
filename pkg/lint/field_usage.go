package lint

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/project"
)

// TypeCoverage is one Object/Interface type's per-field usage counts:
// the number of distinct operations that touch each field, directly or
// transitively via fragment spreads.
type TypeCoverage struct {
	TypeName        string
	FieldUsageCount map[string]int
	FieldCount      int
	UsedFieldCount  int
	CoveragePercent float64
}

// FieldCoverageReport is analyze_field_usage's output (spec.md §4.8,
// "Field coverage report"): per-type, per-field usage statistics over
// every selectable (Object/Interface) type in the schema.
type FieldCoverageReport struct {
	ByType map[string]TypeCoverage
}

// AnalyzeFieldUsage walks every operation's body, expanding fragment
// spreads transitively, and counts how many distinct operations touch
// each field of each type reached along the way — an operation that
// selects the same field twice (e.g. through two fragment paths) still
// counts once, per spec.md §9 ("field coverage counts each operation
// once regardless of how many times it references the field").
func AnalyzeFieldUsage(proj *project.Project) FieldCoverageReport {
	schema, err := proj.Schema()
	if err != nil || schema == nil {
		return FieldCoverageReport{ByType: map[string]TypeCoverage{}}
	}

	counts := make(map[string]map[string]int)
	u := &usageWalker{schema: schema, proj: proj}

	for _, op := range proj.AllOperations().All {
		body := proj.OperationBody(op.FileID, op.Index)
		if body == nil {
			continue
		}
		touched := make(map[string]bool)
		u.walk(rootTypeFor(schema, body.Operation), body.SelectionSet, touched, map[string]bool{})
		for key := range touched {
			typeName, fieldName := splitUsageKey(key)
			if counts[typeName] == nil {
				counts[typeName] = make(map[string]int)
			}
			counts[typeName][fieldName]++
		}
	}

	report := FieldCoverageReport{ByType: make(map[string]TypeCoverage)}
	for name, def := range schema.Types {
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		tc := TypeCoverage{TypeName: name, FieldUsageCount: make(map[string]int)}
		for _, f := range def.Fields {
			tc.FieldUsageCount[f.Name] = counts[name][f.Name]
			tc.FieldCount++
			if counts[name][f.Name] > 0 {
				tc.UsedFieldCount++
			}
		}
		if tc.FieldCount > 0 {
			tc.CoveragePercent = 100 * float64(tc.UsedFieldCount) / float64(tc.FieldCount)
		}
		report.ByType[name] = tc
	}
	return report
}

func usageKey(typeName, fieldName string) string { return typeName + "|" + fieldName }

func splitUsageKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

type usageWalker struct {
	schema *ast.Schema
	proj   *project.Project
}

// walk visits set under parent, recording every (type, field) touched
// into touched (one operation's accumulator) and following
// FragmentSpreads through the project's fragment bodies. visitingFrag
// bounds a single traversal path against cyclic spreads.
func (u *usageWalker) walk(parent *ast.Definition, set ast.SelectionSet, touched map[string]bool, visitingFrag map[string]bool) {
	if parent == nil {
		return
	}
	for _, sel := range set {
		switch v := sel.(type) {
		case *ast.Field:
			if v.Name == "__typename" {
				continue
			}
			touched[usageKey(parent.Name, v.Name)] = true
			fieldDef := parent.Fields.ForName(v.Name)
			if fieldDef == nil || fieldDef.Type == nil {
				continue
			}
			child := u.schema.Types[fieldDef.Type.Name()]
			u.walk(child, v.SelectionSet, touched, visitingFrag)
		case *ast.InlineFragment:
			target := parent
			if v.TypeCondition != "" {
				target = u.schema.Types[v.TypeCondition]
			}
			u.walk(target, v.SelectionSet, touched, visitingFrag)
		case *ast.FragmentSpread:
			if visitingFrag[v.Name] {
				continue
			}
			body := u.proj.FragmentBody(v.Name)
			if body == nil {
				continue
			}
			target := parent
			if body.TypeCondition != "" {
				target = u.schema.Types[body.TypeCondition]
			}
			visitingFrag[v.Name] = true
			u.walk(target, body.SelectionSet, touched, visitingFrag)
			delete(visitingFrag, v.Name)
		}
	}
}
