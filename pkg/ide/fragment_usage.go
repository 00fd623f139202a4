package ide

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/project"
)

// FragmentUsages implements spec.md §4.9's fragment_usages() feature:
// for every fragment known to the project, where it's defined, every
// site that spreads it directly, and the fragments it reaches through
// its own spreads via pkg/project.TransitiveClosure. Usages holds direct
// spread sites only, including spreads inside fragments no operation
// reaches, so IsUnused can be false for a fragment that
// pkg/lint.UnusedFragments reports.
func FragmentUsages(proj *project.Project) []FragmentUsage {
	frags := proj.AllFragments().ByName
	index := proj.FragmentSpreadsIndex()

	names := make([]string, 0, len(frags))
	for name := range frags {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FragmentUsage, 0, len(names))
	for _, name := range names {
		fs := frags[name]
		usage := FragmentUsage{Name: name, DefinitionFile: fs.FileID}
		if body := proj.FragmentBody(name); body != nil {
			if loc, ok := locate(proj, body.Position); ok {
				usage.DefinitionRange = loc.Range
			}
		}
		usage.Usages = fragmentSpreadSites(proj, name)
		closure := project.TransitiveClosure([]string{name}, index)
		delete(closure, name)
		usage.TransitiveDependencies = sortedKeys(closure)
		out = append(out, usage)
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fragmentSpreadSites(proj *project.Project, name string) []Location {
	var out []Location
	forEachDocument(proj, func(doc *ast.QueryDocument) {
		for _, op := range doc.Operations {
			out = append(out, spreadsOf(proj, op.SelectionSet, name)...)
		}
		for _, f := range doc.Fragments {
			if f.Name == name {
				continue
			}
			out = append(out, spreadsOf(proj, f.SelectionSet, name)...)
		}
	})
	return out
}
