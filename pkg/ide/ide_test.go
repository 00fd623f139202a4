package ide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/engine"
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

func setup(t *testing.T) (*registry.Registry, *project.Project) {
	t.Helper()
	db := engine.NewDatabase()
	r := registry.New(db)
	p := project.New(db, r.ProjectFiles(), pluck.DefaultConfig())
	return r, p
}

func pos(line, char int) posmap.Position {
	return posmap.Position{Line: line, Character: char}
}

func TestHover_FieldShowsSignature(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { greeting: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { greeting }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	hv := Hover(p, id, pos(0, 11))
	require.NotNil(t, hv)
	assert.Contains(t, hv.Contents, "Query.greeting")
	assert.Contains(t, hv.Contents, "String")
}

func TestHover_UnknownFragmentSuggestsClosestName(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "fragment Greeting on Query { a }\nquery A { ...Greetin }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	hv := Hover(p, id, pos(1, 15))
	require.NotNil(t, hv)
	assert.Contains(t, hv.Contents, "did you mean")
	assert.Contains(t, hv.Contents, "Greeting")
}

func TestHover_FragmentSpreadShowsDefinition(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "fragment F on Query { a }\nquery A { ...F }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	hv := Hover(p, id, pos(1, 13))
	require.NotNil(t, hv)
	assert.Contains(t, hv.Contents, "fragment F on Query")
}

func TestDefinition_FieldResolvesToSchemaPosition(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query {\n  greeting: String\n}", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { greeting }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	loc := Definition(p, id, pos(0, 11))
	require.NotNil(t, loc)
	assert.Equal(t, 1, loc.Range.Start.Line)
}

func TestDefinition_FragmentSpreadResolvesToFragmentDef(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "fragment F on Query { a }\nquery A { ...F }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	loc := Definition(p, id, pos(1, 13))
	require.NotNil(t, loc)
	assert.Equal(t, 0, loc.Range.Start.Line)
}

func TestDefinition_InlineFragmentResolvesToTypeDef(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "interface Node { id: ID }\ntype Query { node: Node }\ntype User implements Node { id: ID }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { node { ... on User { id } } }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	loc := Definition(p, id, pos(0, 27))
	require.NotNil(t, loc)
}

func TestReferences_FieldFindsAllSelectionSites(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String b: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a }\nquery B { a b }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	refs := References(p, id, pos(0, 10))
	assert.Len(t, refs, 2)
}

func TestReferences_FragmentSpreadFindsAllSpreadSites(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "fragment F on Query { a }\nquery A { ...F }\nquery B { ...F }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	refs := References(p, id, pos(0, 9))
	assert.Len(t, refs, 2)
}

func TestCompletions_VariableContext(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a(x: String): String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A($name: String) { a(x: $n) }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	items := Completions(p, id, pos(0, 32))
	require.NotEmpty(t, items)
	assert.Equal(t, "name", items[0].Label)
	assert.Equal(t, CompletionKindVariable, items[0].Kind)
}

func TestCompletions_FieldContextListsSelectableFields(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { greeting: String farewell: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A {  }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	items := Completions(p, id, pos(0, 10))
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "greeting")
	assert.Contains(t, labels, "farewell")
	assert.Contains(t, labels, "__typename")
}

func TestCompletions_DirectiveContextOffersSkipInclude(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a @s }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	items := Completions(p, id, pos(0, 14))
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "skip")
	assert.Contains(t, labels, "include")
}

func TestCompletions_FragmentSpreadContextFiltersByTypeCondition(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }\ntype Mutation { b: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "fragment OnQuery on Query { a }\nfragment OnMutation on Mutation { b }\nquery A { ... }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	items := Completions(p, id, pos(2, 13))
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "OnQuery")
	assert.NotContains(t, labels, "OnMutation")
}

func TestDocumentSymbols_SchemaFileListsTypesAndFields(t *testing.T) {
	r, p := setup(t)
	id := r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)

	symbols := DocumentSymbols(p, id)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Query", symbols[0].Name)
	require.Len(t, symbols[0].Children, 1)
	assert.Equal(t, "a", symbols[0].Children[0].Name)
}

func TestDocumentSymbols_DocumentFileListsOperationsAndFragments(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a }\nfragment F on Query { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	symbols := DocumentSymbols(p, id)
	require.Len(t, symbols, 2)
	assert.Equal(t, "A", symbols[0].Name)
	assert.Equal(t, SymbolKindQuery, symbols[0].Kind)
	assert.Equal(t, "F", symbols[1].Name)
	assert.Equal(t, SymbolKindFragment, symbols[1].Kind)
}

func TestWorkspaceSymbols_MatchesAcrossSchemaAndDocuments(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Greeting { text: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///q.graphql", "fragment GreetingFragment on Greeting { text }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	results := WorkspaceSymbols(p, "greeting")
	var names []string
	for _, s := range results {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Greeting")
	assert.Contains(t, names, "GreetingFragment")
}

func TestSelectionRanges_ChainsFromInnermostToDocument(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	ranges := SelectionRanges(p, id, []posmap.Position{pos(0, 10)})
	require.Len(t, ranges, 1)
	require.NotNil(t, ranges[0])

	depth := 0
	var outermost *SelectionRange
	for r := ranges[0]; r != nil; r = r.Parent {
		outermost = r
		depth++
	}
	assert.GreaterOrEqual(t, depth, 2)
	assert.Equal(t, 0, outermost.Range.Start.Line)
}

func TestFragmentUsages_TransitiveDependenciesExcludeSelf(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///q.graphql", "query A { ...Outer }\nfragment Outer on Query { ...Inner }\nfragment Inner on Query { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	usages := FragmentUsages(p)
	byName := make(map[string]FragmentUsage, len(usages))
	for _, u := range usages {
		byName[u.Name] = u
	}

	outer := byName["Outer"]
	assert.Equal(t, 1, outer.UsageCount())
	assert.NotContains(t, outer.TransitiveDependencies, "Outer")
	assert.Contains(t, outer.TransitiveDependencies, "Inner")

	inner := byName["Inner"]
	assert.False(t, inner.IsUnused())
}

func TestFragmentUsages_ReportsUnusedFragment(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///q.graphql", "query A { a }\nfragment Unused on Query { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	usages := FragmentUsages(p)
	for _, u := range usages {
		if u.Name == "Unused" {
			assert.True(t, u.IsUnused())
			return
		}
	}
	t.Fatal("Unused fragment not found in FragmentUsages result")
}

func TestFieldCoverage_DelegatesToLintFieldUsage(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { used: String unused: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///q.graphql", "query A { used }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	report := FieldCoverage(p)
	assert.NotEmpty(t, report.ByType)
}
