package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/engine"
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

func findRule(diags []Diagnostic, rule string) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.RuleName == rule {
			out = append(out, d)
		}
	}
	return out
}

func TestRedundantFields_FlagsDuplicateFieldInSameSelectionSet(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := RedundantFields(p, id)
	require.Len(t, diags, 1)
	assert.Equal(t, RuleRedundantFields, diags[0].RuleName)
	require.NotNil(t, diags[0].Fix)
}

func TestRedundantFields_FlagsFieldAlsoInSiblingFragment(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String b: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "fragment F on Query { a }\nquery A { ...F a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := RedundantFields(p, id)
	require.NotEmpty(t, diags)
}

func TestRedundantFields_NoFalsePositiveForDistinctFields(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String b: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a b }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	assert.Empty(t, RedundantFields(p, id))
}

func TestNoDeprecated_FlagsDeprecatedFieldSelection(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", `type Query { old: String @deprecated(reason: "use new") new: String }`, registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { old }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := NoDeprecated(p, id)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "use new")
}

func TestNoDeprecated_NoDiagnosticForNonDeprecatedField(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { new: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { new }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	assert.Empty(t, NoDeprecated(p, id))
}

func TestNoDeprecated_FlagsDeprecatedArgument(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", `type Query { a(old: String @deprecated, new: String): String }`, registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", `query A { a(old: "x") }`, registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := NoDeprecated(p, id)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "argument \"old\"")
}

func TestUnusedFragments_ReportsFragmentReachedByNoOperation(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a }\nfragment Unused on Query { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := UnusedFragments(p)
	require.Len(t, diags, 1)
	assert.Equal(t, id, diags[0].FileID)
	assert.Contains(t, diags[0].Message, "Unused")
}

func TestUnusedFragments_DoesNotReportTransitivelyUsedFragment(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///q.graphql", "query A { ...Outer }\nfragment Outer on Query { ...Inner }\nfragment Inner on Query { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	assert.Empty(t, UnusedFragments(p))
}

func TestUnusedFields_ReportsFieldNeverSelected(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { used: String unused: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///q.graphql", "query A { used }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := UnusedFields(p)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unused")
}

func TestUniqueNames_FlagsSecondOperationWithSameName(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///a.graphql", "query Shared { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)
	idB := r.AddFile("file:///b.graphql", "query Shared { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := UniqueNames(p)
	opDiags := findRule(diags, RuleUniqueNames)
	require.Len(t, opDiags, 1)
	assert.Equal(t, idB, opDiags[0].FileID)
}

func TestRunner_SkipsOffRule(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	runner := NewRunner(Config{Severities: map[string]Severity{RuleRedundantFields: SeverityOff}})
	assert.Empty(t, runner.File(p, id))
}

func TestRunner_HonorsConfiguredSeverity(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	runner := NewRunner(Config{Severities: map[string]Severity{RuleRedundantFields: SeverityError}})
	diags := runner.File(p, id)
	require.NotEmpty(t, diags)
	assert.Equal(t, SeverityError, diags[0].Severity)
}
