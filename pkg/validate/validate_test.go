package validate

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

func TestFile_NoDiagnosticsWhenNoSchemaRegistered(t *testing.T) {
	r, p := setup(t)
	id := r.AddFile("file:///q.graphql", "query A { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)
	assert.Empty(t, File(p, id))
}

func TestFile_ReportsUnknownField(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { doesNotExist }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	diags := File(p, id)
	require.NotEmpty(t, diags)
}

func TestFile_ValidDocumentHasNoDiagnostics(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	assert.Empty(t, File(p, id))
}

func TestFile_ResolvesFragmentFromAnotherFile(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { user: User } type User { id: ID! name: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///fragments.graphql", "fragment UserFields on User { id name }", registry.LanguageGraphQL, registry.DocumentKindExecutable)
	id := r.AddFile("file:///q.graphql", "query A { user { ...UserFields } }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	assert.Empty(t, File(p, id))
}

func TestFile_UnusedFragmentErrorIsSuppressed(t *testing.T) {
	r, p := setup(t)
	r.AddFile("file:///schema.graphql", "type Query { a: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	id := r.AddFile("file:///q.graphql", "query A { a }\nfragment Unused on Query { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	for _, d := range File(p, id) {
		assert.NotContains(t, d.Message, "is never used")
	}
}
