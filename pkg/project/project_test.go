package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/engine"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

func setup(t *testing.T) (*engine.Database, *registry.Registry, *Project) {
	t.Helper()
	db := engine.NewDatabase()
	r := registry.New(db)
	p := New(db, r.ProjectFiles(), pluck.DefaultConfig())
	return db, r, p
}

func TestSchemaTypes_MergesExtensionsAcrossFiles(t *testing.T) {
	_, r, p := setup(t)
	r.AddFile("file:///base.graphql", "type User { id: ID! }", registry.LanguageGraphQL, registry.DocumentKindSchema)
	r.AddFile("file:///ext.graphql", "extend type User { email: String }", registry.LanguageGraphQL, registry.DocumentKindSchema)

	st := p.SchemaTypes()
	user, ok := st.ByName["User"]
	require.True(t, ok)
	require.Len(t, user.Fields, 2)

	names := map[string]bool{}
	for _, f := range user.Fields {
		names[f.Name] = true
	}
	assert.True(t, names["id"])
	assert.True(t, names["email"])
}

func TestAllFragments_FirstSeenWins(t *testing.T) {
	_, r, p := setup(t)
	a := r.AddFile("file:///a.graphql", "fragment F on User { id }", registry.LanguageGraphQL, registry.DocumentKindExecutable)
	r.AddFile("file:///b.graphql", "fragment F on User { id name }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	af := p.AllFragments()
	require.Contains(t, af.ByName, "F")
	assert.Equal(t, a, af.ByName["F"].FileID)
}

func TestAllOperations_ConcatenatesInDocumentFileOrder(t *testing.T) {
	_, r, p := setup(t)
	r.AddFile("file:///a.graphql", "query A { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)
	r.AddFile("file:///b.graphql", "query B { b }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	ops := p.AllOperations()
	require.Len(t, ops.All, 2)
	assert.Equal(t, "A", ops.All[0].Name)
	assert.Equal(t, "B", ops.All[1].Name)
}

func TestFragmentSpreadsIndex_DirectOnlyNoRecursion(t *testing.T) {
	_, r, p := setup(t)
	r.AddFile("file:///frags.graphql", `
		fragment A on User { id ...B }
		fragment B on User { name ...C }
		fragment C on User { email }
	`, registry.LanguageGraphQL, registry.DocumentKindExecutable)

	idx := p.FragmentSpreadsIndex()
	assert.Contains(t, idx.DirectSpreads["A"], "B")
	assert.NotContains(t, idx.DirectSpreads["A"], "C")
}

func TestTransitiveClosure_FollowsChainAndStopsOnCycle(t *testing.T) {
	_, r, p := setup(t)
	r.AddFile("file:///frags.graphql", `
		fragment A on User { ...B }
		fragment B on User { ...C }
		fragment C on User { ...A }
	`, registry.LanguageGraphQL, registry.DocumentKindExecutable)

	idx := p.FragmentSpreadsIndex()
	closure := TransitiveClosure([]string{"A"}, idx)
	assert.Contains(t, closure, "A")
	assert.Contains(t, closure, "B")
	assert.Contains(t, closure, "C")
}

func TestFragmentAST_ResolvesToDefiningFile(t *testing.T) {
	_, r, p := setup(t)
	id := r.AddFile("file:///frags.graphql", "fragment F on User { id }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	fa := p.FragmentAST("F")
	require.NotNil(t, fa)
	assert.Equal(t, id, fa.FileID)
	assert.Equal(t, "F", fa.Def.Name)
}

func TestOperationBody_UsesBlockIndexOffsetForEmbeddedFiles(t *testing.T) {
	_, r, p := setup(t)
	content := "const a = gql`query A { field1 }`;\nconst b = gql`query B { field2 }`;\n"
	id := r.AddFile("file:///c.tsx", content, registry.LanguageTypeScript, registry.DocumentKindExecutable)

	ops := p.FileStructure(id).Operations
	require.Len(t, ops, 2)

	opB := p.OperationBody(id, ops[1].Index)
	require.NotNil(t, opB)
	assert.Equal(t, "B", opB.Name)
}

func TestFileStructure_IsInvalidatedOnlyByOwnFileEdit(t *testing.T) {
	db, r, p := setup(t)
	a := r.AddFile("file:///a.graphql", "query A { a }", registry.LanguageGraphQL, registry.DocumentKindExecutable)
	b := r.AddFile("file:///b.graphql", "query B { b }", registry.LanguageGraphQL, registry.DocumentKindExecutable)

	_ = p.FileStructure(a)
	_ = p.FileStructure(b)

	executed := 0
	db.SetOnExecute(func(name string) {
		if name == "file_structure" {
			executed++
		}
	})

	r.UpdateContent(a, "query A { a b }")
	newA := p.FileStructure(a)
	require.Len(t, newA.Operations, 1)

	stillB := p.FileStructure(b)
	assert.Equal(t, "B", stillB.Operations[0].Name)

	// only a's file_structure re-ran; b's was served from cache
	assert.Equal(t, 1, executed)
}
