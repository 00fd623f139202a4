package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlang/gqlanalyzer/pkg/engine"
)

func TestAddFile_InternsURIAndClassifiesByKind(t *testing.T) {
	db := engine.NewDatabase()
	r := New(db)

	schemaID := r.AddFile("file:///schema.graphql", "type Query { a: Int }", LanguageGraphQL, DocumentKindSchema)
	docID := r.AddFile("file:///query.graphql", "query A { a }", LanguageGraphQL, DocumentKindExecutable)

	pf := r.ProjectFiles()
	assert.Equal(t, []FileId{schemaID}, pf.SchemaFileIDs.Get().IDs)
	assert.Equal(t, []FileId{docID}, pf.DocumentFileIDs.Get().IDs)

	entries := pf.FileEntryMap.Get().Entries
	require.Contains(t, entries, schemaID)
	require.Contains(t, entries, docID)
	assert.Equal(t, "type Query { a: Int }", entries[schemaID].Content.Get())
}

func TestAddFile_ReAddingSameURIIsUpdateNotFreshIdentity(t *testing.T) {
	db := engine.NewDatabase()
	r := New(db)

	id1 := r.AddFile("file:///a.graphql", "type Query { a: Int }", LanguageGraphQL, DocumentKindSchema)
	id2 := r.AddFile("file:///a.graphql", "type Query { a: String }", LanguageGraphQL, DocumentKindSchema)

	assert.Equal(t, id1, id2)
	entries := r.ProjectFiles().FileEntryMap.Get().Entries
	assert.Equal(t, "type Query { a: String }", entries[id1].Content.Get())
}

func TestUpdateContent_DoesNotChangeIdentityLists(t *testing.T) {
	db := engine.NewDatabase()
	r := New(db)
	id := r.AddFile("file:///a.graphql", "query A { a }", LanguageGraphQL, DocumentKindExecutable)

	before := r.ProjectFiles().DocumentFileIDs.Get()
	r.UpdateContent(id, "query A { a b }")
	after := r.ProjectFiles().DocumentFileIDs.Get()

	assert.Equal(t, before.IDs, after.IDs)
	assert.Equal(t, "query A { a b }", r.ProjectFiles().FileEntryMap.Get().Entries[id].Content.Get())
}

func TestRemoveFile_DropsFromMapAndList(t *testing.T) {
	db := engine.NewDatabase()
	r := New(db)
	id := r.AddFile("file:///a.graphql", "query A { a }", LanguageGraphQL, DocumentKindExecutable)
	other := r.AddFile("file:///b.graphql", "query B { b }", LanguageGraphQL, DocumentKindExecutable)

	r.RemoveFile(id)

	pf := r.ProjectFiles()
	assert.NotContains(t, pf.FileEntryMap.Get().Entries, id)
	assert.Equal(t, []FileId{other}, pf.DocumentFileIDs.Get().IDs)

	_, ok := r.Lookup("file:///a.graphql")
	assert.False(t, ok)
}

func TestAddFilesBatch_UpdatesIdentityListsOnce(t *testing.T) {
	db := engine.NewDatabase()
	r := New(db)

	ids := r.AddFilesBatch([]BatchFile{
		{URI: "file:///a.graphql", Content: "query A { a }", Language: LanguageGraphQL, DocumentKind: DocumentKindExecutable},
		{URI: "file:///b.graphql", Content: "query B { b }", Language: LanguageGraphQL, DocumentKind: DocumentKindExecutable},
		{URI: "file:///schema.graphql", Content: "type Query { a: Int b: Int }", Language: LanguageGraphQL, DocumentKind: DocumentKindSchema},
	})
	require.Len(t, ids, 3)

	pf := r.ProjectFiles()
	assert.Len(t, pf.DocumentFileIDs.Get().IDs, 2)
	assert.Len(t, pf.SchemaFileIDs.Get().IDs, 1)
}

func TestLanguage_RequiresExtraction(t *testing.T) {
	assert.False(t, LanguageGraphQL.RequiresExtraction())
	assert.True(t, LanguageTypeScript.RequiresExtraction())
	assert.True(t, LanguageJavaScript.RequiresExtraction())
}
