package hir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

func TestOf_SchemaFile_ExtractsTypeDefAndFields(t *testing.T) {
	meta := registry.FileMetadata{FileID: 1, URI: "file:///schema.graphql", Language: registry.LanguageGraphQL, DocumentKind: registry.DocumentKindSchema}
	parse := gqlparse.Of(meta, `
		type Query {
			user(id: ID!): User
		}
		type User {
			id: ID!
			name: String @deprecated(reason: "use fullName")
		}
	`, pluck.DefaultConfig())

	data := Of(1, parse)
	require.Len(t, data.TypeDefs, 2)

	query := findTypeDef(data.TypeDefs, "Query")
	require.NotNil(t, query)
	require.Len(t, query.Fields, 1)
	assert.Equal(t, "user", query.Fields[0].Name)
	assert.Equal(t, "User", query.Fields[0].TypeRef.Name)
	assert.False(t, query.Fields[0].TypeRef.IsNonNull)
	require.Len(t, query.Fields[0].Arguments, 1)
	assert.True(t, query.Fields[0].Arguments[0].TypeRef.IsNonNull)

	user := findTypeDef(data.TypeDefs, "User")
	require.NotNil(t, user)
	name := findField(user.Fields, "name")
	require.NotNil(t, name)
	assert.True(t, name.IsDeprecated)
	assert.Equal(t, "use fullName", name.DeprecationReason)
}

func TestOf_TypeExtension_IsMarkedAndCarriesOnlyAddedFields(t *testing.T) {
	meta := registry.FileMetadata{FileID: 1, URI: "file:///schema.graphql", Language: registry.LanguageGraphQL, DocumentKind: registry.DocumentKindSchema}
	parse := gqlparse.Of(meta, `
		type User { id: ID! }
		extend type User { email: String }
	`, pluck.DefaultConfig())

	data := Of(1, parse)
	require.Len(t, data.TypeDefs, 2)

	var ext *TypeDef
	for i := range data.TypeDefs {
		if data.TypeDefs[i].IsExtension {
			ext = &data.TypeDefs[i]
		}
	}
	require.NotNil(t, ext)
	assert.Equal(t, "User", ext.Name)
	require.Len(t, ext.Fields, 1)
	assert.Equal(t, "email", ext.Fields[0].Name)
}

func TestOf_ListAndNonNullTypeRefCombinations(t *testing.T) {
	meta := registry.FileMetadata{FileID: 1, URI: "file:///schema.graphql", Language: registry.LanguageGraphQL, DocumentKind: registry.DocumentKindSchema}
	parse := gqlparse.Of(meta, `
		type Query {
			a: String
			b: String!
			c: [String]
			d: [String!]
			e: [String]!
			f: [String!]!
		}
	`, pluck.DefaultConfig())

	data := Of(1, parse)
	q := findTypeDef(data.TypeDefs, "Query")
	require.NotNil(t, q)

	cases := map[string]TypeRef{
		"a": {Name: "String"},
		"b": {Name: "String", IsNonNull: true},
		"c": {Name: "String", IsList: true},
		"d": {Name: "String", IsList: true, InnerNonNull: true},
		"e": {Name: "String", IsList: true, IsNonNull: true},
		"f": {Name: "String", IsList: true, IsNonNull: true, InnerNonNull: true},
	}
	for name, want := range cases {
		f := findField(q.Fields, name)
		require.NotNil(t, f, name)
		assert.Equal(t, want, f.TypeRef, name)
	}
}

func TestOf_OperationIndexOffsetByBlockIndex(t *testing.T) {
	meta := registry.FileMetadata{FileID: 2, URI: "file:///component.tsx", Language: registry.LanguageTypeScript, DocumentKind: registry.DocumentKindExecutable}
	content := "const a = gql`query A { field1 }`;\nconst b = gql`query B { field2 }`;\n"
	parse := gqlparse.Of(meta, content, pluck.DefaultConfig())
	require.Len(t, parse.Blocks, 2)

	data := Of(2, parse)
	require.Len(t, data.Operations, 2)
	assert.Equal(t, 0, data.Operations[0].Index)
	assert.Equal(t, BlockIndexOffset, data.Operations[1].Index)
	assert.NotEmpty(t, data.Operations[1].BlockSource)
}

func TestOf_FragmentStructure(t *testing.T) {
	meta := registry.FileMetadata{FileID: 3, URI: "file:///frag.graphql", Language: registry.LanguageGraphQL, DocumentKind: registry.DocumentKindExecutable}
	parse := gqlparse.Of(meta, `fragment UserFields on User { id name }`, pluck.DefaultConfig())

	data := Of(3, parse)
	require.Len(t, data.Fragments, 1)
	assert.Equal(t, "UserFields", data.Fragments[0].Name)
	assert.Equal(t, "User", data.Fragments[0].TypeCondition)
}

func TestFileStructureData_FingerprintStableAcrossEquivalentInput(t *testing.T) {
	meta := registry.FileMetadata{FileID: 1, URI: "file:///schema.graphql", Language: registry.LanguageGraphQL, DocumentKind: registry.DocumentKindSchema}
	parse := gqlparse.Of(meta, `type Query { a: String }`, pluck.DefaultConfig())
	d1 := Of(1, parse)
	d2 := Of(1, parse)
	assert.Equal(t, d1.Fingerprint(), d2.Fingerprint())
}

func findTypeDef(defs []TypeDef, name string) *TypeDef {
	for i := range defs {
		if defs[i].Name == name && !defs[i].IsExtension {
			return &defs[i]
		}
	}
	return nil
}

func findField(fields []FieldSignature, name string) *FieldSignature {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}
