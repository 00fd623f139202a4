package gqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

func TestOf_PureGraphQLFileIsSingleBlockAtOrigin(t *testing.T) {
	meta := registry.FileMetadata{
		FileID:       1,
		URI:          "file:///query.graphql",
		Language:     registry.LanguageGraphQL,
		DocumentKind: registry.DocumentKindExecutable,
	}

	p := Of(meta, "query GetUser { user { id } }", pluck.DefaultConfig())

	require.Len(t, p.Blocks, 1)
	b := p.Blocks[0]
	assert.Equal(t, 0, b.Offset)
	assert.Equal(t, 0, b.Line)
	assert.Equal(t, 0, b.Character)
	require.NotNil(t, b.QueryDoc)
	assert.Empty(t, b.Errors)
}

func TestOf_TypeScriptFileYieldsOneBlockPerEmbeddedLiteral(t *testing.T) {
	meta := registry.FileMetadata{
		FileID:       2,
		URI:          "file:///component.tsx",
		Language:     registry.LanguageTypeScript,
		DocumentKind: registry.DocumentKindExecutable,
	}
	content := "const q1 = gql`query Q1 { field1 }`;\nconst q2 = gql`query Q2 { field2 }`;\n"

	p := Of(meta, content, pluck.DefaultConfig())

	require.Len(t, p.Blocks, 2)
	assert.Equal(t, 0, p.Blocks[0].Index)
	assert.Equal(t, 1, p.Blocks[1].Index)
	assert.Greater(t, p.Blocks[1].Line, p.Blocks[0].Line)
}

func TestOf_EmptyTypeScriptFileYieldsNoBlocks(t *testing.T) {
	meta := registry.FileMetadata{
		FileID:       3,
		URI:          "file:///empty.ts",
		Language:     registry.LanguageTypeScript,
		DocumentKind: registry.DocumentKindExecutable,
	}

	p := Of(meta, "export const x = 1;", pluck.DefaultConfig())
	assert.Empty(t, p.Blocks)
}

func TestOf_ParseErrorOffsetAdjustedToFileCoordinates(t *testing.T) {
	meta := registry.FileMetadata{
		FileID:       4,
		URI:          "file:///component.tsx",
		Language:     registry.LanguageTypeScript,
		DocumentKind: registry.DocumentKindExecutable,
	}
	content := "const q = gql`query { `;" // malformed: unterminated selection set

	p := Of(meta, content, pluck.DefaultConfig())
	require.Len(t, p.Blocks, 1)
	require.NotEmpty(t, p.Blocks[0].Errors)
	// The literal's content starts at column 14 of line 0, so an error on
	// the block's first line lands at a file column of at least 14.
	assert.Equal(t, 0, p.Blocks[0].Errors[0].Line)
	assert.GreaterOrEqual(t, p.Blocks[0].Errors[0].Character, 14)
}

func TestOf_SchemaFileParsesAsSchemaDocument(t *testing.T) {
	meta := registry.FileMetadata{
		FileID:       5,
		URI:          "file:///schema.graphql",
		Language:     registry.LanguageGraphQL,
		DocumentKind: registry.DocumentKindSchema,
	}

	p := Of(meta, "type Query { hello: String }", pluck.DefaultConfig())
	require.Len(t, p.Blocks, 1)
	require.NotNil(t, p.Blocks[0].SchemaDoc)
	assert.Nil(t, p.Blocks[0].QueryDoc)
}
