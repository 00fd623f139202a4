package pluck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_GqlTaggedTemplate(t *testing.T) {
	e := New(DefaultConfig())
	content := "const query = gql" + "`query GetUser { user { id } }`" + ";"

	got := e.Extract(content)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Source, "query GetUser")
}

func TestExtract_GraphqlTaggedTemplate(t *testing.T) {
	e := New(DefaultConfig())
	content := "const mutation = graphql" + "`mutation Create { create { id } }`" + ";"

	got := e.Extract(content)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Source, "mutation Create")
}

func TestExtract_MagicComment(t *testing.T) {
	e := New(DefaultConfig())
	content := "const query = /* GraphQL */ " + "`query Test { test }`" + ";"

	got := e.Extract(content)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Source, "query Test")
}

func TestExtract_MultipleLiterals(t *testing.T) {
	e := New(DefaultConfig())
	content := "const q1 = gql`query Q1 { field1 }`;\n" +
		"const q2 = gql`query Q2 { field2 }`;\n" +
		"const q3 = graphql`query Q3 { field3 }`;\n"

	got := e.Extract(content)
	require.Len(t, got, 3)
}

func TestExtract_InterpolationBecomesFixedLengthPlaceholder(t *testing.T) {
	e := New(DefaultConfig())
	interp := "${userId}"
	content := "const q = gql`query Q($id: ID) { user(id: " + interp + ") { id } }`;"

	got := e.Extract(content)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0].Source, "${")
	assert.NotContains(t, got[0].Source, "userId")
	// the placeholder occupies exactly the interpolation's original span
	assert.Equal(t, strings.Count(got[0].Source, "_"), len(interp))
}

func TestExtract_RequiresModuleImportWhenGlobalsDisallowed(t *testing.T) {
	cfg := Config{
		TagIdentifiers:         []string{"gql"},
		Modules:                []string{"graphql-tag"},
		AllowGlobalIdentifiers: false,
	}
	e := New(cfg)

	notImported := "const q = gql`query Q { field }`;"
	assert.Empty(t, e.Extract(notImported))

	imported := "import { gql } from 'graphql-tag';\nconst q = gql`query Q { field }`;"
	got := e.Extract(imported)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Source, "query Q")
}

func TestExtract_ParenthesizedTaggedTemplate(t *testing.T) {
	e := New(DefaultConfig())
	content := "const q = gql(`query Q { field }`);"

	got := e.Extract(content)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Source, "query Q")
}

func TestExtract_PositionIsZeroBasedLineAndColumn(t *testing.T) {
	e := New(DefaultConfig())
	content := "line0\nline1 gql`query Q { field }`"

	got := e.Extract(content)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Line)
}

func TestSuggestTag_NearMissSuggestsConfiguredTag(t *testing.T) {
	e := New(DefaultConfig())
	tag, ok := e.SuggestTag("gq1")
	require.True(t, ok)
	assert.Equal(t, "gql", tag)
}

func TestSuggestTag_NoSuggestionForUnrelatedIdentifier(t *testing.T) {
	e := New(DefaultConfig())
	_, ok := e.SuggestTag("somethingTotallyUnrelated")
	assert.False(t, ok)
}
