// Package gqlparse implements the Parse Layer (C4): turning one file's
// registered content into a uniform Parse value regardless of whether
// the file is pure GraphQL or TS/JS with embedded GraphQL. It is
// grounded on the teacher's gqlparser-based document/schema loading
// (internal/loader/documents_file.go, internal/loader/schema_file.go),
// generalized to operate over registry.FileEntry content and to run the
// Extractor (internal/pluck) first for TS/JS files.
//
// gqlparser does not expose a separate concrete-syntax tree from its
// semantic AST; every ast.Definition / ast.Selection carries an
// *ast.Position with byte/line/column info, which is precise enough to
// serve both the CST role (token ranges for IDE features) and the AST
// role (semantic walks for HIR/validation) the spec calls out.
package gqlparse

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Block is one parsed GraphQL unit within a file: the whole file for a
// pure .graphql/.gql file, or one extracted template literal for TS/JS.
type Block struct {
	Index int // block's ordinal within its file, used for BLOCK_INDEX_OFFSET in pkg/hir

	// Offset, Line, Character locate this block's content start within
	// the host file; (0,0,0) for a pure GraphQL file.
	Offset    int
	Line      int
	Character int

	Source *ast.Source

	// Exactly one of these is populated, depending on DocumentKind.
	SchemaDoc *ast.SchemaDocument
	QueryDoc  *ast.QueryDocument

	Errors []ParseError
}

// ParseError is a parse error with its position already adjusted from
// block-relative to file-relative.
type ParseError struct {
	Message   string
	Line      int
	Character int
}

// Parse is the uniform parse result for one file: the empty-TS/JS-file
// case (no embeddable GraphQL found) yields a Parse with zero Blocks
// and zero Errors, which downstream queries treat as "no GraphQL".
type Parse struct {
	FileID registry.FileId
	Blocks []Block
}

// Of produces the Parse for one registered file. extractorCfg is only
// consulted when meta.Language requires extraction.
func Of(meta registry.FileMetadata, content string, extractorCfg pluck.Config) Parse {
	if meta.Language == registry.LanguageGraphQL {
		return Parse{FileID: meta.FileID, Blocks: []Block{parseGraphQLBlock(meta, content, 0, 0, 0, 0)}}
	}

	extractor := pluck.New(extractorCfg)
	extracted := extractor.Extract(content)

	blocks := make([]Block, 0, len(extracted))
	for i, ex := range extracted {
		blocks = append(blocks, parseGraphQLBlock(meta, ex.Source, i, ex.Offset, ex.Line, ex.Character))
	}
	return Parse{FileID: meta.FileID, Blocks: blocks}
}

func parseGraphQLBlock(meta registry.FileMetadata, source string, index, offset, line, character int) Block {
	src := &ast.Source{Name: string(meta.URI), Input: source}
	block := Block{
		Index:     index,
		Offset:    offset,
		Line:      line,
		Character: character,
		Source:    src,
	}

	switch meta.DocumentKind {
	case registry.DocumentKindSchema:
		doc, err := parser.ParseSchema(src)
		block.SchemaDoc = doc
		if err != nil {
			block.Errors = append(block.Errors, adjustError(err, line, character))
		}
	case registry.DocumentKindExecutable:
		doc, err := parser.ParseQuery(src)
		block.QueryDoc = doc
		if err != nil {
			block.Errors = append(block.Errors, adjustError(err, line, character))
		}
	}
	return block
}

// adjustError converts a gqlerror (block-relative) into a ParseError
// with its position shifted into file-relative coordinates: the first
// line of the block is offset by blockLine/blockChar, later lines only
// by blockLine.
func adjustError(err *gqlerror.Error, blockLine, blockChar int) ParseError {
	pe := ParseError{Message: err.Message}
	if len(err.Locations) == 0 {
		pe.Line = blockLine
		pe.Character = blockChar
		return pe
	}
	loc := err.Locations[0]
	// gqlerror locations are 1-based; convert to 0-based before shifting.
	line := loc.Line - 1
	column := loc.Column - 1
	if line == 0 {
		pe.Line = blockLine
		pe.Character = blockChar + column
	} else {
		pe.Line = blockLine + line
		pe.Character = column
	}
	return pe
}
