// Package ide implements IDE Services (C9): a read-only façade over the
// HIR and project-wide indices exposing hover, definition, references,
// completions, document/workspace symbols, selection ranges, fragment
// usage and field coverage. Every entry point is a pure query over
// (*project.Project, file, position) per spec.md §4.9 — nothing here
// mutates the registry or the query engine.
//
// Grounded on original_source/crates/ide/src/{types,helpers,
// selection_range,completion}.rs. gqlparser exposes no lossless
// CST/token stream the way apollo_parser does in that original, so
// features that walked a syntax tree there (selection ranges, the
// completion context classifier) are rebuilt here over gqlparser's
// *ast.Position-annotated AST and, for the classifier, a lexical
// backward-scan of the raw source text near the cursor.
package ide

import (
	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Range is a (start, end) pair of file-relative positions.
type Range struct {
	Start posmap.Position
	End   posmap.Position
}

// Location pairs a Range with the file it lives in.
type Location struct {
	FileID registry.FileId
	Range  Range
}

// CompletionKind classifies a CompletionItem the way an LSP client would.
type CompletionKind int

const (
	CompletionKindField CompletionKind = iota
	CompletionKindType
	CompletionKindFragment
	CompletionKindDirective
	CompletionKindEnumValue
	CompletionKindArgument
	CompletionKindVariable
)

// InsertTextFormat distinguishes a literal insertion from a tab-stop
// snippet (`$1`, `${1:default}`, `$0`).
type InsertTextFormat int

const (
	InsertTextPlain InsertTextFormat = iota
	InsertTextSnippet
)

// CompletionItem is one candidate offered at a completion position.
type CompletionItem struct {
	Label            string
	Kind             CompletionKind
	Detail           string
	Documentation    string
	InsertText       string
	InsertTextFormat InsertTextFormat
	SortText         string
	Deprecated       bool
}

// HoverResult is the markdown shown for the symbol under the cursor.
type HoverResult struct {
	Contents string
	Range    Range
}

// SymbolKind classifies a DocumentSymbol/WorkspaceSymbol.
type SymbolKind int

const (
	SymbolKindType SymbolKind = iota
	SymbolKindField
	SymbolKindQuery
	SymbolKindMutation
	SymbolKindSubscription
	SymbolKindFragment
	SymbolKindEnumValue
	SymbolKindScalar
	SymbolKindInput
	SymbolKindInterface
	SymbolKindUnion
	SymbolKindEnum
)

// DocumentSymbol is one node in a file's outline tree.
type DocumentSymbol struct {
	Name           string
	Kind           SymbolKind
	Detail         string
	Range          Range
	SelectionRange Range
	Children       []DocumentSymbol
}

// WorkspaceSymbol is a project-wide symbol-search result.
type WorkspaceSymbol struct {
	Name          string
	Kind          SymbolKind
	Location      Location
	ContainerName string
}

// SelectionRange is one link in the innermost-to-outermost chain
// returned by SelectionRanges: Parent is nil at the outermost (whole
// document) link. Mirrors original_source/crates/ide/src/types.rs's
// SelectionRange, whose own doc comment describes the same ordering.
type SelectionRange struct {
	Range  Range
	Parent *SelectionRange
}

// FragmentUsage reports where a fragment is defined, every site that
// spreads it directly, and the fragments it spreads transitively.
type FragmentUsage struct {
	Name                   string
	DefinitionFile         registry.FileId
	DefinitionRange        Range
	Usages                 []Location
	TransitiveDependencies []string
}

// UsageCount is the number of distinct spread sites for this fragment.
func (f FragmentUsage) UsageCount() int { return len(f.Usages) }

// IsUnused reports whether no operation or fragment spreads this one.
func (f FragmentUsage) IsUnused() bool { return len(f.Usages) == 0 }

// DirectiveLocation narrows which built-in directives a Directive
// completion context should offer (spec.md §4.9's classifier variant).
type DirectiveLocation int

const (
	DirectiveLocationField DirectiveLocation = iota
	DirectiveLocationFragmentSpread
	DirectiveLocationInlineFragment
	DirectiveLocationOperation
)

// CompletionContextKind is the classifier's 8-way result, exactly the
// set spec.md §4.9 enumerates.
type CompletionContextKind int

const (
	ContextVariable CompletionContextKind = iota
	ContextDirective
	ContextTypeName
	ContextArgument
	ContextEnumValue
	ContextField
	ContextFragmentSpread
	ContextInlineFragmentType
)

// CompletionContext is the classifier's output: exactly one Kind is
// meaningful, with the fields relevant to that Kind populated —
// Go has no payload-carrying enum, so every field is present but only
// the ones named in spec.md §4.9 for this Kind are read by dispatch.
type CompletionContext struct {
	Kind              CompletionContextKind
	DirectiveLocation DirectiveLocation // Directive
	InputOnly         bool              // TypeName
	FieldName         string            // Argument
	DirectiveName     string            // Argument
	EnumType          string            // EnumValue
	ParentType        string            // Argument, Field, InlineFragmentType
}
