// Package hir implements the per-file HIR / Structure query (C5):
// walking a file's parsed blocks to produce FileStructureData, the
// stable-across-body-edits summary of what a file declares (type
// definitions, operations, fragments) without their selection-set
// bodies. It is grounded on original_source/crates/hir/src/structure.rs
// (BLOCK_INDEX_OFFSET, the TypeDef/FieldSignature/TypeRef/
// OperationStructure/FragmentStructure shapes, the block-context
// line/byte-offset carrying for embedded GraphQL), translated from
// apollo-compiler AST walks to github.com/vektah/gqlparser/v2 ast walks.
package hir

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// BlockIndexOffset ensures operation indices stay globally unique
// across blocks within one file: block i's operations are numbered
// starting at i*BlockIndexOffset.
const BlockIndexOffset = 1000

// Range is a half-open [Start, End) byte span, with the 0-based
// line/character of Start recorded alongside for diagnostics that
// don't want to re-derive it from a line index.
type Range struct {
	Start, End       int
	StartLine        int
	StartCharacter   int
}

// TypeDefKind enumerates the kinds of type system definitions tracked.
type TypeDefKind int

const (
	TypeDefObject TypeDefKind = iota
	TypeDefInterface
	TypeDefUnion
	TypeDefEnum
	TypeDefScalar
	TypeDefInputObject
)

// TypeRef decomposes a wrapped type reference into its leaf name plus
// the list/non-null wrapper flags; IsList+IsNonNull+InnerNonNull
// together exactly reflect the legal `[…]`/`!` combinations gqlparser
// can parse.
type TypeRef struct {
	Name          string
	IsList        bool
	IsNonNull     bool
	InnerNonNull bool
}

func typeRefOf(t *ast.Type) TypeRef {
	if t == nil {
		return TypeRef{}
	}
	if t.Elem != nil {
		return TypeRef{
			Name:         t.Elem.Name(),
			IsList:       true,
			IsNonNull:    t.NonNull,
			InnerNonNull: t.Elem.NonNull,
		}
	}
	return TypeRef{
		Name:      t.NamedType,
		IsNonNull: t.NonNull,
	}
}

// DirectiveArgument is a serialized (name, value) pair on a directive
// application.
type DirectiveArgument struct {
	Name  string
	Value string
}

// DirectiveUsage is a directive applied to some schema element.
type DirectiveUsage struct {
	Name      string
	Arguments []DirectiveArgument
}

func directiveUsagesOf(dl ast.DirectiveList) []DirectiveUsage {
	out := make([]DirectiveUsage, 0, len(dl))
	for _, d := range dl {
		du := DirectiveUsage{Name: d.Name}
		for _, a := range d.Arguments {
			du.Arguments = append(du.Arguments, DirectiveArgument{Name: a.Name, Value: valueString(a.Value)})
		}
		out = append(out, du)
	}
	return out
}

func valueString(v *ast.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// deprecationOf inspects a directive list for @deprecated and returns
// whether it is present and, if so, its `reason` argument (defaulting
// to the spec-standard message when omitted).
func deprecationOf(dl ast.DirectiveList) (isDeprecated bool, reason string) {
	for _, d := range dl {
		if d.Name != "deprecated" {
			continue
		}
		isDeprecated = true
		reason = "No longer supported"
		for _, a := range d.Arguments {
			if a.Name == "reason" {
				reason = strings.Trim(valueString(a.Value), `"`)
			}
		}
		return
	}
	return false, ""
}

// ArgumentDef is a field or directive argument's signature.
type ArgumentDef struct {
	Name            string
	TypeRef         TypeRef
	DefaultValue    string
	Description     string
	IsDeprecated    bool
	DeprecationReason string
	Directives      []DirectiveUsage
	NameRange       Range
}

// FieldSignature is one field's signature on a TypeDef.
type FieldSignature struct {
	Name              string
	TypeRef           TypeRef
	Arguments         []ArgumentDef
	Description       string
	IsDeprecated      bool
	DeprecationReason string
	Directives        []DirectiveUsage
	NameRange         Range
	FileID            registry.FileId
}

// EnumValue is one value in an enum definition.
type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
	Directives        []DirectiveUsage
}

// TypeDef is a type-system definition's signature, without field
// bodies — just enough to validate and navigate against.
type TypeDef struct {
	Name             string
	Kind             TypeDefKind
	Fields           []FieldSignature
	Implements       []string
	UnionMembers     []string
	EnumValues       []EnumValue
	Description      string
	Directives       []DirectiveUsage
	FileID           registry.FileId
	NameRange        Range
	DefinitionRange  Range
	IsExtension      bool
}

// OperationType mirrors GraphQL's three root operation kinds.
type OperationType int

const (
	OperationQuery OperationType = iota
	OperationMutation
	OperationSubscription
)

// VariableSignature is one operation variable's signature.
type VariableSignature struct {
	Name         string
	TypeRef      TypeRef
	DefaultValue string
}

// OperationStructure is one operation's signature: name, kind,
// variables, and enough positional/block context to report diagnostics
// and re-derive its body on demand.
type OperationStructure struct {
	Name            string // empty if anonymous
	OperationType   OperationType
	Variables       []VariableSignature
	FileID          registry.FileId
	Index           int
	NameRange       *Range // nil if anonymous
	OperationRange  Range
	BlockLineOffset int
	BlockByteOffset int
	BlockSource     string // empty for pure GraphQL files
}

// FragmentStructure is one fragment's signature.
type FragmentStructure struct {
	Name               string
	TypeCondition      string
	FileID             registry.FileId
	NameRange          Range
	TypeConditionRange Range
	FragmentRange      Range
	BlockLineOffset    int
	BlockByteOffset    int
	BlockSource        string
}

// FileStructureData is one file's full structural summary, stable
// across edits that only change selection-set/field-body content.
type FileStructureData struct {
	FileID     registry.FileId
	TypeDefs   []TypeDef
	Operations []OperationStructure
	Fragments  []FragmentStructure
}

// Fingerprint lets this result participate in the query engine's early
// cutoff: a body-only edit (e.g. adding a selection under an existing
// operation name) changes this structure only if it changes a name,
// signature, or directive — which is exactly what the fingerprint
// captures by omitting ranges.
func (d FileStructureData) Fingerprint() string {
	var b strings.Builder
	for _, td := range d.TypeDefs {
		fmt.Fprintf(&b, "T|%s|%d|%v|%v|%v|%v|", td.Name, td.Kind, td.IsExtension, td.Implements, td.UnionMembers, td.Directives)
		for _, f := range td.Fields {
			fmt.Fprintf(&b, "f:%s:%+v:%v:%s:%v;", f.Name, f.TypeRef, f.IsDeprecated, f.DeprecationReason, f.Directives)
			for _, a := range f.Arguments {
				fmt.Fprintf(&b, "a:%s:%+v:%s:%v;", a.Name, a.TypeRef, a.DefaultValue, a.Directives)
			}
		}
		for _, ev := range td.EnumValues {
			fmt.Fprintf(&b, "e:%s:%v:%v;", ev.Name, ev.IsDeprecated, ev.Directives)
		}
	}
	for _, op := range d.Operations {
		fmt.Fprintf(&b, "O|%s|%d|%v|", op.Name, op.OperationType, op.Variables)
	}
	for _, fr := range d.Fragments {
		fmt.Fprintf(&b, "F|%s|%s|", fr.Name, fr.TypeCondition)
	}
	return b.String()
}

// Of walks parse (the Parse Layer's output for one file) and builds its
// FileStructureData. This is the query body: pkg/project wraps this in
// an engine.Query keyed by file id, whose reads of that file's content
// and metadata make it recompute only when those change.
func Of(fileID registry.FileId, parse gqlparse.Parse) FileStructureData {
	data := FileStructureData{FileID: fileID}

	for _, block := range parse.Blocks {
		blockCtx := blockContextOf(block)

		if block.SchemaDoc != nil {
			extractSchemaDoc(block.SchemaDoc, fileID, blockCtx, &data)
		}
		if block.QueryDoc != nil {
			extractQueryDoc(block.QueryDoc, fileID, block.Index, blockCtx, &data)
		}
	}
	return data
}

// blockContext carries the embedded-GraphQL positioning a block's
// definitions need recorded on their OperationStructure/
// FragmentStructure, or the pure-GraphQL zero-value when the file IS
// GraphQL (no block offset to carry).
type blockContext struct {
	lineOffset int
	byteOffset int
	source     string // empty means "pure GraphQL file, no block source to carry"
}

func blockContextOf(b gqlparse.Block) blockContext {
	if b.Offset == 0 && b.Line == 0 && b.Character == 0 {
		return blockContext{}
	}
	source := ""
	if b.Source != nil {
		source = b.Source.Input
	}
	return blockContext{lineOffset: b.Line, byteOffset: b.Offset, source: source}
}

func extractSchemaDoc(doc *ast.SchemaDocument, fileID registry.FileId, ctx blockContext, data *FileStructureData) {
	for _, def := range doc.Definitions {
		data.TypeDefs = append(data.TypeDefs, typeDefOf(def, fileID, false))
	}
	for _, def := range doc.Extensions {
		data.TypeDefs = append(data.TypeDefs, typeDefOf(def, fileID, true))
	}
}

func typeDefOf(def *ast.Definition, fileID registry.FileId, isExtension bool) TypeDef {
	td := TypeDef{
		Name:            def.Name,
		Kind:            typeDefKindOf(def.Kind),
		Implements:      append([]string{}, def.Interfaces...),
		UnionMembers:    append([]string{}, def.Types...),
		Description:     def.Description,
		Directives:      directiveUsagesOf(def.Directives),
		FileID:          fileID,
		NameRange:       typeDefNameRange(def.Position),
		DefinitionRange: rangeOfPosition(def.Position),
		IsExtension:     isExtension,
	}
	for _, f := range def.Fields {
		td.Fields = append(td.Fields, fieldSignatureOf(f, fileID))
	}
	for _, ev := range def.EnumValues {
		isDep, reason := deprecationOf(ev.Directives)
		td.EnumValues = append(td.EnumValues, EnumValue{
			Name:              ev.Name,
			Description:       ev.Description,
			IsDeprecated:      isDep,
			DeprecationReason: reason,
			Directives:        directiveUsagesOf(ev.Directives),
		})
	}
	return td
}

func typeDefKindOf(k ast.DefinitionKind) TypeDefKind {
	switch k {
	case ast.Object:
		return TypeDefObject
	case ast.Interface:
		return TypeDefInterface
	case ast.Union:
		return TypeDefUnion
	case ast.Enum:
		return TypeDefEnum
	case ast.InputObject:
		return TypeDefInputObject
	default:
		return TypeDefScalar
	}
}

func fieldSignatureOf(f *ast.FieldDefinition, fileID registry.FileId) FieldSignature {
	isDep, reason := deprecationOf(f.Directives)
	fs := FieldSignature{
		Name:              f.Name,
		TypeRef:           typeRefOf(f.Type),
		Description:       f.Description,
		IsDeprecated:      isDep,
		DeprecationReason: reason,
		Directives:        directiveUsagesOf(f.Directives),
		NameRange:         rangeOfPosition(f.Position),
		FileID:            fileID,
	}
	for _, a := range f.Arguments {
		fs.Arguments = append(fs.Arguments, argumentDefOf(a))
	}
	return fs
}

func argumentDefOf(a *ast.ArgumentDefinition) ArgumentDef {
	isDep, reason := deprecationOf(a.Directives)
	return ArgumentDef{
		Name:              a.Name,
		TypeRef:           typeRefOf(a.Type),
		DefaultValue:      valueString(a.DefaultValue),
		Description:       a.Description,
		IsDeprecated:      isDep,
		DeprecationReason: reason,
		Directives:        directiveUsagesOf(a.Directives),
		NameRange:         rangeOfPosition(a.Position),
	}
}

func extractQueryDoc(doc *ast.QueryDocument, fileID registry.FileId, blockIndex int, ctx blockContext, data *FileStructureData) {
	base := blockIndex * BlockIndexOffset
	for i, op := range doc.Operations {
		data.Operations = append(data.Operations, operationStructureOf(op, fileID, base+i, ctx))
	}
	for _, frag := range doc.Fragments {
		data.Fragments = append(data.Fragments, fragmentStructureOf(frag, fileID, ctx))
	}
}

func operationStructureOf(op *ast.OperationDefinition, fileID registry.FileId, index int, ctx blockContext) OperationStructure {
	os := OperationStructure{
		Name:            op.Name,
		OperationType:   operationTypeOf(op.Operation),
		FileID:          fileID,
		Index:           index,
		OperationRange:  rangeOfPosition(op.Position),
		BlockLineOffset: ctx.lineOffset,
		BlockByteOffset: ctx.byteOffset,
		BlockSource:     ctx.source,
	}
	if op.Name != "" {
		r := rangeOfPosition(op.Position)
		if words := wordRanges(op.Position, 2); len(words) == 2 {
			r = words[1]
		}
		os.NameRange = &r
	}
	for _, v := range op.VariableDefinitions {
		os.Variables = append(os.Variables, VariableSignature{
			Name:         v.Variable,
			TypeRef:      typeRefOf(v.Type),
			DefaultValue: valueString(v.DefaultValue),
		})
	}
	return os
}

func operationTypeOf(op ast.Operation) OperationType {
	switch op {
	case ast.Mutation:
		return OperationMutation
	case ast.Subscription:
		return OperationSubscription
	default:
		return OperationQuery
	}
}

func fragmentStructureOf(f *ast.FragmentDefinition, fileID registry.FileId, ctx blockContext) FragmentStructure {
	fs := FragmentStructure{
		Name:               f.Name,
		TypeCondition:      f.TypeCondition,
		FileID:             fileID,
		NameRange:          rangeOfPosition(f.Position),
		TypeConditionRange: rangeOfPosition(f.Position),
		FragmentRange:      rangeOfPosition(f.Position),
		BlockLineOffset:    ctx.lineOffset,
		BlockByteOffset:    ctx.byteOffset,
		BlockSource:        ctx.source,
	}
	// `f.Position` is only the `fragment` keyword's own token span; the
	// name and type-condition tokens follow it as the 2nd and 4th words
	// ("fragment" Name "on" TypeCondition).
	if words := wordRanges(f.Position, 4); len(words) == 4 {
		fs.NameRange = words[1]
		fs.TypeConditionRange = words[3]
	}
	return fs
}

func rangeOfPosition(p *ast.Position) Range {
	if p == nil {
		return Range{}
	}
	return Range{
		Start:          p.Start,
		End:            p.End,
		StartLine:      p.Line - 1,
		StartCharacter: p.Column - 1,
	}
}

// isNameStartByte and isNameByte follow the GraphQL Name production:
// /[_A-Za-z][_0-9A-Za-z]*/.
func isNameStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStartByte(b) || (b >= '0' && b <= '9')
}

// rangeFromOffsets builds a Range for [start, end) within src, deriving
// StartLine/StartCharacter by counting newlines from the top of src —
// cheap here since it only ever runs a handful of times per definition.
func rangeFromOffsets(src *ast.Source, start, end int) Range {
	if src == nil {
		return Range{}
	}
	line := 1
	lineStart := 0
	limit := start
	if limit > len(src.Input) {
		limit = len(src.Input)
	}
	for i := 0; i < limit; i++ {
		if src.Input[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return Range{
		Start:          start,
		End:            end,
		StartLine:      line - 1,
		StartCharacter: start - lineStart,
	}
}

// wordRanges scans forward from p's own token (its keyword) and returns
// the byte ranges of the next `max` contiguous Name-character runs found
// in p.Src, in source order. gqlparser's *ast.Position only ever spans
// the single token the parser was looking at when it recorded the node
// (e.g. the `fragment`/`query`/`type` keyword), so this is how distinct
// name/type-condition tokens get recovered from a definition-level
// Position: scan past it as plain text. Returns fewer than max entries
// if the source runs out first.
func wordRanges(p *ast.Position, max int) []Range {
	if p == nil || p.Src == nil {
		return nil
	}
	input := p.Src.Input
	out := make([]Range, 0, max)
	i := p.Start
	for len(out) < max && i < len(input) {
		for i < len(input) && !isNameStartByte(input[i]) {
			i++
		}
		if i >= len(input) {
			break
		}
		start := i
		for i < len(input) && isNameByte(input[i]) {
			i++
		}
		out = append(out, rangeFromOffsets(p.Src, start, i))
	}
	return out
}

// typeDefNameRange finds a type-system definition's name token: its
// Position spans only the leading keyword ("type", "interface", ... or,
// for extensions, "extend"), so the name is the first word that isn't
// one of those keywords.
func typeDefNameRange(p *ast.Position) Range {
	if p == nil || p.Src == nil {
		return rangeOfPosition(p)
	}
	keywords := map[string]bool{
		"extend": true, "type": true, "interface": true,
		"union": true, "enum": true, "scalar": true, "input": true,
	}
	input := p.Src.Input
	i := p.Start
	for i < len(input) {
		for i < len(input) && !isNameStartByte(input[i]) {
			i++
		}
		if i >= len(input) {
			break
		}
		start := i
		for i < len(input) && isNameByte(input[i]) {
			i++
		}
		if !keywords[input[start:i]] {
			return rangeFromOffsets(p.Src, start, i)
		}
	}
	return rangeOfPosition(p)
}
