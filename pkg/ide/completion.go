package ide

import (
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/posmap"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

var builtinDirectives = map[string]struct {
	locations []DirectiveLocation
	args      []builtinArg
}{
	"skip":       {locations: []DirectiveLocation{DirectiveLocationField, DirectiveLocationFragmentSpread, DirectiveLocationInlineFragment}, args: []builtinArg{{"if", "Boolean!"}}},
	"include":    {locations: []DirectiveLocation{DirectiveLocationField, DirectiveLocationFragmentSpread, DirectiveLocationInlineFragment}, args: []builtinArg{{"if", "Boolean!"}}},
	"deprecated": {locations: nil, args: []builtinArg{{"reason", "String"}}},
}

type builtinArg struct{ name, typeName string }

var builtinScalars = []string{"String", "Int", "Float", "Boolean", "ID"}

// isIdentChar reports whether b can appear in a GraphQL Name token.
func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// skipIdentBackward returns the offset just before the identifier
// (possibly empty) ending at offset.
func skipIdentBackward(source string, offset int) int {
	i := offset
	for i > 0 && isIdentChar(source[i-1]) {
		i--
	}
	return i
}

// skipSpaceBackward skips whitespace immediately before offset.
func skipSpaceBackward(source string, offset int) int {
	i := offset
	for i > 0 && (source[i-1] == ' ' || source[i-1] == '\t' || source[i-1] == '\n' || source[i-1] == '\r') {
		i--
	}
	return i
}

// unclosedParenBefore reports whether, scanning backward from offset,
// an unmatched '(' is found before any unmatched ')' or a statement
// boundary ('{', '}', newline run ending a selection). This is the
// lexical substitute for "cursor sits inside an argument/variable-
// definition list" the original CST-driven classifier gets for free.
func unclosedParenBefore(source string, offset int) bool {
	depth := 0
	for i := offset - 1; i >= 0; i-- {
		switch source[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				return true
			}
			depth--
		case '{', '}':
			if depth == 0 {
				return false
			}
		}
	}
	return false
}

// classify implements spec.md §4.9's completion context classifier.
// gqlparser exposes no lossless CST/token stream, so this scans the raw
// source text backward from offset for the triggering punctuation
// (`$`, `@`, `:`, `(`, `...`) rather than walking a syntax tree; it is
// deliberately approximate around partially-typed tokens, the same way
// a partially-typed document can't be losslessly re-parsed without a
// real CST.
func classify(source string, offset int, schema *ast.Schema, doc *ast.QueryDocument) CompletionContext {
	nameStart := skipIdentBackward(source, offset)
	beforeName := skipSpaceBackward(source, nameStart)

	frames := walkQueryDocFrames(schema, doc, offset)
	var innermost *frame
	if len(frames) > 0 {
		innermost = &frames[len(frames)-1]
	}

	if beforeName > 0 && source[beforeName-1] == '$' {
		return CompletionContext{Kind: ContextVariable}
	}

	if beforeName > 0 && source[beforeName-1] == '@' {
		loc := DirectiveLocationField
		if innermost != nil {
			switch innermost.kind {
			case frameFragmentSpread:
				loc = DirectiveLocationFragmentSpread
			case frameInlineFragment:
				loc = DirectiveLocationInlineFragment
			case frameOperation:
				loc = DirectiveLocationOperation
			}
		}
		return CompletionContext{Kind: ContextDirective, DirectiveLocation: loc}
	}

	if beforeName > 0 && source[beforeName-1] == ':' && unclosedParenBefore(source, beforeName-1) {
		return CompletionContext{Kind: ContextTypeName, InputOnly: true}
	}

	if strings.HasSuffix(strings.TrimRight(source[:nameStart], " \t\n\r"), "...") {
		if strings.HasSuffix(strings.TrimRight(source[:nameStart], " \t\n\r"), "... on") ||
			strings.HasSuffix(strings.TrimRight(strings.TrimSuffix(strings.TrimRight(source[:nameStart], " \t\n\r"), "..."), " \t"), "on") {
			parent := ""
			if innermost != nil {
				parent = innermost.childType
			}
			return CompletionContext{Kind: ContextInlineFragmentType, ParentType: parent}
		}
		parent := ""
		if innermost != nil {
			parent = innermost.childType
		}
		return CompletionContext{Kind: ContextFragmentSpread, ParentType: parent}
	}

	if unclosedParenBefore(source, nameStart) {
		fieldName, directiveName, parentType := "", "", ""
		if innermost != nil {
			switch innermost.kind {
			case frameField:
				fieldName, parentType = innermost.name, innermost.ownerType
			case frameDirective:
				directiveName = innermost.name
			}
		}
		return CompletionContext{Kind: ContextArgument, FieldName: fieldName, DirectiveName: directiveName, ParentType: parentType}
	}

	parentType := ""
	if innermost != nil {
		switch innermost.kind {
		case frameField, frameOperation, frameInlineFragment, frameFragmentDef:
			if offset > innermost.nameEnd {
				parentType = innermost.childType
			} else {
				parentType = innermost.ownerType
			}
		}
	}
	if parentType != "" && schema != nil {
		if def := schema.Types[parentType]; def != nil && def.Kind == ast.Enum {
			return CompletionContext{Kind: ContextEnumValue, EnumType: parentType}
		}
	}
	return CompletionContext{Kind: ContextField, ParentType: parentType}
}

// Completions implements spec.md §4.9's completions(pos) feature:
// classify the cursor, then dispatch to the context-specific builder.
func Completions(proj *project.Project, fileID registry.FileId, pos posmap.Position) []CompletionItem {
	block, within, ok := findBlockForPosition(proj, fileID, pos)
	if !ok {
		return nil
	}
	source := blockSource(block)
	offset := offsetInBlock(block, within)
	if offset < 0 {
		return nil
	}
	schema, _ := proj.Schema()
	ctx := classify(source, offset, schema, block.QueryDoc)

	switch ctx.Kind {
	case ContextVariable:
		return completeVariables(block.QueryDoc, offset)
	case ContextDirective:
		return completeDirectives(ctx.DirectiveLocation)
	case ContextTypeName:
		return completeTypes(schema, ctx.InputOnly)
	case ContextArgument:
		return completeArguments(schema, ctx.FieldName, ctx.DirectiveName, ctx.ParentType)
	case ContextEnumValue:
		return completeEnumValues(schema, ctx.EnumType)
	case ContextInlineFragmentType:
		return completeInlineFragmentTypes(schema, ctx.ParentType)
	case ContextFragmentSpread:
		return completeFragmentSpreads(proj, ctx.ParentType)
	default:
		return completeFields(proj, schema, ctx.ParentType)
	}
}

func formatASTType(t *ast.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func completeVariables(doc *ast.QueryDocument, offset int) []CompletionItem {
	if doc == nil {
		return nil
	}
	for _, op := range doc.Operations {
		if !containsOffset(op.Position, offset) {
			continue
		}
		items := make([]CompletionItem, 0, len(op.VariableDefinitions))
		for _, v := range op.VariableDefinitions {
			items = append(items, CompletionItem{
				Label:  v.Variable,
				Kind:   CompletionKindVariable,
				Detail: formatASTType(v.Type),
			})
		}
		return items
	}
	return nil
}

func completeDirectives(loc DirectiveLocation) []CompletionItem {
	var items []CompletionItem
	for name, d := range builtinDirectives {
		if d.locations != nil {
			allowed := false
			for _, l := range d.locations {
				if l == loc {
					allowed = true
					break
				}
			}
			if !allowed {
				continue
			}
		}
		insert := name
		if len(d.args) > 0 {
			insert = name + "(" + d.args[0].name + ": $1)"
		}
		items = append(items, CompletionItem{
			Label:            name,
			Kind:             CompletionKindDirective,
			InsertText:       insert,
			InsertTextFormat: InsertTextSnippet,
		})
	}
	return items
}

func completeTypes(schema *ast.Schema, inputOnly bool) []CompletionItem {
	var items []CompletionItem
	for _, s := range builtinScalars {
		if inputOnly {
			items = append(items, CompletionItem{Label: s, Kind: CompletionKindType})
		}
	}
	if schema == nil {
		return items
	}
	for name, def := range schema.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		if inputOnly && def.Kind != ast.InputObject && def.Kind != ast.Scalar && def.Kind != ast.Enum {
			continue
		}
		items = append(items, CompletionItem{Label: name, Kind: CompletionKindType, Detail: def.Description})
	}
	return items
}

func argSnippet(typeName string) string {
	switch typeName {
	case "String", "String!", "ID", "ID!":
		return "$1"
	case "Boolean", "Boolean!":
		return "${1:true}"
	default:
		return "$1"
	}
}

func completeArguments(schema *ast.Schema, fieldName, directiveName, parentType string) []CompletionItem {
	if directiveName != "" {
		d, ok := builtinDirectives[directiveName]
		if !ok {
			return nil
		}
		items := make([]CompletionItem, 0, len(d.args))
		for _, a := range d.args {
			items = append(items, CompletionItem{
				Label:            a.name,
				Kind:             CompletionKindArgument,
				Detail:           a.typeName,
				InsertText:       a.name + ": " + argSnippet(a.typeName),
				InsertTextFormat: InsertTextSnippet,
			})
		}
		return items
	}
	if schema == nil || parentType == "" || fieldName == "" {
		return nil
	}
	def := schema.Types[parentType]
	if def == nil {
		return nil
	}
	fd := def.Fields.ForName(fieldName)
	if fd == nil {
		return nil
	}
	items := make([]CompletionItem, 0, len(fd.Arguments))
	for _, a := range fd.Arguments {
		isDep, _ := deprecatedArg(a.Directives)
		items = append(items, CompletionItem{
			Label:            a.Name,
			Kind:             CompletionKindArgument,
			Detail:           formatASTType(a.Type),
			Documentation:    a.Description,
			InsertText:       a.Name + ": " + argSnippet(formatASTType(a.Type)),
			InsertTextFormat: InsertTextSnippet,
			Deprecated:       isDep,
		})
	}
	return items
}

func deprecatedArg(dl ast.DirectiveList) (bool, string) {
	d := dl.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	reason := "No longer supported"
	if ra := d.Arguments.ForName("reason"); ra != nil && ra.Value != nil {
		reason = ra.Value.Raw
	}
	return true, reason
}

func completeEnumValues(schema *ast.Schema, enumType string) []CompletionItem {
	if schema == nil {
		return nil
	}
	def := schema.Types[enumType]
	if def == nil {
		return nil
	}
	items := make([]CompletionItem, 0, len(def.EnumValues))
	for _, ev := range def.EnumValues {
		isDep, _ := deprecatedArg(ev.Directives)
		items = append(items, CompletionItem{Label: ev.Name, Kind: CompletionKindEnumValue, Documentation: ev.Description, Deprecated: isDep})
	}
	return items
}

func completeInlineFragmentTypes(schema *ast.Schema, parentType string) []CompletionItem {
	if schema == nil {
		return nil
	}
	var candidates []string
	if parentType != "" {
		if def := schema.Types[parentType]; def != nil && def.Kind == ast.Union {
			candidates = append(candidates, def.Types...)
		} else {
			for name, def := range schema.Types {
				if def.Kind == ast.Object && implementsInterface(def, parentType) {
					candidates = append(candidates, name)
				}
			}
		}
	}
	if len(candidates) == 0 {
		for name, def := range schema.Types {
			if def.Kind == ast.Object || def.Kind == ast.Interface {
				candidates = append(candidates, name)
			}
		}
	}
	items := make([]CompletionItem, 0, len(candidates))
	for _, name := range candidates {
		items = append(items, CompletionItem{
			Label:            name,
			Kind:             CompletionKindType,
			InsertText:       name + " {\n  $0\n}",
			InsertTextFormat: InsertTextSnippet,
		})
	}
	return items
}

func implementsInterface(def *ast.Definition, iface string) bool {
	for _, i := range def.Interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

func completeFragmentSpreads(proj *project.Project, parentType string) []CompletionItem {
	frags := proj.AllFragments().ByName
	items := make([]CompletionItem, 0, len(frags))
	for name, fs := range frags {
		if parentType != "" && fs.TypeCondition != parentType {
			continue
		}
		items = append(items, CompletionItem{Label: name, Kind: CompletionKindFragment, Detail: "on " + fs.TypeCondition})
	}
	return items
}

func completeFields(proj *project.Project, schema *ast.Schema, parentType string) []CompletionItem {
	if schema == nil || parentType == "" {
		return nil
	}
	def := schema.Types[parentType]
	if def == nil {
		return nil
	}
	items := make([]CompletionItem, 0, len(def.Fields)+1)
	for _, f := range def.Fields {
		isDep, reason := deprecatedArg(f.Directives)
		insert := f.Name
		var requiredArgs []string
		for i, a := range f.Arguments {
			if a.Type != nil && a.Type.NonNull && a.DefaultValue == nil {
				requiredArgs = append(requiredArgs, a.Name+": $"+strconv.Itoa(i+1))
			}
		}
		if len(requiredArgs) > 0 {
			insert = f.Name + "(" + strings.Join(requiredArgs, ", ") + ")"
		}
		items = append(items, CompletionItem{
			Label:            f.Name,
			Kind:             CompletionKindField,
			Detail:           formatASTType(f.Type),
			Documentation:    f.Description,
			InsertText:       insert,
			InsertTextFormat: InsertTextSnippet,
			Deprecated:       isDep,
		})
		_ = reason
	}
	items = append(items, CompletionItem{Label: "__typename", Kind: CompletionKindField, Detail: "String!"})
	if def.Kind == ast.Interface {
		for name, impl := range schema.Types {
			if impl.Kind == ast.Object && implementsInterface(impl, def.Name) {
				items = append(items, CompletionItem{
					Label:            "... on " + name,
					Kind:             CompletionKindType,
					InsertText:       "... on " + name + " {\n  $0\n}",
					InsertTextFormat: InsertTextSnippet,
					SortText:         "z_" + name,
				})
			}
		}
	}
	return items
}
