package ide

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// astRangeToFile projects an AST node's byte span, recorded against
// block's own source, into file-relative coordinates.
func astRangeToFile(block gqlparse.Block, p *ast.Position) Range {
	r := rangeOfAST(p)
	return Range{Start: toFilePosition(block, r.Start), End: toFilePosition(block, r.End)}
}

// DocumentSymbols implements spec.md §4.9's document_symbols(file)
// feature, derived from the file's parsed blocks: one top-level symbol per type
// definition, operation, and fragment in the file, fields/enum values
// nested as children.
func DocumentSymbols(proj *project.Project, fileID registry.FileId) []DocumentSymbol {
	var out []DocumentSymbol
	for _, block := range proj.Parse(fileID).Blocks {
		if block.SchemaDoc != nil {
			for _, def := range block.SchemaDoc.Definitions {
				out = append(out, documentSymbolForTypeDef(def, block))
			}
			for _, def := range block.SchemaDoc.Extensions {
				out = append(out, documentSymbolForTypeDef(def, block))
			}
		}
		if block.QueryDoc != nil {
			for _, op := range block.QueryDoc.Operations {
				out = append(out, documentSymbolForOperation(op, block))
			}
			for _, f := range block.QueryDoc.Fragments {
				out = append(out, documentSymbolForFragment(f, block))
			}
		}
	}
	return out
}

func documentSymbolForTypeDef(def *ast.Definition, block gqlparse.Block) DocumentSymbol {
	rng := astRangeToFile(block, def.Position)
	sym := DocumentSymbol{Name: def.Name, Kind: symbolKindForDefKind(def.Kind), Range: rng, SelectionRange: rng}
	for _, f := range def.Fields {
		frng := astRangeToFile(block, f.Position)
		sym.Children = append(sym.Children, DocumentSymbol{
			Name: f.Name, Kind: SymbolKindField, Detail: formatASTType(f.Type),
			Range: frng, SelectionRange: frng,
		})
	}
	for _, ev := range def.EnumValues {
		erng := astRangeToFile(block, ev.Position)
		sym.Children = append(sym.Children, DocumentSymbol{Name: ev.Name, Kind: SymbolKindEnumValue, Range: erng, SelectionRange: erng})
	}
	return sym
}

func documentSymbolForOperation(op *ast.OperationDefinition, block gqlparse.Block) DocumentSymbol {
	rng := astRangeToFile(block, op.Position)
	name := op.Name
	if name == "" {
		name = "(anonymous)"
	}
	return DocumentSymbol{Name: name, Kind: symbolKindForOperation(op.Operation), Range: rng, SelectionRange: rng}
}

func documentSymbolForFragment(f *ast.FragmentDefinition, block gqlparse.Block) DocumentSymbol {
	rng := astRangeToFile(block, f.Position)
	return DocumentSymbol{Name: f.Name, Kind: SymbolKindFragment, Detail: "on " + f.TypeCondition, Range: rng, SelectionRange: rng}
}

func symbolKindForDefKind(k ast.DefinitionKind) SymbolKind {
	switch k {
	case ast.Interface:
		return SymbolKindInterface
	case ast.Union:
		return SymbolKindUnion
	case ast.Enum:
		return SymbolKindEnum
	case ast.Scalar:
		return SymbolKindScalar
	case ast.InputObject:
		return SymbolKindInput
	default:
		return SymbolKindType
	}
}

func symbolKindForOperation(op ast.Operation) SymbolKind {
	switch op {
	case ast.Mutation:
		return SymbolKindMutation
	case ast.Subscription:
		return SymbolKindSubscription
	default:
		return SymbolKindQuery
	}
}

// WorkspaceSymbols implements spec.md §4.9's workspace_symbols(query)
// feature: a case-insensitive substring match over every project-wide
// type, operation, and fragment name.
func WorkspaceSymbols(proj *project.Project, query string) []WorkspaceSymbol {
	q := strings.ToLower(query)
	var out []WorkspaceSymbol

	schema, _ := proj.Schema()
	if schema != nil {
		for name, def := range schema.Types {
			if q != "" && !strings.Contains(strings.ToLower(name), q) {
				continue
			}
			loc, ok := locate(proj, def.Position)
			if !ok {
				continue
			}
			out = append(out, WorkspaceSymbol{Name: name, Kind: symbolKindForDefKind(def.Kind), Location: loc})
		}
	}
	for _, op := range proj.AllOperations().All {
		if op.Name == "" || (q != "" && !strings.Contains(strings.ToLower(op.Name), q)) {
			continue
		}
		body := proj.OperationBody(op.FileID, op.Index)
		if body == nil {
			continue
		}
		loc, ok := locate(proj, body.Position)
		if !ok {
			continue
		}
		out = append(out, WorkspaceSymbol{Name: op.Name, Kind: symbolKindForOperation(body.Operation), Location: loc})
	}
	for name, fr := range proj.AllFragments().ByName {
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		body := proj.FragmentBody(name)
		if body == nil {
			continue
		}
		loc, ok := locate(proj, body.Position)
		if !ok {
			continue
		}
		out = append(out, WorkspaceSymbol{Name: name, Kind: SymbolKindFragment, ContainerName: fr.TypeCondition, Location: loc})
	}
	return out
}
