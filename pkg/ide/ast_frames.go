package ide

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// frameKind names the AST node a frame was built from.
type frameKind int

const (
	frameDocument frameKind = iota
	frameOperation
	frameFragmentDef
	frameField
	frameFragmentSpread
	frameInlineFragment
	frameArgument
	frameDirective
	frameTypeDef
	frameFieldDef
	frameArgumentDef
	frameEnumValueDef
)

// frame is one ancestor of the node enclosing a cursor offset, ordered
// outermost-to-innermost by the walk functions below. ownerType is the
// type that declares this node (a field's parent type, a fragment's
// type condition); childType is the type of the selection set this
// node itself opens (a field's return type), empty for leaf nodes.
// nameEnd is the byte offset just past the node's own name token, used
// to tell "still typing this node's name" apart from "positioned past
// it, inside its body" when no deeper frame matched.
type frame struct {
	kind      frameKind
	name      string
	ownerType string
	childType string
	nameEnd   int
	pos       *ast.Position
}

func containsOffset(p *ast.Position, offset int) bool {
	return p != nil && offset >= p.Start && offset <= p.End
}

// rootTypeName returns the schema's root type name for op, or "" if
// schema is nil or the root isn't defined.
func rootTypeName(schema *ast.Schema, op ast.Operation) string {
	if schema == nil {
		return ""
	}
	var def *ast.Definition
	switch op {
	case ast.Mutation:
		def = schema.Mutation
	case ast.Subscription:
		def = schema.Subscription
	default:
		def = schema.Query
	}
	if def == nil {
		return ""
	}
	return def.Name
}

// fieldChildTypeName resolves fieldName's declared return type on
// parentType, or "" if either is unknown. "__typename" always resolves
// to String, the one field every selectable type implicitly carries.
func fieldChildTypeName(schema *ast.Schema, parentType, fieldName string) string {
	if schema == nil || parentType == "" {
		return ""
	}
	if fieldName == "__typename" {
		return "String"
	}
	def := schema.Types[parentType]
	if def == nil {
		return ""
	}
	fd := def.Fields.ForName(fieldName)
	if fd == nil || fd.Type == nil {
		return ""
	}
	return fd.Type.Name()
}

// walkQueryDocFrames returns the outermost-to-innermost ancestor chain
// of the operation or fragment definition containing offset, descending
// into its selection set as deep as a field/spread/inline-fragment's
// own Position still contains offset. Only the first top-level
// definition containing offset is processed, matching
// original_source/crates/ide/src/selection_range.rs's find_ancestor_ranges.
func walkQueryDocFrames(schema *ast.Schema, doc *ast.QueryDocument, offset int) []frame {
	if doc == nil {
		return nil
	}
	for _, op := range doc.Operations {
		if !containsOffset(op.Position, offset) {
			continue
		}
		root := rootTypeName(schema, op.Operation)
		f := frame{kind: frameOperation, name: op.Name, childType: root, pos: op.Position, nameEnd: op.Position.Start}
		frames := []frame{f}
		return walkSelectionSetFrames(schema, op.SelectionSet, root, offset, frames)
	}
	for _, frag := range doc.Fragments {
		if !containsOffset(frag.Position, offset) {
			continue
		}
		f := frame{kind: frameFragmentDef, name: frag.Name, ownerType: frag.TypeCondition, childType: frag.TypeCondition, pos: frag.Position, nameEnd: frag.Position.Start}
		frames := []frame{f}
		return walkSelectionSetFrames(schema, frag.SelectionSet, frag.TypeCondition, offset, frames)
	}
	return nil
}

func walkSelectionSetFrames(schema *ast.Schema, set ast.SelectionSet, parentType string, offset int, frames []frame) []frame {
	for _, sel := range set {
		switch v := sel.(type) {
		case *ast.Field:
			if !containsOffset(v.Position, offset) {
				continue
			}
			nameEnd := v.Position.Start + len(v.Name)
			if v.Alias != "" && v.Alias != v.Name {
				nameEnd = v.Position.Start + len(v.Alias)
			}
			child := fieldChildTypeName(schema, parentType, v.Name)
			frames = append(frames, frame{kind: frameField, name: v.Name, ownerType: parentType, childType: child, pos: v.Position, nameEnd: nameEnd})
			for _, arg := range v.Arguments {
				if containsOffset(arg.Position, offset) {
					return append(frames, frame{kind: frameArgument, name: arg.Name, ownerType: parentType, pos: arg.Position, nameEnd: arg.Position.End})
				}
			}
			for _, d := range v.Directives {
				if containsOffset(d.Position, offset) {
					return append(frames, frame{kind: frameDirective, name: d.Name, pos: d.Position, nameEnd: d.Position.End})
				}
			}
			return walkSelectionSetFrames(schema, v.SelectionSet, child, offset, frames)
		case *ast.FragmentSpread:
			if !containsOffset(v.Position, offset) {
				continue
			}
			return append(frames, frame{kind: frameFragmentSpread, name: v.Name, ownerType: parentType, pos: v.Position, nameEnd: v.Position.End})
		case *ast.InlineFragment:
			if !containsOffset(v.Position, offset) {
				continue
			}
			target := parentType
			if v.TypeCondition != "" {
				target = v.TypeCondition
			}
			frames = append(frames, frame{kind: frameInlineFragment, name: v.TypeCondition, ownerType: parentType, childType: target, pos: v.Position, nameEnd: v.Position.Start})
			return walkSelectionSetFrames(schema, v.SelectionSet, target, offset, frames)
		}
	}
	return frames
}

// walkSchemaDocFrames returns the ancestor chain for the type-system
// definition containing offset: the TypeDef itself, and, if offset
// narrows further, the one FieldDef/ArgumentDef/EnumValueDef it falls
// inside.
func walkSchemaDocFrames(doc *ast.SchemaDocument, offset int) []frame {
	if doc == nil {
		return nil
	}
	defs := make([]*ast.Definition, 0, len(doc.Definitions)+len(doc.Extensions))
	defs = append(defs, doc.Definitions...)
	defs = append(defs, doc.Extensions...)
	for _, def := range defs {
		if !containsOffset(def.Position, offset) {
			continue
		}
		frames := []frame{{kind: frameTypeDef, name: def.Name, pos: def.Position, nameEnd: def.Position.Start + len(def.Name)}}
		for _, f := range def.Fields {
			if !containsOffset(f.Position, offset) {
				continue
			}
			frames = append(frames, frame{kind: frameFieldDef, name: f.Name, ownerType: def.Name, pos: f.Position, nameEnd: f.Position.Start + len(f.Name)})
			for _, a := range f.Arguments {
				if containsOffset(a.Position, offset) {
					frames = append(frames, frame{kind: frameArgumentDef, name: a.Name, ownerType: def.Name, pos: a.Position, nameEnd: a.Position.End})
					break
				}
			}
			break
		}
		for _, ev := range def.EnumValues {
			if containsOffset(ev.Position, offset) {
				frames = append(frames, frame{kind: frameEnumValueDef, name: ev.Name, ownerType: def.Name, pos: ev.Position, nameEnd: ev.Position.End})
				break
			}
		}
		return frames
	}
	return nil
}
