// Package project implements the Project HIR (C6): tracked queries that
// parse each file (parse, file_structure) and merge every file's
// per-file HIR into project-wide views — schema_types, all_fragments,
// all_operations, fragment_spreads_index, fragment_ast and schema —
// plus the OperationBody/FragmentBody lookups over them. Every
// query here depends only on the registry's id-lists plus the specific
// FileEntries it actually reads, per spec.md §4.6's granularity rule.
// Grounded on original_source/crates/graphql-db/src/lib.rs
// (file_lookup) and crates/graphql-project/src/document.rs.
package project

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/engine"
	"github.com/graphlang/gqlanalyzer/pkg/gqlparse"
	"github.com/graphlang/gqlanalyzer/pkg/hir"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Project wires the registry's ProjectFiles input cells to the tracked
// queries that compute project-wide HIR views over them. One Project
// is created per engine.Database / registry.Registry pair.
type Project struct {
	db *engine.Database
	pf registry.ProjectFiles

	parseQ         *engine.Query[registry.FileId, gqlparse.Parse]
	structureQ     *engine.Query[registry.FileId, hir.FileStructureData]
	schemaTypesQ   *engine.Query[struct{}, SchemaTypes]
	allFragmentsQ  *engine.Query[struct{}, AllFragments]
	allOperationsQ *engine.Query[struct{}, AllOperations]
	spreadsIndexQ  *engine.Query[struct{}, SpreadsIndex]
	fragmentASTQ   *engine.Query[string, *FragmentAST]
	schemaQ        *engine.Query[struct{}, schemaResult]

	conflictResolver ConflictResolver
}

// New wires a fresh set of project-wide queries over db and pf.
// extractorCfg governs how TS/JS files are plucked for embedded
// GraphQL (internal/pluck).
func New(db *engine.Database, pf registry.ProjectFiles, extractorCfg pluck.Config) *Project {
	p := &Project{db: db, pf: pf}

	p.parseQ = engine.NewQuery[registry.FileId, gqlparse.Parse]("parse", func(db *engine.Database, id registry.FileId) gqlparse.Parse {
		entries := pf.FileEntryMap.Get().Entries
		entry, ok := entries[id]
		if !ok {
			return gqlparse.Parse{FileID: id}
		}
		content := entry.Content.Get()
		return gqlparse.Of(entry.Metadata, content, extractorCfg)
	})

	p.structureQ = engine.NewQuery[registry.FileId, hir.FileStructureData]("file_structure", func(db *engine.Database, id registry.FileId) hir.FileStructureData {
		parse := p.parseQ.Get(db, id)
		return hir.Of(id, parse)
	})

	p.schemaTypesQ = engine.NewQuery[struct{}, SchemaTypes]("schema_types", func(db *engine.Database, _ struct{}) SchemaTypes {
		return computeSchemaTypes(db, pf, p.structureQ)
	})

	p.allFragmentsQ = engine.NewQuery[struct{}, AllFragments]("all_fragments", func(db *engine.Database, _ struct{}) AllFragments {
		return computeAllFragments(db, pf, p.structureQ)
	})

	p.allOperationsQ = engine.NewQuery[struct{}, AllOperations]("all_operations", func(db *engine.Database, _ struct{}) AllOperations {
		return computeAllOperations(db, pf, p.structureQ)
	})

	p.spreadsIndexQ = engine.NewQuery[struct{}, SpreadsIndex]("fragment_spreads_index", func(db *engine.Database, _ struct{}) SpreadsIndex {
		return computeSpreadsIndex(db, p.allFragmentsQ, p.parseQ)
	})

	p.fragmentASTQ = engine.NewQuery[string, *FragmentAST]("fragment_ast", func(db *engine.Database, name string) *FragmentAST {
		frags := p.allFragmentsQ.Get(db, struct{}{})
		fs, ok := frags.ByName[name]
		if !ok {
			return nil
		}
		parse := p.parseQ.Get(db, fs.FileID)
		for _, block := range parse.Blocks {
			if block.QueryDoc == nil {
				continue
			}
			for _, f := range block.QueryDoc.Fragments {
				if f.Name == name {
					return &FragmentAST{FileID: fs.FileID, Def: f, Doc: block.QueryDoc}
				}
			}
		}
		return nil
	})

	p.schemaQ = engine.NewQuery[struct{}, schemaResult]("schema", func(db *engine.Database, _ struct{}) schemaResult {
		var docs []*ast.SchemaDocument
		for _, id := range pf.SchemaFileIDs.Get().IDs {
			parse := p.parseQ.Get(db, id)
			for _, block := range parse.Blocks {
				if block.SchemaDoc != nil {
					docs = append(docs, block.SchemaDoc)
				}
			}
		}
		if len(docs) == 0 {
			return schemaResult{}
		}
		prelude, perr := parser.ParseSchema(validator.Prelude)
		if perr != nil {
			return schemaResult{err: perr}
		}
		docs = append([]*ast.SchemaDocument{prelude}, docs...)
		merged, err := mergeSchemaDocuments(docs, p.conflictResolver)
		return validateSchemaDocument(merged, err)
	})

	return p
}

// SetConflictResolver installs the resolver consulted when two schema
// files define a type of the same name. Must be called before the
// first Schema() read — schemaQ's result is cached once computed.
func (p *Project) SetConflictResolver(r ConflictResolver) {
	p.conflictResolver = r
}

// DB exposes the underlying database, e.g. for callers that want to
// take a Snapshot before issuing a batch of reads.
func (p *Project) DB() *engine.Database { return p.db }

// SchemaFileIDs returns the registry's current schema file id list.
func (p *Project) SchemaFileIDs() []registry.FileId {
	return p.pf.SchemaFileIDs.Get().IDs
}

// DocumentFileIDs returns the registry's current document file id
// list, in registration order.
func (p *Project) DocumentFileIDs() []registry.FileId {
	return p.pf.DocumentFileIDs.Get().IDs
}

// FileLookup returns the FileEntry for id, or false if unregistered.
// It is a plain read of the FileEntryMap input, not a tracked query of
// its own: a caller inside a query depends on that whole map cell
// (re-set by add, remove and batch calls, not by UpdateContent) and
// never on any file's content.
func (p *Project) FileLookup(id registry.FileId) (registry.FileEntry, bool) {
	entries := p.pf.FileEntryMap.Get().Entries
	e, ok := entries[id]
	return e, ok
}

// Parse returns the parsed blocks for file id.
func (p *Project) Parse(id registry.FileId) gqlparse.Parse {
	return p.parseQ.Get(p.db, id)
}

// FileStructure returns the per-file HIR for id.
func (p *Project) FileStructure(id registry.FileId) hir.FileStructureData {
	return p.structureQ.Get(p.db, id)
}

// SchemaTypes returns the project-merged type map.
func (p *Project) SchemaTypes() SchemaTypes {
	return p.schemaTypesQ.Get(p.db, struct{}{})
}

// AllFragments returns every document file's fragments, first-seen
// wins on name collision.
func (p *Project) AllFragments() AllFragments {
	return p.allFragmentsQ.Get(p.db, struct{}{})
}

// AllOperations returns every document file's operations, concatenated
// in DocumentFileIds order.
func (p *Project) AllOperations() AllOperations {
	return p.allOperationsQ.Get(p.db, struct{}{})
}

// FragmentSpreadsIndex returns, for each known fragment, the set of
// fragment names it directly spreads (no recursion — see TransitiveClosure for
// the transitive version).
func (p *Project) FragmentSpreadsIndex() SpreadsIndex {
	return p.spreadsIndexQ.Get(p.db, struct{}{})
}

// FragmentAST returns the AST document containing fragment name's
// definition, or nil if no such fragment is known.
func (p *Project) FragmentAST(name string) *FragmentAST {
	return p.fragmentASTQ.Get(p.db, name)
}

// OperationBody returns the selection-set AST for the operation at
// index within file id, or nil if not found. Keyed at per-file
// granularity: an edit to one operation's body in a file does not
// invalidate another file's OperationBody reads, since both transit the
// same parseQ keyed by FileId and gqlparse.Parse already isolates
// blocks by index.
func (p *Project) OperationBody(id registry.FileId, index int) *ast.OperationDefinition {
	parse := p.parseQ.Get(p.db, id)
	base := index / hir.BlockIndexOffset
	ordinal := index % hir.BlockIndexOffset
	if base >= len(parse.Blocks) {
		return nil
	}
	doc := parse.Blocks[base].QueryDoc
	if doc == nil || ordinal >= len(doc.Operations) {
		return nil
	}
	return doc.Operations[ordinal]
}

// FragmentBody returns the selection-set AST for fragment name, or nil.
func (p *Project) FragmentBody(name string) *ast.FragmentDefinition {
	fa := p.FragmentAST(name)
	if fa == nil {
		return nil
	}
	return fa.Def
}

// FragmentAST bundles a fragment's definition with the document it
// came from, so callers that need to add the whole document (e.g. the
// validator seeding a builder) have it in one hop.
type FragmentAST struct {
	FileID registry.FileId
	Def    *ast.FragmentDefinition
	Doc    *ast.QueryDocument
}
