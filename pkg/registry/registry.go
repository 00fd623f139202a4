// Package registry implements the File Registry (C2): the boundary
// between editor/CLI edits and the query engine's Input cells. Every
// edit is expressed as Set calls on engine.Input cells: UpdateContent
// sets only the edited file's content cell, and AddFile of a new URI
// sets the FileEntryMap and the one identity list the file joins.
// RemoveFile, AddFilesBatch and RebuildProjectFiles re-set the
// FileEntryMap and both identity lists, including a list whose contents
// did not change; since every Set advances the revision, queries that
// read that list recompute.
package registry

import (
	"fmt"
	"sync"

	"github.com/graphlang/gqlanalyzer/pkg/engine"
)

// FileId is an opaque, small, stable identifier for a registered file.
// It is never reused within a session even after the file is removed.
type FileId uint32

func (id FileId) String() string { return fmt.Sprintf("file#%d", id) }

// FileUri is the file's URI: file://, schema:// (virtual, introspected
// schemas), or a workspace-relative path.
type FileUri string

// Language classifies the source syntax a file's content is written in.
type Language int

const (
	LanguageGraphQL Language = iota
	LanguageTypeScript
	LanguageJavaScript
)

func (l Language) String() string {
	switch l {
	case LanguageGraphQL:
		return "graphql"
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// RequiresExtraction reports whether a file of this language needs the
// Extractor (C3) to pull GraphQL blocks out of surrounding source,
// rather than being parsed directly as GraphQL.
func (l Language) RequiresExtraction() bool {
	return l == LanguageTypeScript || l == LanguageJavaScript
}

// DocumentKind classifies a file's role in the project: Schema files
// define types, Executable files contain operations and fragments.
type DocumentKind int

const (
	DocumentKindSchema DocumentKind = iota
	DocumentKindExecutable
)

// FileMetadata is the identity-level information about a registered
// file: everything except its text, which lives in its own FileEntry
// content cell so that content edits never touch metadata.
type FileMetadata struct {
	FileID       FileId
	URI          FileUri
	Language     Language
	DocumentKind DocumentKind
	// LineOffset shifts positions back to an outer original file (see
	// posmap.ToOriginal). AddFile and AddFilesBatch never set it, so it
	// is 0 for every registered file.
	LineOffset int
}

// FileEntry pairs a file's content input cell with its (immutable for
// the entry's lifetime) metadata.
type FileEntry struct {
	Content  engine.Input[string]
	Metadata FileMetadata
}

// FileEntryMap is the identity-level map from FileId to FileEntry. Its
// *key set* only changes on add_file/remove_file, never on
// update_content, so queries that only need to enumerate files (not
// read their contents) are insulated from content edits.
type FileEntryMap struct {
	Entries map[FileId]FileEntry
}

// SchemaFileIds and DocumentFileIds are ordered identity lists,
// classified by DocumentKind. They change only when files are
// added/removed, never on content edits — the granularity invariant
// that keeps "list of document files"-shaped queries from being
// invalidated by every keystroke.
type SchemaFileIds struct{ IDs []FileId }
type DocumentFileIds struct{ IDs []FileId }

// ProjectFiles is the triple that every project-wide tracked query
// (pkg/project) takes as its argument: the two identity lists plus the
// file-entry map, wrapped as engine.Input cells so edits to any one of
// them invalidate only the queries that actually read it.
type ProjectFiles struct {
	SchemaFileIDs   engine.Input[SchemaFileIds]
	DocumentFileIDs engine.Input[DocumentFileIds]
	FileEntryMap    engine.Input[FileEntryMap]
}

// Registry owns the interning table and the ProjectFiles input cells.
// It is the sole writer of those cells; callers never construct
// engine.Input values themselves.
type Registry struct {
	db *engine.Database

	mu      sync.Mutex
	byURI   map[FileUri]FileId
	nextID  FileId
	entries map[FileId]FileEntry
	order   []FileId // insertion order, so identity lists stay deterministic across rebuilds

	project ProjectFiles
}

// New creates an empty registry backed by db.
func New(db *engine.Database) *Registry {
	r := &Registry{
		db:      db,
		byURI:   make(map[FileUri]FileId),
		entries: make(map[FileId]FileEntry),
	}
	r.project = ProjectFiles{
		SchemaFileIDs:   engine.NewInput(db, SchemaFileIds{}),
		DocumentFileIDs: engine.NewInput(db, DocumentFileIds{}),
		FileEntryMap:    engine.NewInput(db, FileEntryMap{Entries: map[FileId]FileEntry{}}),
	}
	return r
}

// ProjectFiles returns the current ProjectFiles handle. The returned
// value's Input cells are stable for the registry's lifetime; only
// their contents change.
func (r *Registry) ProjectFiles() ProjectFiles { return r.project }

// AddFile interns uri to a FileId (reusing the existing one if uri was
// already registered — re-adding an open file is an update_content, not
// a fresh identity), creates its FileEntry, and appends the id to the
// appropriate identity list.
func (r *Registry) AddFile(uri FileUri, content string, lang Language, kind DocumentKind) FileId {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addFileLocked(uri, content, lang, kind)
}

func (r *Registry) addFileLocked(uri FileUri, content string, lang Language, kind DocumentKind) FileId {
	if id, ok := r.byURI[uri]; ok {
		r.updateContentLocked(id, content)
		return id
	}

	id := r.nextID
	r.nextID++
	r.byURI[uri] = id

	entry := FileEntry{
		Content: engine.NewInput(r.db, content),
		Metadata: FileMetadata{
			FileID:       id,
			URI:          uri,
			Language:     lang,
			DocumentKind: kind,
		},
	}
	r.entries[id] = entry
	r.order = append(r.order, id)
	r.commitEntries()
	r.appendToIdentityList(id, kind)
	return id
}

// AddFilesBatch adds every file in files, updating the identity lists
// exactly once at the end rather than once per file, while still
// giving each file its own independently-revisable content cell.
func (r *Registry) AddFilesBatch(files []BatchFile) []FileId {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]FileId, 0, len(files))
	for _, f := range files {
		if _, ok := r.byURI[f.URI]; ok {
			r.updateContentLocked(r.byURI[f.URI], f.Content)
			ids = append(ids, r.byURI[f.URI])
			continue
		}
		id := r.nextID
		r.nextID++
		r.byURI[f.URI] = id
		r.entries[id] = FileEntry{
			Content: engine.NewInput(r.db, f.Content),
			Metadata: FileMetadata{
				FileID:       id,
				URI:          f.URI,
				Language:     f.Language,
				DocumentKind: f.DocumentKind,
			},
		}
		r.order = append(r.order, id)
		ids = append(ids, id)
	}
	r.commitEntries()
	r.rebuildIdentityLists()
	return ids
}

// BatchFile is one file in an AddFilesBatch call.
type BatchFile struct {
	URI          FileUri
	Content      string
	Language     Language
	DocumentKind DocumentKind
}

// UpdateContent sets exactly the named file's content; it never touches
// the FileEntryMap's key set or either identity list, so project-wide
// identity queries are not invalidated by this call.
func (r *Registry) UpdateContent(id FileId, newText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateContentLocked(id, newText)
}

func (r *Registry) updateContentLocked(id FileId, newText string) {
	entry, ok := r.entries[id]
	if !ok {
		panic(fmt.Sprintf("registry: update_content on unknown %s", id))
	}
	entry.Content.Set(newText)
}

// RemoveFile drops the FileEntry for id from the map and removes it
// from whichever identity list it belonged to.
func (r *Registry) RemoveFile(id FileId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return
	}
	delete(r.byURI, entry.Metadata.URI)
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.commitEntries()
	r.rebuildIdentityLists()
}

// RebuildProjectFiles is the idempotent commit point after a sequence
// of batch edits made outside of AddFilesBatch (e.g. direct mutation of
// entries during a test harness). It simply re-derives and re-sets the
// identity lists and map from current state; calling it with no
// intervening edits is a no-op in value, though it still bumps the
// engine's revision counter once per cell re-set.
func (r *Registry) RebuildProjectFiles() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitEntries()
	r.rebuildIdentityLists()
}

func (r *Registry) commitEntries() {
	snapshot := make(map[FileId]FileEntry, len(r.entries))
	for id, e := range r.entries {
		snapshot[id] = e
	}
	r.project.FileEntryMap.Set(FileEntryMap{Entries: snapshot})
}

func (r *Registry) appendToIdentityList(id FileId, kind DocumentKind) {
	switch kind {
	case DocumentKindSchema:
		cur := r.project.SchemaFileIDs.Get()
		cur.IDs = append(append([]FileId{}, cur.IDs...), id)
		r.project.SchemaFileIDs.Set(cur)
	case DocumentKindExecutable:
		cur := r.project.DocumentFileIDs.Get()
		cur.IDs = append(append([]FileId{}, cur.IDs...), id)
		r.project.DocumentFileIDs.Set(cur)
	}
}

func (r *Registry) rebuildIdentityLists() {
	var schemaIDs, docIDs []FileId
	for _, id := range r.order {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		switch e.Metadata.DocumentKind {
		case DocumentKindSchema:
			schemaIDs = append(schemaIDs, id)
		case DocumentKindExecutable:
			docIDs = append(docIDs, id)
		}
	}
	r.project.SchemaFileIDs.Set(SchemaFileIds{IDs: schemaIDs})
	r.project.DocumentFileIDs.Set(DocumentFileIds{IDs: docIDs})
}

// Lookup resolves uri to its interned FileId, if registered.
func (r *Registry) Lookup(uri FileUri) (FileId, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byURI[uri]
	return id, ok
}
