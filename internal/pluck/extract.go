// Package pluck implements the Extractor (C3): pulling embedded GraphQL
// template literals out of TypeScript/JavaScript source. It is a direct
// generalization of a scanner-based tagged-template/comment extractor —
// the scanning primitives (scanner, scanForComment, scanForTaggedTemplate,
// matchesTag) keep their original shape, but classification now follows
// the configured tag/module/magic-comment rules instead of a fixed tag
// list, and interpolations are replaced with fixed-length placeholders
// so downstream offsets into `source` stay meaningful (invariant I4).
package pluck

import (
	"bytes"
	"regexp"

	"github.com/agnivade/levenshtein"
)

// ExtractedGraphQL is one GraphQL-classified template literal pulled out
// of a TS/JS host file.
type ExtractedGraphQL struct {
	Source string
	// Offset is the byte offset of the literal's content start in the
	// host source.
	Offset int
	// Line, Character are the (0-based) start line/column of the
	// literal's content in the host source.
	Line      int
	Character int
	Length    int
}

// Config is the Extractor's configuration surface (spec.md §4.3).
type Config struct {
	// TagIdentifiers are tagged-template tag names that carry GraphQL
	// (e.g. "gql", "graphql"). Empty is allowed: then only
	// MagicComment-preceded literals are classified.
	TagIdentifiers []string
	// Modules are import-source identifiers a tag must come from,
	// unless AllowGlobalIdentifiers is set.
	Modules []string
	// AllowGlobalIdentifiers recognizes a tag without checking whether
	// it was imported from one of Modules.
	AllowGlobalIdentifiers bool
	// MagicComment, if non-empty, is a pragma comment that marks the
	// immediately following plain template literal as GraphQL even
	// without a tag.
	MagicComment string
}

// DefaultConfig mirrors the common `gql`/`graphql` tag convention.
func DefaultConfig() Config {
	return Config{
		TagIdentifiers:         []string{"gql", "graphql"},
		AllowGlobalIdentifiers: true,
		MagicComment:           "GraphQL",
	}
}

// placeholderRune fills interpolation spans; any single-byte filler
// works since only the byte length of the placeholder needs to match
// the original `${...}` span for offset-preservation, and this one
// cannot itself be mistaken for meaningful GraphQL syntax.
const placeholderRune = '_'

// Extractor scans TS/JS source for GraphQL-classified template
// literals per Config.
type Extractor struct {
	cfg             Config
	commentPattern  *regexp.Regexp
	importedModules map[string]bool // tag identifiers confirmed imported from an allowed module, per-file state reset by Extract
}

// New creates an Extractor bound to cfg.
func New(cfg Config) *Extractor {
	e := &Extractor{cfg: cfg}
	if cfg.MagicComment != "" {
		e.commentPattern = regexp.MustCompile(`(?:/\*\s*` + regexp.QuoteMeta(cfg.MagicComment) + `\s*\*/|#\s*` + regexp.QuoteMeta(cfg.MagicComment) + `)`)
	}
	return e
}

// Extract scans content (the full text of one TS/JS file) and returns
// every GraphQL-classified template literal it finds, in source order.
func (e *Extractor) Extract(content string) []ExtractedGraphQL {
	e.importedModules = scanImports(content, e.cfg.Modules)

	s := newScanner(content)
	var out []ExtractedGraphQL

	for !s.done() {
		if e.cfg.MagicComment != "" {
			if g := e.scanForComment(s); g != nil {
				out = append(out, *g)
				continue
			}
		}
		if g := e.scanForTaggedTemplate(s); g != nil {
			out = append(out, *g)
			continue
		}
		s.advance()
	}
	return out
}

// SuggestTag returns the configured tag identifier closest (by
// Levenshtein edit distance, at most 2) to seen, for a "did you mean
// `gql`?" hint on a near-miss tag name. Extract does not call it.
func (e *Extractor) SuggestTag(seen string) (string, bool) {
	best := ""
	bestDist := -1
	for _, tag := range e.cfg.TagIdentifiers {
		d := levenshtein.ComputeDistance(seen, tag)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = tag
		}
	}
	if bestDist < 0 || bestDist > 2 {
		return "", false
	}
	return best, true
}

// scanImports does a shallow textual scan for
// `import { tag } from 'module'` / `import tag from 'module'` forms
// (`require('module')` calls are not recognized), returning the set of tag
// identifiers confirmed to originate from one of modules. This is
// intentionally not a full module resolver: the Extractor only needs to
// know whether a tag identifier's *name* was ever imported from an
// allowed module somewhere in the file.
func scanImports(content string, modules []string) map[string]bool {
	confirmed := make(map[string]bool)
	if len(modules) == 0 {
		return confirmed
	}
	moduleSet := make(map[string]bool, len(modules))
	for _, m := range modules {
		moduleSet[m] = true
	}

	importRe := regexp.MustCompile(`import\s*\{([^}]*)\}\s*from\s*['"]([^'"]+)['"]`)
	for _, m := range importRe.FindAllStringSubmatch(content, -1) {
		if !moduleSet[m[2]] {
			continue
		}
		for _, name := range regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`).FindAllString(m[1], -1) {
			confirmed[name] = true
		}
	}
	defaultImportRe := regexp.MustCompile(`import\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*from\s*['"]([^'"]+)['"]`)
	for _, m := range defaultImportRe.FindAllStringSubmatch(content, -1) {
		if moduleSet[m[2]] {
			confirmed[m[1]] = true
		}
	}
	return confirmed
}

func (e *Extractor) tagIsClassifiable(tag string) bool {
	if e.cfg.AllowGlobalIdentifiers {
		return true
	}
	return e.importedModules[tag]
}

// scanForComment looks for MagicComment immediately preceding a plain
// template literal.
func (e *Extractor) scanForComment(s *scanner) *ExtractedGraphQL {
	s.skipWhitespace()
	remaining := string(s.content[s.pos:])
	loc := e.commentPattern.FindStringIndex(remaining)
	if loc == nil || loc[0] != 0 {
		return nil
	}
	commentEnd := s.pos + loc[1]
	for s.pos < commentEnd {
		s.advance()
	}
	s.skipWhitespace()
	if s.current() != '`' {
		return nil
	}
	return e.readTemplateLiteral(s)
}

// scanForTaggedTemplate looks for `tag\`...\`` or `tag(\`...\`)` where
// tag is classifiable per the current configuration.
func (e *Extractor) scanForTaggedTemplate(s *scanner) *ExtractedGraphQL {
	s.skipWhitespace()
	for _, tag := range e.cfg.TagIdentifiers {
		if !matchesTag(s, tag) {
			continue
		}
		if !e.tagIsClassifiable(tag) {
			continue
		}
		for i := 0; i < len(tag); i++ {
			s.advance()
		}
		s.skipWhitespace()
		hasParens := false
		if s.current() == '(' {
			hasParens = true
			s.advance()
			s.skipWhitespace()
		}
		if s.current() != '`' {
			continue
		}
		extracted := e.readTemplateLiteral(s)
		if hasParens {
			s.skipWhitespace()
			if s.current() == ')' {
				s.advance()
			}
		}
		return extracted
	}
	return nil
}

// readTemplateLiteral consumes a backtick-delimited template literal
// starting at the opening backtick, replacing `${...}` interpolations
// with a same-length placeholder run so offsets computed against
// `source` still land on the right host-file position (invariant I4).
func (e *Extractor) readTemplateLiteral(s *scanner) *ExtractedGraphQL {
	startOffset := s.pos + 1 // past the opening backtick
	startLine, startChar := s.line, s.column+1 // content column, past the backtick
	s.advance() // opening backtick

	var content bytes.Buffer
	for !s.done() && s.current() != '`' {
		switch {
		case s.current() == '\\' && s.peek(1) == '`':
			content.WriteByte('`')
			s.advance()
			s.advance()
		case s.current() == '$' && s.peek(1) == '{':
			depth := 1
			interpStart := s.pos
			s.advance()
			s.advance()
			for !s.done() && depth > 0 {
				switch s.current() {
				case '{':
					depth++
				case '}':
					depth--
				}
				s.advance()
			}
			span := s.pos - interpStart
			for i := 0; i < span; i++ {
				content.WriteRune(placeholderRune)
			}
		default:
			content.WriteByte(s.current())
			s.advance()
		}
	}
	if s.current() == '`' {
		s.advance()
	}

	return &ExtractedGraphQL{
		Source:    content.String(),
		Offset:    startOffset,
		Line:      startLine,
		Character: startChar,
		Length:    content.Len(),
	}
}
