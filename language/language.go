// Package language holds the scope-pattern tables that tell the bracket
// scanner where comments and strings begin and end, and picks the table
// for a document.
package language

import (
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/dhamidi/rainbow/bracket"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("rainbow.language")

// Language is a named scope-pattern table.
type Language struct {
	Name    string
	Aliases []string
	Scopes  []bracket.ScopePattern
}

// Table maps language names and aliases to languages. Keys are case
// insensitive.
type Table struct {
	languages map[string]*Language
	aliases   map[string]string
}

func NewTable(langs ...Language) *Table {
	t := &Table{
		languages: make(map[string]*Language),
		aliases:   make(map[string]string),
	}
	for _, l := range langs {
		t.Add(l)
	}
	return t
}

// Builtin returns a fresh table of the built-in languages.
func Builtin() *Table {
	return NewTable(builtin()...)
}

// Add registers l, replacing any language of the same name. Aliases of the
// replaced language that l does not repeat keep pointing at l.
func (t *Table) Add(l Language) {
	name := key(l.Name)
	copied := l
	copied.Scopes = append([]bracket.ScopePattern(nil), l.Scopes...)
	t.languages[name] = &copied
	t.aliases[name] = name
	for _, a := range l.Aliases {
		t.aliases[key(a)] = name
	}
}

// Lookup finds a language by name or alias.
func (t *Table) Lookup(name string) (Language, bool) {
	canonical, ok := t.aliases[key(name)]
	if !ok {
		return Language{}, false
	}
	l, ok := t.languages[canonical]
	if !ok {
		return Language{}, false
	}
	return *l, true
}

// Names lists the canonical language names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.languages))
	for _, l := range t.languages {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

// Detect picks the language of a document. The editor's language id wins,
// then the lexer registered for the file name, then content analysis.
// Detect reports false when nothing matches; such documents are scanned
// for brackets only.
func (t *Table) Detect(languageID, filename, content string) (Language, bool) {
	if languageID != "" {
		if l, ok := t.Lookup(languageID); ok {
			return l, true
		}
	}
	if filename != "" {
		if l, ok := t.fromLexer(lexers.Match(filename)); ok {
			return l, true
		}
	}
	if content != "" {
		if l, ok := t.fromLexer(lexers.Analyse(content)); ok {
			return l, true
		}
	}
	log.Debugf("no language for id %q, file %q", languageID, filename)
	return Language{}, false
}

func (t *Table) fromLexer(lexer chroma.Lexer) (Language, bool) {
	if lexer == nil {
		return Language{}, false
	}
	cfg := lexer.Config()
	if l, ok := t.Lookup(cfg.Name); ok {
		return l, true
	}
	for _, a := range cfg.Aliases {
		if l, ok := t.Lookup(a); ok {
			return l, true
		}
	}
	return Language{}, false
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
