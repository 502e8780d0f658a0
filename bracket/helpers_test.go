package bracket

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	threeColors = []string{"Gold", "Orchid", "LightSkyBlue"}
)

// consecutiveSettings builds one type per pair sharing colors.
func consecutiveSettings(colors []string, pairs ...string) *Settings {
	s := &Settings{Mode: Consecutive}
	for i, p := range pairs {
		r := []rune(p)
		s.Types = append(s.Types, BracketType{
			ID:          TypeID(i),
			Open:        string(r[0]),
			Close:       string(r[1]),
			Colors:      colors,
			OrphanColor: "Red",
		})
	}
	return s
}

func independentSettings(pairs map[string][]string, order ...string) *Settings {
	s := &Settings{Mode: Independent}
	for i, p := range order {
		r := []rune(p)
		s.Types = append(s.Types, BracketType{
			ID:          TypeID(i),
			Open:        string(r[0]),
			Close:       string(r[1]),
			Colors:      pairs[p],
			OrphanColor: "Red",
		})
	}
	return s
}

func cStyleScopes() []ScopePattern {
	return []ScopePattern{
		{Name: "comment", Opener: "//"},
		{Name: "comment", Opener: "/*", Closer: "*/"},
		{Name: "string", Opener: `"`, Closer: `"`, Escape: `\`},
	}
}

// editableText is a mutable TextSource.
type editableText struct {
	lines []string
}

func newText(text string) *editableText {
	return &editableText{lines: strings.Split(text, "\n")}
}

func (t *editableText) LineCount() int { return len(t.lines) }

func (t *editableText) Line(i int) string { return t.lines[i] }

func (t *editableText) replace(i int, text string) {
	t.lines[i] = text
}

func (t *editableText) insert(i int, text string) {
	t.lines = append(t.lines[:i], append([]string{text}, t.lines[i:]...)...)
}

func (t *editableText) remove(i int) {
	t.lines = append(t.lines[:i], t.lines[i+1:]...)
}

func scan(t testing.TB, s *Settings, text string) *Document {
	t.Helper()
	doc, err := NewDocument(Lines(strings.Split(text, "\n")), s, nil)
	require.NoError(t, err)
	require.NoError(t, doc.Update())
	return doc
}

func lineColors(doc *Document, line int) []string {
	var colors []string
	for _, r := range doc.LineRanges(line) {
		colors = append(colors, r.Color)
	}
	return colors
}

func lineBegins(doc *Document, line int) []int {
	var begins []int
	for _, r := range doc.LineRanges(line) {
		begins = append(begins, r.Begin)
	}
	return begins
}

// allRanges flattens every line's ranges, for comparing two documents.
func allRanges(doc *Document) [][]ColorRange {
	out := make([][]ColorRange, len(doc.Lines()))
	for i := range out {
		out[i] = append([]ColorRange{}, doc.LineRanges(i)...)
	}
	return out
}

// partners describes the partner of every bracket as "line:column", or ""
// when it has none.
func partners(doc *Document) [][]string {
	out := make([][]string, len(doc.Lines()))
	for i, l := range doc.Lines() {
		out[i] = []string{}
		for k := range l.Brackets {
			p := ""
			if b, line, ok := doc.Partner(Ref{Line: l.ID, Index: k}); ok {
				p = fmt.Sprintf("%d:%d", line, b.Begin)
			}
			out[i] = append(out[i], p)
		}
	}
	return out
}
