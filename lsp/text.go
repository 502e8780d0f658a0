package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/rainbow/bracket"
)

// Text is the content of an open document as lines. Positions on the wire
// count UTF-16 code units; the scanner counts runes.
type Text struct {
	lines []string
}

func NewText(content string) *Text {
	t := &Text{}
	t.Replace(content)
	return t
}

func (t *Text) LineCount() int { return len(t.lines) }

func (t *Text) Line(i int) string { return t.lines[i] }

func (t *Text) String() string { return strings.Join(t.lines, "\n") }

// Replace swaps the whole content.
func (t *Text) Replace(content string) {
	t.lines = strings.Split(content, "\n")
}

// Apply replaces the text between r's ends with content and returns the
// first line that changed.
func (t *Text) Apply(r protocol.Range, content string) int {
	start := t.clamp(r.Start)
	end := t.clamp(r.End)
	if end.Line < start.Line || (end.Line == start.Line && end.Character < start.Character) {
		start, end = end, start
	}

	first := []rune(t.lines[start.Line])
	last := []rune(t.lines[end.Line])
	joined := string(first[:start.Character]) + content + string(last[end.Character:])

	replacement := strings.Split(joined, "\n")
	lines := make([]string, 0, len(t.lines)-(end.Line-start.Line)+len(replacement)-1)
	lines = append(lines, t.lines[:start.Line]...)
	lines = append(lines, replacement...)
	lines = append(lines, t.lines[end.Line+1:]...)
	t.lines = lines
	return start.Line
}

// clamp converts p to a rune position inside the text.
func (t *Text) clamp(p protocol.Position) bracket.Position {
	line := int(p.Line)
	if line >= len(t.lines) {
		last := len(t.lines) - 1
		return bracket.Position{Line: last, Character: utf8.RuneCountInString(t.lines[last])}
	}
	return bracket.Position{Line: line, Character: t.runeOffset(line, int(p.Character))}
}

// runeOffset converts a UTF-16 offset in line to a rune offset. Offsets
// past the end, or inside a surrogate pair, round up.
func (t *Text) runeOffset(line, units int) int {
	n := 0
	runes := 0
	for _, r := range t.lines[line] {
		if n >= units {
			return runes
		}
		n += utf16.RuneLen(r)
		runes++
	}
	return runes
}

// utf16Offset converts a rune offset in line to UTF-16 code units.
func (t *Text) utf16Offset(line, runes int) int {
	if line < 0 || line >= len(t.lines) {
		return runes
	}
	n := 0
	i := 0
	for _, r := range t.lines[line] {
		if i == runes {
			break
		}
		n += utf16.RuneLen(r)
		i++
	}
	return n + (runes - i)
}

// ToRune converts a wire position to a scanner position.
func (t *Text) ToRune(p protocol.Position) bracket.Position {
	line := int(p.Line)
	if line >= len(t.lines) {
		return bracket.Position{Line: line, Character: int(p.Character)}
	}
	return bracket.Position{Line: line, Character: t.runeOffset(line, int(p.Character))}
}

// ToProtocol converts a scanner position to a wire position.
func (t *Text) ToProtocol(p bracket.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(t.utf16Offset(p.Line, p.Character)),
	}
}

func (t *Text) RangeToRune(r protocol.Range) bracket.Range {
	return bracket.Range{Start: t.ToRune(r.Start), End: t.ToRune(r.End)}
}

func (t *Text) RangeToProtocol(r bracket.Range) protocol.Range {
	return protocol.Range{Start: t.ToProtocol(r.Start), End: t.ToProtocol(r.End)}
}
