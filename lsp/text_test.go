package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/rainbow/bracket"
)

func pos(line, char int) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

func span(l1, c1, l2, c2 int) protocol.Range {
	return protocol.Range{Start: pos(l1, c1), End: pos(l2, c2)}
}

func TestText_Apply(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		r       protocol.Range
		content string
		want    string
		lowest  int
	}{
		{"insert", "f()", span(0, 2, 0, 2), "x", "f(x)", 0},
		{"delete line break", "a\nb\nc", span(0, 1, 1, 0), "", "ab\nc", 0},
		{"insert lines", "a\nb", span(1, 0, 1, 0), "(\n)\n", "a\n(\n)\nb", 1},
		{"replace across lines", "a(\nb\n)c", span(0, 1, 2, 1), "[]", "a[]c", 0},
		{"past the end", "a", span(5, 0, 5, 0), "\n)", "a\n)", 0},
		{"reversed range", "abc", span(0, 2, 0, 1), "", "ac", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := NewText(tt.initial)
			lowest := text.Apply(tt.r, tt.content)
			require.Equal(t, tt.want, text.String())
			require.Equal(t, tt.lowest, lowest)
		})
	}
}

func TestText_UTF16(t *testing.T) {
	// 'é' is one code unit, '😀' two.
	text := NewText("é😀(x)")

	require.Equal(t, bracket.Position{Line: 0, Character: 2}, text.ToRune(pos(0, 3)))
	require.Equal(t, pos(0, 3), text.ToProtocol(bracket.Position{Line: 0, Character: 2}))
	require.Equal(t, pos(0, 6), text.ToProtocol(bracket.Position{Line: 0, Character: 5}))

	// Inside the surrogate pair rounds up to the next rune.
	require.Equal(t, bracket.Position{Line: 0, Character: 2}, text.ToRune(pos(0, 2)))

	text.Apply(span(0, 4, 0, 5), "y😀")
	require.Equal(t, "é😀(y😀)", text.String())
}

func TestText_PositionsPastTheEnd(t *testing.T) {
	text := NewText("ab")
	require.Equal(t, bracket.Position{Line: 0, Character: 2}, text.ToRune(pos(0, 9)))
	require.Equal(t, pos(0, 4), text.ToProtocol(bracket.Position{Line: 0, Character: 4}))
	require.Equal(t, pos(3, 1), text.ToProtocol(bracket.Position{Line: 3, Character: 1}))
}
