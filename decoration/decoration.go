// Package decoration turns scan results into the ranges a renderer paints:
// bracket colors and the guides of the scope around the cursor.
package decoration

import (
	"fmt"
	"strings"

	"github.com/dhamidi/rainbow/bracket"
)

// Sink receives the decorations of one document. Calls for one document
// never overlap.
type Sink interface {
	// SetBracketDecorations replaces all bracket highlights. Every color
	// the document can produce is listed, empty ones included.
	SetBracketDecorations(groups []ColorGroup)
	// SetScopeDecorations replaces the active scope guides. A zero value
	// clears them.
	SetScopeDecorations(scope ScopeDecorations)
	// ReportError receives failures that left the decorations unchanged.
	ReportError(err error)
}

// ColorGroup is the full range list of one color.
type ColorGroup struct {
	Color  string          `json:"color"`
	Ranges []bracket.Range `json:"ranges"`
}

// BracketGroups groups the bracket ranges of doc by color, in the order
// the settings list the colors.
func BracketGroups(doc *bracket.Document) []ColorGroup {
	byColor := doc.ColorRanges()
	colors := doc.Settings().Colors()
	groups := make([]ColorGroup, 0, len(colors))
	for _, c := range colors {
		groups = append(groups, ColorGroup{Color: c, Ranges: byColor[c]})
	}
	return groups
}

type LinePosition int

const (
	Both LinePosition = iota
	Above
	Below
)

func (p LinePosition) String() string {
	switch p {
	case Above:
		return "above"
	case Below:
		return "below"
	default:
		return "both"
	}
}

func ParseLinePosition(s string) (LinePosition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return Both, nil
	case "above":
		return Above, nil
	case "below":
		return Below, nil
	}
	return 0, fmt.Errorf("unknown line position %q", s)
}

// Options selects which scope guides are produced.
type Options struct {
	HighlightActiveScope   bool
	ShowInGutter           bool
	ShowInRuler            bool
	ShowHorizontalLine     bool
	ShowVerticalLine       bool
	HorizontalLinePosition LinePosition
}

// ScopeDecorations are the guides of the active scope.
type ScopeDecorations struct {
	Color string `json:"color,omitempty"`
	// Brackets are the two bracket characters of the scope.
	Brackets []bracket.Range `json:"brackets,omitempty"`
	// Gutter and Ruler list the lines of the open and close brackets.
	Gutter []int `json:"gutter,omitempty"`
	Ruler  []int `json:"ruler,omitempty"`
	// Above runs over the open line, Below under the close line, from the
	// guide column to the bracket.
	Above []bracket.Range `json:"above,omitempty"`
	Below []bracket.Range `json:"below,omitempty"`
	// Vertical holds one empty range per line between the brackets, at the
	// guide column.
	Vertical []bracket.Range `json:"vertical,omitempty"`
}

func (s ScopeDecorations) Empty() bool {
	return len(s.Brackets) == 0 && len(s.Gutter) == 0 && len(s.Ruler) == 0 &&
		len(s.Above) == 0 && len(s.Below) == 0 && len(s.Vertical) == 0
}

// Scope computes the guides of sc over text.
func Scope(text bracket.TextSource, sc bracket.Scope, opts Options) ScopeDecorations {
	d := ScopeDecorations{Color: sc.Open.Color}
	if opts.HighlightActiveScope {
		d.Brackets = []bracket.Range{sc.OpenRange(), sc.CloseRange()}
	}
	lines := []int{sc.OpenLine}
	if sc.CloseLine != sc.OpenLine {
		lines = append(lines, sc.CloseLine)
	}
	if opts.ShowInGutter {
		d.Gutter = lines
	}
	if opts.ShowInRuler {
		d.Ruler = append([]int(nil), lines...)
	}
	if sc.CloseLine == sc.OpenLine {
		return d
	}

	col := guideColumn(text, sc)
	if opts.ShowHorizontalLine {
		if opts.HorizontalLinePosition != Below && col < sc.Open.End {
			d.Above = []bracket.Range{{
				Start: bracket.Position{Line: sc.OpenLine, Character: col},
				End:   bracket.Position{Line: sc.OpenLine, Character: sc.Open.End},
			}}
		}
		if opts.HorizontalLinePosition != Above && col < sc.Close.End {
			d.Below = []bracket.Range{{
				Start: bracket.Position{Line: sc.CloseLine, Character: col},
				End:   bracket.Position{Line: sc.CloseLine, Character: sc.Close.End},
			}}
		}
	}
	if opts.ShowVerticalLine {
		for l := sc.OpenLine + 1; l < sc.CloseLine; l++ {
			p := bracket.Position{Line: l, Character: col}
			d.Vertical = append(d.Vertical, bracket.Range{Start: p, End: p})
		}
	}
	return d
}

// guideColumn is the smallest indentation of the non-blank lines after the
// open line up to the close line, but never right of the open bracket.
func guideColumn(text bracket.TextSource, sc bracket.Scope) int {
	col := sc.Open.Begin
	for l := sc.OpenLine + 1; l <= sc.CloseLine && l < text.LineCount(); l++ {
		line := []rune(text.Line(l))
		indent := 0
		for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
			indent++
		}
		if indent == len(line) {
			continue
		}
		col = min(col, indent)
	}
	return col
}
