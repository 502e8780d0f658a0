package bracket

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDocument_FullRescanIsIdempotent(t *testing.T) {
	s := contextual(consecutiveSettings(threeColors, "()", "[]", "{}"), cStyleScopes())
	text := "func f(a []int) {\n\t/* ( */ g(\"}\")\n\tif x { y[0] }\n}\n)"

	doc := scan(t, s, text)
	before := allRanges(doc)

	doc.MarkDirty(0)
	require.NoError(t, doc.Update())
	require.Equal(t, before, allRanges(doc))
}

func TestDocument_ReuseKeepsUnchangedSuffix(t *testing.T) {
	s := consecutiveSettings(threeColors, "()", "[]")
	text := newText("f(\n  g[x]\n  h[y]\n)\nz")
	doc, err := NewDocument(text, s, nil)
	require.NoError(t, err)
	require.NoError(t, doc.Update())

	before := append([]*LineResult(nil), doc.Lines()...)

	text.replace(1, "  g[xx]")
	doc.MarkDirty(1)
	require.NoError(t, doc.Update())

	after := doc.Lines()
	require.Len(t, after, 5)
	require.Same(t, before[0], after[0])
	require.NotSame(t, before[1], after[1])
	require.Equal(t, before[1].ID, after[1].ID)
	for k := 2; k < 5; k++ {
		require.Same(t, before[k], after[k], "line %d was re-scanned", k)
	}
	require.Equal(t, []string{"Gold"}, lineColors(doc, 3))
}

func TestDocument_ChangedEndStateRescansSuffix(t *testing.T) {
	s := consecutiveSettings(threeColors, "()", "[]")
	text := newText("f(\n  g[x]\n)\nz")
	doc, err := NewDocument(text, s, nil)
	require.NoError(t, err)
	require.NoError(t, doc.Update())
	before := append([]*LineResult(nil), doc.Lines()...)

	text.replace(1, "  g[x")
	doc.MarkDirty(1)
	require.NoError(t, doc.Update())

	after := doc.Lines()
	require.NotSame(t, before[2], after[2])
	require.Equal(t, []string{"Red"}, lineColors(doc, 2))
	require.Equal(t, []string{"Red"}, lineColors(doc, 0), "the open paren is now unclosed")
	require.Equal(t, "Gold", doc.Lines()[0].Ranges[0].Color)
	require.Equal(t, allRanges(scan(t, s, strings.Join(text.lines, "\n"))), allRanges(doc))
}

func TestDocument_InsertAndDeleteLines(t *testing.T) {
	s := consecutiveSettings(threeColors, "()", "[]", "{}")
	text := newText("{\n  a(\n  )\n}\n[x]")
	doc, err := NewDocument(text, s, nil)
	require.NoError(t, err)
	require.NoError(t, doc.Update())

	text.insert(2, "  [b]")
	doc.MarkDirty(2)
	require.NoError(t, doc.Update())
	require.Equal(t, allRanges(scan(t, s, strings.Join(text.lines, "\n"))), allRanges(doc))
	require.Len(t, doc.Lines(), 6)

	text.remove(0)
	doc.MarkDirty(0)
	require.NoError(t, doc.Update())
	require.Equal(t, allRanges(scan(t, s, strings.Join(text.lines, "\n"))), allRanges(doc))
	require.Equal(t, []string{"Red"}, lineColors(doc, 3), "the brace lost its opener")

	text.remove(len(text.lines) - 1)
	doc.MarkDirty(len(text.lines))
	require.NoError(t, doc.Update())
	require.Len(t, doc.Lines(), 4)
}

func TestDocument_GetLineSynthesizesMissingLines(t *testing.T) {
	doc := scan(t, consecutiveSettings(threeColors, "()"), "(\n")

	line := doc.GetLine(4)
	require.NotNil(t, line)
	require.True(t, line.Synthetic())
	require.Empty(t, line.Brackets)
	require.Equal(t, 5, doc.LineCount())
	require.Len(t, doc.Lines(), 2)
	require.True(t, line.End.Equal(doc.Lines()[1].End))
	require.Equal(t, 1, line.End.Colors.Depth(0))

	require.Nil(t, doc.GetLine(-1))
	require.Same(t, doc.Lines()[0], doc.GetLine(0))

	// The next scan replaces synthetic lines.
	doc.MarkDirty(0)
	require.NoError(t, doc.Update())
	require.Equal(t, 2, doc.LineCount())
}

func TestDocument_DirtyWatermarkOnlyDecreases(t *testing.T) {
	text := newText("a\nb\nc\nd\ne\nf\ng\nh")
	doc, err := NewDocument(text, consecutiveSettings(threeColors, "()"), nil)
	require.NoError(t, err)

	line, dirty := doc.DirtyLine()
	require.True(t, dirty)
	require.Equal(t, 0, line)
	require.NoError(t, doc.Update())

	_, dirty = doc.DirtyLine()
	require.False(t, dirty)

	for _, l := range []int{5, 2, 7, 3} {
		doc.MarkDirty(l)
	}
	line, dirty = doc.DirtyLine()
	require.True(t, dirty)
	require.Equal(t, 2, line)

	require.NoError(t, doc.Update())
	_, dirty = doc.DirtyLine()
	require.False(t, dirty)
	require.NoError(t, doc.Update(), "update with nothing dirty is a no-op")
}

type failingTokenizer struct {
	*PatternTokenizer
	trigger string
}

func (f failingTokenizer) TokenizeLine(text string, state RuleState) (RuleState, []Span, error) {
	if strings.Contains(text, f.trigger) {
		return nil, nil, errors.New("malformed input")
	}
	return f.PatternTokenizer.TokenizeLine(text, state)
}

func TestDocument_ScanFailureKeepsLastGoodResults(t *testing.T) {
	s := consecutiveSettings(threeColors, "()")
	pt, err := NewPatternTokenizer(s)
	require.NoError(t, err)

	text := newText("(\nx\n)")
	doc, err := NewDocument(text, s, failingTokenizer{PatternTokenizer: pt, trigger: "BOOM"})
	require.NoError(t, err)
	require.NoError(t, doc.Update())
	before := append([]*LineResult(nil), doc.Lines()...)

	text.replace(1, "BOOM")
	doc.MarkDirty(1)
	err = doc.Update()

	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	require.Equal(t, 1, scanErr.Line)
	require.Equal(t, before, doc.Lines())

	// The next edit rescans the whole document.
	text.replace(1, "y")
	doc.MarkDirty(1)
	require.NoError(t, doc.Update())
	require.NotSame(t, before[0], doc.Lines()[0])
	require.Equal(t, allRanges(scan(t, s, "(\ny\n)")), allRanges(doc))
}

func TestDocument_ScanFailureLeavesLinksUntouched(t *testing.T) {
	s := consecutiveSettings(threeColors, "()")
	pt, err := NewPatternTokenizer(s)
	require.NoError(t, err)

	text := newText("(\nx\ny")
	doc, err := NewDocument(text, s, failingTokenizer{PatternTokenizer: pt, trigger: "BOOM"})
	require.NoError(t, err)
	require.NoError(t, doc.Update())
	open := Ref{Line: doc.Lines()[0].ID, Index: 0}

	text.replace(1, ")")
	text.replace(2, "BOOM")
	doc.MarkDirty(1)
	require.Error(t, doc.Update())

	require.False(t, doc.Lines()[0].Brackets[0].Pair.Valid())
	_, _, ok := doc.Partner(open)
	require.False(t, ok)
	require.True(t, doc.IsUnclosed(open))
}

func TestLineResult_ClosedBrackets(t *testing.T) {
	doc := scan(t, consecutiveSettings(threeColors, "()", "[]"), "(() ]\n)")
	line := doc.Lines()[0]
	require.Equal(t, []int{2}, line.ClosedBrackets())
	require.Equal(t, []int{0}, doc.Lines()[1].ClosedBrackets())

	require.False(t, doc.IsUnclosed(Ref{Line: line.ID, Index: 0}))
	require.False(t, doc.IsUnclosed(Ref{Line: line.ID, Index: 1}))
}

func TestDocument_IsUnclosed(t *testing.T) {
	doc := scan(t, consecutiveSettings(threeColors, "()"), "(()")
	id := doc.Lines()[0].ID
	require.True(t, doc.IsUnclosed(Ref{Line: id, Index: 0}))
	require.False(t, doc.IsUnclosed(Ref{Line: id, Index: 1}))
	require.Equal(t, []string{"Red", "Orchid", "Orchid"}, lineColors(doc, 0))
}

func TestDocument_RejectsInvalidSettings(t *testing.T) {
	s := consecutiveSettings(threeColors, "()", "[]")
	s.Types[1].Colors = []string{"Blue"}

	_, err := NewDocument(Lines{"()"}, s, nil)
	require.Error(t, err)

	_, err = NewDocument(Lines{"()"}, &Settings{}, nil)
	require.Error(t, err)
}

var editAlphabet = []rune("()[]{}\"/* \\ax")

func genLine(rt *rapid.T, label string) string {
	n := rapid.IntRange(0, 12).Draw(rt, label+"-len")
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = rapid.SampledFrom(editAlphabet).Draw(rt, label+"-char")
	}
	return string(runes)
}

func fullScan(rt *rapid.T, s *Settings, lines []string) *Document {
	doc, err := NewDocument(Lines(append([]string(nil), lines...)), s, nil)
	require.NoError(rt, err)
	require.NoError(rt, doc.Update())
	return doc
}

func TestDocument_IncrementalMatchesFullScan(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := consecutiveSettings(threeColors, "()", "[]", "{}")
		s.Mode = rapid.SampledFrom([]ColorMode{Consecutive, Independent}).Draw(rt, "mode")
		s.ForceUniqueOpeningColor = rapid.Bool().Draw(rt, "unique")
		s.ForceIterationColorCycle = rapid.Bool().Draw(rt, "iterate")
		if rapid.Bool().Draw(rt, "contextual") {
			s.ContextualParsing = true
			s.Scopes = cStyleScopes()
		}

		text := &editableText{}
		for i, n := 0, rapid.IntRange(1, 8).Draw(rt, "lines"); i < n; i++ {
			text.lines = append(text.lines, genLine(rt, "line"))
		}
		doc, err := NewDocument(text, s, nil)
		require.NoError(rt, err)
		require.NoError(rt, doc.Update())

		edits := rapid.IntRange(1, 6).Draw(rt, "edits")
		for e := 0; e < edits; e++ {
			// Several edits may be coalesced into one update.
			for b, burst := 0, rapid.IntRange(1, 3).Draw(rt, "burst"); b < burst; b++ {
				n := len(text.lines)
				switch rapid.IntRange(0, 2).Draw(rt, "op") {
				case 0:
					i := rapid.IntRange(0, n-1).Draw(rt, "replace")
					text.replace(i, genLine(rt, "new"))
					doc.MarkDirty(i)
				case 1:
					i := rapid.IntRange(0, n).Draw(rt, "insert")
					text.insert(i, genLine(rt, "new"))
					doc.MarkDirty(i)
				case 2:
					if n == 1 {
						continue
					}
					i := rapid.IntRange(0, n-1).Draw(rt, "remove")
					text.remove(i)
					doc.MarkDirty(i)
				}
			}
			require.NoError(rt, doc.Update())
			full := fullScan(rt, s, text.lines)
			require.Equal(rt, allRanges(full), allRanges(doc))
			require.Equal(rt, partners(full), partners(doc))
		}
	})
}

func TestDocument_OpenStackCountsUnpairedOpens(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := consecutiveSettings(threeColors, "()", "[]", "{}")
		s.Mode = rapid.SampledFrom([]ColorMode{Consecutive, Independent}).Draw(rt, "mode")

		var lines []string
		for i, n := 0, rapid.IntRange(1, 6).Draw(rt, "lines"); i < n; i++ {
			lines = append(lines, genLine(rt, "line"))
		}
		doc := fullScan(rt, s, lines)

		opens := make([]int, len(s.Types))
		paired := make([]int, len(s.Types))
		for i, line := range doc.Lines() {
			for _, b := range line.Brackets {
				switch {
				case b.Open:
					opens[b.Type]++
				case !b.Orphan:
					paired[b.Type]++
				}
			}
			for typ := range s.Types {
				got := line.End.Colors.OpenCount(TypeID(typ))
				if got != opens[typ]-paired[typ] {
					rt.Fatalf("line %d type %d: open count %d, want %d", i, typ, got, opens[typ]-paired[typ])
				}
			}
		}
	})
}

func TestDocument_ConsecutiveCycleLength(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "colors")
		colors := make([]string, n)
		for i := range colors {
			colors[i] = string(rune('A' + i))
		}
		depth := rapid.IntRange(1, 20).Draw(rt, "depth")
		doc := fullScan(rt, consecutiveSettings(colors, "()"), []string{strings.Repeat("(", depth) + strings.Repeat(")", depth)})

		got := lineColors(doc, 0)
		for i := 0; i < depth; i++ {
			require.Equal(rt, colors[i%n], got[i])
		}
	})
}

func TestDocument_ColorRangesListsEveryColor(t *testing.T) {
	doc := scan(t, consecutiveSettings(threeColors, "()"), "()\n)")
	got := doc.ColorRanges()

	require.Len(t, got, 4)
	require.Equal(t, []Range{
		{Start: Position{0, 0}, End: Position{0, 1}},
		{Start: Position{0, 1}, End: Position{0, 2}},
	}, got["Gold"])
	require.Empty(t, got["Orchid"])
	require.NotNil(t, got["LightSkyBlue"])
	require.Equal(t, []Range{{Start: Position{1, 0}, End: Position{1, 1}}}, got["Red"])
}
