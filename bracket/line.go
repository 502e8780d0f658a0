package bracket

// LineState is everything needed to resume scanning at the start of the
// next line: the tokenizer state and the open-bracket bookkeeping.
type LineState struct {
	Rule   RuleState
	Colors ColorIndexState
}

// Clone returns a state that can be advanced without touching s. The rule
// state is immutable and shared.
func (s LineState) Clone() LineState {
	return LineState{Rule: s.Rule, Colors: s.Colors.Clone()}
}

func (s LineState) Equal(o LineState) bool {
	switch {
	case s.Rule == nil && o.Rule == nil:
	case s.Rule == nil || o.Rule == nil:
		return false
	case !s.Rule.Equal(o.Rule):
		return false
	}
	return s.Colors.Equal(o.Colors)
}

// LineResult is the cached scan of one physical line.
type LineResult struct {
	ID       LineID
	Text     string
	End      LineState
	Brackets []Bracket
	Ranges   []ColorRange

	// synthetic lines were created by GetLine ahead of a scan.
	synthetic bool
}

// ClosedBrackets returns the indices of paired close brackets.
func (l *LineResult) ClosedBrackets() []int {
	var idx []int
	for i, b := range l.Brackets {
		if !b.Open && !b.Orphan {
			idx = append(idx, i)
		}
	}
	return idx
}

func (l *LineResult) Synthetic() bool {
	return l.synthetic
}

// scanLine scans text starting from start. Open brackets on earlier lines
// that get closed here are recorded through pair and linked back once the
// whole scan succeeds.
func (d *Document) scanLine(id LineID, text string, start LineState) (*LineResult, error) {
	rule, spans, err := d.tokenizer.TokenizeLine(text, start.Rule)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	colors := start.Colors.Clone()
	line := &LineResult{ID: id, Text: text}

	for _, sp := range spans {
		t, open, ok := ParseBracketLabel(sp.Label)
		if !ok || int(t) >= len(d.settings.Types) {
			continue
		}
		if sp.Begin < 0 || sp.End > len(runes) || sp.Begin >= sp.End {
			continue
		}

		tok := Token{
			Char:  string(runes[sp.Begin:sp.End]),
			Type:  t,
			Open:  open,
			Begin: sp.Begin,
			End:   sp.End,
			Line:  id,
		}
		ref := Ref{Line: id, Index: len(line.Brackets)}

		var b Bracket
		if open {
			tok.Depth = colors.Depth(t)
			idx, color := d.policy.AssignOpen(&colors, t, ref)
			b = Bracket{Token: tok, ColorIndex: idx, Color: color}
		} else {
			color, idx, openRef, paired := d.policy.AssignClose(&colors, t)
			tok.Depth = colors.Depth(t)
			b = Bracket{Token: tok, ColorIndex: idx, Color: color, Orphan: !paired, Pair: openRef}
			if paired {
				d.pair(line, openRef, ref)
			}
		}
		line.Brackets = append(line.Brackets, b)
		line.Ranges = append(line.Ranges, ColorRange{Color: b.Color, Begin: tok.Begin, End: tok.End})
	}

	line.End = LineState{Rule: rule, Colors: colors}
	return line, nil
}

// link pairs an open bracket on an earlier line with its close bracket on
// line.
type link struct {
	open, close Ref
	line        int
}

// pair links the open bracket at open back to the close bracket at close.
// An open bracket on the line being scanned is linked at once. One on an
// earlier line may belong to the previous results, which must stay intact
// until the scan completes, so the link is only recorded.
func (d *Document) pair(current *LineResult, open, close Ref) {
	if open.Line == current.ID {
		if open.Index < len(current.Brackets) {
			current.Brackets[open.Index].Pair = close
		}
		return
	}
	d.links = append(d.links, link{open: open, close: close, line: len(d.lines)})
}

// applyLinks writes the links recorded during a completed scan.
func (d *Document) applyLinks() {
	for _, l := range d.links {
		i, ok := d.lineIndexOf(l.open.Line, l.line-1)
		if !ok {
			continue
		}
		if brackets := d.lines[i].Brackets; l.open.Index < len(brackets) {
			brackets[l.open.Index].Pair = l.close
		}
	}
	d.links = d.links[:0]
}

// adoptPairs restores the links of open brackets on re-scanned lines that
// are closed in a reattached tail. The end state matched the one before
// the edit, so those brackets sit at the same refs as before and their
// previous links still hold.
func (d *Document) adoptPairs(open []Ref, rescanned, before []*LineResult) {
	if len(open) == 0 {
		return
	}
	now := make(map[LineID]*LineResult, len(rescanned))
	for _, l := range rescanned {
		now[l.ID] = l
	}
	was := make(map[LineID]*LineResult, len(before))
	for _, l := range before {
		was[l.ID] = l
	}
	for _, r := range open {
		cur, ok := now[r.Line]
		if !ok {
			continue
		}
		prev, ok := was[r.Line]
		if !ok || r.Index >= len(cur.Brackets) || r.Index >= len(prev.Brackets) {
			continue
		}
		cur.Brackets[r.Index].Pair = prev.Brackets[r.Index].Pair
	}
}
