package bracket

import "fmt"

// Scope is a matched bracket pair enclosing a position.
type Scope struct {
	Open      Bracket
	Close     Bracket
	OpenLine  int
	CloseLine int
}

// Interior is the text between the brackets, excluding them.
func (s Scope) Interior() Range {
	return Range{
		Start: Position{Line: s.OpenLine, Character: s.Open.End},
		End:   Position{Line: s.CloseLine, Character: s.Close.Begin},
	}
}

// Outer is the text of the scope including both brackets.
func (s Scope) Outer() Range {
	return Range{
		Start: Position{Line: s.OpenLine, Character: s.Open.Begin},
		End:   Position{Line: s.CloseLine, Character: s.Close.End},
	}
}

func (s Scope) OpenRange() Range {
	return Range{
		Start: Position{Line: s.OpenLine, Character: s.Open.Begin},
		End:   Position{Line: s.OpenLine, Character: s.Open.End},
	}
}

func (s Scope) CloseRange() Range {
	return Range{
		Start: Position{Line: s.CloseLine, Character: s.Close.Begin},
		End:   Position{Line: s.CloseLine, Character: s.Close.End},
	}
}

// FindEnclosingScope returns the innermost bracket pair enclosing pos. A
// cache inconsistency is logged and reported as no scope.
func (d *Document) FindEnclosingScope(pos Position) (Scope, bool) {
	s, ok, err := d.findEnclosingScope(pos)
	if err != nil {
		log.Warningf("scope search at %d:%d: %s", pos.Line, pos.Character, err)
		return Scope{}, false
	}
	return s, ok
}

// findEnclosingScope walks forward from pos to the first paired close
// bracket that does not close a bracket opened after pos, then locates the
// line of its open bracket by walking backward.
func (d *Document) findEnclosingScope(pos Position) (Scope, bool, error) {
	if pos.Line < 0 {
		return Scope{}, false, nil
	}
	skip := make([]int, len(d.settings.Types))

	for li := pos.Line; li < d.real; li++ {
		line := d.lines[li]
		from := 0
		if li == pos.Line {
			from = pos.Character
		}
		for _, b := range line.Brackets {
			if b.Begin < from {
				continue
			}
			if b.Open {
				skip[b.Type]++
				continue
			}
			if b.Orphan {
				continue
			}
			if skip[b.Type] > 0 {
				skip[b.Type]--
				continue
			}

			openLine, open, err := d.resolve(b.Pair, li)
			if err != nil {
				return Scope{}, false, err
			}
			if !(Position{Line: openLine, Character: open.Begin}).Before(pos) {
				// Crossed pairs in independent mode; keep looking.
				continue
			}
			return Scope{Open: open, Close: b, OpenLine: openLine, CloseLine: li}, true, nil
		}
	}
	return Scope{}, false, nil
}

// resolve locates the bracket at ref, searching backward from line from.
func (d *Document) resolve(ref Ref, from int) (int, Bracket, error) {
	i, ok := d.lineIndexOf(ref.Line, from)
	if !ok {
		return 0, Bracket{}, fmt.Errorf("%w: line %d of a paired bracket is not cached", ErrInconsistentCache, ref.Line)
	}
	brackets := d.lines[i].Brackets
	if ref.Index < 0 || ref.Index >= len(brackets) {
		return 0, Bracket{}, fmt.Errorf("%w: bracket %d missing on line %d", ErrInconsistentCache, ref.Index, i)
	}
	return i, brackets[ref.Index], nil
}

// Partner returns the bracket paired with the bracket at ref, verifying
// that the link is reciprocated.
func (d *Document) Partner(ref Ref) (Bracket, int, bool) {
	i, ok := d.lineIndexOf(ref.Line, d.real-1)
	if !ok || ref.Index < 0 || ref.Index >= len(d.lines[i].Brackets) {
		return Bracket{}, 0, false
	}
	b := d.lines[i].Brackets[ref.Index]
	if !b.Pair.Valid() {
		return Bracket{}, 0, false
	}
	from := i
	if b.Open {
		from = d.real - 1
	}
	j, partner, err := d.resolve(b.Pair, from)
	if err != nil || partner.Pair != ref || partner.Open == b.Open {
		return Bracket{}, 0, false
	}
	return partner, j, true
}

// Pairs lists every matched bracket pair in document order of the close
// bracket.
func (d *Document) Pairs() []Scope {
	index := make(map[LineID]int, d.real)
	for i, l := range d.lines[:d.real] {
		index[l.ID] = i
	}
	var pairs []Scope
	for li, l := range d.lines[:d.real] {
		for _, k := range l.ClosedBrackets() {
			b := l.Brackets[k]
			oi, ok := index[b.Pair.Line]
			if !ok || b.Pair.Index >= len(d.lines[oi].Brackets) {
				continue
			}
			pairs = append(pairs, Scope{
				Open:      d.lines[oi].Brackets[b.Pair.Index],
				Close:     b,
				OpenLine:  oi,
				CloseLine: li,
			})
		}
	}
	return pairs
}
