package bracket

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

type bracketMark struct {
	typ  TypeID
	open bool
}

// scopeCell is an immutable stack of active scope patterns.
type scopeCell struct {
	pattern int
	next    *scopeCell
}

// PatternState is the RuleState of a PatternTokenizer: the stack of scopes
// that are still open at the end of a line.
type PatternState struct {
	top *scopeCell
}

func (s PatternState) Equal(other RuleState) bool {
	o, ok := other.(PatternState)
	if !ok {
		return false
	}
	a, b := s.top, o.top
	for a != b {
		if a == nil || b == nil || a.pattern != b.pattern {
			return false
		}
		a, b = a.next, b.next
	}
	return true
}

// Depth is the number of open scopes.
func (s PatternState) Depth() int {
	n := 0
	for c := s.top; c != nil; c = c.next {
		n++
	}
	return n
}

// PatternTokenizer recognizes brackets and, with contextual parsing,
// comment and string scopes described by ScopePatterns. Inside a scope
// only that scope's closer (or its opener, for nestable scopes) is
// recognized.
type PatternTokenizer struct {
	scopes     []ScopePattern
	brackets   map[string]bracketMark
	openers    map[string][]int
	markers    []string
	candidates *regexp2.Regexp
}

func NewPatternTokenizer(s *Settings) (*PatternTokenizer, error) {
	t := &PatternTokenizer{
		brackets: make(map[string]bracketMark),
		openers:  make(map[string][]int),
	}

	markers := make(map[string]bool)
	for _, bt := range s.Types {
		t.brackets[bt.Open] = bracketMark{typ: bt.ID, open: true}
		t.brackets[bt.Close] = bracketMark{typ: bt.ID, open: false}
		markers[bt.Open] = true
		markers[bt.Close] = true
	}
	if s.ContextualParsing {
		t.scopes = s.Scopes
		for i, sc := range s.Scopes {
			t.openers[sc.Opener] = append(t.openers[sc.Opener], i)
			markers[sc.Opener] = true
			if sc.Closer != "" {
				markers[sc.Closer] = true
			}
		}
	}
	delete(markers, "")

	for m := range markers {
		t.markers = append(t.markers, m)
	}
	// Longest marker first so that "/*" wins over "/" at the same position.
	sort.Slice(t.markers, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(t.markers[i]), utf8.RuneCountInString(t.markers[j])
		if li != lj {
			return li > lj
		}
		return t.markers[i] < t.markers[j]
	})
	alts := make([]string, len(t.markers))
	for i, m := range t.markers {
		alts[i] = regexp2.Escape(m)
	}

	re, err := regexp2.Compile(strings.Join(alts, "|"), regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile marker pattern: %w", err)
	}
	t.candidates = re
	return t, nil
}

func (t *PatternTokenizer) InitialState() RuleState {
	return PatternState{}
}

func (t *PatternTokenizer) TokenizeLine(text string, state RuleState) (RuleState, []Span, error) {
	st := PatternState{}
	if state != nil {
		s, ok := state.(PatternState)
		if !ok {
			return nil, nil, fmt.Errorf("pattern tokenizer: unexpected rule state %T", state)
		}
		st = s
	}

	runes := []rune(text)
	var spans []Span

	for pos := 0; pos < len(runes); {
		m, err := t.candidates.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			return nil, nil, fmt.Errorf("pattern tokenizer: %w", err)
		}
		if m == nil {
			break
		}
		span, next, ok := t.step(runes, m.Index, st)
		if !ok {
			// Nothing that starts here means anything in this state; a
			// shorter marker may still start one rune later.
			pos = m.Index + 1
			continue
		}
		spans = append(spans, span)
		st = next
		pos = span.End
	}

	for st.top != nil && t.scopes[st.top.pattern].Closer == "" {
		sc := t.scopes[st.top.pattern]
		spans = append(spans, Span{Begin: len(runes), End: len(runes), Label: ScopeLabel(sc.Name, false)})
		st = PatternState{top: st.top.next}
	}
	return st, spans, nil
}

// step tries the markers starting at begin, longest first, and returns the
// span of the first one that is significant in state st.
func (t *PatternTokenizer) step(runes []rune, begin int, st PatternState) (Span, PatternState, bool) {
	for _, marker := range t.markers {
		if !textAt(runes, begin, marker) {
			continue
		}
		end := begin + utf8.RuneCountInString(marker)

		if st.top != nil {
			sc := t.scopes[st.top.pattern]
			switch {
			case sc.Closer != "" && marker == sc.Closer &&
				!escaped(runes, begin, sc.Escape) && sc.Close.hold(runes, begin):
				return Span{Begin: begin, End: end, Label: ScopeLabel(sc.Name, false)}, PatternState{top: st.top.next}, true
			case sc.Nestable && marker == sc.Opener &&
				!escaped(runes, begin, sc.Escape) && sc.Open.hold(runes, begin):
				return Span{Begin: begin, End: end, Label: ScopeLabel(sc.Name, true)},
					PatternState{top: &scopeCell{pattern: st.top.pattern, next: st.top}}, true
			}
			continue
		}

		if idx, ok := t.openerAt(marker, runes, begin); ok {
			return Span{Begin: begin, End: end, Label: ScopeLabel(t.scopes[idx].Name, true)},
				PatternState{top: &scopeCell{pattern: idx, next: st.top}}, true
		}
		if mark, ok := t.brackets[marker]; ok {
			return Span{Begin: begin, End: end, Label: BracketLabel(mark.typ, mark.open)}, st, true
		}
	}
	return Span{}, st, false
}

func (t *PatternTokenizer) openerAt(marker string, runes []rune, at int) (int, bool) {
	for _, idx := range t.openers[marker] {
		if t.scopes[idx].Open.hold(runes, at) {
			return idx, true
		}
	}
	return 0, false
}

// escaped reports whether the marker at position at is preceded by an odd
// number of consecutive escape sequences.
func escaped(runes []rune, at int, escape string) bool {
	if escape == "" {
		return false
	}
	esc := []rune(escape)
	n := 0
	for i := at; i-len(esc) >= 0 && runesEqual(runes[i-len(esc):i], esc); i -= len(esc) {
		n++
	}
	return n%2 == 1
}

func textAt(runes []rune, at int, text string) bool {
	want := []rune(text)
	if at < 0 || at+len(want) > len(runes) {
		return false
	}
	return runesEqual(runes[at:at+len(want)], want)
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
