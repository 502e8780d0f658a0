package bracket

import (
	"strconv"
	"strings"
)

// RuleState is the opaque tokenizer state carried from one line to the
// next. Two equal states produce identical tokenization of the same text.
type RuleState interface {
	Equal(other RuleState) bool
}

// Span is a labelled rune range of a line.
type Span struct {
	Begin int
	End   int
	Label string
}

// Tokenizer splits a line into labelled spans. Spans whose label is a
// bracket label (see BracketLabel) are structural brackets; everything else
// is ignored by the scanner.
type Tokenizer interface {
	InitialState() RuleState
	TokenizeLine(text string, state RuleState) (RuleState, []Span, error)
}

const (
	bracketLabelPrefix = "punctuation.bracket."
	beginSuffix        = ".begin"
	endSuffix          = ".end"
)

// BracketLabel is the span label for an open (begin) or close (end)
// bracket of type t, e.g. "punctuation.bracket.0.begin".
func BracketLabel(t TypeID, open bool) string {
	suffix := endSuffix
	if open {
		suffix = beginSuffix
	}
	return bracketLabelPrefix + strconv.Itoa(int(t)) + suffix
}

// ScopeLabel is the span label for the opening or closing marker of a
// contextual scope.
func ScopeLabel(name string, open bool) string {
	suffix := endSuffix
	if open {
		suffix = beginSuffix
	}
	return "scope." + name + suffix
}

// ParseBracketLabel is the inverse of BracketLabel. Only the suffixes
// matter, so labels such as "source.go.punctuation.bracket.2.end" parse too.
func ParseBracketLabel(label string) (t TypeID, open bool, ok bool) {
	switch {
	case strings.HasSuffix(label, beginSuffix):
		open = true
		label = strings.TrimSuffix(label, beginSuffix)
	case strings.HasSuffix(label, endSuffix):
		label = strings.TrimSuffix(label, endSuffix)
	default:
		return 0, false, false
	}
	i := strings.LastIndex(label, bracketLabelPrefix)
	if i < 0 {
		return 0, false, false
	}
	n, err := strconv.Atoi(label[i+len(bracketLabelPrefix):])
	if err != nil || n < 0 {
		return 0, false, false
	}
	return TypeID(n), open, true
}
