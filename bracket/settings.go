package bracket

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ColorMode int

const (
	// Consecutive shares one open-bracket stack and one color cycle
	// between all bracket types.
	Consecutive ColorMode = iota
	// Independent gives every bracket type its own stack and cycle.
	Independent
)

func (m ColorMode) String() string {
	switch m {
	case Consecutive:
		return "consecutive"
	case Independent:
		return "independent"
	default:
		return "unknown"
	}
}

func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "consecutive":
		return Consecutive, nil
	case "independent":
		return Independent, nil
	}
	return 0, fmt.Errorf("unknown color mode %q", s)
}

// OffsetCondition requires Text to appear at Offset runes from the start of
// a scope marker match. Offsets may be negative.
type OffsetCondition struct {
	Offset int
	Text   string
}

// Conditions restrict where a scope marker is recognized.
type Conditions struct {
	MustMatchAtOffset    []OffsetCondition
	MustNotMatchAtOffset []OffsetCondition
}

func (c Conditions) hold(runes []rune, at int) bool {
	for _, oc := range c.MustMatchAtOffset {
		if !textAt(runes, at+oc.Offset, oc.Text) {
			return false
		}
	}
	for _, oc := range c.MustNotMatchAtOffset {
		if textAt(runes, at+oc.Offset, oc.Text) {
			return false
		}
	}
	return true
}

// ScopePattern describes a region (comment, string) in which bracket
// characters are literal text. An empty Closer ends the scope at the end of
// the line it was opened on.
type ScopePattern struct {
	Name     string
	Opener   string
	Closer   string
	Escape   string
	Nestable bool
	Open     Conditions
	Close    Conditions
}

// Settings is the immutable configuration of one document's pipeline.
// A change of settings requires a new Document.
type Settings struct {
	Types                    []BracketType
	Mode                     ColorMode
	ForceUniqueOpeningColor  bool
	ForceIterationColorCycle bool
	ContextualParsing        bool
	Timeout                  time.Duration
	ScopeTimeout             time.Duration
	Scopes                   []ScopePattern
}

func (s *Settings) Validate() error {
	if s == nil {
		return errors.New("settings: missing")
	}
	if len(s.Types) == 0 {
		return errors.New("settings: no bracket types configured")
	}
	if s.Mode != Consecutive && s.Mode != Independent {
		return fmt.Errorf("settings: unknown color mode %d", s.Mode)
	}
	if s.Timeout < 0 || s.ScopeTimeout < 0 {
		return errors.New("settings: negative timeout")
	}

	var errs []error
	seen := make(map[string]TypeID)
	for i, t := range s.Types {
		if t.ID != TypeID(i) {
			errs = append(errs, fmt.Errorf("settings: bracket type %d has id %d", i, t.ID))
		}
		if t.Open == "" || t.Close == "" {
			errs = append(errs, fmt.Errorf("settings: bracket type %d has an empty open or close marker", i))
		}
		if t.Open == t.Close {
			errs = append(errs, fmt.Errorf("settings: bracket type %q uses the same open and close marker", t.Open))
		}
		if len(t.Colors) == 0 {
			errs = append(errs, fmt.Errorf("settings: bracket type %s%s has no colors", t.Open, t.Close))
		}
		if t.OrphanColor == "" {
			errs = append(errs, fmt.Errorf("settings: bracket type %s%s has no orphan color", t.Open, t.Close))
		}
		for _, marker := range []string{t.Open, t.Close} {
			if other, dup := seen[marker]; dup && marker != "" {
				errs = append(errs, fmt.Errorf("settings: marker %q used by bracket types %d and %d", marker, other, i))
			}
			seen[marker] = TypeID(i)
		}
	}
	if s.Mode == Consecutive && len(s.Types) > 1 {
		first := s.Types[0].Colors
		for _, t := range s.Types[1:] {
			if !sameColors(first, t.Colors) {
				errs = append(errs, errors.New("settings: consecutive mode requires one shared color list"))
				break
			}
		}
	}
	for i, sc := range s.Scopes {
		if sc.Opener == "" {
			errs = append(errs, fmt.Errorf("settings: scope pattern %d (%s) has no opener", i, sc.Name))
		}
	}
	return errors.Join(errs...)
}

// Colors returns every color a document can emit, in configuration order,
// each color once.
func (s *Settings) Colors() []string {
	var colors []string
	seen := make(map[string]bool)
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			colors = append(colors, c)
		}
	}
	for _, t := range s.Types {
		for _, c := range t.Colors {
			add(c)
		}
	}
	for _, t := range s.Types {
		add(t.OrphanColor)
	}
	return colors
}

func sameColors(a, b []string) bool {
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
