package config

import (
	"time"

	"github.com/dhamidi/rainbow/bracket"
	"github.com/dhamidi/rainbow/decoration"
	"github.com/dhamidi/rainbow/language"
)

// Settings builds the scanner settings for a document in lang. A nil lang
// scans for brackets only.
func (c Config) Settings(lang *language.Language) (*bracket.Settings, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}
	mode, _ := bracket.ParseColorMode(c.ColorMode)

	s := &bracket.Settings{
		Mode:                     mode,
		ForceUniqueOpeningColor:  c.ForceUniqueOpeningColor,
		ForceIterationColorCycle: c.ForceIterationColorCycle,
		ContextualParsing:        c.ContextualParsing,
		Timeout:                  time.Duration(c.Timeout) * time.Millisecond,
		ScopeTimeout:             time.Duration(c.ScopeTimeout) * time.Millisecond,
	}
	if lang != nil {
		s.Scopes = lang.Scopes
	}

	add := func(pair string, colors []string, orphan string) {
		r := []rune(pair)
		s.Types = append(s.Types, bracket.BracketType{
			ID:          bracket.TypeID(len(s.Types)),
			Open:        string(r[0]),
			Close:       string(r[1]),
			Colors:      colors,
			OrphanColor: orphan,
		})
	}
	if mode == bracket.Consecutive {
		for _, p := range c.Consecutive.Pairs {
			add(p, c.Consecutive.Colors, c.Consecutive.OrphanColor)
		}
	} else {
		for _, p := range c.Independent {
			add(p.Pair, p.Colors, p.OrphanColor)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LanguageTable is the built-in table with the configured languages
// added over it.
func (c Config) LanguageTable() *language.Table {
	table := language.Builtin()
	for _, l := range c.Languages {
		lang := language.Language{Name: l.Name, Aliases: l.Aliases}
		for _, sc := range l.Scopes {
			lang.Scopes = append(lang.Scopes, bracket.ScopePattern{
				Name:     sc.Name,
				Opener:   sc.Opener,
				Closer:   sc.Closer,
				Escape:   sc.Escape,
				Nestable: sc.Nestable,
				Open: bracket.Conditions{
					MustMatchAtOffset:    offsets(sc.MustMatchAtOffset),
					MustNotMatchAtOffset: offsets(sc.MustNotMatchAtOffset),
				},
				Close: bracket.Conditions{
					MustMatchAtOffset:    offsets(sc.CloseMustMatchAtOffset),
					MustNotMatchAtOffset: offsets(sc.CloseMustNotMatchAtOffset),
				},
			})
		}
		table.Add(lang)
	}
	return table
}

func offsets(in []OffsetConfig) []bracket.OffsetCondition {
	if len(in) == 0 {
		return nil
	}
	out := make([]bracket.OffsetCondition, len(in))
	for i, o := range in {
		out[i] = bracket.OffsetCondition{Offset: o.Offset, Text: o.Text}
	}
	return out
}

// DecorationOptions selects the scope guides. An invalid line position
// falls back to both.
func (c Config) DecorationOptions() decoration.Options {
	pos, _ := decoration.ParseLinePosition(c.Scope.HorizontalLinePosition)
	return decoration.Options{
		HighlightActiveScope:   c.Scope.HighlightActiveScope,
		ShowInGutter:           c.Scope.ShowInGutter,
		ShowInRuler:            c.Scope.ShowInRuler,
		ShowHorizontalLine:     c.Scope.ShowHorizontalLine,
		ShowVerticalLine:       c.Scope.ShowVerticalLine,
		HorizontalLinePosition: pos,
	}
}
