package config

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dhamidi/rainbow/bracket"
	"github.com/dhamidi/rainbow/decoration"
)

// Error is a single configuration problem.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldError(field, format string, args ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks c and returns every problem found, joined.
func Validate(c Config) error {
	var errs []error

	mode, err := bracket.ParseColorMode(c.ColorMode)
	if err != nil {
		errs = append(errs, fieldError("color_mode", "must be consecutive or independent, got %q", c.ColorMode))
	}
	if c.Timeout < 0 {
		errs = append(errs, fieldError("timeout", "must not be negative"))
	}
	if c.ScopeTimeout < 0 {
		errs = append(errs, fieldError("scope_timeout", "must not be negative"))
	}
	if _, err := decoration.ParseLinePosition(c.Scope.HorizontalLinePosition); err != nil {
		errs = append(errs, fieldError("scope.horizontal_line_position", "must be above, below or both, got %q", c.Scope.HorizontalLinePosition))
	}

	if err == nil {
		switch mode {
		case bracket.Consecutive:
			errs = append(errs, validateConsecutive(c.Consecutive)...)
		case bracket.Independent:
			errs = append(errs, validateIndependent(c.Independent)...)
		}
	}

	for i, l := range c.Languages {
		field := fmt.Sprintf("languages[%d]", i)
		if l.Name == "" {
			errs = append(errs, fieldError(field+".name", "is required"))
		}
		for j, sc := range l.Scopes {
			if sc.Opener == "" {
				errs = append(errs, fieldError(fmt.Sprintf("%s.scopes[%d].opener", field, j), "is required"))
			}
		}
	}
	return errors.Join(errs...)
}

func validateConsecutive(c ConsecutiveConfig) []error {
	var errs []error
	if len(c.Pairs) == 0 {
		errs = append(errs, fieldError("consecutive.pairs", "at least one pair is required"))
	}
	errs = append(errs, validatePairs("consecutive.pairs", c.Pairs)...)
	errs = append(errs, validateColors("consecutive", c.Colors, c.OrphanColor)...)
	return errs
}

func validateIndependent(pairs []PairConfig) []error {
	var errs []error
	if len(pairs) == 0 {
		errs = append(errs, fieldError("independent", "at least one pair is required"))
	}
	markers := make([]string, len(pairs))
	for i, p := range pairs {
		markers[i] = p.Pair
		errs = append(errs, validateColors(fmt.Sprintf("independent[%d]", i), p.Colors, p.OrphanColor)...)
	}
	errs = append(errs, validatePairs("independent", markers)...)
	return errs
}

func validatePairs(field string, pairs []string) []error {
	var errs []error
	seen := make(map[rune]bool)
	for i, p := range pairs {
		f := fmt.Sprintf("%s[%d]", field, i)
		if utf8.RuneCountInString(p) != 2 {
			errs = append(errs, fieldError(f, "pair %q must be exactly two characters", p))
			continue
		}
		r := []rune(p)
		if r[0] == r[1] {
			errs = append(errs, fieldError(f, "pair %q opens and closes with the same character", p))
			continue
		}
		for _, c := range r {
			if seen[c] {
				errs = append(errs, fieldError(f, "character %q is used by more than one pair", c))
			}
			seen[c] = true
		}
	}
	return errs
}

func validateColors(field string, colors []string, orphan string) []error {
	var errs []error
	if len(colors) == 0 {
		errs = append(errs, fieldError(field+".colors", "at least one color is required"))
	}
	for i, c := range colors {
		if _, err := ParseColor(c); err != nil {
			errs = append(errs, fieldError(fmt.Sprintf("%s.colors[%d]", field, i), "%s", err))
		}
	}
	if _, err := ParseColor(orphan); err != nil {
		errs = append(errs, fieldError(field+".orphan_color", "%s", err))
	}
	return errs
}
