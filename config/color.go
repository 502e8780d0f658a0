package config

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor accepts a CSS color name, case insensitive, or a #rgb or
// #rrggbb hex value.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return colorful.Color{}, fmt.Errorf("empty color")
	}
	if strings.HasPrefix(s, "#") {
		if len(s) != 4 && len(s) != 7 {
			return colorful.Color{}, fmt.Errorf("invalid hex color %q", s)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("invalid hex color %q", s)
		}
		return c, nil
	}
	named, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return colorful.Color{}, fmt.Errorf("unknown color %q", s)
	}
	c, _ := colorful.MakeColor(named)
	return c, nil
}

// HexColor normalizes a color to #rrggbb.
func HexColor(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}
