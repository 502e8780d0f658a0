package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/rainbow/bracket"
)

func newScopeCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "scope <file> <line>:<column>",
		Short: "Print the innermost bracket pair around a position (1-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			doc, lines, err := scanFile(cfg, args[0], lang)
			if err != nil {
				return err
			}
			sc, ok := doc.FindEnclosingScope(pos)
			if !ok {
				return fmt.Errorf("no bracket pair around %s", args[1])
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %d:%d-%d:%d\n", sc.Open.Color,
				sc.OpenLine+1, sc.Open.Begin+1, sc.CloseLine+1, sc.Close.End)
			for l := sc.OpenLine; l <= sc.CloseLine; l++ {
				fmt.Fprintf(w, "%6d  %s\n", l+1, lines.Line(l))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "language name instead of detecting it")

	return cmd
}

// parsePosition reads a 1-based line:column into a 0-based position.
func parsePosition(s string) (bracket.Position, error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return bracket.Position{}, fmt.Errorf("position %q: want line:column", s)
	}
	line, err := strconv.Atoi(l)
	if err != nil || line < 1 {
		return bracket.Position{}, fmt.Errorf("position %q: bad line", s)
	}
	col, err := strconv.Atoi(c)
	if err != nil || col < 1 {
		return bracket.Position{}, fmt.Errorf("position %q: bad column", s)
	}
	return bracket.Position{Line: line - 1, Character: col - 1}, nil
}
