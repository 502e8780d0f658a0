package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dhamidi/rainbow/bracket"
	"github.com/dhamidi/rainbow/config"
	"github.com/dhamidi/rainbow/decoration"
)

func newScanCmd() *cobra.Command {
	var asJSON bool
	var lang string

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Print a file with its brackets colored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			doc, lines, err := scanFile(cfg, args[0], lang)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(decoration.BracketGroups(doc))
			}
			return render(termenv.NewOutput(cmd.OutOrStdout()), doc, lines)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the ranges of each color as JSON")
	cmd.Flags().StringVarP(&lang, "language", "l", "", "language name instead of detecting it")

	return cmd
}

// render writes lines with every bracket in its color.
func render(out *termenv.Output, doc *bracket.Document, lines bracket.Lines) error {
	colors := make(map[string]termenv.Color)
	for _, name := range doc.Settings().Colors() {
		hex, err := config.HexColor(name)
		if err != nil {
			return err
		}
		colors[name] = out.Color(hex)
	}

	for i := 0; i < lines.LineCount(); i++ {
		var sb strings.Builder
		runes := []rune(lines.Line(i))
		at := 0
		for _, r := range doc.LineRanges(i) {
			sb.WriteString(string(runes[at:r.Begin]))
			sb.WriteString(out.String(string(runes[r.Begin:r.End])).Foreground(colors[r.Color]).Bold().String())
			at = r.End
		}
		sb.WriteString(string(runes[at:]))
		sb.WriteByte('\n')
		if _, err := io.WriteString(out, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
