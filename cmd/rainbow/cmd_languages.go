package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages with string and comment rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			table := cfg.LanguageTable()
			for _, name := range table.Names() {
				l, _ := table.Lookup(name)
				scopes := make([]string, len(l.Scopes))
				for i, s := range l.Scopes {
					scopes[i] = s.Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, strings.Join(scopes, ", "))
			}
			return nil
		},
	}
}
