package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/rainbow/bracket"
	"github.com/dhamidi/rainbow/config"
	"github.com/dhamidi/rainbow/language"
)

const version = "0.1.0"

var (
	configPath string
	verbosity  int
	logPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rainbow",
		Short:         "Bracket pair colorizer and language server",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logPath != "" {
				path = &logPath
			}
			commonlog.Configure(verbosity, path)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default .rainbow.yaml, then ~/.config/rainbow/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log more (repeat for debug output)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "log to this file instead of stderr")

	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newScopeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLanguagesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the settings selected by the global flags.
func loadConfig() (config.Config, error) {
	return config.NewLoader(configPath).Load()
}

// scanFile reads path and scans it with the language detected for it, or
// with lang when set.
func scanFile(cfg config.Config, path, lang string) (*bracket.Document, bracket.Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(data)

	table := cfg.LanguageTable()
	var l *language.Language
	if lang != "" {
		found, ok := table.Lookup(lang)
		if !ok {
			return nil, nil, fmt.Errorf("unknown language %q", lang)
		}
		l = &found
	} else if found, ok := table.Detect("", path, content); ok {
		l = &found
	}

	settings, err := cfg.Settings(l)
	if err != nil {
		return nil, nil, err
	}
	lines := bracket.Lines(strings.Split(content, "\n"))
	doc, err := bracket.NewDocument(lines, settings, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.Update(); err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return doc, lines, nil
}
