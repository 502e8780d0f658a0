package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/rainbow/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Invalid settings are still printed, followed by the problems.
			cfg, loadErr := loadConfig()
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			return loadErr
		},
	}
}
