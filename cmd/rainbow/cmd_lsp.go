package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/rainbow/config"
	"github.com/dhamidi/rainbow/lsp"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewLSPServer(config.NewLoader(configPath), version)
			return server.RunStdio()
		},
	}
}
