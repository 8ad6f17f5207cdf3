package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/giftlint/codebase"
)

func newLSPCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version, newChecker(g.cfg))
			return server.RunStdio()
		},
	}
}
