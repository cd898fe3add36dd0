package main

import (
	"fmt"

	wpmcp "github.com/frhel/wp-migrate-sync/internal/mcp"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newMCPCommand(opts *options) *cobra.Command {
	var instructions bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the dependency and preflight checks over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if instructions {
				fmt.Fprint(cmd.OutOrStdout(), wpmcp.Instructions)
				return nil
			}

			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			var source, destination string
			if cmd.Flags().Changed("source") {
				source = opts.source
			}
			if cmd.Flags().Changed("destination") {
				destination = opts.destination
			}
			server := wpmcp.NewServer(e.cfg, e.runner, e.store, e.workDir, wpmcp.WithSides(source, destination))
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")
	return cmd
}
