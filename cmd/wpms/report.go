package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/frhel/wp-migrate-sync/internal/report"
	"github.com/spf13/cobra"
)

func newReportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report [id]",
		Short: "Print a stored report (the latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				id, err = e.disk.Latest()
				if errors.Is(err, report.ErrNoReports) {
					return fmt.Errorf("no reports in %s", e.disk.Dir())
				}
				if err != nil {
					return err
				}
			}

			rep, err := e.store.Load(id)
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no report %q in %s", id, e.disk.Dir())
			}
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), rep, opts.jsonOut)
		},
	}
}
