package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookdetector/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.detector()
			if err != nil {
				return err
			}
			lookups, err := svc.History(commandCtx(cmd), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if lookups == nil {
					lookups = []history.Lookup{}
				}
				return writeJSON(cmd, lookups)
			}
			renderHistory(cmd.OutOrStdout(), lookups)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of lookups")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.detector()
			if err != nil {
				return err
			}
			removed, err := svc.ClearHistory(commandCtx(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d lookup(s)\n", removed)
			return nil
		},
	})
	return cmd
}
