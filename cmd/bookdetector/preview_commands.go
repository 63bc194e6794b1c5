package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookdetector/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var openAfter bool
	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Render a first-page thumbnail of a book file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			thumb, err := preview.NewRenderer(cfg, ctx.log()).Thumbnail(commandCtx(cmd), args[0])
			if err != nil {
				return fmt.Errorf("no preview: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), thumb)
			if openAfter {
				return preview.NewOpener(cfg.Preview.Opener).Open(commandCtx(cmd), thumb)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&openAfter, "open", false, "Open the thumbnail in the viewer")
	return cmd
}

func newOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a book file with the platform viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := preview.NewOpener(cfg.Preview.Opener).Open(commandCtx(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", args[0])
			return nil
		},
	}
}
