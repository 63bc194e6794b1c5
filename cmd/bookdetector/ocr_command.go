package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOCRCommand(ctx *commandContext) *cobra.Command {
	var (
		match      bool
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "ocr <image>",
		Short: "Recognize cover text in an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !match {
				svc, err := ctx.detector()
				if err != nil {
					return err
				}
				text, err := svc.Recognize(commandCtx(cmd), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]string{"text": text})
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			svc, err := ctx.loadedDetector(commandCtx(cmd))
			if err != nil {
				return err
			}
			result, err := svc.RecognizeFile(commandCtx(cmd), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recognized: %q\n", result.Text)
			renderMatches(out, result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&match, "match", false, "Also look the recognized text up in the catalog")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
