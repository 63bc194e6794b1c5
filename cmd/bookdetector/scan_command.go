package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		saveFrame  string
		device     string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Capture a camera frame, recognize the cover and look it up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if device != "" {
				cfg.Camera.Device = device
			}
			svc, err := ctx.loadedDetector(commandCtx(cmd))
			if err != nil {
				return err
			}
			result, err := svc.Scan(commandCtx(cmd), saveFrame)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recognized: %q\n", result.Text)
			if result.Frame != "" {
				fmt.Fprintf(out, "Frame saved to %s\n", result.Frame)
			}
			renderMatches(out, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&saveFrame, "save", "", "Keep the captured frame at this path")
	cmd.Flags().StringVar(&device, "device", "", "Capture device (overrides camera.device)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
