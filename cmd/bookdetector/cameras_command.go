package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bookdetector/internal/capture"
)

func newCamerasCommand(ctx *commandContext) *cobra.Command {
	var (
		follow     bool
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "cameras",
		Short: "List video capture devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cameras, err := capture.ListCameras(commandCtx(cmd), cfg.Camera.MaxDevices)
			if err != nil {
				return fmt.Errorf("list cameras: %w", err)
			}
			out := cmd.OutOrStdout()
			if jsonOutput && !follow {
				if cameras == nil {
					cameras = []capture.Camera{}
				}
				return writeJSON(cmd, cameras)
			}
			if len(cameras) == 0 {
				fmt.Fprintln(out, "No cameras found")
			} else {
				rows := make([][]string, 0, len(cameras))
				for _, cam := range cameras {
					name := cam.Name
					if name == "" {
						name = "-"
					}
					configured := ""
					if cam.Device == cfg.Camera.Device {
						configured = "configured"
					}
					rows = append(rows, []string{cam.Device, name, strconv.Itoa(cam.Index), configured})
				}
				fmt.Fprintln(out, renderTable([]column{{header: "Device"}, {header: "Name"}, {header: "Index", align: alignRight}, {header: ""}}, rows))
			}
			if !follow {
				return nil
			}

			runCtx, stop := signalContext(cmd)
			defer stop()
			monitor := capture.NewMonitor(ctx.log(), func(ev capture.Event) {
				fmt.Fprintf(out, "%s %s\n", ev.Action, ev.Camera.Device)
			})
			if err := monitor.Start(runCtx); err != nil {
				return err
			}
			defer monitor.Stop()
			fmt.Fprintln(out, "Watching for camera changes. Press Ctrl+C to stop.")
			<-runCtx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "Keep running and report cameras being attached or removed")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
