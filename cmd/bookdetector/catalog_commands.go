package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookdetector/internal/catalog"
	"bookdetector/internal/watch"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and rebuild the book catalog",
	}
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogRebuildCommand(ctx))
	catalogCmd.AddCommand(newCatalogWatchCommand(ctx))
	catalogCmd.AddCommand(newCatalogPathCommand(ctx))
	return catalogCmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "List catalog entries (from the cache when present)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.loadedDetector(commandCtx(cmd))
			if err != nil {
				return err
			}
			entries := svc.Catalog().Entries()
			if jsonOutput {
				if entries == nil {
					entries = []catalog.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			renderCatalog(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCatalogRebuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rescan the catalog folders and rewrite the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.detector()
			if err != nil {
				return err
			}
			started := time.Now()
			rebuilt, err := svc.Rebuild(commandCtx(cmd))
			if err != nil {
				return fmt.Errorf("rebuild catalog: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog rebuilt: %d entries in %s\n", rebuilt.Len(), time.Since(started).Round(time.Millisecond))
			fmt.Fprintf(out, "Cache: %s\n", svc.Config().Catalog.CachePath)
			return nil
		},
	}
}

func newCatalogWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the catalog whenever the folders change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd)
			defer stop()

			svc, err := ctx.loadedDetector(runCtx)
			if err != nil {
				return err
			}
			cfg := svc.Config()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %d folder(s); catalog has %d entries. Press Ctrl+C to stop.\n", len(cfg.Catalog.Folders), svc.Catalog().Len())

			w := watch.New(cfg.Catalog.Folders, cfg.WatchDebounce(), func(c context.Context) error {
				rebuilt, err := svc.Rebuild(c)
				if err == nil {
					fmt.Fprintf(out, "%s catalog rebuilt: %d entries\n", time.Now().Format("15:04:05"), rebuilt.Len())
				}
				return err
			}, ctx.log())
			w.Ignore(catalog.CacheFiles(cfg.Catalog.CachePath)...)
			return w.Run(runCtx)
		},
	}
}

func newCatalogPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the catalog cache file and folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cfg.Catalog.CachePath)
			for _, folder := range cfg.Catalog.Folders {
				fmt.Fprintf(out, "  folder: %s\n", folder)
			}
			return nil
		},
	}
}
