package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bookdetector/internal/api"
	"bookdetector/internal/catalog"
	"bookdetector/internal/preview"
	"bookdetector/internal/watch"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		bind        string
		watchFolder bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if b := strings.TrimSpace(bind); b != "" {
				cfg.Paths.APIBind = b
			}

			runCtx, stop := signalContext(cmd)
			defer stop()

			svc, err := ctx.loadedDetector(runCtx)
			if err != nil {
				return err
			}
			logger := ctx.log()

			gin.SetMode(gin.ReleaseMode)
			server, err := api.NewServer(cfg, svc, preview.NewRenderer(cfg, logger), logger)
			if err != nil {
				return err
			}

			group, groupCtx := errgroup.WithContext(runCtx)
			if err := server.Start(groupCtx); err != nil {
				return err
			}
			defer server.Stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d catalog entries on http://%s\n", svc.Catalog().Len(), server.Addr())

			if watchFolder {
				w := watch.New(cfg.Catalog.Folders, cfg.WatchDebounce(), func(c context.Context) error {
					_, err := svc.Rebuild(c)
					return err
				}, logger)
				w.Ignore(catalog.CacheFiles(cfg.Catalog.CachePath)...)
				group.Go(func() error { return w.Run(groupCtx) })
			}
			group.Go(func() error {
				<-groupCtx.Done()
				return nil
			})
			return group.Wait()
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides paths.api_bind)")
	cmd.Flags().BoolVar(&watchFolder, "watch", false, "Rebuild the catalog when folders change")
	return cmd
}
