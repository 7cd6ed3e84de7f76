package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-question/pkg/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the survey over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSurvey()
			if err != nil {
				return err
			}
			// Concurrent requests share the renderer, so overlays stay inline.
			renderer, err := a.newRenderer(nil)
			if err != nil {
				return err
			}
			srv, err := server.New(s, renderer,
				server.WithLogger(a.logger),
				server.WithDeriver(a.newDeriver()),
				server.WithDefaultLocale(a.cfg.Render.Locale),
				server.WithAssetPrefix(a.cfg.Server.AssetPrefix),
				server.WithShutdownGrace(a.cfg.Server.ShutdownGrace),
			)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

