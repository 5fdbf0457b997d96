package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/philips-software/bom-base-sub000/pkg/api"
	"github.com/philips-software/bom-base-sub000/pkg/observability/prom"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the package registry over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}
			ctx := cmd.Context()

			var metrics http.Handler
			if cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				prom.New(reg).Install()
				metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
			}

			a, err := newApp(ctx, cfg, c.Logger, true)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := a.Close(closeCtx); err != nil {
					c.Logger.Warn("shutdown", "err", err)
				}
			}()
			a.watch(ctx)

			srv := api.NewServer(a.registry, api.Options{
				CORSOrigins: cfg.Server.CORSOrigins,
				Metrics:     metrics,
				Logger:      c.Logger,
			})
			return srv.ListenAndServe(ctx, cfg.Server.Listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, \":8080\")")
	return cmd
}
