package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/shablon/internal/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long:  `Serves templates, steps and transition resolution over HTTP, with Prometheus metrics on /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cfg, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		srv := &http.Server{
			Addr: addr,
			Handler: httpAdapter.NewHandler(app.Engine,
				httpAdapter.WithLogger(app.Logger),
				httpAdapter.WithMetrics(app.Registry),
				httpAdapter.WithDefaultOwner(cfg.OwnerID),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("Starting shablon server", "addr", srv.Addr, "db", cfg.DBPath)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return err
		case <-cmd.Context().Done():
			app.Logger.Info("Shutdown signal received")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return err
			}
			if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			app.Logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (env SHABLON_HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
