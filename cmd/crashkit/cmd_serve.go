package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/miradorstack/mirador-crashkit/internal/api"
	"github.com/miradorstack/mirador-crashkit/internal/metrics"
	"github.com/miradorstack/mirador-crashkit/internal/services"
)

type serveOptions struct {
	address        string
	metricsAddress string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bundle triage over gRPC with Prometheus metrics",
		Long: `Start the crashkit.v1.Triage gRPC service. Each Summarize or Inspect call
analyzes one bundle directory readable by the server. Metrics are exposed
on /metrics at the metrics address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.address, "address", "", "gRPC listen address (default from config)")
	f.StringVar(&opts.metricsAddress, "metrics-address", "", "Metrics listen address, empty disables (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	rt, err := setup(cmd, root)
	if err != nil {
		return err
	}
	cfg := rt.cfg
	if cmd.Flags().Changed("address") {
		cfg.Server.Address = opts.address
	}
	if cmd.Flags().Changed("metrics-address") {
		cfg.Server.MetricsAddress = opts.metricsAddress
	}
	logger := rt.logger

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	pipeline, err := rt.pipeline(true)
	if err != nil {
		return err
	}
	triage := services.NewTriageService(logger, pipeline)

	server, err := api.NewServer(cfg.Server, triage)
	if err != nil {
		return err
	}
	logger.Info("starting crashkit triage service", slog.String("address", server.Address()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.GracefulTimeout())
		defer cancel()
		server.Shutdown(shutdownCtx)

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server shutdown", slog.Any("error", err))
			}
		}
		return nil
	})

	err = g.Wait()
	logger.Info("crashkit stopped")
	return err
}
