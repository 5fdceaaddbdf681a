package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/sherine-k/pickups/pkg/batch"
	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/logger"
	"github.com/sherine-k/pickups/pkg/metrics"
	"github.com/sherine-k/pickups/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve assignment batches over HTTP",
	Long: `Starts an HTTP service that accepts job table uploads on POST /assignments,
renders driver count charts on POST /visualize and exposes Prometheus
metrics on GET /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", config.DefaultAddr, "Address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOptional(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}

	log := logger.New(cfg.Logging, "server")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	handler, err := server.NewHandler(cfg, batch.NewRunner(cfg, log, recorder), reg, log)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}
	handler.RegisterRoutes()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, cfg.Server, handler.Mux, log)
}
