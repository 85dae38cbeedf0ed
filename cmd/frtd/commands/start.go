package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/frtrpc/internal/bytesize"
	"github.com/marmos91/frtrpc/internal/frt/supervisor"
	"github.com/marmos91/frtrpc/internal/logger"
	"github.com/marmos91/frtrpc/internal/telemetry"
	"github.com/marmos91/frtrpc/pkg/config"
	"github.com/marmos91/frtrpc/pkg/metrics"
	"github.com/spf13/cobra"

	// Register the Prometheus implementation of pkg/metrics.RPCMetrics.
	_ "github.com/marmos91/frtrpc/pkg/metrics/prometheus"
)

var (
	flagNetwork        string
	flagAddress        string
	flagMaxPacketBytes string
	flagMetricsPort    int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the frt RPC server",
	Long: `start loads configuration, brings up a supervisor listening on the
configured address, and serves requests against the frt.rpc.* introspection
methods until interrupted.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/frt/config.yaml.

Examples:
  frtd start
  frtd start --address :8001
  FRT_LOGGING_LEVEL=DEBUG frtd start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&flagNetwork, "network", "", "override server.network (tcp, tcp4, tcp6)")
	startCmd.Flags().StringVarP(&flagAddress, "address", "a", "", "override server.address, e.g. :8001")
	startCmd.Flags().StringVar(&flagMaxPacketBytes, "max-packet-bytes", "", "override limits.max_packet_bytes, e.g. 64MiB")
	startCmd.Flags().IntVar(&flagMetricsPort, "metrics-port", 0, "override metrics.port")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "frtd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	logger.Info("frtd starting", "version", Version, "network", cfg.Server.Network, "address", cfg.Server.Address)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("telemetry disabled")
	}

	var rpcMetrics metrics.RPCMetrics
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		rpcMetrics = metrics.NewRPCMetrics()
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metrics.Handler(),
		}
		go func() {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	} else {
		logger.Info("metrics collection disabled")
	}

	sup := supervisor.New(uint32(cfg.Limits.MaxPacketBytes), rpcMetrics)
	sup.Builder().Close()

	if err := sup.Listen(cfg.Server.Network, cfg.Server.Address); err != nil {
		return fmt.Errorf("failed to listen on %s/%s: %w", cfg.Server.Network, cfg.Server.Address, err)
	}
	logger.Info("frtd listening", "addr", sup.Addr())

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- sup.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server is running, press Ctrl+C to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}

		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", "error", err)
			return err
		}
		if err := sup.Close(); err != nil {
			logger.Error("listener close error", "error", err)
		}
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		logger.Info("server stopped")
	}

	return nil
}

// applyFlagOverrides layers start's CLI flags on top of the loaded config,
// matching the precedence documented on config.Config: flags beat
// environment, environment beats file, file beats defaults.
func applyFlagOverrides(cfg *config.Config) {
	if flagNetwork != "" {
		cfg.Server.Network = flagNetwork
	}
	if flagAddress != "" {
		cfg.Server.Address = flagAddress
	}
	if flagMaxPacketBytes != "" {
		if sz, err := bytesize.ParseByteSize(flagMaxPacketBytes); err == nil {
			cfg.Limits.MaxPacketBytes = sz
		}
	}
	if flagMetricsPort != 0 {
		cfg.Metrics.Port = flagMetricsPort
		cfg.Metrics.Enabled = true
	}
}
