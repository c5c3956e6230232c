// Command agent runs a minimal OpAMP agent against a Server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"

	"github.com/observiq/opamp-client-go/client"
	"github.com/observiq/opamp-client-go/config"
	"github.com/observiq/opamp-client-go/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "agent",
		Short:         "Run an OpAMP agent",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	zapLogger, err := logging.NewZap(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := logging.New(zapLogger)

	meterProvider, shutdownMetrics, err := newMeterProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			zapLogger.Warn("Cannot flush metrics", zap.Error(err))
		}
	}()

	settings, err := cfg.StartSettings(ctx)
	if err != nil {
		return err
	}
	opampClient := client.NewHTTP(logger)
	agent := newAgent(logger, opampClient)
	settings.Callbacks = agent.callbacks()
	settings.MeterProvider = meterProvider

	if err := opampClient.Start(ctx, settings); err != nil {
		return fmt.Errorf("cannot start OpAMP client: %w", err)
	}
	zapLogger.Info("Agent started",
		zap.String("endpoint", cfg.Endpoint),
		zap.Stringer("instance_uid", opampClient.InstanceUid()))
	if err := agent.reportHealth(); err != nil {
		zapLogger.Warn("Health not reported", zap.Error(err))
	}

	<-ctx.Done()
	zapLogger.Info("Stopping agent")
	stopCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownGracePeriod+cfg.RequestTimeout)
	defer cancel()
	return opampClient.Stop(stopCtx)
}

// newMeterProvider exports client metrics over OTLP/HTTP when an endpoint is
// configured and discards them otherwise.
func newMeterProvider(ctx context.Context, cfg *config.Config) (metric.MeterProvider, func(context.Context) error, error) {
	if cfg.Metrics.Endpoint == "" {
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(cfg.Metrics.Endpoint)}
	if cfg.Metrics.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.Agent.Name),
			attribute.String("service.version", cfg.Agent.Version),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Metrics.Interval))),
	)
	return provider, provider.Shutdown, nil
}
