// Package bootstrap wires a loaded configuration into the ambient
// subsystems (logging, tracing, continuous profiling, metrics) a long-running
// host of the block-exchange engine needs before it starts pushing files.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/blockpeer/syncengine/internal/logger"
	"github.com/blockpeer/syncengine/internal/telemetry"
	"github.com/blockpeer/syncengine/pkg/config"
	"github.com/blockpeer/syncengine/pkg/indexstore"
	"github.com/blockpeer/syncengine/pkg/metrics"
)

// Shutdown releases everything Start initialized, in reverse order.
type Shutdown func(ctx context.Context) error

// newIndexStore opens the durable BadgerDB-backed index store at cfg.Dir, or
// falls back to an in-memory store when no directory is configured.
func newIndexStore(cfg config.IndexConfig) (indexstore.Store, error) {
	if cfg.Dir == "" {
		return indexstore.NewMemStore(), nil
	}

	store, err := indexstore.OpenBadgerStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open index store: %w", err)
	}
	return store, nil
}

// Start configures the logger, OpenTelemetry tracing, Pyroscope profiling,
// the Prometheus registry, and the index store from cfg. It returns the
// index store for the caller to pass to upload.New, and a Shutdown that
// flushes and closes everything Start initialized.
func Start(ctx context.Context, cfg *config.Config) (indexstore.Store, Shutdown, error) {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, nil, fmt.Errorf("bootstrap: init logger: %w", err)
	}

	traceShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "syncengine",
		ServiceVersion: "dev",
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: init telemetry: %w", err)
	}

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "syncengine",
		ServiceVersion: "dev",
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: init profiling: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry(nil)
	}

	idx, err := newIndexStore(cfg.Index)
	if err != nil {
		return nil, nil, err
	}

	shutdown := func(shutdownCtx context.Context) error {
		if closer, ok := idx.(*indexstore.BadgerStore); ok {
			if err := closer.Close(); err != nil {
				return fmt.Errorf("bootstrap: close index store: %w", err)
			}
		}
		if err := profilingShutdown(); err != nil {
			return fmt.Errorf("bootstrap: stop profiling: %w", err)
		}
		if err := traceShutdown(shutdownCtx); err != nil {
			return fmt.Errorf("bootstrap: stop telemetry: %w", err)
		}
		return nil
	}

	return idx, shutdown, nil
}
