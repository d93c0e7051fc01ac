// Command collector fetches complaint and recall data from NHTSA for a
// configured set of makes and model years, attaches current fuel prices,
// and publishes raw batches for the scoring worker.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/LemonScout/lemonscout-mvp/cmd/collector/fuel"
	"github.com/LemonScout/lemonscout-mvp/cmd/collector/nhtsa"
	"github.com/LemonScout/lemonscout-mvp/engine/ingest"
	"github.com/LemonScout/lemonscout-mvp/pkg/metrics"
	"github.com/LemonScout/lemonscout-mvp/pkg/natsutil"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "collector.yaml", "path to the YAML collection plan")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}
	if key := os.Getenv("EIA_API_KEY"); key != "" {
		cfg.EIAAPIKey = key
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("collector exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	met := metrics.New()
	batchesPublished := met.Counter("collector_batches_published_total", "Batches handed to the worker queue")
	vehiclesFailed := met.Counter("collector_vehicles_failed_total", "Vehicles skipped after fetch or publish failure")
	runDuration := met.Histogram("collector_run_duration_seconds", "Full collection walk duration", nil)

	client := nhtsa.New(nhtsa.Config{RPS: cfg.RateLimitRPS})
	fuelSource := fuel.New("", cfg.EIAAPIKey, logger)

	publish := func(ctx context.Context, batch ingest.RawBatch) error {
		return natsutil.Publish(ctx, nc, natsutil.SubjectBatches, batch)
	}

	runOnce := func() {
		start := time.Now()
		prices := fuelSource.Prices(ctx)
		published, failed := collect(ctx, cfg, client, prices, publish, logger)
		batchesPublished.Add(int64(published))
		vehiclesFailed.Add(int64(failed))
		runDuration.Since(start)
		logger.Info("collection pass complete",
			"published", published, "failed", failed, "took", time.Since(start))
	}

	runOnce()

	if cfg.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(time.Duration(cfg.Interval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			runOnce()
		}
	}
}
