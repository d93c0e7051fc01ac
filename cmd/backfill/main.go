// Command backfill feeds stored batch files into the scoring queue. It reads
// JSON files matching ingest.RawBatch from a directory and publishes each to
// the worker subject, so historical NHTSA pulls can be rescored without
// hitting the upstream API again.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/LemonScout/lemonscout-mvp/engine/ingest"
	"github.com/LemonScout/lemonscout-mvp/pkg/natsutil"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "batches", "directory of RawBatch JSON files")
	natsURL := flag.String("nats", envOr("NATS_URL", nats.DefaultURL), "NATS server URL")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(*natsURL)
	if err != nil {
		logger.Error("nats connect failed", "err", err)
		os.Exit(1)
	}
	defer nc.Close()

	publish := func(ctx context.Context, batch ingest.RawBatch) error {
		return natsutil.Publish(ctx, nc, natsutil.SubjectBatches, batch)
	}

	published, skipped, err := replay(ctx, *dir, publish, logger)
	logger.Info("backfill complete", "published", published, "skipped", skipped)
	if err != nil {
		logger.Error("backfill failed", "err", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
