package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/ingest"
)

// replay walks the directory in name order and publishes every valid batch
// file. Files that fail to parse or validate are logged and skipped; a publish
// failure aborts the run since the queue itself is unavailable.
func replay(ctx context.Context, dir string, publish publishFunc, log *slog.Logger) (published, skipped int, err error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, 0, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		log.Warn("no batch files found", "dir", dir)
		return 0, 0, nil
	}
	sort.Strings(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return published, skipped, ctx.Err()
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("unreadable batch file", "path", path, "error", err)
			skipped++
			continue
		}

		var batch ingest.RawBatch
		if err := json.Unmarshal(data, &batch); err != nil {
			log.Warn("malformed batch file", "path", path, "error", err)
			skipped++
			continue
		}
		if err := domain.ValidateVehicle(batch.Vehicle); err != nil {
			log.Warn("batch has invalid vehicle", "path", path, "error", err)
			skipped++
			continue
		}

		if err := publish(ctx, batch); err != nil {
			return published, skipped, fmt.Errorf("publish %s: %w", path, err)
		}
		published++
		log.Info("batch replayed",
			"path", path,
			"make", batch.Vehicle.Make, "model", batch.Vehicle.Model, "year", batch.Vehicle.Year,
			"complaints", len(batch.Complaints))
	}
	return published, skipped, nil
}

// publishFunc hands one batch to the worker queue.
type publishFunc func(ctx context.Context, batch ingest.RawBatch) error
