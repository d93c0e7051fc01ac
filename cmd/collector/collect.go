package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/ingest"
)

// vehicleSource is the slice of the NHTSA client the collect loop uses.
type vehicleSource interface {
	Models(ctx context.Context, make string, year int) ([]string, error)
	Complaints(ctx context.Context, make, model string, year int) ([]ingest.RawComplaint, error)
	Recalls(ctx context.Context, make, model string, year int) ([]ingest.RawRecall, error)
}

// publishFunc hands a finished batch to the worker queue.
type publishFunc func(ctx context.Context, batch ingest.RawBatch) error

// collect walks the configured makes and years, discovers models, fetches
// complaints and recalls per vehicle and publishes one batch each. A failure
// for one vehicle is logged and skipped; the walk continues.
func collect(ctx context.Context, cfg Config, src vehicleSource, prices domain.FuelPrices, publish publishFunc, log *slog.Logger) (published, failed int) {
	idx := attrsIndex(cfg.Attrs)

	for _, year := range cfg.Years {
		for _, mk := range cfg.Makes {
			if ctx.Err() != nil {
				return published, failed
			}

			models, err := src.Models(ctx, mk, year)
			if err != nil {
				log.Warn("model discovery failed", "make", mk, "year", year, "error", err)
				failed++
				continue
			}
			if len(models) == 0 {
				log.Info("no models with complaint data", "make", mk, "year", year)
				continue
			}
			if len(models) > cfg.MaxModelsPerMake {
				models = models[:cfg.MaxModelsPerMake]
			}

			for _, model := range models {
				if ctx.Err() != nil {
					return published, failed
				}

				complaints, err := src.Complaints(ctx, mk, model, year)
				if err != nil {
					log.Warn("complaint fetch failed", "make", mk, "model", model, "year", year, "error", err)
					failed++
					continue
				}

				recalls, err := src.Recalls(ctx, mk, model, year)
				if err != nil {
					// Recalls are supplementary; score on complaints alone.
					log.Warn("recall fetch failed", "make", mk, "model", model, "year", year, "error", err)
					recalls = nil
				}

				v := domain.Vehicle{Make: titleCase(mk), Model: titleCase(model), Year: year}
				attrs, sales := attrsFor(idx, v)

				batch := ingest.RawBatch{
					Vehicle:     v,
					Complaints:  complaints,
					Recalls:     recalls,
					Attrs:       attrs,
					FuelPrices:  prices,
					SalesVolume: sales,
				}
				if err := publish(ctx, batch); err != nil {
					log.Error("batch publish failed", "make", mk, "model", model, "year", year, "error", err)
					failed++
					continue
				}
				published++
				log.Info("batch published",
					"make", v.Make, "model", v.Model, "year", year,
					"complaints", len(complaints), "recalls", len(recalls))
			}
		}
	}
	return published, failed
}

// titleCase folds NHTSA's all-caps names into display casing, word by word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
