// Package ingest runs raw NHTSA batches through validation, normalization,
// scoring and storage. The worker consumes batches from NATS and feeds them
// through the stage pipeline; failures retry and then land on the DLQ.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/graph"
	"github.com/LemonScout/lemonscout-mvp/engine/report"
	"github.com/LemonScout/lemonscout-mvp/engine/semantic"
	"github.com/LemonScout/lemonscout-mvp/engine/taxonomy"
	"github.com/LemonScout/lemonscout-mvp/pkg/fn"
	"github.com/LemonScout/lemonscout-mvp/pkg/metrics"
	"github.com/LemonScout/lemonscout-mvp/pkg/natsutil"
)

const (
	// MaxRetries before a batch is sent to the DLQ.
	MaxRetries = 3
	// WorkerQueue is the queue group worker instances share.
	WorkerQueue = "scoring-workers"
	// maxIndexedComplaints bounds how many complaint summaries per batch are
	// embedded into the search index.
	maxIndexedComplaints = 50
)

// Deps holds the external dependencies of the pipeline.
type Deps struct {
	Reports     *report.Service
	GraphStore  *graph.GraphStore
	VectorStore *semantic.VectorStore
	Embedder    semantic.Embedder
	Logger      *slog.Logger
	Metrics     *metrics.Registry
}

// BuiltReport pairs a scored report with the batch it came from.
type BuiltReport struct {
	Batch  RawBatch
	Report *report.VehicleReport
}

// Validate rejects batches whose vehicle identity is malformed.
var Validate fn.Stage[RawBatch, RawBatch] = func(_ context.Context, b RawBatch) fn.Result[RawBatch] {
	if err := domain.ValidateVehicle(b.Vehicle); err != nil {
		return fn.Err[RawBatch](err)
	}
	return fn.Ok(b)
}

// Transform normalizes raw NHTSA rows into domain records.
var Transform fn.Stage[RawBatch, ScoredBatch] = func(_ context.Context, b RawBatch) fn.Result[ScoredBatch] {
	return fn.Ok(ScoredBatch{
		Batch:      b,
		Complaints: fn.Map(b.Complaints, complaintFromRaw),
		Recalls:    fn.Map(b.Recalls, recallFromRaw),
	})
}

// NewScore creates the stage that builds the full report.
func NewScore(svc *report.Service) fn.Stage[ScoredBatch, BuiltReport] {
	return fn.TryStage(func(ctx context.Context, sb ScoredBatch) (BuiltReport, error) {
		attrs := sb.Batch.Attrs
		if attrs.FuelType == "" {
			attrs.FuelType = domain.FuelRegular
		}
		rep, err := svc.Build(ctx, report.BuildInput{
			Vehicle:     sb.Batch.Vehicle,
			Attrs:       attrs,
			Complaints:  sb.Complaints,
			Recalls:     sb.Recalls,
			FuelPrices:  sb.Batch.FuelPrices,
			SalesVolume: sb.Batch.SalesVolume,
		})
		if err != nil {
			return BuiltReport{}, fmt.Errorf("score %s %s %d: %w",
				sb.Batch.Vehicle.Make, sb.Batch.Vehicle.Model, sb.Batch.Vehicle.Year, err)
		}
		return BuiltReport{Batch: sb.Batch, Report: rep}, nil
	})
}

// NewStore creates the stage that persists the snapshot to Neo4j and indexes
// complaint summaries in Qdrant. Index failures are logged, not fatal; the
// snapshot is the system of record.
func NewStore(gs *graph.GraphStore, vs *semantic.VectorStore, emb semantic.Embedder, log *slog.Logger) fn.Stage[BuiltReport, string] {
	return fn.TryStage(func(ctx context.Context, br BuiltReport) (string, error) {
		payload, err := json.Marshal(br.Report)
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}

		snap := graph.Snapshot{
			ID:            br.Report.ID,
			Vehicle:       br.Report.Vehicle,
			EngineVersion: br.Report.Engine,
			Score:         br.Report.Score.Overall,
			Verdict:       string(br.Report.Summary.Verdict),
			GeneratedAt:   br.Report.GeneratedAt,
			Payload:       payload,
		}
		if err := gs.SaveSnapshot(ctx, snap); err != nil {
			return "", fmt.Errorf("graph save: %w", err)
		}

		if vs != nil && emb != nil {
			if err := indexComplaints(ctx, vs, emb, br); err != nil {
				log.Warn("ingest: complaint indexing", "error", err, "report_id", br.Report.ID)
			}
		}

		return br.Report.ID, nil
	})
}

// indexComplaints embeds complaint summaries and upserts them into the
// complaint index, replacing the vehicle's previous points.
func indexComplaints(ctx context.Context, vs *semantic.VectorStore, emb semantic.Embedder, br BuiltReport) error {
	key := graph.VehicleKey(br.Report.Vehicle)
	if err := vs.DeleteByVehicle(ctx, key); err != nil {
		return err
	}

	raws := br.Batch.Complaints
	if len(raws) > maxIndexedComplaints {
		raws = raws[:maxIndexedComplaints]
	}

	var records []semantic.ComplaintRecord
	for _, c := range raws {
		if c.Summary == "" {
			continue
		}
		vec, err := emb.Embed(ctx, c.Summary)
		if err != nil {
			return fmt.Errorf("embed complaint %d: %w", c.ODINumber, err)
		}
		records = append(records, semantic.ComplaintRecord{
			ID:        complaintPointID(key, c.ODINumber),
			Embedding: vec,
			Payload: map[string]any{
				"vehicle":   key,
				"label":     taxonomy.Fine(c.Components),
				"summary":   c.Summary,
				"component": c.Components,
			},
		})
	}
	return vs.Upsert(ctx, records)
}

// NewPipeline composes the full pipeline with tracing spans per stage.
func NewPipeline(deps Deps) fn.Stage[RawBatch, string] {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	validated := fn.Traced("ingest.validate", Validate)
	transformed := fn.Then(validated, fn.Traced("ingest.transform", Transform))
	scored := fn.Then(transformed, fn.Traced("ingest.score", NewScore(deps.Reports)))
	return fn.Then(scored, fn.Traced("ingest.store", NewStore(deps.GraphStore, deps.VectorStore, deps.Embedder, log)))
}

// StartConsumer subscribes to the batch subject in the worker queue group and
// runs each batch through the pipeline. Failed batches are re-published with
// an incremented retry header until MaxRetries, then sent to the DLQ.
func StartConsumer(nc *nats.Conn, deps Deps) (*nats.Subscription, error) {
	pipeline := NewPipeline(deps)
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	var processed, failed, deadLettered *metrics.Counter
	if deps.Metrics != nil {
		processed = deps.Metrics.Counter("ingest_batches_processed_total", "Batches scored and stored")
		failed = deps.Metrics.Counter("ingest_batches_failed_total", "Batch attempts that failed")
		deadLettered = deps.Metrics.Counter("ingest_batches_dead_lettered_total", "Batches sent to the DLQ")
	}

	return nc.QueueSubscribe(natsutil.SubjectBatches, WorkerQueue, func(msg *nats.Msg) {
		var batch RawBatch
		if err := json.Unmarshal(msg.Data, &batch); err != nil {
			log.Error("ingest: unmarshal failed", "error", err)
			return
		}

		ctx := context.Background()
		retries := retryCount(msg)

		result := pipeline(ctx, batch)
		if result.IsErr() {
			_, pipeErr := result.Unwrap()
			retries++
			if failed != nil {
				failed.Inc()
			}
			log.Error("ingest: pipeline failed",
				"error", pipeErr,
				"make", batch.Vehicle.Make,
				"model", batch.Vehicle.Model,
				"year", batch.Vehicle.Year,
				"retry", retries,
			)

			if retries >= MaxRetries {
				dlq := DLQMessage{Batch: batch, Error: pipeErr.Error(), Retries: retries}
				if err := natsutil.Publish(ctx, nc, natsutil.SubjectBatchDLQ, dlq); err != nil {
					log.Error("ingest: DLQ publish failed", "error", err)
				}
				if deadLettered != nil {
					deadLettered.Inc()
				}
				return
			}

			retryMsg := nats.NewMsg(natsutil.SubjectBatches)
			retryMsg.Data = msg.Data
			retryMsg.Header.Set("X-Retry-Count", fmt.Sprintf("%d", retries))
			if err := nc.PublishMsg(retryMsg); err != nil {
				log.Error("ingest: retry publish failed", "error", err)
			}
			return
		}

		reportID, _ := result.Unwrap()
		if processed != nil {
			processed.Inc()
		}
		log.Info("ingest: batch scored", "report_id", reportID,
			"make", batch.Vehicle.Make, "model", batch.Vehicle.Model, "year", batch.Vehicle.Year)

		event := ReportEvent{ReportID: reportID, Vehicle: batch.Vehicle}
		if err := natsutil.Publish(ctx, nc, natsutil.SubjectReports, event); err != nil {
			log.Warn("ingest: report event publish failed", "error", err)
		}
	})
}

// ReportEvent announces a stored report on the reports subject.
type ReportEvent struct {
	ReportID string         `json:"report_id"`
	Vehicle  domain.Vehicle `json:"vehicle"`
}

func retryCount(msg *nats.Msg) int {
	if msg.Header == nil {
		return 0
	}
	n := 0
	if v := msg.Header.Get("X-Retry-Count"); v != "" {
		fmt.Sscanf(v, "%d", &n)
	}
	return n
}
