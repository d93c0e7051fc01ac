// Command worker consumes raw collector batches from NATS, scores them
// through the engine and persists report snapshots and the complaint
// search index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LemonScout/lemonscout-mvp/engine/graph"
	"github.com/LemonScout/lemonscout-mvp/engine/ingest"
	"github.com/LemonScout/lemonscout-mvp/engine/report"
	"github.com/LemonScout/lemonscout-mvp/engine/semantic"
	"github.com/LemonScout/lemonscout-mvp/pkg/metrics"
	"github.com/LemonScout/lemonscout-mvp/pkg/natsutil"
	"github.com/LemonScout/lemonscout-mvp/pkg/ollama"
)

// embeddingDims matches the nomic-embed-text output width.
const embeddingDims = 768

// Config holds all environment-based configuration.
type Config struct {
	NATSURL     string
	Neo4jURL    string
	Neo4jUser   string
	Neo4jPass   string
	QdrantURL   string
	Collection  string
	OllamaURL   string
	OllamaModel string
	MetricsPort int
}

func loadConfig() Config {
	port, _ := strconv.Atoi(envOr("METRICS_PORT", "9091"))
	return Config{
		NATSURL:     envOr("NATS_URL", nats.DefaultURL),
		Neo4jURL:    envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:   envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:   envOr("NEO4J_PASS", "password"),
		QdrantURL:   envOr("QDRANT_URL", "localhost:6334"),
		Collection:  envOr("QDRANT_COLLECTION", semantic.DefaultCollection),
		OllamaURL:   envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: envOr("OLLAMA_MODEL", ollama.DefaultModel),
		MetricsPort: port,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(cfg.NATSURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(ctx)

	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	if err := vectorStore.EnsureCollection(ctx, embeddingDims); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	met := metrics.New()

	sub, err := ingest.StartConsumer(nc, ingest.Deps{
		Reports:     report.New(logger),
		GraphStore:  graph.New(neo4jDriver),
		VectorStore: vectorStore,
		Embedder:    ollama.NewEmbedClient(cfg.OllamaURL, cfg.OllamaModel),
		Logger:      logger,
		Metrics:     met,
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer sub.Unsubscribe()

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", met.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: mux,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", "err", err)
		}
	}()

	logger.Info("worker started",
		"subject", natsutil.SubjectBatches,
		"queue", ingest.WorkerQueue,
		"metrics_port", cfg.MetricsPort,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return metricsSrv.Shutdown(shutCtx)
}
