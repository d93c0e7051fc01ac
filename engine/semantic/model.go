package semantic

import "context"

// Embedder turns text into a vector. Implemented by pkg/ollama; the store
// itself never calls it, callers embed before upserting or searching.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ComplaintRecord is a single embedded complaint to store.
type ComplaintRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any // vehicle, label, summary, component
}

// SearchResult is a single similarity hit from the complaint index.
type SearchResult struct {
	ID      string            `json:"id"`
	Score   float32           `json:"score"`
	Summary string            `json:"summary"`
	Vehicle string            `json:"vehicle"`
	Label   string            `json:"label"`
	Meta    map[string]string `json:"meta"`
}
