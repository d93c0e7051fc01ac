package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
)

// Make is a vehicle manufacturer node.
type Make struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VehicleModel is a model line node, linked to its Make.
type VehicleModel struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	MakeID string `json:"make_id"`
}

// Vehicle is a concrete model-year node, linked to its VehicleModel.
type Vehicle struct {
	ID    string `json:"id"`
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}

// Snapshot is a persisted report for a vehicle. Payload carries the full
// report JSON; the scalar fields are duplicated as node properties so they
// can be queried without decoding the payload.
type Snapshot struct {
	ID            string         `json:"id"`
	Vehicle       domain.Vehicle `json:"vehicle"`
	EngineVersion string         `json:"engine_version"`
	Score         float64        `json:"score"`
	Verdict       string         `json:"verdict"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Payload       []byte         `json:"payload"`
}

// MakeKey returns the graph ID for a make.
func MakeKey(make string) string {
	return strings.ToLower(strings.TrimSpace(make))
}

// ModelKey returns the graph ID for a model line.
func ModelKey(v domain.Vehicle) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(v.Model), " ", "-"))
	return MakeKey(v.Make) + "-" + slug
}

// VehicleKey returns the graph ID for a model year. The same key is used as
// the vehicle reference in the semantic index payloads.
func VehicleKey(v domain.Vehicle) string {
	return fmt.Sprintf("%s-%d", ModelKey(v), v.Year)
}
