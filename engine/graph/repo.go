package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/LemonScout/lemonscout-mvp/pkg/repo"
)

// newSnapshotRepo creates a Neo4j-backed repository for ReportSnapshot nodes.
func newSnapshotRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[Snapshot, string] {
	return repo.NewNeo4jRepo[Snapshot, string](
		driver,
		"ReportSnapshot",
		snapshotToMap,
		snapshotFromRecord,
	)
}

func snapshotToMap(s Snapshot) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"engine_version": s.EngineVersion,
		"score":          s.Score,
		"verdict":        s.Verdict,
		"generated_at":   s.GeneratedAt.UTC().Format(time.RFC3339Nano),
		"payload":        string(s.Payload),
		"vehicle_id":     VehicleKey(s.Vehicle),
	}
}

func snapshotFromRecord(rec *neo4j.Record) (Snapshot, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotFromNode(node.Props), nil
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
