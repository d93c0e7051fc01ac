// Package graph persists the vehicle hierarchy and report snapshots in
// Neo4j. Makes, model lines and model years form a small tree; each model
// year carries the report snapshots generated for it.
package graph

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/pkg/repo"
)

// ErrSnapshotNotFound is returned when a vehicle has no persisted report.
var ErrSnapshotNotFound = errors.New("graph: snapshot not found")

// GraphStore provides graph operations on top of a session opener.
type GraphStore struct {
	opener    SessionOpener
	snapshots *repo.Neo4jRepo[Snapshot, string]
}

// New creates a GraphStore backed by a Neo4j driver.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return &GraphStore{
		opener:    &driverOpener{driver: driver},
		snapshots: newSnapshotRepo(driver),
	}
}

// NewWithOpener creates a GraphStore with a custom session opener. Lookups
// that normally go through the generic repository fall back to the opener.
func NewWithOpener(opener SessionOpener) *GraphStore {
	return &GraphStore{opener: opener}
}

// SaveMake creates or updates a Make node.
func (g *GraphStore) SaveMake(ctx context.Context, m Make) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MERGE (n:Make {id: $id}) SET n.name = $name`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":   m.ID,
		"name": m.Name,
	})
	return err
}

// SaveVehicleModel creates or updates a VehicleModel node and links it to its Make.
func (g *GraphStore) SaveVehicleModel(ctx context.Context, m VehicleModel) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MERGE (n:VehicleModel {id: $id}) SET n.name = $name, n.make_id = $makeID
	           WITH n
	           MATCH (mk:Make {id: $makeID})
	           MERGE (mk)-[:HAS_MODEL]->(n)`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":     m.ID,
		"name":   m.Name,
		"makeID": m.MakeID,
	})
	return err
}

// SaveVehicle creates or updates a model-year node and links it to its VehicleModel.
func (g *GraphStore) SaveVehicle(ctx context.Context, v Vehicle) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MERGE (n:Vehicle {id: $id})
	           SET n.year = $year, n.make = $make, n.model = $model
	           WITH n
	           MATCH (m:VehicleModel {id: $modelID})
	           MERGE (n)-[:OF_MODEL]->(m)`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":      v.ID,
		"year":    v.Year,
		"make":    v.Make,
		"model":   v.Model,
		"modelID": ModelKey(domain.Vehicle{Make: v.Make, Model: v.Model}),
	})
	return err
}

// EnsureVehicleHierarchy creates Make, VehicleModel and Vehicle nodes for the
// given identity in a single transaction and returns the vehicle node ID.
func (g *GraphStore) EnsureVehicleHierarchy(ctx context.Context, v domain.Vehicle) (string, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	makeID := MakeKey(v.Make)
	modelID := ModelKey(v)
	vehicleID := VehicleKey(v)

	_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		return nil, ensureHierarchyTx(ctx, tx, v, makeID, modelID, vehicleID)
	})
	if err != nil {
		return "", err
	}
	return vehicleID, nil
}

func ensureHierarchyTx(ctx context.Context, tx CypherRunner, v domain.Vehicle, makeID, modelID, vehicleID string) error {
	cypher := `MERGE (mk:Make {id: $id}) SET mk.name = $name`
	if _, err := tx.Run(ctx, cypher, map[string]any{"id": makeID, "name": v.Make}); err != nil {
		return err
	}

	cypher = `MERGE (m:VehicleModel {id: $id}) SET m.name = $name, m.make_id = $makeID
	          WITH m
	          MATCH (mk:Make {id: $makeID})
	          MERGE (mk)-[:HAS_MODEL]->(m)`
	if _, err := tx.Run(ctx, cypher, map[string]any{"id": modelID, "name": v.Model, "makeID": makeID}); err != nil {
		return err
	}

	cypher = `MERGE (veh:Vehicle {id: $id}) SET veh.year = $year, veh.make = $make, veh.model = $model
	          WITH veh
	          MATCH (m:VehicleModel {id: $modelID})
	          MERGE (veh)-[:OF_MODEL]->(m)`
	_, err := tx.Run(ctx, cypher, map[string]any{
		"id": vehicleID, "year": v.Year, "make": v.Make, "model": v.Model, "modelID": modelID,
	})
	return err
}

// SaveSnapshot persists a report snapshot, creating the vehicle hierarchy as
// needed, in a single transaction.
func (g *GraphStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	makeID := MakeKey(snap.Vehicle.Make)
	modelID := ModelKey(snap.Vehicle)
	vehicleID := VehicleKey(snap.Vehicle)

	_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		if err := ensureHierarchyTx(ctx, tx, snap.Vehicle, makeID, modelID, vehicleID); err != nil {
			return nil, err
		}

		cypher := `MERGE (s:ReportSnapshot {id: $id})
		           SET s.engine_version = $engine, s.score = $score, s.verdict = $verdict,
		               s.generated_at = $generatedAt, s.payload = $payload, s.vehicle_id = $vehicleID
		           WITH s
		           MATCH (veh:Vehicle {id: $vehicleID})
		           MERGE (veh)-[:HAS_SNAPSHOT]->(s)`
		_, err := tx.Run(ctx, cypher, map[string]any{
			"id":          snap.ID,
			"engine":      snap.EngineVersion,
			"score":       snap.Score,
			"verdict":     snap.Verdict,
			"generatedAt": snap.GeneratedAt.UTC().Format(time.RFC3339Nano),
			"payload":     string(snap.Payload),
			"vehicleID":   vehicleID,
		})
		return nil, err
	})
	return err
}

// LatestSnapshot returns the most recent snapshot for a vehicle, or
// ErrSnapshotNotFound.
func (g *GraphStore) LatestSnapshot(ctx context.Context, v domain.Vehicle) (Snapshot, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (veh:Vehicle {id: $vehicleID})-[:HAS_SNAPSHOT]->(s:ReportSnapshot)
	           RETURN s ORDER BY s.generated_at DESC LIMIT 1`
	result, err := sess.Run(ctx, cypher, map[string]any{"vehicleID": VehicleKey(v)})
	if err != nil {
		return Snapshot{}, err
	}
	if !result.Next(ctx) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	rec := result.Record()
	val, _ := rec.Get("s")
	return snapshotFromNode(val), nil
}

// GetSnapshot returns a snapshot by ID, or ErrSnapshotNotFound. It goes
// through the generic repository when one is attached, otherwise straight
// through the session opener.
func (g *GraphStore) GetSnapshot(ctx context.Context, id string) (Snapshot, error) {
	if g.snapshots != nil {
		snap, err := g.snapshots.Get(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return snap, err
	}

	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.Run(ctx, `MATCH (s:ReportSnapshot {id: $id}) RETURN s`, map[string]any{"id": id})
	if err != nil {
		return Snapshot{}, err
	}
	if !result.Next(ctx) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	val, _ := result.Record().Get("s")
	return snapshotFromNode(val), nil
}

// snapshotFromNode builds a Snapshot from a node-like value.
func snapshotFromNode(val any) Snapshot {
	props := nodeProps(val)
	snap := Snapshot{
		ID:            strProp(props, "id"),
		EngineVersion: strProp(props, "engine_version"),
		Score:         floatProp(props, "score"),
		Verdict:       strProp(props, "verdict"),
		Payload:       []byte(strProp(props, "payload")),
	}
	if ts, err := time.Parse(time.RFC3339Nano, strProp(props, "generated_at")); err == nil {
		snap.GeneratedAt = ts
	}
	return snap
}

// nodeProps extracts the property map from a driver node or, for test mocks,
// a plain map.
func nodeProps(val any) map[string]any {
	type propsHolder interface {
		GetProperties() map[string]any
	}
	if ph, ok := val.(propsHolder); ok {
		return ph.GetProperties()
	}
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return nil
}
