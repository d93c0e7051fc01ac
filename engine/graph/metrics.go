package graph

import (
	"context"
	"fmt"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
)

// MakeStats holds snapshot coverage statistics for a make.
type MakeStats struct {
	Name      string `json:"name"`
	Models    int64  `json:"models"`
	Snapshots int64  `json:"snapshots"`
}

// NodeCounts returns node counts grouped by label.
func (g *GraphStore) NodeCounts(ctx context.Context) (map[string]int64, error) {
	return g.countsBy(ctx, `MATCH (n) RETURN labels(n)[0] AS type, count(*) AS count`)
}

// RelationshipCounts returns relationship counts grouped by type.
func (g *GraphStore) RelationshipCounts(ctx context.Context) (map[string]int64, error) {
	return g.countsBy(ctx, `MATCH ()-[r]->() RETURN type(r) AS type, count(*) AS count`)
}

func (g *GraphStore) countsBy(ctx context.Context, cypher string) (map[string]int64, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for result.Next(ctx) {
		rec := result.Record()
		typ, _ := rec.Get("type")
		cnt, _ := rec.Get("count")
		if t, ok := typ.(string); ok {
			if c, ok := cnt.(int64); ok {
				counts[t] = c
			}
		}
	}
	return counts, nil
}

// TopMakes returns the makes with the most persisted snapshots.
func (g *GraphStore) TopMakes(ctx context.Context, limit int) ([]MakeStats, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (mk:Make)
		OPTIONAL MATCH (mk)-[:HAS_MODEL]->(m:VehicleModel)
		OPTIONAL MATCH (m)<-[:OF_MODEL]-(:Vehicle)-[:HAS_SNAPSHOT]->(s:ReportSnapshot)
		RETURN mk.name AS name, count(DISTINCT m) AS models, count(DISTINCT s) AS snapshots
		ORDER BY snapshots DESC LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"limit": int64(limit)})
	if err != nil {
		return nil, err
	}
	var stats []MakeStats
	for result.Next(ctx) {
		rec := result.Record()
		name, _ := rec.Get("name")
		models, _ := rec.Get("models")
		snaps, _ := rec.Get("snapshots")
		s := MakeStats{}
		if n, ok := name.(string); ok {
			s.Name = n
		}
		if m, ok := models.(int64); ok {
			s.Models = m
		}
		if c, ok := snaps.(int64); ok {
			s.Snapshots = c
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// VehicleHierarchy returns the Make, VehicleModel and Vehicle nodes for an
// identity, or an error when the vehicle is not in the graph.
func (g *GraphStore) VehicleHierarchy(ctx context.Context, v domain.Vehicle) (Make, VehicleModel, Vehicle, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (mk:Make {id: $makeID})-[:HAS_MODEL]->(m:VehicleModel {id: $modelID})<-[:OF_MODEL]-(veh:Vehicle {id: $vehicleID})
	           RETURN mk, m, veh`
	result, err := sess.Run(ctx, cypher, map[string]any{
		"makeID":    MakeKey(v.Make),
		"modelID":   ModelKey(v),
		"vehicleID": VehicleKey(v),
	})
	if err != nil {
		return Make{}, VehicleModel{}, Vehicle{}, err
	}
	if !result.Next(ctx) {
		return Make{}, VehicleModel{}, Vehicle{}, fmt.Errorf("vehicle not found: %s %s %d", v.Make, v.Model, v.Year)
	}

	rec := result.Record()
	mkVal, _ := rec.Get("mk")
	mVal, _ := rec.Get("m")
	vehVal, _ := rec.Get("veh")

	mkProps := nodeProps(mkVal)
	mProps := nodeProps(mVal)
	vehProps := nodeProps(vehVal)

	mk := Make{
		ID:   strProp(mkProps, "id"),
		Name: strProp(mkProps, "name"),
	}
	vm := VehicleModel{
		ID:     strProp(mProps, "id"),
		Name:   strProp(mProps, "name"),
		MakeID: strProp(mProps, "make_id"),
	}
	veh := Vehicle{
		ID:    strProp(vehProps, "id"),
		Year:  intProp(vehProps, "year"),
		Make:  strProp(vehProps, "make"),
		Model: strProp(vehProps, "model"),
	}
	return mk, vm, veh, nil
}
