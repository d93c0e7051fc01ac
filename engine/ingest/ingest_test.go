package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/graph"
	"github.com/LemonScout/lemonscout-mvp/engine/report"
	"github.com/LemonScout/lemonscout-mvp/engine/semantic"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Graph mocks ---

type fakeResult struct{}

func (fakeResult) Next(_ context.Context) bool { return false }
func (fakeResult) Record() *neo4j.Record       { return nil }

type fakeSession struct {
	queries   []string
	txQueries []string
	closed    bool
}

func (s *fakeSession) Run(_ context.Context, cypher string, _ map[string]any) (graph.CypherResult, error) {
	s.queries = append(s.queries, cypher)
	return fakeResult{}, nil
}

func (s *fakeSession) ExecuteWrite(_ context.Context, work func(tx graph.CypherRunner) (any, error)) (any, error) {
	return work(&fakeRunner{sess: s})
}

func (s *fakeSession) Close(_ context.Context) error {
	s.closed = true
	return nil
}

type fakeRunner struct {
	sess *fakeSession
}

func (r *fakeRunner) Run(_ context.Context, cypher string, _ map[string]any) (graph.CypherResult, error) {
	r.sess.txQueries = append(r.sess.txQueries, cypher)
	return fakeResult{}, nil
}

type fakeOpener struct {
	session *fakeSession
}

func (o *fakeOpener) OpenSession(_ context.Context) graph.CypherSession {
	return o.session
}

// --- Stage tests ---

func TestValidate_RejectsBadVehicle(t *testing.T) {
	res := Validate(context.Background(), RawBatch{Vehicle: domain.Vehicle{Make: "", Model: "Civic", Year: 2022}})
	if res.IsOk() {
		t.Fatal("expected validation error")
	}
}

func TestValidate_AcceptsGoodVehicle(t *testing.T) {
	res := Validate(context.Background(), RawBatch{Vehicle: domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2022}})
	if res.IsErr() {
		t.Fatal("unexpected error")
	}
}

func TestTransform_MapsComplaintsAndRecalls(t *testing.T) {
	batch := RawBatch{
		Vehicle: domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2022},
		Complaints: []RawComplaint{{
			ODINumber:          11223344,
			Crash:              true,
			NumberOfInjuries:   2,
			DateComplaintFiled: "03/15/2023",
			Components:         "ENGINE",
			Summary:            "  Engine stalled on highway.  ",
		}},
		Recalls: []RawRecall{{
			NHTSACampaignNumber: "23V123000",
			ReportReceivedDate:  "2023-04-01",
			Component:           "FUEL SYSTEM",
			Consequence:         "Fire risk",
			Remedy:              "Replace pump",
			PotentialUnits:      5000,
		}},
	}

	res := Transform(context.Background(), batch)
	sb, err := res.Unwrap()
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	c := sb.Complaints[0]
	if c.ID != "nhtsa-11223344" {
		t.Errorf("complaint ID = %q", c.ID)
	}
	if !c.Crash || c.Injuries != 2 {
		t.Errorf("complaint = %+v", c)
	}
	if c.Filed != time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC) {
		t.Errorf("filed = %v", c.Filed)
	}
	if c.Summary != "Engine stalled on highway." {
		t.Errorf("summary = %q", c.Summary)
	}

	r := sb.Recalls[0]
	if r.Campaign != "23V123000" || r.PossiblyAffected != 5000 {
		t.Errorf("recall = %+v", r)
	}
	if r.Date != time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("recall date = %v", r.Date)
	}
}

func TestNHTSADateLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"03/15/2023", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2023-03-15", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"20230315", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		if got := nhtsaDate(tt.in); !got.Equal(tt.want) {
			t.Errorf("nhtsaDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComplaintPointID_Stable(t *testing.T) {
	a := complaintPointID("honda-civic-2022", 123)
	b := complaintPointID("honda-civic-2022", 123)
	c := complaintPointID("honda-civic-2022", 124)
	if a != b {
		t.Error("ID not deterministic")
	}
	if a == c {
		t.Error("distinct complaints share an ID")
	}
}

// --- Pipeline ---

func validBatch() RawBatch {
	return RawBatch{
		Vehicle: domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2022},
		Attrs: domain.VehicleAttrs{
			Vehicle:     domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2022},
			CombinedMPG: 33,
			FuelType:    domain.FuelRegular,
			Class:       "Compact Cars",
		},
		Complaints: []RawComplaint{{
			ODINumber:          1,
			DateComplaintFiled: "01/10/2023",
			Components:         "ENGINE",
			Summary:            "Stalls at idle",
		}},
		SalesVolume: 100000,
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	sess := &fakeSession{}
	deps := Deps{
		Reports:    report.New(discardLogger()),
		GraphStore: graph.NewWithOpener(&fakeOpener{session: sess}),
		Logger:     discardLogger(),
	}

	res := NewPipeline(deps)(context.Background(), validBatch())
	reportID, err := res.Unwrap()
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if reportID == "" {
		t.Fatal("empty report ID")
	}
	// Hierarchy plus snapshot writes happen in one transaction.
	if len(sess.txQueries) != 4 {
		t.Errorf("tx statements = %d, want 4", len(sess.txQueries))
	}
	if !sess.closed {
		t.Error("session not closed")
	}
}

func TestPipeline_InvalidVehicleFails(t *testing.T) {
	deps := Deps{
		Reports:    report.New(discardLogger()),
		GraphStore: graph.NewWithOpener(&fakeOpener{session: &fakeSession{}}),
		Logger:     discardLogger(),
	}
	batch := validBatch()
	batch.Vehicle.Year = 1800

	res := NewPipeline(deps)(context.Background(), batch)
	if res.IsOk() {
		t.Fatal("expected failure for out-of-range year")
	}
}

func TestPipeline_EmptyFuelTypeDefaults(t *testing.T) {
	deps := Deps{
		Reports:    report.New(discardLogger()),
		GraphStore: graph.NewWithOpener(&fakeOpener{session: &fakeSession{}}),
		Logger:     discardLogger(),
	}
	batch := validBatch()
	batch.Attrs.FuelType = ""

	res := NewPipeline(deps)(context.Background(), batch)
	if res.IsErr() {
		_, err := res.Unwrap()
		t.Fatalf("pipeline with empty fuel type: %v", err)
	}
}

func TestPipeline_BadFuelTypeFails(t *testing.T) {
	deps := Deps{
		Reports:    report.New(discardLogger()),
		GraphStore: graph.NewWithOpener(&fakeOpener{session: &fakeSession{}}),
		Logger:     discardLogger(),
	}
	batch := validBatch()
	batch.Attrs.FuelType = domain.FuelType("plutonium")

	res := NewPipeline(deps)(context.Background(), batch)
	if res.IsOk() {
		t.Fatal("expected failure for unknown fuel type")
	}
}

// --- Complaint indexing ---

type fakeEmbedder struct {
	calls int
	err   error
}

func (e *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakePoints struct {
	upserts []*pb.UpsertPoints
	deletes []*pb.DeletePoints
}

func (p *fakePoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	p.upserts = append(p.upserts, in)
	return &pb.PointsOperationResponse{}, nil
}

func (p *fakePoints) Delete(_ context.Context, in *pb.DeletePoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	p.deletes = append(p.deletes, in)
	return &pb.PointsOperationResponse{}, nil
}

func (p *fakePoints) Search(_ context.Context, _ *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	return &pb.SearchResponse{}, nil
}

func TestIndexComplaints_EmbedsAndUpserts(t *testing.T) {
	points := &fakePoints{}
	vs := semantic.NewWithClients(points, nil, semantic.DefaultCollection)
	emb := &fakeEmbedder{}

	batch := validBatch()
	batch.Complaints = append(batch.Complaints, RawComplaint{
		ODINumber: 2, Components: "BRAKES", Summary: "Grinding noise",
	}, RawComplaint{
		ODINumber: 3, Components: "ENGINE", Summary: "", // skipped
	})

	br := BuiltReport{
		Batch: batch,
		Report: &report.VehicleReport{
			ID:      "rep-1",
			Vehicle: batch.Vehicle,
		},
	}
	if err := indexComplaints(context.Background(), vs, emb, br); err != nil {
		t.Fatalf("indexComplaints: %v", err)
	}

	// Delete-before-upsert, scoped to the vehicle key.
	if len(points.deletes) != 1 {
		t.Fatalf("deletes = %d, want 1", len(points.deletes))
	}
	if len(points.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(points.upserts))
	}
	if emb.calls != 2 {
		t.Errorf("embed calls = %d, want 2 (empty summary skipped)", emb.calls)
	}
	up := points.upserts[0]
	if len(up.GetPoints()) != 2 {
		t.Fatalf("points = %d, want 2", len(up.GetPoints()))
	}
	payload := up.GetPoints()[0].GetPayload()
	if payload["vehicle"].GetStringValue() != "honda-civic-2022" {
		t.Errorf("vehicle payload = %q", payload["vehicle"].GetStringValue())
	}
	if payload["summary"].GetStringValue() == "" {
		t.Error("summary payload missing")
	}
}

func TestIndexComplaints_EmbedErrorStops(t *testing.T) {
	points := &fakePoints{}
	vs := semantic.NewWithClients(points, nil, semantic.DefaultCollection)
	emb := &fakeEmbedder{err: errEmbedDown}

	br := BuiltReport{
		Batch:  validBatch(),
		Report: &report.VehicleReport{ID: "rep-1", Vehicle: validBatch().Vehicle},
	}
	if err := indexComplaints(context.Background(), vs, emb, br); err == nil {
		t.Fatal("expected embed error to propagate")
	}
	if len(points.upserts) != 0 {
		t.Errorf("upserts = %d, want 0", len(points.upserts))
	}
}

var errEmbedDown = errors.New("embedder unavailable")

func TestRetryCount(t *testing.T) {
	m := nats.NewMsg("vehicle.batches")
	if got := retryCount(m); got != 0 {
		t.Errorf("retryCount without header = %d", got)
	}

	m.Header.Set("X-Retry-Count", "2")
	if got := retryCount(m); got != 2 {
		t.Errorf("retryCount = %d, want 2", got)
	}

	m.Header.Set("X-Retry-Count", "junk")
	if got := retryCount(m); got != 0 {
		t.Errorf("retryCount junk = %d, want 0", got)
	}
}
