package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/LemonScout/lemonscout-mvp/engine/graph"
	"github.com/LemonScout/lemonscout-mvp/engine/report"
	"github.com/LemonScout/lemonscout-mvp/engine/semantic"
	"github.com/LemonScout/lemonscout-mvp/pkg/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Graph mocks ---

type stubResult struct {
	records []*neo4j.Record
	idx     int
}

func (r *stubResult) Next(_ context.Context) bool {
	if r.idx < len(r.records) {
		r.idx++
		return true
	}
	return false
}

func (r *stubResult) Record() *neo4j.Record { return r.records[r.idx-1] }

type stubSession struct {
	runResult graph.CypherResult
	runErr    error
	runFunc   func(cypher string) (graph.CypherResult, error)
}

func (s *stubSession) Run(_ context.Context, cypher string, _ map[string]any) (graph.CypherResult, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	if s.runFunc != nil {
		return s.runFunc(cypher)
	}
	return s.runResult, nil
}

func (s *stubSession) ExecuteWrite(_ context.Context, work func(tx graph.CypherRunner) (any, error)) (any, error) {
	return work(stubRunner{s})
}

func (s *stubSession) Close(_ context.Context) error { return nil }

type stubRunner struct{ s *stubSession }

func (r stubRunner) Run(ctx context.Context, cypher string, params map[string]any) (graph.CypherResult, error) {
	return r.s.Run(ctx, cypher, params)
}

type stubOpener struct{ session *stubSession }

func (o *stubOpener) OpenSession(_ context.Context) graph.CypherSession { return o.session }

// --- Qdrant and embedder mocks ---

type stubPoints struct {
	searchReq  *pb.SearchPoints
	searchResp *pb.SearchResponse
}

func (p *stubPoints) Upsert(_ context.Context, _ *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	return &pb.PointsOperationResponse{}, nil
}

func (p *stubPoints) Delete(_ context.Context, _ *pb.DeletePoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	return &pb.PointsOperationResponse{}, nil
}

func (p *stubPoints) Search(_ context.Context, in *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	p.searchReq = in
	if p.searchResp != nil {
		return p.searchResp, nil
	}
	return &pb.SearchResponse{}, nil
}

type stubEmbedder struct{ err error }

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.5, 0.5}, nil
}

func newTestServer(sess *stubSession, points *stubPoints) *server {
	if sess == nil {
		sess = &stubSession{runResult: &stubResult{}}
	}
	if points == nil {
		points = &stubPoints{}
	}
	return newServer(serverDeps{
		reports:  report.New(testLogger()),
		graph:    graph.NewWithOpener(&stubOpener{session: sess}),
		vectors:  semantic.NewWithClients(points, nil, semantic.DefaultCollection),
		embedder: &stubEmbedder{},
		logger:   testLogger(),
		metrics:  metrics.New(),
	}, "*")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("api_reports_built_total")) {
		t.Error("metrics output missing report counter family")
	}
}

func TestBuildReport(t *testing.T) {
	srv := newTestServer(nil, nil)

	body := `{
		"vehicle": {"make": "Honda", "model": "Civic", "year": 2022},
		"attrs": {"combined_mpg": 33, "fuel_type": "regular", "class": "Compact Cars"},
		"complaints": [{"id": "nhtsa-1", "component": "ENGINE", "summary": "stalls"}],
		"recalls": []
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report", bytes.NewBufferString(body))
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var rep report.VehicleReport
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.ID == "" || rep.Engine != report.EngineVersion {
		t.Errorf("report = %+v", rep)
	}
	if rep.Score.Overall < 0 || rep.Score.Overall > 100 {
		t.Errorf("overall = %v", rep.Score.Overall)
	}
	if srv.reportsBuilt.Value() != 1 {
		t.Errorf("reports built counter = %d", srv.reportsBuilt.Value())
	}
}

func TestBuildReport_BadVehicle(t *testing.T) {
	srv := newTestServer(nil, nil)
	body := `{"vehicle": {"make": "", "model": "Civic", "year": 2022}}`
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/report", bytes.NewBufferString(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBuildReport_InvalidJSON(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/report", bytes.NewBufferString("{")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCost(t *testing.T) {
	srv := newTestServer(nil, nil)
	body := `{"price": 30000, "combined_mpg": 30, "fuel_type": "regular", "class": "Midsize Cars", "year": 2020}`
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cost", bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var breakdown struct {
		TotalAnnual int `json:"totalAnnual"`
		FiveYear    int `json:"fiveYear"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &breakdown); err != nil {
		t.Fatal(err)
	}
	if breakdown.TotalAnnual <= 0 || breakdown.FiveYear <= 0 {
		t.Errorf("breakdown = %+v", breakdown)
	}
}

func TestCost_NegativePrice(t *testing.T) {
	srv := newTestServer(nil, nil)
	body := `{"price": -1, "combined_mpg": 30, "fuel_type": "regular", "year": 2020}`
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cost", bytes.NewBufferString(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func snapshotRecord(t *testing.T) *neo4j.Record {
	t.Helper()
	props := map[string]any{
		"id":             "snap-1",
		"make":           "Honda",
		"model":          "Civic",
		"year":           int64(2022),
		"engine_version": "2025.3",
		"score":          78.5,
		"verdict":        "recommended",
		"generated_at":   time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339Nano),
		"payload":        `{"id":"snap-1"}`,
	}
	return &neo4j.Record{Keys: []string{"s"}, Values: []any{props}}
}

func TestVehicleReport_Found(t *testing.T) {
	sess := &stubSession{runResult: &stubResult{records: []*neo4j.Record{snapshotRecord(t)}}}
	srv := newTestServer(sess, nil)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/Honda/Civic/2022/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "snap-1" || resp.Verdict != "recommended" {
		t.Errorf("resp = %+v", resp)
	}
	if string(resp.Report) != `{"id":"snap-1"}` {
		t.Errorf("report payload = %s", resp.Report)
	}
}

func TestVehicleReport_NotFound(t *testing.T) {
	srv := newTestServer(&stubSession{runResult: &stubResult{}}, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/Honda/Civic/2022/report", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestVehicleReport_BadYear(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/Honda/Civic/notayear/report", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestComplaintSearch(t *testing.T) {
	points := &stubPoints{
		searchResp: &pb.SearchResponse{
			Result: []*pb.ScoredPoint{{
				Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "p1"}},
				Score: 0.92,
				Payload: map[string]*pb.Value{
					"summary": {Kind: &pb.Value_StringValue{StringValue: "engine stalls"}},
					"vehicle": {Kind: &pb.Value_StringValue{StringValue: "honda-civic-2022"}},
					"label":   {Kind: &pb.Value_StringValue{StringValue: "engine"}},
				},
			}},
		},
	}
	srv := newTestServer(nil, points)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/search?q=stalling&vehicle=2022+Honda+Civic", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Vehicle != "honda-civic-2022" {
		t.Errorf("vehicle key = %q", resp.Vehicle)
	}
	if len(resp.Results) != 1 || resp.Results[0].Summary != "engine stalls" {
		t.Errorf("results = %+v", resp.Results)
	}

	// The filter must scope the search to the parsed vehicle.
	if points.searchReq.GetFilter() == nil || len(points.searchReq.GetFilter().GetMust()) != 1 {
		t.Error("search filter missing")
	}
}

func TestComplaintSearch_MissingQuery(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestComplaintSearch_UnparsableVehicle(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/search?q=stall&vehicle=gibberish", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestComplaintSearch_TopKClamped(t *testing.T) {
	points := &stubPoints{}
	srv := newTestServer(nil, points)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/complaints/search?q=stall&top_k=500", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if points.searchReq.GetLimit() != maxSearchTopK {
		t.Errorf("limit = %d, want %d", points.searchReq.GetLimit(), maxSearchTopK)
	}
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	srv.routes().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS origin header missing")
	}
}

func TestStats(t *testing.T) {
	sess := &stubSession{runFunc: func(cypher string) (graph.CypherResult, error) {
		switch {
		case strings.Contains(cypher, "labels(n)"):
			return &stubResult{records: []*neo4j.Record{
				{Keys: []string{"type", "count"}, Values: []any{"Vehicle", int64(12)}},
				{Keys: []string{"type", "count"}, Values: []any{"ReportSnapshot", int64(9)}},
			}}, nil
		case strings.Contains(cypher, "type(r)"):
			return &stubResult{records: []*neo4j.Record{
				{Keys: []string{"type", "count"}, Values: []any{"HAS_SNAPSHOT", int64(9)}},
			}}, nil
		default:
			return &stubResult{records: []*neo4j.Record{
				{Keys: []string{"name", "models", "snapshots"}, Values: []any{"Honda", int64(3), int64(5)}},
			}}, nil
		}
	}}

	srv := newTestServer(sess, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Nodes["Vehicle"] != 12 || resp.Nodes["ReportSnapshot"] != 9 {
		t.Errorf("nodes = %v", resp.Nodes)
	}
	if resp.Relationships["HAS_SNAPSHOT"] != 9 {
		t.Errorf("relationships = %v", resp.Relationships)
	}
	if len(resp.TopMakes) != 1 || resp.TopMakes[0].Name != "Honda" || resp.TopMakes[0].Snapshots != 5 {
		t.Errorf("top makes = %+v", resp.TopMakes)
	}
	if resp.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}

func TestStats_GraphError(t *testing.T) {
	srv := newTestServer(&stubSession{runErr: context.DeadlineExceeded}, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReportByID_Found(t *testing.T) {
	props := map[string]any{
		"id":             "snap-9",
		"engine_version": "2025.3",
		"score":          64.2,
		"verdict":        "caution",
		"generated_at":   time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC).Format(time.RFC3339Nano),
		"payload":        `{"id":"snap-9","vehicle":{"make":"Honda","model":"Civic","year":2022}}`,
	}
	sess := &stubSession{runResult: &stubResult{records: []*neo4j.Record{
		{Keys: []string{"s"}, Values: []any{props}},
	}}}
	srv := newTestServer(sess, nil)

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/snap-9", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "snap-9" || resp.Verdict != "caution" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Vehicle.Make != "Honda" || resp.Vehicle.Year != 2022 {
		t.Errorf("vehicle = %+v", resp.Vehicle)
	}
}

func TestReportByID_NotFound(t *testing.T) {
	srv := newTestServer(&stubSession{runResult: &stubResult{}}, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
