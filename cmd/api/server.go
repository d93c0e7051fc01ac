package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/LemonScout/lemonscout-mvp/engine/cost"
	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/graph"
	"github.com/LemonScout/lemonscout-mvp/engine/report"
	"github.com/LemonScout/lemonscout-mvp/engine/semantic"
	"github.com/LemonScout/lemonscout-mvp/pkg/metrics"
	"github.com/LemonScout/lemonscout-mvp/pkg/mid"
	"github.com/LemonScout/lemonscout-mvp/pkg/vehicleid"
)

const (
	defaultSearchTopK = 10
	maxSearchTopK     = 50
)

type serverDeps struct {
	reports  *report.Service
	graph    *graph.GraphStore
	vectors  *semantic.VectorStore
	embedder semantic.Embedder
	logger   *slog.Logger
	metrics  *metrics.Registry
}

type server struct {
	serverDeps
	corsOrigin     string
	reportsBuilt   *metrics.Counter
	searchesServed *metrics.Counter
}

func newServer(deps serverDeps, corsOrigin string) *server {
	if deps.logger == nil {
		deps.logger = slog.Default()
	}
	if deps.metrics == nil {
		deps.metrics = metrics.New()
	}
	return &server{
		serverDeps:     deps,
		corsOrigin:     corsOrigin,
		reportsBuilt:   deps.metrics.Counter("api_reports_built_total", "Reports built via the API"),
		searchesServed: deps.metrics.Counter("api_complaint_searches_total", "Complaint similarity searches served"),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(mid.RequestID())
	r.Use(mid.Recover(s.logger))
	r.Use(mid.Logger(s.logger))
	r.Use(mid.CORS(s.corsOrigin))
	r.Use(mid.OTel("lemonscout-api"))

	r.Get("/metrics", s.metrics.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
		r.Get("/vehicles/{make}/{model}/{year}/report", s.handleVehicleReport)
		r.Get("/reports/{id}", s.handleReportByID)
		r.Get("/complaints/search", s.handleComplaintSearch)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(30, time.Minute))
			r.Post("/report", s.handleBuildReport)
			r.Post("/cost", s.handleCost)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReportRequest is the JSON body for POST /api/v1/report. Complaints and
// recalls are normalized records; attributes drive the pricing and cost
// estimates.
type ReportRequest struct {
	Vehicle     domain.Vehicle           `json:"vehicle"`
	Attrs       domain.VehicleAttrs      `json:"attrs"`
	Complaints  []domain.ComplaintRecord `json:"complaints"`
	Recalls     []domain.RecallRecord    `json:"recalls"`
	FuelPrices  domain.FuelPrices        `json:"fuel_prices,omitempty"`
	SalesVolume int                      `json:"sales_volume,omitempty"`
	AnnualMiles float64                  `json:"annual_miles,omitempty"`
}

func (s *server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Attrs.FuelType == "" {
		req.Attrs.FuelType = domain.FuelRegular
	}

	rep, err := s.reports.Build(r.Context(), report.BuildInput{
		Vehicle:     req.Vehicle,
		Attrs:       req.Attrs,
		Complaints:  req.Complaints,
		Recalls:     req.Recalls,
		FuelPrices:  req.FuelPrices,
		SalesVolume: req.SalesVolume,
		AnnualMiles: req.AnnualMiles,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("report build failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.reportsBuilt.Inc()
	writeJSON(w, http.StatusOK, rep)
}

// CostRequest is the JSON body for POST /api/v1/cost.
type CostRequest struct {
	Price         float64           `json:"price"`
	CombinedMPG   float64           `json:"combined_mpg"`
	FuelType      domain.FuelType   `json:"fuel_type"`
	Class         string            `json:"class"`
	Year          int               `json:"year"`
	ComplaintRate float64           `json:"complaint_rate,omitempty"`
	AnnualMiles   float64           `json:"annual_miles,omitempty"`
	FuelPrices    domain.FuelPrices `json:"fuel_prices,omitempty"`
}

func (s *server) handleCost(w http.ResponseWriter, r *http.Request) {
	var req CostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FuelType == "" {
		req.FuelType = domain.FuelRegular
	}
	prices := req.FuelPrices
	if prices == nil {
		prices = domain.DefaultFuelPrices()
	}

	breakdown, err := cost.Estimate(cost.Input{
		Price:         req.Price,
		CombinedMPG:   req.CombinedMPG,
		FuelType:      req.FuelType,
		Class:         req.Class,
		Year:          req.Year,
		CurrentYear:   time.Now().UTC().Year(),
		ComplaintRate: req.ComplaintRate,
		AnnualMiles:   req.AnnualMiles,
		FuelPrices:    prices,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}

// SnapshotResponse wraps a persisted report snapshot. Report carries the
// full report JSON exactly as it was stored.
type SnapshotResponse struct {
	ID            string          `json:"id"`
	Vehicle       domain.Vehicle  `json:"vehicle"`
	EngineVersion string          `json:"engine_version"`
	Score         float64         `json:"score"`
	Verdict       string          `json:"verdict"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Report        json.RawMessage `json:"report"`
}

func (s *server) handleVehicleReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be numeric")
		return
	}
	v := domain.Vehicle{
		Make:  chi.URLParam(r, "make"),
		Model: chi.URLParam(r, "model"),
		Year:  year,
	}
	if err := domain.ValidateVehicle(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.graph.LatestSnapshot(r.Context(), v)
	if err != nil {
		if errors.Is(err, graph.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, "no report for vehicle")
			return
		}
		s.logger.Error("snapshot lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SnapshotResponse{
		ID:            snap.ID,
		Vehicle:       v,
		EngineVersion: snap.EngineVersion,
		Score:         snap.Score,
		Verdict:       snap.Verdict,
		GeneratedAt:   snap.GeneratedAt,
		Report:        json.RawMessage(snap.Payload),
	})
}

func (s *server) handleReportByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.graph.GetSnapshot(r.Context(), id)
	if err != nil {
		if errors.Is(err, graph.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		s.logger.Error("snapshot lookup failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Snapshot nodes carry only the vehicle key; recover the full identity
	// from the stored report payload.
	var stored struct {
		Vehicle domain.Vehicle `json:"vehicle"`
	}
	json.Unmarshal(snap.Payload, &stored)

	writeJSON(w, http.StatusOK, SnapshotResponse{
		ID:            snap.ID,
		Vehicle:       stored.Vehicle,
		EngineVersion: snap.EngineVersion,
		Score:         snap.Score,
		Verdict:       snap.Verdict,
		GeneratedAt:   snap.GeneratedAt,
		Report:        json.RawMessage(snap.Payload),
	})
}

// StatsResponse summarizes graph coverage: how many nodes and relationships
// exist per type and which makes have the most scored vehicles.
type StatsResponse struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	Nodes         map[string]int64  `json:"nodes"`
	Relationships map[string]int64  `json:"relationships"`
	TopMakes      []graph.MakeStats `json:"top_makes"`
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.graph.NodeCounts(r.Context())
	if err != nil {
		s.logger.Error("node counts failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	rels, err := s.graph.RelationshipCounts(r.Context())
	if err != nil {
		s.logger.Error("relationship counts failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	makes, err := s.graph.TopMakes(r.Context(), 10)
	if err != nil {
		s.logger.Error("top makes failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		GeneratedAt:   time.Now().UTC(),
		Nodes:         nodes,
		Relationships: rels,
		TopMakes:      makes,
	})
}

// SearchResponse is the body of GET /api/v1/complaints/search.
type SearchResponse struct {
	Query   string                  `json:"query"`
	Vehicle string                  `json:"vehicle,omitempty"`
	Results []semantic.SearchResult `json:"results"`
}

func (s *server) handleComplaintSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	topK := defaultSearchTopK
	if v := r.URL.Query().Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		if n > maxSearchTopK {
			n = maxSearchTopK
		}
		topK = n
	}

	var filters map[string]string
	var vehicleKey string
	if raw := r.URL.Query().Get("vehicle"); raw != "" {
		m, ok := vehicleid.Parse(raw)
		if !ok || m.Model == "" || m.Year == 0 {
			writeError(w, http.StatusBadRequest, "vehicle must include make, model and year")
			return
		}
		vehicleKey = graph.VehicleKey(domain.Vehicle{Make: m.Make, Model: m.Model, Year: m.Year})
		filters = map[string]string{"vehicle": vehicleKey}
	}

	embedding, err := s.embedder.Embed(r.Context(), q)
	if err != nil {
		s.logger.Error("query embedding failed", "err", err)
		writeError(w, http.StatusBadGateway, "embedding service unavailable")
		return
	}

	results, err := s.vectors.SearchFiltered(r.Context(), embedding, topK, filters)
	if err != nil {
		s.logger.Error("complaint search failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.searchesServed.Inc()
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   q,
		Vehicle: vehicleKey,
		Results: results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
