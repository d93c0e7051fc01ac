// Package report assembles a complete vehicle report from the scoring,
// clustering, verdict, pricing and cost packages. It is the single entry
// point the API and worker use; all heavy lifting is delegated.
package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/LemonScout/lemonscout-mvp/engine/cost"
	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/pricing"
	"github.com/LemonScout/lemonscout-mvp/engine/problems"
	"github.com/LemonScout/lemonscout-mvp/engine/scoring"
	"github.com/LemonScout/lemonscout-mvp/engine/verdict"
)

// EngineVersion tags every report with the scoring-engine revision that
// produced it, so persisted snapshots stay comparable.
const EngineVersion = "2025.3"

// BuildInput is everything one report needs. FuelPrices may be nil; the
// static defaults are used. SalesVolume of zero means the documented
// 50,000 approximation.
type BuildInput struct {
	Vehicle     domain.Vehicle
	Attrs       domain.VehicleAttrs
	Complaints  []domain.ComplaintRecord
	Recalls     []domain.RecallRecord
	FuelPrices  domain.FuelPrices
	SalesVolume int
	AnnualMiles float64
}

// VehicleReport is the full assembled output.
type VehicleReport struct {
	ID          string                  `json:"id"`
	Vehicle     domain.Vehicle          `json:"vehicle"`
	GeneratedAt time.Time               `json:"generated_at"`
	Engine      string                  `json:"engine_version"`
	Score       scoring.ReliabilityScore `json:"score"`
	Problems    []problems.CommonProblem `json:"common_problems"`
	Summary     verdict.ProsConsSummary  `json:"summary"`
	Pricing     *pricing.Estimate        `json:"pricing,omitempty"`
	Cost        cost.Breakdown           `json:"ownership_cost"`
}

// Service builds reports. The clock and ID source are injectable for tests.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a report Service.
func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Build runs the full pipeline for one vehicle. The only rejection path is
// invalid cost input; scoring itself never fails.
func (s *Service) Build(ctx context.Context, in BuildInput) (*VehicleReport, error) {
	ctx, span := otel.Tracer("engine/report").Start(ctx, "report.build")
	defer span.End()
	span.SetAttributes(
		attribute.String("vehicle.make", in.Vehicle.Make),
		attribute.String("vehicle.model", in.Vehicle.Model),
		attribute.Int("vehicle.year", in.Vehicle.Year),
		attribute.Int("complaints", len(in.Complaints)),
		attribute.Int("recalls", len(in.Recalls)),
	)

	if err := domain.ValidateVehicle(in.Vehicle); err != nil {
		return nil, err
	}

	currentYear := s.now().UTC().Year()
	prices := in.FuelPrices
	if prices == nil {
		prices = domain.DefaultFuelPrices()
	}

	score := scoring.Score(in.Complaints, in.Recalls, scoring.Opts{SalesVolume: in.SalesVolume})
	clusters := problems.Cluster(in.Complaints)
	summary := verdict.Summarize(verdict.Input{
		Score:       score,
		Problems:    clusters,
		CombinedMPG: in.Attrs.CombinedMPG,
	})

	price := float64(in.Attrs.MSRP)
	var estimate *pricing.Estimate
	if in.Attrs.MSRP == 0 {
		est := pricing.EstimateMSRP(pricing.Request{
			Make:        in.Vehicle.Make,
			Model:       in.Vehicle.Model,
			Class:       in.Attrs.Class,
			Year:        in.Vehicle.Year,
			Trim:        in.Attrs.Trim,
			CurrentYear: currentYear,
		})
		estimate = &est
		price = float64(est.Base)
	}

	breakdown, err := cost.Estimate(cost.Input{
		Price:         price,
		CombinedMPG:   in.Attrs.CombinedMPG,
		FuelType:      in.Attrs.FuelType,
		Class:         in.Attrs.Class,
		Year:          in.Vehicle.Year,
		CurrentYear:   currentYear,
		ComplaintRate: complaintRate(len(in.Complaints), in.SalesVolume),
		AnnualMiles:   in.AnnualMiles,
		FuelPrices:    prices,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rep := &VehicleReport{
		ID:          s.newID(),
		Vehicle:     in.Vehicle,
		GeneratedAt: s.now().UTC(),
		Engine:      EngineVersion,
		Score:       score,
		Problems:    clusters,
		Summary:     summary,
		Pricing:     estimate,
		Cost:        breakdown,
	}
	s.logger.DebugContext(ctx, "report built",
		"report_id", rep.ID,
		"make", in.Vehicle.Make,
		"model", in.Vehicle.Model,
		"year", in.Vehicle.Year,
		"overall", score.Overall,
		"verdict", summary.Verdict,
	)
	return rep, nil
}

// complaintRate mirrors the per-10,000-vehicles rate the component scorer
// derives, reused here for the repair-cost input.
func complaintRate(complaints, salesVolume int) float64 {
	if salesVolume <= 0 {
		salesVolume = scoring.DefaultSalesVolume
	}
	return float64(complaints) / float64(salesVolume) * 10000
}
