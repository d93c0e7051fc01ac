package scoring

import (
	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/taxonomy"
)

// Opts tunes the scoring run.
type Opts struct {
	// SalesVolume is the estimated per-model-year sales volume; <= 0 uses
	// DefaultSalesVolume.
	SalesVolume int
}

// Score computes the full reliability score for one vehicle's complaint and
// recall sets. Empty inputs are fine: with no data every category sits at
// the base score and the overall comes out at 9.5 with low lemon risk.
func Score(complaints []domain.ComplaintRecord, recalls []domain.RecallRecord, opts Opts) ReliabilityScore {
	components, breakdown := ComponentScores(complaints, opts.SalesVolume)

	overall := weightedOverall(components) - recallPenalty(recalls)
	overall = round1(max(overall, 0))

	return ReliabilityScore{
		Overall:           overall,
		Components:        components,
		TotalComplaints:   len(complaints),
		TotalRecalls:      len(recalls),
		SeverityBreakdown: breakdown,
		LemonRisk:         classifyLemonRisk(overall, breakdown),
	}
}

// weightedOverall is the weighted mean of the 9 non-Other category scores.
// Other is excluded by its zero weight.
func weightedOverall(components []ComponentScore) float64 {
	weightSum := 0.0
	scoreSum := 0.0
	for _, cs := range components {
		w := taxonomy.WeightOf(cs.Category)
		if w == 0 {
			continue
		}
		weightSum += w
		scoreSum += cs.Score * w
	}
	if weightSum == 0 {
		return BaseScore
	}
	return scoreSum / weightSum
}

// recallPenalty sums a per-campaign penalty that grows with the number of
// possibly-affected units, capped per campaign.
func recallPenalty(recalls []domain.RecallRecord) float64 {
	penalty := 0.0
	for _, r := range recalls {
		penalty += 0.2 + min(float64(r.PossiblyAffected)/100000, 0.5)
	}
	return penalty
}

// classifyLemonRisk applies the decision table in priority order.
func classifyLemonRisk(overall float64, b SeverityBreakdown) LemonRisk {
	switch {
	case b.Critical > 5 || overall < 5:
		return RiskHigh
	case b.Critical > 2 || b.Major > 10 || overall < 7:
		return RiskModerate
	default:
		return RiskLow
	}
}
