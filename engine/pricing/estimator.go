package pricing

import (
	"math"
	"strings"
)

// Confidence grades how much signal backed an estimate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Provenance names which table produced the base figure.
type Provenance string

const (
	ProvenanceHistorical Provenance = "historical"
	ProvenanceClassBased Provenance = "class-based"
	ProvenanceInferred   Provenance = "inferred"
)

// Estimate is a heuristic MSRP with a plausible range.
type Estimate struct {
	Base       int        `json:"base"`
	Low        int        `json:"low"`
	High       int        `json:"high"`
	Confidence Confidence `json:"confidence"`
	Provenance Provenance `json:"provenance"`
}

// Request identifies the vehicle to price. CurrentYear anchors the age
// multiplier; callers pass time.Now().Year().
type Request struct {
	Make        string
	Model       string
	Class       string
	Year        int
	Trim        string
	CurrentYear int
}

// EstimateMSRP walks the lookup chain: make base, then model multiplier
// (high confidence) or class base replacement (medium) or make-level default
// (low), then year and trim multipliers, rounded to the nearest 100.
func EstimateMSRP(req Request) Estimate {
	price := float64(DefaultBasePrice)
	if base, ok := makeBasePrices[req.Make]; ok {
		price = float64(base)
	}

	confidence := ConfidenceLow
	provenance := ProvenanceInferred
	if mult, ok := modelMultipliers[req.Make][req.Model]; ok {
		price *= mult
		confidence = ConfidenceHigh
		provenance = ProvenanceHistorical
	} else if classBase, ok := classBasePrices[req.Class]; ok {
		price = float64(classBase)
		confidence = ConfidenceMedium
		provenance = ProvenanceClassBased
	}

	price *= yearMultiplier(req.CurrentYear - req.Year)
	price *= trimMultiplier(req.Trim)

	base := roundTo100(price)
	return Estimate{
		Base:       base,
		Low:        roundTo100(0.85 * float64(base)),
		High:       roundTo100(1.25 * float64(base)),
		Confidence: confidence,
		Provenance: provenance,
	}
}

// trimMultiplier matches trim keywords: multi-word keywords as substrings,
// single words against whole tokens so "LE" never fires on "Limited".
func trimMultiplier(trim string) float64 {
	if trim == "" {
		return 1.0
	}
	lower := strings.ToLower(trim)
	tokens := strings.Fields(lower)
	for _, tm := range trimMultipliers {
		if strings.ContainsRune(tm.keyword, ' ') {
			if strings.Contains(lower, tm.keyword) {
				return tm.factor
			}
			continue
		}
		for _, tok := range tokens {
			if tok == tm.keyword {
				return tm.factor
			}
		}
	}
	return 1.0
}

func roundTo100(v float64) int {
	return int(math.Round(v/100)) * 100
}
