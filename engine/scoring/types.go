// Package scoring computes per-complaint severities, per-category component
// scores, and the overall weighted reliability score with recall penalty and
// lemon-risk classification. All functions are pure: fixed lookup tables in,
// new values out, no state between calls.
package scoring

// LemonRisk is the qualitative tier estimating how likely a model year is an
// unusually problematic build.
type LemonRisk string

const (
	RiskLow      LemonRisk = "low"
	RiskModerate LemonRisk = "moderate"
	RiskHigh     LemonRisk = "high"
)

// ComponentScore is the reliability score for one coarse category.
type ComponentScore struct {
	Category       string   `json:"category"`
	Score          float64  `json:"score"` // [0,10], 1 decimal
	ComplaintCount int      `json:"complaint_count"`
	Issues         []string `json:"issues,omitempty"` // up to 5 deduplicated snippets
}

// SeverityBreakdown buckets every complaint into exactly one tier.
type SeverityBreakdown struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
}

// ReliabilityScore is the full scoring result for one vehicle.
type ReliabilityScore struct {
	Overall           float64           `json:"overall"` // [0,10], 1 decimal
	Components        []ComponentScore  `json:"components"`
	TotalComplaints   int               `json:"total_complaints"`
	TotalRecalls      int               `json:"total_recalls"`
	SeverityBreakdown SeverityBreakdown `json:"severity_breakdown"`
	LemonRisk         LemonRisk         `json:"lemon_risk"`
}

const (
	// BaseScore is the score of a category with zero complaints, and the
	// overall score when no complaint or recall data exists at all.
	BaseScore = 9.5

	// DefaultSalesVolume is the estimated per-model-year sales volume used
	// to normalize complaint counts to a per-10,000-vehicle rate. It is a
	// documented approximation, not sourced sales data.
	DefaultSalesVolume = 50000

	maxIssueSnippets = 5
	snippetLength    = 100
)
