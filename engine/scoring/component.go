package scoring

import (
	"math"
	"strings"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/taxonomy"
)

// ComponentScores buckets complaints into the 10 coarse categories and
// scores each one. salesVolume <= 0 falls back to DefaultSalesVolume. The
// returned slice always has one entry per category, in taxonomy order.
// Alongside, every complaint is classified into exactly one severity tier.
func ComponentScores(complaints []domain.ComplaintRecord, salesVolume int) ([]ComponentScore, SeverityBreakdown) {
	if salesVolume <= 0 {
		salesVolume = DefaultSalesVolume
	}

	byCategory := make(map[string][]domain.ComplaintRecord, len(taxonomy.Categories))
	var breakdown SeverityBreakdown
	for _, c := range complaints {
		cat := taxonomy.Coarse(c.Component)
		byCategory[cat] = append(byCategory[cat], c)

		switch Bucket(c) {
		case "critical":
			breakdown.Critical++
		case "major":
			breakdown.Major++
		default:
			breakdown.Minor++
		}
	}

	scores := make([]ComponentScore, 0, len(taxonomy.Categories))
	for _, cat := range taxonomy.Categories {
		members := byCategory[cat.Name]
		scores = append(scores, scoreCategory(cat.Name, members, salesVolume))
	}
	return scores, breakdown
}

// scoreCategory computes one category's score from its member complaints.
func scoreCategory(name string, members []domain.ComplaintRecord, salesVolume int) ComponentScore {
	count := len(members)
	severitySum := 0.0
	for _, c := range members {
		severitySum += Severity(c)
	}

	// Complaints per 10,000 vehicles against the estimated sales volume.
	normalizedRate := float64(count) / float64(salesVolume) * 10000

	score := BaseScore - min(0.5*normalizedRate, 3) - min(2*(severitySum/100), 4)
	score = clamp(score, 0, 10)

	return ComponentScore{
		Category:       name,
		Score:          round1(score),
		ComplaintCount: count,
		Issues:         issueSnippets(members),
	}
}

// issueSnippets collects up to 5 deduplicated snippets (first 100 chars of
// each distinct summary) in complaint order. Empty summaries are omitted.
func issueSnippets(members []domain.ComplaintRecord) []string {
	var snippets []string
	seen := make(map[string]struct{})
	for _, c := range members {
		s := strings.TrimSpace(c.Summary)
		if s == "" {
			continue
		}
		s = truncate(s, snippetLength)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		snippets = append(snippets, s)
		if len(snippets) == maxIssueSnippets {
			break
		}
	}
	return snippets
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
