// Package verdict turns scoring output into a rule-based buyer-facing
// summary: ordered pros, ordered cons, and a recommended/caution/avoid call.
package verdict

import (
	"fmt"
	"strings"

	"github.com/LemonScout/lemonscout-mvp/engine/problems"
	"github.com/LemonScout/lemonscout-mvp/engine/scoring"
)

// Verdict is the buy/avoid/caution call.
type Verdict string

const (
	VerdictRecommended Verdict = "recommended"
	VerdictCaution     Verdict = "caution"
	VerdictAvoid       Verdict = "avoid"
)

// ProsConsSummary is the narrative output for one vehicle.
type ProsConsSummary struct {
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
	Verdict Verdict  `json:"verdict"`
}

// Input carries everything the rule table looks at. CombinedMPG <= 0 means
// fuel economy is unknown and its rules are skipped.
type Input struct {
	Score       scoring.ReliabilityScore
	Problems    []problems.CommonProblem
	CombinedMPG float64
}

// Summarize evaluates the rule table per axis and derives the verdict.
func Summarize(in Input) ProsConsSummary {
	var pros, cons []string
	overall := in.Score.Overall

	switch {
	case overall >= 9:
		pros = append(pros, fmt.Sprintf("Excellent overall reliability score of %.1f/10", overall))
	case overall >= 8:
		pros = append(pros, fmt.Sprintf("Good overall reliability score of %.1f/10", overall))
	case overall >= 7:
		pros = append(pros, fmt.Sprintf("Above-average reliability score of %.1f/10", overall))
	}
	if overall < 6 {
		cons = append(cons, fmt.Sprintf("Below-average reliability score of %.1f/10; consider extended coverage", overall))
	}

	switch n := in.Score.TotalComplaints; {
	case n == 0:
		pros = append(pros, "No complaints on file for this model year")
	case n <= 5:
		pros = append(pros, "Very few complaints on file")
	case n > 50:
		cons = append(cons, fmt.Sprintf("High complaint volume: %d complaints on file", n))
	}

	switch n := in.Score.TotalRecalls; {
	case n == 0:
		pros = append(pros, "No recall campaigns")
	case n > 3:
		cons = append(cons, fmt.Sprintf("%d recall campaigns issued", n))
	}

	if mpg := in.CombinedMPG; mpg > 0 {
		switch {
		case mpg >= 35:
			pros = append(pros, fmt.Sprintf("Excellent fuel economy at %.0f MPG combined", mpg))
		case mpg >= 28:
			pros = append(pros, fmt.Sprintf("Good fuel economy at %.0f MPG combined", mpg))
		case mpg < 18:
			cons = append(cons, fmt.Sprintf("Poor fuel economy at %.0f MPG combined", mpg))
		}
	}

	severe := severeClusters(in.Problems)
	if len(severe) > 0 {
		cons = append(cons, fmt.Sprintf("Safety-flagged problem areas: %s", strings.Join(severe, ", ")))
	}

	if frequent := frequentClusters(in.Problems); len(frequent) > 0 {
		cons = append(cons, fmt.Sprintf("Frequently reported problems: %s", strings.Join(frequent, ", ")))
	}

	return ProsConsSummary{
		Pros:    pros,
		Cons:    cons,
		Verdict: decide(overall, len(severe)),
	}
}

// decide applies the verdict rules in priority order.
func decide(overall float64, severeCount int) Verdict {
	switch {
	case overall >= 7.5 && severeCount == 0:
		return VerdictRecommended
	case overall < 5 || severeCount >= 2:
		return VerdictAvoid
	default:
		return VerdictCaution
	}
}

// severeClusters names every cluster carrying a crash/fire/injury flag.
func severeClusters(clusters []problems.CommonProblem) []string {
	var names []string
	for _, p := range clusters {
		if p.Severe() {
			names = append(names, p.Label)
		}
	}
	return names
}

// frequentClusters names top-3 clusters with percentage >= 15.
func frequentClusters(clusters []problems.CommonProblem) []string {
	var names []string
	for i, p := range clusters {
		if i == 3 {
			break
		}
		if p.Percentage >= 15 {
			names = append(names, p.Label)
		}
	}
	return names
}
