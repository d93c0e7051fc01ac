// Package problems clusters complaints into finer-grained "what breaks"
// groups using the fine taxonomy. It is independent of the coarse category
// scoring: the same complaint can land in different buckets on each side.
package problems

import (
	"math"
	"sort"
	"strings"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/taxonomy"
)

// CommonProblem is one cluster of related complaints.
type CommonProblem struct {
	Label      string   `json:"label"`
	Count      int      `json:"count"`
	Percentage int      `json:"percentage"` // of total complaints, rounded
	Crash      bool     `json:"crash"`
	Fire       bool     `json:"fire"`
	Injury     bool     `json:"injury"`
	Samples    []string `json:"samples,omitempty"` // up to 3, truncated to 150 chars
}

// Severe reports whether any member complaint carried a crash, fire, or
// injury signal.
func (p CommonProblem) Severe() bool {
	return p.Crash || p.Fire || p.Injury
}

const (
	topClusters  = 8
	maxSamples   = 3
	sampleLength = 150
)

type cluster struct {
	CommonProblem
	order       int
	seenSamples map[string]struct{}
}

// Cluster groups complaints by fine-taxonomy label and returns the top 8
// clusters by count, ties broken by first-encountered order. Returns an
// empty list when there are no complaints.
func Cluster(complaints []domain.ComplaintRecord) []CommonProblem {
	if len(complaints) == 0 {
		return nil
	}

	clusters := make(map[string]*cluster)
	var ordered []*cluster

	for _, c := range complaints {
		// A raw component field may carry several comma-separated phrases.
		for _, phrase := range strings.Split(c.Component, ",") {
			label := taxonomy.Fine(phrase)
			if label == "" {
				continue
			}
			cl, ok := clusters[label]
			if !ok {
				cl = &cluster{
					CommonProblem: CommonProblem{Label: label},
					order:         len(ordered),
					seenSamples:   make(map[string]struct{}),
				}
				clusters[label] = cl
				ordered = append(ordered, cl)
			}
			cl.Count++
			cl.Crash = cl.Crash || c.Crash
			cl.Fire = cl.Fire || c.Fire
			cl.Injury = cl.Injury || c.Injuries > 0
			cl.addSample(c.Summary)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Count > ordered[j].Count
	})
	if len(ordered) > topClusters {
		ordered = ordered[:topClusters]
	}

	total := len(complaints)
	out := make([]CommonProblem, len(ordered))
	for i, cl := range ordered {
		p := cl.CommonProblem
		p.Percentage = int(math.Round(100 * float64(p.Count) / float64(total)))
		out[i] = p
	}
	return out
}

func (cl *cluster) addSample(summary string) {
	s := strings.TrimSpace(summary)
	if s == "" || len(cl.Samples) >= maxSamples {
		return
	}
	if len(s) > sampleLength {
		s = s[:sampleLength]
	}
	if _, ok := cl.seenSamples[s]; ok {
		return
	}
	cl.seenSamples[s] = struct{}{}
	cl.Samples = append(cl.Samples, s)
}
