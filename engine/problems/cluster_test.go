package problems

import (
	"fmt"
	"strings"
	"testing"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
)

func TestCluster_Empty(t *testing.T) {
	if got := Cluster(nil); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestCluster_GroupsAndPercentages(t *testing.T) {
	complaints := []domain.ComplaintRecord{
		{Component: "ENGINE", Summary: "stall"},
		{Component: "ENGINE", Summary: "knocking"},
		{Component: "AIR BAGS", Summary: "did not deploy", Crash: true},
		{Component: "SERVICE BRAKES", Summary: "soft pedal"},
	}
	got := Cluster(complaints)
	if len(got) != 3 {
		t.Fatalf("got %d clusters: %+v", len(got), got)
	}
	if got[0].Label != "Engine" || got[0].Count != 2 {
		t.Errorf("top cluster = %+v, want Engine x2", got[0])
	}
	if got[0].Percentage != 50 {
		t.Errorf("engine percentage = %d, want 50", got[0].Percentage)
	}
	airbags := findCluster(t, got, "Airbags")
	if !airbags.Crash || airbags.Fire || airbags.Injury {
		t.Errorf("airbags flags = %+v", airbags)
	}
	if airbags.Percentage != 25 {
		t.Errorf("airbags percentage = %d, want 25", airbags.Percentage)
	}
}

func TestCluster_SplitsOnCommas(t *testing.T) {
	complaints := []domain.ComplaintRecord{
		{Component: "ENGINE,ELECTRICAL SYSTEM", Summary: "fire under hood", Fire: true},
	}
	got := Cluster(complaints)
	if len(got) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(got), got)
	}
	for _, p := range got {
		if !p.Fire {
			t.Errorf("cluster %s lost the fire flag", p.Label)
		}
	}
}

func TestCluster_TopEightByCountTiesStable(t *testing.T) {
	var complaints []domain.ComplaintRecord
	// Ten distinct labels, all count 1; only the first eight encountered
	// survive, in their original order.
	labels := []string{
		"ENGINE", "AIR BAGS", "STEERING", "SUSPENSION", "TIRES",
		"WHEELS", "SEATS", "STRUCTURE", "VISIBILITY", "EXHAUST SYSTEM",
	}
	for _, l := range labels {
		complaints = append(complaints, domain.ComplaintRecord{Component: l})
	}
	got := Cluster(complaints)
	if len(got) != 8 {
		t.Fatalf("got %d clusters, want 8", len(got))
	}
	if got[0].Label != "Engine" || got[7].Label != "Body Structure" {
		t.Errorf("tie order not preserved: first=%s last=%s", got[0].Label, got[7].Label)
	}
}

func TestCluster_PercentageSumBounded(t *testing.T) {
	var complaints []domain.ComplaintRecord
	for i := 0; i < 40; i++ {
		complaints = append(complaints, domain.ComplaintRecord{
			Component: fmt.Sprintf("COMPONENT VARIANT %d", i%12),
		})
	}
	got := Cluster(complaints)
	sum := 0
	for _, p := range got {
		sum += p.Percentage
	}
	// Only the top 8 are retained, so coverage can be under 100; rounding
	// keeps it from drifting far above.
	if sum > 105 {
		t.Errorf("percentage sum %d suspiciously high", sum)
	}
}

func TestCluster_SampleDedupTruncate(t *testing.T) {
	long := strings.Repeat("x", 200)
	complaints := []domain.ComplaintRecord{
		{Component: "ENGINE", Summary: "same"},
		{Component: "ENGINE", Summary: "same"},
		{Component: "ENGINE", Summary: long},
		{Component: "ENGINE", Summary: "second"},
		{Component: "ENGINE", Summary: "third"},
		{Component: "ENGINE", Summary: "fourth"},
	}
	got := Cluster(complaints)
	engine := findCluster(t, got, "Engine")
	if len(engine.Samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(engine.Samples))
	}
	if engine.Samples[0] != "same" {
		t.Errorf("samples out of order: %v", engine.Samples)
	}
	if len(engine.Samples[1]) != 150 {
		t.Errorf("sample not truncated to 150, got %d", len(engine.Samples[1]))
	}
}

func findCluster(t *testing.T, clusters []CommonProblem, label string) CommonProblem {
	t.Helper()
	for _, p := range clusters {
		if p.Label == label {
			return p
		}
	}
	t.Fatalf("cluster %q not found in %+v", label, clusters)
	return CommonProblem{}
}
