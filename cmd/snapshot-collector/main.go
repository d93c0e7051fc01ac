// Command snapshot-collector fetches the graph coverage stats from the API,
// computes deltas against the previous pull, and writes JSON files for the
// static dashboard.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Stats mirrors the API stats response.
type Stats struct {
	GeneratedAt   time.Time        `json:"generated_at"`
	Nodes         map[string]int64 `json:"nodes"`
	Relationships map[string]int64 `json:"relationships"`
	TopMakes      []MakeStats      `json:"top_makes"`
}

// MakeStats is one row of the per-make coverage ranking.
type MakeStats struct {
	Name      string `json:"name"`
	Models    int64  `json:"models"`
	Snapshots int64  `json:"snapshots"`
}

// Delta represents changes between two consecutive pulls.
type Delta struct {
	Timestamp        time.Time `json:"timestamp"`
	NewNodes         int64     `json:"new_nodes"`
	NewRelationships int64     `json:"new_relationships"`
	NewVehicles      int64     `json:"new_vehicles"`
	NewSnapshots     int64     `json:"new_snapshots"`
	NewMakes         []string  `json:"new_makes,omitempty"`
}

const maxHistory = 288

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "API base URL")
	docsDir := flag.String("docs-dir", "docs", "docs directory for output")
	push := flag.Bool("push", false, "git commit and push after update")
	flag.Parse()

	dataDir := filepath.Join(*docsDir, "data")
	os.MkdirAll(dataDir, 0o755)

	latestPath := filepath.Join(dataDir, "stats-latest.json")
	historyPath := filepath.Join(dataDir, "stats-history.json")
	prevPath := filepath.Join(dataDir, ".stats-prev.json")

	resp, err := http.Get(*apiURL + "/api/v1/stats")
	if err != nil {
		log.Fatalf("fetch stats: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != 200 {
		log.Fatalf("API returned %d: %s", resp.StatusCode, body)
	}

	var current Stats
	if err := json.Unmarshal(body, &current); err != nil {
		log.Fatalf("parse stats: %v", err)
	}

	var prev Stats
	if data, err := os.ReadFile(prevPath); err == nil {
		json.Unmarshal(data, &prev)
	}

	delta := computeDelta(prev, current)

	if err := os.WriteFile(latestPath, body, 0o644); err != nil {
		log.Fatalf("write latest: %v", err)
	}

	var history []Delta
	if data, err := os.ReadFile(historyPath); err == nil {
		json.Unmarshal(data, &history)
	}
	history = append(history, delta)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	histData, _ := json.MarshalIndent(history, "", "  ")
	os.WriteFile(historyPath, histData, 0o644)

	os.WriteFile(prevPath, body, 0o644)

	fmt.Printf("Stats collected at %s (nodes: %d, snapshots: %d)\n",
		current.GeneratedAt.Format(time.RFC3339),
		sumCounts(current.Nodes),
		current.Nodes["ReportSnapshot"])
	fmt.Printf("Delta: +%d nodes, +%d rels, +%d vehicles, +%d snapshots\n",
		delta.NewNodes, delta.NewRelationships, delta.NewVehicles, delta.NewSnapshots)

	if *push {
		gitCommitPush(*docsDir)
	}
}

// computeDelta diffs two stats pulls. Makes present now but absent from the
// previous ranking are reported as new.
func computeDelta(prev, current Stats) Delta {
	delta := Delta{
		Timestamp:        current.GeneratedAt,
		NewNodes:         sumCounts(current.Nodes) - sumCounts(prev.Nodes),
		NewRelationships: sumCounts(current.Relationships) - sumCounts(prev.Relationships),
		NewVehicles:      current.Nodes["Vehicle"] - prev.Nodes["Vehicle"],
		NewSnapshots:     current.Nodes["ReportSnapshot"] - prev.Nodes["ReportSnapshot"],
	}

	prevMakes := make(map[string]bool)
	for _, m := range prev.TopMakes {
		prevMakes[m.Name] = true
	}
	for _, m := range current.TopMakes {
		if !prevMakes[m.Name] {
			delta.NewMakes = append(delta.NewMakes, m.Name)
		}
	}
	return delta
}

func sumCounts(counts map[string]int64) int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	return total
}

func gitCommitPush(docsDir string) {
	cmds := [][]string{
		{"git", "add", filepath.Join(docsDir, "data/")},
		{"git", "commit", "-m", fmt.Sprintf("stats: snapshot %s", time.Now().UTC().Format("2006-01-02T15:04"))},
		{"git", "push"},
	}
	for _, args := range cmds {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			log.Printf("git %v: %v", args, err)
		}
	}
}
