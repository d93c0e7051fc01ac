package scoring

import (
	"testing"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
)

func TestSeverity(t *testing.T) {
	cases := []struct {
		name string
		c    domain.ComplaintRecord
		want float64
	}{
		{"baseline", domain.ComplaintRecord{}, 1},
		{"crash", domain.ComplaintRecord{Crash: true}, 4},
		{"fire", domain.ComplaintRecord{Fire: true}, 5},
		{"one injury", domain.ComplaintRecord{Injuries: 1}, 3},
		{"injuries saturate", domain.ComplaintRecord{Injuries: 10}, 7},
		{"one death", domain.ComplaintRecord{Deaths: 1}, 6},
		{"deaths saturate at cap", domain.ComplaintRecord{Deaths: 5}, 10},
		{"crash and fire", domain.ComplaintRecord{Crash: true, Fire: true}, 8},
		{"everything caps at 10", domain.ComplaintRecord{Crash: true, Fire: true, Injuries: 9, Deaths: 3}, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Severity(tc.c); got != tc.want {
				t.Errorf("Severity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSeverity_Bounds(t *testing.T) {
	extremes := []domain.ComplaintRecord{
		{},
		{Crash: true, Fire: true, Injuries: 1000, Deaths: 1000},
		{Injuries: -1}, // malformed counts still stay in band
	}
	for _, c := range extremes {
		s := Severity(c)
		if s < 0 || s > 10 {
			t.Errorf("severity %v out of [0,10] for %+v", s, c)
		}
	}
}

func TestBucket_Priority(t *testing.T) {
	cases := []struct {
		c    domain.ComplaintRecord
		want string
	}{
		{domain.ComplaintRecord{Deaths: 1}, "critical"},
		{domain.ComplaintRecord{Fire: true}, "critical"},
		{domain.ComplaintRecord{Fire: true, Crash: true}, "critical"}, // fire outranks crash
		{domain.ComplaintRecord{Crash: true}, "major"},
		{domain.ComplaintRecord{Injuries: 2}, "major"},
		{domain.ComplaintRecord{}, "minor"},
	}
	for _, tc := range cases {
		if got := Bucket(tc.c); got != tc.want {
			t.Errorf("Bucket(%+v) = %q, want %q", tc.c, got, tc.want)
		}
	}
}
