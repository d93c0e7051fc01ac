package scoring

import "github.com/LemonScout/lemonscout-mvp/engine/domain"

// Severity computes the 0-10 severity of one complaint. Fire and fatality
// weigh heaviest; injury and death contributions saturate so one extreme
// record cannot dominate a category.
func Severity(c domain.ComplaintRecord) float64 {
	s := 1.0
	if c.Crash {
		s += 3
	}
	if c.Fire {
		s += 4
	}
	s += min(2*float64(c.Injuries), 6)
	s += min(5*float64(c.Deaths), 10)
	return clamp(s, 1, 10)
}

// Bucket classifies one complaint into exactly one severity tier, priority
// order: critical (death or fire), major (crash or injury), minor.
func Bucket(c domain.ComplaintRecord) string {
	switch {
	case c.Deaths > 0 || c.Fire:
		return "critical"
	case c.Crash || c.Injuries > 0:
		return "major"
	default:
		return "minor"
	}
}
