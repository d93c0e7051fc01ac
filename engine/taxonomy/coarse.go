// Package taxonomy maps free-text component descriptions onto the two
// controlled vocabularies used by the scoring pipeline: a coarse 10-category
// taxonomy driving the weighted reliability score, and a finer ~25-label
// taxonomy driving common-problem clustering. The two tables intentionally
// disagree on some inputs; each consumer needs its own granularity.
package taxonomy

import "strings"

// Category names of the coarse taxonomy.
const (
	CategoryEngine       = "Engine"
	CategoryTransmission = "Transmission"
	CategoryElectrical   = "Electrical"
	CategoryBrakes       = "Brakes"
	CategorySafety       = "Safety Systems"
	CategorySteering     = "Steering/Suspension"
	CategoryInterior     = "Interior"
	CategoryExterior     = "Exterior"
	CategoryVisibility   = "Visibility"
	CategoryOther        = "Other"
)

// Category is one entry of the coarse taxonomy. Weights sum to exactly 1.0;
// Other carries weight 0 and is excluded from the weighted overall score,
// though its complaints are still counted.
type Category struct {
	Name   string
	Weight float64
}

// Categories is the fixed coarse taxonomy in priority order.
var Categories = []Category{
	{CategoryEngine, 0.20},
	{CategoryTransmission, 0.18},
	{CategoryElectrical, 0.12},
	{CategoryBrakes, 0.15},
	{CategorySafety, 0.15},
	{CategorySteering, 0.10},
	{CategoryInterior, 0.05},
	{CategoryExterior, 0.02},
	{CategoryVisibility, 0.03},
	{CategoryOther, 0.00},
}

// coarseRule maps a keyword group to a category. Rules are evaluated
// top-to-bottom; the first group with any matching keyword wins.
type coarseRule struct {
	category string
	keywords []string
}

var coarseRules = []coarseRule{
	{CategoryEngine, []string{"engine", "fuel system", "exhaust", "cooling", "turbo"}},
	{CategoryTransmission, []string{"transmission", "power train", "powertrain", "drivetrain", "driveline", "clutch", "gearbox"}},
	{CategoryBrakes, []string{"brake", "abs"}},
	{CategorySafety, []string{"air bag", "airbag", "seat belt", "restraint", "stability", "collision", "crash avoidance"}},
	{CategoryElectrical, []string{"electrical", "electric", "battery", "ignition", "wiring", "alternator", "starter", "electronic"}},
	{CategorySteering, []string{"steering", "suspension", "axle", "wheel", "tire", "alignment", "shock absorber"}},
	{CategoryVisibility, []string{"visibility", "windshield", "wiper", "window", "glass", "defrost", "lighting", "headlight", "mirror"}},
	{CategoryInterior, []string{"interior", "seat", "dashboard", "air conditioning", "hvac", "climate", "instrument panel"}},
	{CategoryExterior, []string{"exterior", "body", "door", "hood", "bumper", "paint", "trunk", "tailgate", "latch"}},
}

// Coarse maps free component text to one of the 10 coarse categories.
// Matching is case-insensitive substring search; unmatched text maps to
// Other. Pure: the same input always yields the same label.
func Coarse(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range coarseRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}

// WeightOf returns the weight of a coarse category, 0 for unknown names.
func WeightOf(name string) float64 {
	for _, c := range Categories {
		if c.Name == name {
			return c.Weight
		}
	}
	return 0
}
