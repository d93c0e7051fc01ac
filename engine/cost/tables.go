// Package cost produces an annualized ownership-cost breakdown (fuel,
// insurance, maintenance, repair, depreciation) plus a five-year projection
// from vehicle attributes, a fuel-price table and a complaint rate.
package cost

// insuranceMultipliers adjusts the base insurance premium per vehicle class.
// Unknown classes fall back to 1.0.
var insuranceMultipliers = map[string]float64{
	"Two Seaters":            1.40,
	"Minicompact Cars":       1.10,
	"Subcompact Cars":        1.00,
	"Compact Cars":           0.95,
	"Midsize Cars":           1.05,
	"Large Cars":             1.10,
	"Small Station Wagons":   0.95,
	"Midsize Station Wagons": 1.00,
	"Small SUVs":             1.00,
	"Standard SUVs":          1.15,
	"Minivans":               0.90,
	"Vans":                   1.05,
	"Pickup Trucks":          1.10,
}

// maintenanceBases is the per-class annual maintenance figure at 10,000
// miles. Unknown classes fall back to defaultMaintenanceBase.
var maintenanceBases = map[string]float64{
	"Two Seaters":            700,
	"Minicompact Cars":       500,
	"Subcompact Cars":        400,
	"Compact Cars":           420,
	"Midsize Cars":           450,
	"Large Cars":             550,
	"Small Station Wagons":   440,
	"Midsize Station Wagons": 480,
	"Small SUVs":             480,
	"Standard SUVs":          600,
	"Minivans":               520,
	"Vans":                   580,
	"Pickup Trucks":          580,
}

const (
	defaultMaintenanceBase = 500
	baseInsurancePremium   = 1200
	baseRepairCost         = 200
	repairPerComplaintRate = 150
	fiveYearDiscount       = 0.95
	electricMPGe           = 3.5
)

// DefaultAnnualMiles is assumed when the caller supplies no mileage.
const DefaultAnnualMiles = 12000

// retainedValueCurve holds the fraction of original price a vehicle keeps at
// each age. Ages past the last index clamp to the final entry.
var retainedValueCurve = []float64{
	1.00, 0.80, 0.70, 0.62, 0.55, 0.49, 0.44, 0.39, 0.35, 0.30, 0.26,
}

// retainedValue clamps the age into the curve.
func retainedValue(age int) float64 {
	if age < 0 {
		age = 0
	}
	if age >= len(retainedValueCurve) {
		age = len(retainedValueCurve) - 1
	}
	return retainedValueCurve[age]
}
