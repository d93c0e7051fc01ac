package cost

import (
	"math"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
)

// Input carries everything the estimator needs for one vehicle. Price is an
// MSRP estimate or a known figure; ComplaintRate is complaints per 10,000
// vehicles; AnnualMiles of zero means DefaultAnnualMiles.
type Input struct {
	Price         float64
	CombinedMPG   float64
	FuelType      domain.FuelType
	Class         string
	Year          int
	CurrentYear   int
	ComplaintRate float64
	AnnualMiles   float64
	FuelPrices    domain.FuelPrices
}

// Breakdown is the annualized result. All figures are non-negative whole
// currency units.
type Breakdown struct {
	Fuel         int `json:"fuel"`
	Insurance    int `json:"insurance"`
	Maintenance  int `json:"maintenance"`
	Repair       int `json:"repair"`
	Depreciation int `json:"depreciation"`
	TotalAnnual  int `json:"totalAnnual"`
	FiveYear     int `json:"fiveYear"`
}

// Estimate validates the input and computes each cost component. Unknown
// classes default silently; a bad price, mileage or fuel tag is the only
// rejection path.
func Estimate(in Input) (Breakdown, error) {
	if in.AnnualMiles == 0 {
		in.AnnualMiles = DefaultAnnualMiles
	}
	if err := domain.ValidateCostInputs(in.Price, in.AnnualMiles, in.FuelType); err != nil {
		return Breakdown{}, err
	}

	fuel := fuelCost(in)
	insurance := insuranceCost(in.Price, in.Class)
	maintenance := maintenanceCost(in.AnnualMiles, in.Class)
	repair := baseRepairCost + roundNonNeg(in.ComplaintRate*repairPerComplaintRate)
	depreciation := depreciationCost(in.Price, in.CurrentYear-in.Year)

	total := fuel + insurance + maintenance + repair + depreciation
	return Breakdown{
		Fuel:         fuel,
		Insurance:    insurance,
		Maintenance:  maintenance,
		Repair:       repair,
		Depreciation: depreciation,
		TotalAnnual:  total,
		FiveYear:     roundNonNeg(float64(total) * 5 * fiveYearDiscount),
	}, nil
}

// fuelCost prices annual fuel. Electric vehicles convert miles to kWh via a
// fixed MPGe divisor; everything else divides miles by MPG (floored at 1).
func fuelCost(in Input) int {
	price := in.FuelPrices.Price(in.FuelType)
	if in.FuelType == domain.FuelElectric {
		return roundNonNeg(in.AnnualMiles / electricMPGe * price)
	}
	mpg := max(in.CombinedMPG, 1)
	return roundNonNeg(in.AnnualMiles / mpg * price)
}

// insuranceCost scales the base premium by vehicle class and by how far the
// price sits from a 30,000 reference point, floored at 0.8.
func insuranceCost(price float64, class string) int {
	mult := 1.0
	if m, ok := insuranceMultipliers[class]; ok {
		mult = m
	}
	priceFactor := max(1+(price-30000)/100000, 0.8)
	return roundNonNeg(baseInsurancePremium * mult * priceFactor)
}

func maintenanceCost(annualMiles float64, class string) int {
	base := float64(defaultMaintenanceBase)
	if b, ok := maintenanceBases[class]; ok {
		base = b
	}
	return roundNonNeg(annualMiles / 10000 * base)
}

// depreciationCost is the value lost moving from the current age to the next
// year on the retained-value curve.
func depreciationCost(price float64, age int) int {
	return roundNonNeg(price * (retainedValue(age) - retainedValue(age+1)))
}

func roundNonNeg(v float64) int {
	if v < 0 {
		return 0
	}
	return int(math.Round(v))
}
