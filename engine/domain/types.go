// Package domain defines core domain types, constants, and validation for the
// LemonScout scoring pipeline. It acts as the validation gate at pipeline
// entry points.
package domain

import "time"

// Vehicle identifies a vehicle make/model/year.
type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// ComplaintRecord is a normalized safety complaint. Inputs are immutable;
// the engine never mutates them.
type ComplaintRecord struct {
	ID        string    `json:"id"`
	Filed     time.Time `json:"filed"`
	Component string    `json:"component"`
	Crash     bool      `json:"crash"`
	Fire      bool      `json:"fire"`
	Injuries  int       `json:"injuries"`
	Deaths    int       `json:"deaths"`
	Summary   string    `json:"summary"`
}

// RecallRecord is a normalized safety recall campaign.
type RecallRecord struct {
	Campaign         string    `json:"campaign"`
	Date             time.Time `json:"date"`
	Component        string    `json:"component"`
	Consequence      string    `json:"consequence"`
	Remedy           string    `json:"remedy"`
	PossiblyAffected int       `json:"possibly_affected"`
}

// FuelType tags how a vehicle is fueled.
type FuelType string

const (
	FuelRegular  FuelType = "regular"
	FuelPremium  FuelType = "premium"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

// ValidFuelTypes is the set of recognised fuel-type tags.
var ValidFuelTypes = map[FuelType]bool{
	FuelRegular: true, FuelPremium: true, FuelDiesel: true,
	FuelElectric: true, FuelHybrid: true,
}

// FuelPrices maps fuel-type tags to current retail prices. Gasoline and
// diesel entries are per gallon, the electric entry is per kWh.
type FuelPrices map[FuelType]float64

// Default retail prices used when a tag is missing from a supplied table.
const (
	DefaultRegularPrice  = 3.50
	DefaultPremiumPrice  = 4.20
	DefaultDieselPrice   = 4.00
	DefaultElectricPrice = 0.16
)

// DefaultFuelPrices returns the static fallback price table.
func DefaultFuelPrices() FuelPrices {
	return FuelPrices{
		FuelRegular:  DefaultRegularPrice,
		FuelPremium:  DefaultPremiumPrice,
		FuelDiesel:   DefaultDieselPrice,
		FuelElectric: DefaultElectricPrice,
	}
}

// Price returns the price for a fuel type, falling back to the defaults when
// the tag is missing from the table. Hybrids burn regular gasoline.
func (p FuelPrices) Price(ft FuelType) float64 {
	if ft == FuelHybrid {
		ft = FuelRegular
	}
	if v, ok := p[ft]; ok && v > 0 {
		return v
	}
	switch ft {
	case FuelPremium:
		return DefaultPremiumPrice
	case FuelDiesel:
		return DefaultDieselPrice
	case FuelElectric:
		return DefaultElectricPrice
	default:
		return DefaultRegularPrice
	}
}

// VehicleClasses is the 13-entry controlled vocabulary of EPA size classes
// shared by the class base-price, insurance and maintenance tables.
var VehicleClasses = []string{
	"Two Seaters",
	"Minicompact Cars",
	"Subcompact Cars",
	"Compact Cars",
	"Midsize Cars",
	"Large Cars",
	"Small Station Wagons",
	"Midsize Station Wagons",
	"Small SUVs",
	"Standard SUVs",
	"Minivans",
	"Vans",
	"Pickup Trucks",
}

// VehicleAttrs carries the fuel/price attributes an attribute source
// supplies for one vehicle.
type VehicleAttrs struct {
	Vehicle     Vehicle  `json:"vehicle"`
	CombinedMPG float64  `json:"combined_mpg"`
	FuelType    FuelType `json:"fuel_type"`
	Class       string   `json:"class"`
	Trim        string   `json:"trim,omitempty"`
	MSRP        int      `json:"msrp,omitempty"` // 0 when unknown
}
