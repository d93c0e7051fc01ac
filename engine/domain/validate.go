package domain

import (
	"fmt"
	"strings"
)

// MinModelYear is the earliest model year we accept.
const MinModelYear = 1980

// MaxModelYear is the latest model year we accept (current + 1 for
// next-year models, pinned rather than derived so validation stays pure).
const MaxModelYear = 2027

// ValidateVehicle checks a vehicle identity. Make and model are required
// but not matched against a closed list: complaint data covers far more
// vehicles than any curated table.
func ValidateVehicle(v Vehicle) error {
	if strings.TrimSpace(v.Make) == "" {
		return NewValidationError("make", v.Make, ErrInvalidVehicle)
	}
	if strings.TrimSpace(v.Model) == "" {
		return NewValidationError("model", v.Model, ErrInvalidVehicle)
	}
	if v.Year < MinModelYear || v.Year > MaxModelYear {
		return NewValidationError("year", fmt.Sprintf("%d", v.Year), ErrYearOutOfRange)
	}
	return nil
}

// ValidateCostInputs rejects the only inputs the cost estimator treats as
// hard errors: negative money/mileage figures and fuel tags outside the
// controlled enumeration. Everything else defaults silently.
func ValidateCostInputs(price, annualMiles float64, fuel FuelType) error {
	if price < 0 {
		return NewValidationError("price", fmt.Sprintf("%g", price), ErrNegativePrice)
	}
	if annualMiles < 0 {
		return NewValidationError("annual_miles", fmt.Sprintf("%g", annualMiles), ErrNegativeMiles)
	}
	if !ValidFuelTypes[fuel] {
		return NewValidationError("fuel_type", string(fuel), ErrUnknownFuelType)
	}
	return nil
}
