package taxonomy

import (
	"strings"
	"unicode"
)

// fineRule maps a known NHTSA component-phrase substring to a readable
// label. Evaluated top-to-bottom; more specific phrases come first.
type fineRule struct {
	phrase string
	label  string
}

var fineRules = []fineRule{
	{"POWER TRAIN:AUTOMATIC TRANSMISSION", "Transmission"},
	{"POWER TRAIN:MANUAL TRANSMISSION", "Transmission"},
	{"TRANSMISSION", "Transmission"},
	{"POWER TRAIN:CLUTCH", "Clutch"},
	{"POWER TRAIN:AXLE", "Axle/Differential"},
	{"POWER TRAIN", "Powertrain"},
	{"ENGINE AND ENGINE COOLING:COOLING", "Cooling System"},
	{"ENGINE COOLING", "Cooling System"},
	{"ENGINE", "Engine"},
	{"FUEL/PROPULSION SYSTEM", "Fuel System"},
	{"FUEL SYSTEM", "Fuel System"},
	{"HYBRID PROPULSION", "Hybrid/EV Battery"},
	{"ELECTRICAL SYSTEM:IGNITION", "Ignition"},
	{"ELECTRICAL SYSTEM:BATTERY", "Battery"},
	{"ELECTRICAL SYSTEM", "Electrical System"},
	{"ELECTRONIC STABILITY CONTROL", "Stability Control"},
	{"SERVICE BRAKES, ELECTRIC", "Brakes"},
	{"SERVICE BRAKES, HYDRAULIC", "Brakes"},
	{"SERVICE BRAKES", "Brakes"},
	{"PARKING BRAKE", "Parking Brake"},
	{"AIR BAGS", "Airbags"},
	{"AIR BAG", "Airbags"},
	{"SEAT BELTS", "Seat Belts"},
	{"CHILD SEAT", "Child Restraints"},
	{"SEATS", "Seats"},
	{"STEERING", "Steering"},
	{"SUSPENSION", "Suspension"},
	{"WHEELS", "Wheels"},
	{"TIRES", "Tires"},
	{"FORWARD COLLISION AVOIDANCE", "Driver Assistance"},
	{"LANE DEPARTURE", "Driver Assistance"},
	{"BACK OVER PREVENTION", "Driver Assistance"},
	{"VEHICLE SPEED CONTROL", "Speed Control"},
	{"EXTERIOR LIGHTING", "Exterior Lighting"},
	{"INTERIOR LIGHTING", "Interior Lighting"},
	{"VISIBILITY/WIPER", "Wipers"},
	{"VISIBILITY", "Visibility"},
	{"WINDSHIELD", "Visibility"},
	{"STRUCTURE:BODY", "Body Structure"},
	{"STRUCTURE", "Body Structure"},
	{"LATCHES/LOCKS/LINKAGES", "Latches/Locks"},
	{"EXHAUST SYSTEM", "Exhaust"},
	{"AIR CONDITIONER", "Climate Control"},
	{"EQUIPMENT", "Equipment"},
	{"UNKNOWN OR OTHER", "Other"},
}

// Fine maps one NHTSA component phrase to a readable cluster label. Unknown
// phrases fall back to a title-cased version of the input rather than a
// generic bucket, preserving long-tail specificity for problem reporting.
func Fine(phrase string) string {
	upper := strings.ToUpper(strings.TrimSpace(phrase))
	if upper == "" {
		return ""
	}
	for _, rule := range fineRules {
		if strings.Contains(upper, rule.phrase) {
			return rule.label
		}
	}
	return titleCase(upper)
}

// titleCase capitalizes the first letter of each word and lowercases the
// rest, so "POWER STEERING HOSE" renders as "Power Steering Hose".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
