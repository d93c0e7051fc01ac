// Package pricing estimates an MSRP when no direct price is known, using
// fixed per-make, per-model, per-class and trim lookup tables. Tables are
// immutable snapshots constructed at process start; estimates are tagged
// with a confidence level and provenance.
package pricing

// makeBasePrices is the make-level starting point, spanning economy, luxury
// and EV brands. Unknown makes fall back to DefaultBasePrice.
var makeBasePrices = map[string]int{
	"Toyota":        28000,
	"Honda":         28500,
	"Ford":          33000,
	"Chevrolet":     32000,
	"Nissan":        27000,
	"Hyundai":       26000,
	"Kia":           26500,
	"Mazda":         27500,
	"Subaru":        29000,
	"Volkswagen":    29500,
	"Mitsubishi":    24000,
	"Buick":         31000,
	"GMC":           37000,
	"Ram":           38000,
	"Dodge":         34000,
	"Jeep":          34000,
	"Chrysler":      32000,
	"Mini":          31000,
	"Fiat":          25000,
	"BMW":           48000,
	"Mercedes-Benz": 50000,
	"Audi":          46000,
	"Lexus":         45000,
	"Acura":         40000,
	"Infiniti":      42000,
	"Genesis":       44000,
	"Cadillac":      48000,
	"Lincoln":       46000,
	"Volvo":         43000,
	"Jaguar":        52000,
	"Land Rover":    58000,
	"Porsche":       70000,
	"Alfa Romeo":    44000,
	"Maserati":      80000,
	"Tesla":         45000,
	"Rivian":        72000,
	"Lucid":         80000,
	"Polestar":      50000,
	"Smart":         24000,
	"Saturn":        20000,
	"Pontiac":       21000,
	"Mercury":       22000,
}

// DefaultBasePrice is used when the make is not in the table.
const DefaultBasePrice = 30000

// modelMultipliers refines the make base for popular models. Only a subset
// of makes is covered; missed lookups fall through to the class table.
var modelMultipliers = map[string]map[string]float64{
	"Toyota": {
		"Corolla": 0.80, "Camry": 1.00, "RAV4": 1.05, "Highlander": 1.35,
		"Tacoma": 1.15, "Tundra": 1.45, "Prius": 1.00, "4Runner": 1.40, "Sienna": 1.30,
	},
	"Honda": {
		"Civic": 0.85, "Accord": 1.00, "CR-V": 1.05, "Pilot": 1.35,
		"Odyssey": 1.30, "HR-V": 0.90, "Ridgeline": 1.35,
	},
	"Ford": {
		"Fiesta": 0.60, "Focus": 0.70, "Fusion": 0.80, "Escape": 0.90,
		"Mustang": 1.05, "Explorer": 1.15, "F-150": 1.20, "Expedition": 1.65,
	},
	"Chevrolet": {
		"Spark": 0.50, "Malibu": 0.80, "Equinox": 0.90, "Traverse": 1.10,
		"Silverado": 1.20, "Tahoe": 1.70, "Suburban": 1.80, "Corvette": 2.10,
	},
	"Nissan": {
		"Versa": 0.60, "Sentra": 0.75, "Altima": 0.95, "Rogue": 1.00,
		"Pathfinder": 1.30, "Frontier": 1.10, "Titan": 1.45,
	},
	"Hyundai": {
		"Accent": 0.65, "Elantra": 0.80, "Sonata": 0.95, "Tucson": 1.05,
		"Santa Fe": 1.15, "Palisade": 1.40,
	},
	"Kia": {
		"Rio": 0.65, "Forte": 0.75, "K5": 0.95, "Sportage": 1.00,
		"Sorento": 1.15, "Telluride": 1.35,
	},
	"Mazda": {
		"Mazda3": 0.85, "Mazda6": 0.95, "CX-30": 0.90, "CX-5": 1.00, "CX-9": 1.25,
	},
	"Subaru": {
		"Impreza": 0.80, "Crosstrek": 0.90, "Forester": 1.00,
		"Outback": 1.05, "Ascent": 1.20, "WRX": 1.05,
	},
	"Volkswagen": {
		"Jetta": 0.75, "Golf": 0.85, "Taos": 0.85, "Tiguan": 1.00, "Atlas": 1.20,
	},
	"BMW": {
		"2 Series": 0.80, "3 Series": 0.95, "5 Series": 1.20,
		"7 Series": 1.85, "X3": 1.00, "X5": 1.35,
	},
	"Mercedes-Benz": {
		"A-Class": 0.70, "C-Class": 0.90, "E-Class": 1.15,
		"S-Class": 2.20, "GLC": 0.95, "GLE": 1.25,
	},
	"Tesla": {
		"Model 3": 0.90, "Model Y": 1.05, "Model S": 1.90, "Model X": 2.00,
	},
	"Jeep": {
		"Renegade": 0.75, "Compass": 0.85, "Cherokee": 0.95,
		"Wrangler": 1.05, "Grand Cherokee": 1.20, "Gladiator": 1.15,
	},
	"Lexus": {
		"UX": 0.80, "NX": 0.90, "ES": 0.95, "RX": 1.10, "GX": 1.30, "LS": 1.75,
	},
}

// classBasePrices is the 13-entry vehicle-class fallback when no model
// multiplier exists. These replace the make base entirely.
var classBasePrices = map[string]int{
	"Two Seaters":            42000,
	"Minicompact Cars":       30000,
	"Subcompact Cars":        22000,
	"Compact Cars":           25000,
	"Midsize Cars":           30000,
	"Large Cars":             38000,
	"Small Station Wagons":   28000,
	"Midsize Station Wagons": 34000,
	"Small SUVs":             30000,
	"Standard SUVs":          42000,
	"Minivans":               38000,
	"Vans":                   40000,
	"Pickup Trucks":          40000,
}

// trimMultipliers maps trim keywords to price factors. Evaluated in order;
// the first matching keyword wins.
var trimMultipliers = []struct {
	keyword string
	factor  float64
}{
	{"type r", 1.35},
	{"m sport", 1.25},
	{"performance", 1.35},
	{"amg", 1.40},
	{"platinum", 1.30},
	{"trd", 1.25},
	{"limited", 1.20},
	{"touring", 1.15},
	{"xse", 1.12},
	{"xle", 1.08},
	{"sport", 1.10},
	{"se", 1.05},
	{"ex", 1.05},
	{"base", 0.95},
	{"le", 0.97},
	{"lx", 0.97},
	{"s", 1.00}, // bare S trims
}

// yearMultiplier discounts by vehicle age relative to the current year.
func yearMultiplier(age int) float64 {
	switch {
	case age <= 0:
		return 1.05
	case age == 1:
		return 1.00
	case age <= 3:
		return 0.95
	case age <= 5:
		return 0.90
	case age <= 8:
		return 0.85
	default:
		return 0.80
	}
}
