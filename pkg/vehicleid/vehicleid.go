// Package vehicleid parses free-text vehicle references like
// "2019 Honda Civic" or "chevy silverado '21" into a structured identity.
package vehicleid

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Match is a parsed vehicle reference.
type Match struct {
	Make       string
	Model      string
	Year       int // 0 when absent
	Confidence float64
}

// makeAliases maps abbreviations and nicknames to canonical make names.
var makeAliases = map[string]string{
	"chevy":         "Chevrolet",
	"chevrolet":     "Chevrolet",
	"benz":          "Mercedes-Benz",
	"mercedes":      "Mercedes-Benz",
	"mercedes-benz": "Mercedes-Benz",
	"vw":            "Volkswagen",
	"volkswagen":    "Volkswagen",
	"toyota":        "Toyota",
	"honda":         "Honda",
	"ford":          "Ford",
	"bmw":           "BMW",
	"audi":          "Audi",
	"nissan":        "Nissan",
	"hyundai":       "Hyundai",
	"kia":           "Kia",
	"subaru":        "Subaru",
	"mazda":         "Mazda",
	"jeep":          "Jeep",
	"ram":           "Ram",
	"gmc":           "GMC",
	"dodge":         "Dodge",
	"lexus":         "Lexus",
	"acura":         "Acura",
	"tesla":         "Tesla",
	"porsche":       "Porsche",
	"volvo":         "Volvo",
	"buick":         "Buick",
	"cadillac":      "Cadillac",
	"lincoln":       "Lincoln",
	"infiniti":      "Infiniti",
	"genesis":       "Genesis",
	"mitsubishi":    "Mitsubishi",
	"chrysler":      "Chrysler",
	"land rover":    "Land Rover",
	"jaguar":        "Jaguar",
	"fiat":          "Fiat",
	"mini":          "Mini",
	"rivian":        "Rivian",
	"lucid":         "Lucid",
	"polestar":      "Polestar",
}

// makeModels maps canonical make to known model names.
var makeModels = map[string][]string{
	"Toyota":        {"Camry", "Corolla", "RAV4", "Highlander", "Grand Highlander", "Tacoma", "Tundra", "Prius", "4Runner", "Sienna", "Supra", "Venza", "Sequoia", "Land Cruiser"},
	"Honda":         {"Civic", "Accord", "CR-V", "Pilot", "Odyssey", "HR-V", "Ridgeline", "Passport"},
	"Ford":          {"F-150", "F-250", "Mustang", "Explorer", "Escape", "Ranger", "Bronco", "Edge", "Expedition", "Maverick", "Fusion"},
	"Chevrolet":     {"Silverado", "Equinox", "Malibu", "Tahoe", "Suburban", "Camaro", "Colorado", "Traverse", "Blazer", "Bolt", "Trax"},
	"BMW":           {"3 Series", "5 Series", "7 Series", "X3", "X5", "X1", "X7", "M3", "M5", "i4", "iX"},
	"Mercedes-Benz": {"C-Class", "E-Class", "S-Class", "GLC", "GLE", "A-Class", "CLA", "GLA", "GLS", "EQS"},
	"Audi":          {"A4", "A6", "A3", "Q5", "Q7", "Q3", "A5", "A8", "Q8", "e-tron"},
	"Nissan":        {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Maxima", "Murano", "Titan", "Kicks", "Versa", "Armada", "Leaf"},
	"Hyundai":       {"Elantra", "Sonata", "Tucson", "Santa Fe", "Kona", "Palisade", "Ioniq 5", "Ioniq 6", "Venue", "Santa Cruz"},
	"Kia":           {"Forte", "K5", "Sportage", "Telluride", "Sorento", "Seltos", "EV6", "EV9", "Soul", "Carnival", "Niro"},
	"Volkswagen":    {"Golf", "Jetta", "Tiguan", "Atlas", "Passat", "Taos", "ID.4", "GTI"},
	"Subaru":        {"Outback", "Forester", "Crosstrek", "Impreza", "WRX", "Legacy", "Ascent", "BRZ", "Solterra"},
	"Mazda":         {"Mazda3", "Mazda6", "CX-5", "CX-9", "CX-30", "CX-50", "MX-5", "CX-90"},
	"Jeep":          {"Wrangler", "Grand Cherokee", "Cherokee", "Compass", "Renegade", "Gladiator", "Wagoneer"},
	"Ram":           {"1500", "2500", "3500", "ProMaster"},
	"GMC":           {"Sierra", "Terrain", "Acadia", "Yukon", "Canyon"},
	"Dodge":         {"Charger", "Challenger", "Durango", "Hornet"},
	"Lexus":         {"RX", "ES", "NX", "IS", "GX", "LX", "UX"},
	"Acura":         {"TLX", "MDX", "RDX", "Integra"},
	"Tesla":         {"Model 3", "Model Y", "Model S", "Model X", "Cybertruck"},
	"Porsche":       {"911", "Cayenne", "Macan", "Taycan", "Panamera"},
	"Volvo":         {"XC90", "XC60", "XC40", "S60", "S90", "V60"},
	"Buick":         {"Enclave", "Encore", "Envision"},
	"Cadillac":      {"Escalade", "CT5", "CT4", "XT5", "XT4", "XT6", "Lyriq"},
	"Lincoln":       {"Navigator", "Aviator", "Corsair", "Nautilus"},
	"Infiniti":      {"Q50", "QX50", "QX60", "QX80"},
	"Genesis":       {"G70", "G80", "G90", "GV70", "GV80", "GV60"},
	"Mitsubishi":    {"Outlander", "Eclipse Cross", "Mirage"},
	"Chrysler":      {"Pacifica", "300"},
	"Land Rover":    {"Range Rover", "Defender", "Discovery", "Evoque"},
	"Jaguar":        {"F-Pace", "XF", "XE", "F-Type", "I-Pace"},
	"Fiat":          {"500", "500X"},
	"Mini":          {"Cooper", "Countryman", "Clubman"},
	"Rivian":        {"R1T", "R1S"},
	"Lucid":         {"Air"},
	"Polestar":      {"Polestar 2", "Polestar 3"},
}

var makeRe *regexp.Regexp

var yearFullRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
var yearAbbrRe = regexp.MustCompile(`'(\d{2})\b`)

func init() {
	aliases := make([]string, 0, len(makeAliases))
	for alias := range makeAliases {
		aliases = append(aliases, regexp.QuoteMeta(alias))
	}
	// Longest first so "mercedes-benz" wins over "mercedes".
	sort.Slice(aliases, func(i, j int) bool { return len(aliases[i]) > len(aliases[j]) })
	makeRe = regexp.MustCompile(`(?i)\b(` + strings.Join(aliases, "|") + `)\b`)
}

// Parse extracts a vehicle identity from text. ok is false when no make could
// be identified.
func Parse(text string) (Match, bool) {
	if text == "" {
		return Match{}, false
	}

	loc := makeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return Match{}, false
	}
	canonical := makeAliases[strings.ToLower(text[loc[2]:loc[3]])]
	if canonical == "" {
		return Match{}, false
	}

	after := text[loc[1]:]
	model, modelEnd := findModel(canonical, after)

	year := findYear(text[:loc[0]])
	if year == 0 {
		rest := after
		if modelEnd > 0 {
			rest = after[modelEnd:]
		}
		year = findYear(rest)
	}
	if year == 0 {
		year = findAbbrYear(text)
	}

	conf := 0.60
	switch {
	case year > 0 && model != "":
		conf = 0.95
	case model != "":
		conf = 0.80
	case year > 0:
		conf = 0.70
	}

	return Match{Make: canonical, Model: model, Year: year, Confidence: conf}, true
}

// findModel matches a known model of the make at the start of the fragment
// following the make name. Longest model names are tried first so
// "Grand Cherokee" wins over "Cherokee".
func findModel(make_, after string) (string, int) {
	models := makeModels[make_]
	if len(models) == 0 {
		return "", 0
	}

	trimmed := strings.TrimLeftFunc(after, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ':'
	})
	offset := len(after) - len(trimmed)
	lower := strings.ToLower(trimmed)

	sorted := make([]string, len(models))
	copy(sorted, models)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, m := range sorted {
		ml := strings.ToLower(m)
		if !strings.HasPrefix(lower, ml) {
			continue
		}
		if len(lower) > len(ml) {
			next := rune(lower[len(ml)])
			if unicode.IsLetter(next) || unicode.IsDigit(next) {
				continue
			}
		}
		return m, offset + len(ml)
	}
	return "", 0
}

func findYear(s string) int {
	m := yearFullRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	if y >= 1980 && y <= 2030 {
		return y
	}
	return 0
}

func findAbbrYear(s string) int {
	m := yearAbbrRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	yy, _ := strconv.Atoi(m[1])
	switch {
	case yy <= 30:
		return 2000 + yy
	case yy >= 80:
		return 1900 + yy
	}
	return 0
}
