package taxonomy

import (
	"math"
	"testing"
)

func TestCategoryWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, c := range Categories {
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weights sum to %v, want 1.0", sum)
	}
}

func TestCoarse(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"ENGINE AND ENGINE COOLING", CategoryEngine},
		{"FUEL SYSTEM, GASOLINE", CategoryEngine},
		{"EXHAUST SYSTEM", CategoryEngine},
		{"POWER TRAIN:AUTOMATIC TRANSMISSION", CategoryTransmission},
		{"SERVICE BRAKES, HYDRAULIC:ANTILOCK", CategoryBrakes},
		{"AIR BAGS:FRONTAL", CategorySafety},
		{"SEAT BELTS", CategorySafety},
		{"ELECTRONIC STABILITY CONTROL", CategorySafety},
		{"ELECTRICAL SYSTEM:IGNITION", CategoryElectrical},
		{"STEERING:RACK AND PINION", CategorySteering},
		{"SUSPENSION:FRONT", CategorySteering},
		{"VISIBILITY/WIPER", CategoryVisibility},
		{"INTERIOR LIGHTING", CategoryVisibility}, // lighting wins before interior
		{"SEATS:FRONT", CategoryInterior},
		{"STRUCTURE:BODY:DOOR", CategoryExterior},
		{"UNKNOWN OR OTHER", CategoryOther},
		{"", CategoryOther},
	}
	for _, tc := range cases {
		if got := Coarse(tc.text); got != tc.want {
			t.Errorf("Coarse(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestCoarse_CaseInsensitive(t *testing.T) {
	if got := Coarse("engine stalls"); got != CategoryEngine {
		t.Errorf("lowercase input: got %q", got)
	}
	if got := Coarse("Transmission Slipping"); got != CategoryTransmission {
		t.Errorf("mixed case input: got %q", got)
	}
}

func TestCoarse_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Coarse("POWER TRAIN"); got != CategoryTransmission {
			t.Fatalf("run %d: got %q", i, got)
		}
	}
}

func TestFine_KnownPhrases(t *testing.T) {
	cases := []struct {
		phrase string
		want   string
	}{
		{"POWER TRAIN:AUTOMATIC TRANSMISSION", "Transmission"},
		{"AIR BAGS", "Airbags"},
		{"AIR BAGS:FRONTAL:SENSOR", "Airbags"},
		{"SERVICE BRAKES, HYDRAULIC", "Brakes"},
		{"ELECTRICAL SYSTEM", "Electrical System"},
		{"ENGINE AND ENGINE COOLING:COOLING SYSTEM", "Cooling System"},
		{"FUEL/PROPULSION SYSTEM", "Fuel System"},
		{"FORWARD COLLISION AVOIDANCE", "Driver Assistance"},
		{"VISIBILITY/WIPER", "Wipers"},
		{"SEAT BELTS:REAR", "Seat Belts"},
	}
	for _, tc := range cases {
		if got := Fine(tc.phrase); got != tc.want {
			t.Errorf("Fine(%q) = %q, want %q", tc.phrase, got, tc.want)
		}
	}
}

func TestFine_FallbackTitleCase(t *testing.T) {
	if got := Fine("POWER STEERING HOSE ASSEMBLY"); got != "Steering" {
		// "STEERING" is a known phrase, so the fallback never fires here.
		t.Errorf("got %q", got)
	}
	if got := Fine("TRAILER HITCHES"); got != "Trailer Hitches" {
		t.Errorf("fallback: got %q, want %q", got, "Trailer Hitches")
	}
	if got := Fine("  "); got != "" {
		t.Errorf("blank phrase: got %q, want empty", got)
	}
}

func TestFine_Deterministic(t *testing.T) {
	a := Fine("SOME NOVEL WIDGET")
	b := Fine("SOME NOVEL WIDGET")
	if a != b || a != "Some Novel Widget" {
		t.Errorf("got %q / %q", a, b)
	}
}

func TestCoarseAndFineMayDisagree(t *testing.T) {
	// A complaint can land in coarse "Safety Systems" but fine "Airbags".
	// The divergence is intentional; the consumers need different grain.
	text := "AIR BAGS:FRONTAL"
	if Coarse(text) != CategorySafety {
		t.Errorf("coarse: got %q", Coarse(text))
	}
	if Fine(text) != "Airbags" {
		t.Errorf("fine: got %q", Fine(text))
	}
}
