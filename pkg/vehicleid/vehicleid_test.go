package vehicleid

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		text      string
		wantMake  string
		wantModel string
		wantYear  int
		wantOK    bool
	}{
		{"2019 Honda Civic", "Honda", "Civic", 2019, true},
		{"Honda Civic 2019", "Honda", "Civic", 2019, true},
		{"chevy silverado '21", "Chevrolet", "Silverado", 2021, true},
		{"my 2020 Jeep Grand Cherokee keeps stalling", "Jeep", "Grand Cherokee", 2020, true},
		{"mercedes-benz C-Class", "Mercedes-Benz", "C-Class", 0, true},
		{"a vw jetta", "Volkswagen", "Jetta", 0, true},
		{"Toyota something weird", "Toyota", "", 0, true},
		{"1985 Ford Mustang", "Ford", "Mustang", 1985, true},
		{"no vehicle here", "", "", 0, false},
		{"", "", "", 0, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.text)
		if ok != tt.wantOK {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got.Make != tt.wantMake || got.Model != tt.wantModel || got.Year != tt.wantYear {
			t.Errorf("Parse(%q) = %+v, want %s %s %d", tt.text, got, tt.wantMake, tt.wantModel, tt.wantYear)
		}
	}
}

func TestParseConfidence(t *testing.T) {
	full, _ := Parse("2019 Honda Civic")
	modelOnly, _ := Parse("Honda Civic")
	yearOnly, _ := Parse("2019 Honda")
	makeOnly, _ := Parse("Honda")

	if full.Confidence != 0.95 {
		t.Errorf("full = %v", full.Confidence)
	}
	if modelOnly.Confidence != 0.80 {
		t.Errorf("model only = %v", modelOnly.Confidence)
	}
	if yearOnly.Confidence != 0.70 {
		t.Errorf("year only = %v", yearOnly.Confidence)
	}
	if makeOnly.Confidence != 0.60 {
		t.Errorf("make only = %v", makeOnly.Confidence)
	}
}

func TestFindModelWordBoundary(t *testing.T) {
	// "Cherokee" should not match inside "Cherokees" when the trailing rune
	// is a letter; the plural form is rejected.
	model, _ := findModel("Jeep", " Cherokees everywhere")
	if model != "" {
		t.Errorf("model = %q, want no match", model)
	}
}

func TestAbbrYearRanges(t *testing.T) {
	if y := findAbbrYear("'08"); y != 2008 {
		t.Errorf("'08 = %d", y)
	}
	if y := findAbbrYear("'95"); y != 1995 {
		t.Errorf("'95 = %d", y)
	}
	if y := findAbbrYear("'55"); y != 0 {
		t.Errorf("'55 = %d, want 0", y)
	}
}
