package usecase

import "testing"

func TestCleanName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases input",
			input: "Amul Taaza Milk",
			want:  "amul taaza milk",
		},
		{
			name:  "strips packaging words",
			input: "Amul Taaza Milk Pouch",
			want:  "amul taaza milk",
		},
		{
			name:  "strips multiple noise words",
			input: "Fresh Paneer Combo Pack",
			want:  "paneer",
		},
		{
			name:  "collapses whitespace runs",
			input: "amul   gold   milk",
			want:  "amul gold milk",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			// Substring removal is not word-boundary safe: "can" strips
			// inside "candy". Pinned so a change here is deliberate.
			name:  "noise word strips inside longer word",
			input: "mango candy",
			want:  "mango dy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.input); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanNameIdempotent(t *testing.T) {
	inputs := []string{
		"Amul Taaza Milk Pouch 500ml",
		"Fresh Organic Bananas",
		"Tata Salt 1kg",
		"",
	}

	for _, input := range inputs {
		once := CleanName(input)
		twice := CleanName(once)
		if once != twice {
			t.Errorf("CleanName not stable for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestExtractBrand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "known brand as first word",
			input: "Amul Taaza Milk",
			want:  "amul",
		},
		{
			name:  "known brand not at start",
			input: "Taaza Milk by Amul",
			want:  "amul",
		},
		{
			name:  "multi-word known brand",
			input: "Mother Dairy Toned Milk",
			want:  "mother dairy",
		},
		{
			name:  "unknown brand falls back to first token",
			input: "XYZ Milk 500ml",
			want:  "xyz",
		},
		{
			name:  "empty name",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBrand(tt.input); got != tt.want {
				t.Errorf("ExtractBrand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare milliliters", input: "500 ml", want: "500ml"},
		{name: "bare grams no space", input: "400g", want: "400g"},
		{name: "liters to milliliters", input: "1 l", want: "1000ml"},
		{name: "litre spelled out", input: "1 litre", want: "1000ml"},
		{name: "kilograms to grams", input: "1kg", want: "1000g"},
		{name: "kilogram spelled out", input: "2 kilogram", want: "2000g"},
		{name: "gm alias", input: "500 gm", want: "500g"},
		{name: "gram alias", input: "250 gram", want: "250g"},
		{name: "decimal kilograms", input: "2.5 kg", want: "2500g"},
		{name: "multi-pack milliliters", input: "2 x 500 ml", want: "1000ml"},
		{name: "multi-pack uppercase X", input: "3 X 90g", want: "270g"},
		{name: "parenthesized liters", input: "(1 L)", want: "1000ml"},
		{name: "parenthesized milliliters", input: "(500 ml)", want: "500ml"},
		{name: "no pattern falls back to despaced input", input: "family pack", want: "familypack"},
		{name: "empty input", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuantity(tt.input); got != tt.want {
				t.Errorf("NormalizeQuantity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuantityEquivalences(t *testing.T) {
	if NormalizeQuantity("1kg") != NormalizeQuantity("1000g") {
		t.Error("1kg and 1000g should normalize identically")
	}
	if NormalizeQuantity("1kg") != "1000g" {
		t.Errorf("NormalizeQuantity(1kg) = %q, want 1000g", NormalizeQuantity("1kg"))
	}
	if NormalizeQuantity("2 x 500 ml") != "1000ml" {
		t.Errorf("NormalizeQuantity(2 x 500 ml) = %q, want 1000ml", NormalizeQuantity("2 x 500 ml"))
	}
}

func TestQuantitiesClose(t *testing.T) {
	tests := []struct {
		name      string
		q1, q2    string
		tolerance float64
		want      bool
	}{
		{name: "identical", q1: "500ml", q2: "500ml", tolerance: 0.15, want: true},
		{name: "within tolerance", q1: "500ml", q2: "450ml", tolerance: 0.15, want: true},
		{name: "outside tolerance", q1: "500ml", q2: "300ml", tolerance: 0.15, want: false},
		{name: "different units never close", q1: "500ml", q2: "500g", tolerance: 0.15, want: false},
		{name: "unparsable left operand", q1: "familypack", q2: "500ml", tolerance: 0.15, want: false},
		{name: "unparsable right operand", q1: "500ml", q2: "", tolerance: 0.15, want: false},
		{name: "both unparsable", q1: "jumbo", q2: "familypack", tolerance: 0.15, want: false},
		{name: "tighter tolerance rejects", q1: "500ml", q2: "450ml", tolerance: 0.05, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuantitiesClose(tt.q1, tt.q2, tt.tolerance); got != tt.want {
				t.Errorf("QuantitiesClose(%q, %q, %v) = %v, want %v", tt.q1, tt.q2, tt.tolerance, got, tt.want)
			}
		})
	}
}
