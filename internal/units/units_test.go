package units

import (
	"math"
	"testing"
)

func TestConvertAngle(t *testing.T) {
	tests := []struct {
		name     string
		deg      float64
		units    string
		ratio    float64
		expected float64
	}{
		{"degrees pass through", 12.5, DEG, 1, 12.5},
		{"180 deg to rad", 180, RAD, 1, math.Pi},
		{"45 deg to prism dioptres", 45, PD, 1, 100},
		{"1 prism dioptre", math.Atan(0.01) * 180 / math.Pi, PD, 1, 1},
		{"diopter proxy", 9, DIOPTER, 0.9, 10},
		{"negative angle to pd", -45, PD, 1, -100},
		{"unknown units default to deg", 3, "grad", 1, 3},
		{"zero", 0, PD, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertAngle(tt.deg, tt.units, tt.ratio)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertAngle(%f, %s, %f) = %f, want %f", tt.deg, tt.units, tt.ratio, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid deg", DEG, true},
		{"valid rad", RAD, true},
		{"valid pd", PD, true},
		{"valid diopter", DIOPTER, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "DEG", false},
		{"case sensitive", "Pd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	expected := "deg, rad, pd, diopter"
	result := GetValidUnitsString()
	if result != expected {
		t.Errorf("GetValidUnitsString() = %s, want %s", result, expected)
	}
}

func TestSymbol(t *testing.T) {
	for unit, want := range map[string]string{DEG: "°", RAD: "rad", PD: "Δ", DIOPTER: "D", "": "°"} {
		if got := Symbol(unit); got != want {
			t.Errorf("Symbol(%q) = %q, want %q", unit, got, want)
		}
	}
}
