package measure

import (
	"math"
	"testing"
)

func TestToBase(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		unit   Unit
		want   float64
	}{
		{"gram identity", 250, UnitGram, 250},
		{"milliliter identity", 75.5, UnitMilliliter, 75.5},
		{"kilogram", 2, UnitKilogram, 2000},
		{"liter", 1.5, UnitLiter, 1500},
		{"milligram", 500, UnitMilligram, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBase(tt.amount, tt.unit)
			if err != nil {
				t.Fatalf("ToBase(%v, %q) failed: %v", tt.amount, tt.unit, err)
			}
			if got != tt.want {
				t.Errorf("ToBase(%v, %q) = %v, want %v", tt.amount, tt.unit, got, tt.want)
			}
		})
	}
}

func TestToBase_CountNotApplicable(t *testing.T) {
	if _, err := ToBase(3, UnitCount); err == nil {
		t.Error("expected error converting a unit-count amount to base")
	}
}

func TestToBase_UnknownUnit(t *testing.T) {
	if _, err := ToBase(1, Unit("oz")); err == nil {
		t.Error("expected error for unrecognized unit")
	}
}

func TestValid(t *testing.T) {
	for _, u := range []Unit{UnitCount, UnitGram, UnitMilligram, UnitKilogram, UnitMilliliter, UnitLiter} {
		if !Valid(u) {
			t.Errorf("Valid(%q) = false, want true", u)
		}
	}
	if Valid(Unit("lb")) {
		t.Error(`Valid("lb") = true, want false`)
	}
}

func TestValidBaseQuantity(t *testing.T) {
	tests := []struct {
		v    float64
		want bool
	}{
		{250, true},
		{0.001, true},
		{0, false},
		{-5, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}

	for _, tt := range tests {
		if got := ValidBaseQuantity(tt.v); got != tt.want {
			t.Errorf("ValidBaseQuantity(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
