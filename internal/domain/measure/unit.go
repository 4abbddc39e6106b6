// Package measure provides the measurement units used by the stock subsystem
// and the conversion to canonical base quantities (grams for mass,
// milliliters for volume).
package measure

import (
	"fmt"
	"math"
)

// Unit is the closed set of measurement units an ingredient can be stocked in.
type Unit string

const (
	// UnitCount counts discrete physical items (eggs, boxes).
	UnitCount Unit = "un"

	UnitGram       Unit = "g"
	UnitMilligram  Unit = "mg"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
)

// Valid reports whether u is one of the known units.
func Valid(u Unit) bool {
	switch u {
	case UnitCount, UnitGram, UnitMilligram, UnitKilogram, UnitMilliliter, UnitLiter:
		return true
	}
	return false
}

// IsCount reports whether u counts discrete physical units rather than
// a continuous mass or volume.
func IsCount(u Unit) bool {
	return u == UnitCount
}

// ToBase converts amount expressed in u to the canonical base quantity
// (grams or milliliters). It is not applicable to UnitCount: callers must
// branch on the unit kind first.
func ToBase(amount float64, u Unit) (float64, error) {
	switch u {
	case UnitGram, UnitMilliliter:
		return amount, nil
	case UnitKilogram, UnitLiter:
		return amount * 1000, nil
	case UnitMilligram:
		return amount / 1000, nil
	case UnitCount:
		return 0, fmt.Errorf("unit %q has no base quantity", u)
	default:
		return 0, fmt.Errorf("unknown measurement unit %q", u)
	}
}

// ValidBaseQuantity reports whether v is usable as a base quantity per
// physical unit: positive and finite. Anything else indicates corrupted
// ingredient configuration.
func ValidBaseQuantity(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
