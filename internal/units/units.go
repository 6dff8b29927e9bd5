// Package units provides shared constants and validation for angle units
package units

import (
	"math"
	"strings"
)

// Unit constants
const (
	DEG     = "deg"
	RAD     = "rad"
	PD      = "pd"      // prism dioptres, 100*tan(angle)
	DIOPTER = "diopter" // the configured degrees-per-diopter proxy
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{DEG, RAD, PD, DIOPTER}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertAngle converts an angle in degrees to the target units.
// degreesPerDiopter is only used for DIOPTER and must be positive.
func ConvertAngle(deg float64, targetUnits string, degreesPerDiopter float64) float64 {
	switch targetUnits {
	case RAD:
		return deg * math.Pi / 180
	case PD:
		return 100 * math.Tan(deg*math.Pi/180)
	case DIOPTER:
		return deg / degreesPerDiopter
	default:
		return deg
	}
}

// Symbol returns the short label printed after a converted value.
func Symbol(unit string) string {
	switch unit {
	case RAD:
		return "rad"
	case PD:
		return "Δ"
	case DIOPTER:
		return "D"
	default:
		return "°"
	}
}
