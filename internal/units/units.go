// Package units provides shared constants and validation for distance units
package units

import "strings"

// Unit constants
const (
	Degrees    = "deg"
	Kilometres = "km"
	Miles      = "mi"
)

// KmPerDegree is the length of one degree of latitude, applied uniformly
// as an equirectangular approximation.
const KmPerDegree = 111.32

const kmPerMile = 1.609344

// ValidUnits contains all valid unit values
var ValidUnits = []string{Degrees, Kilometres, Miles}

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

// ConvertRadius converts a distance in coordinate degrees to the target units.
// Cluster radii are computed in degrees.
func ConvertRadius(degrees float64, targetUnits string) float64 {
	switch targetUnits {
	case Kilometres:
		return degrees * KmPerDegree
	case Miles:
		return degrees * KmPerDegree / kmPerMile
	case Degrees:
		return degrees // no conversion needed
	default:
		return degrees // default to degrees if unknown unit
	}
}
