// Package units provides shared constants and conversions for angular rates
// and log timestamps.
package units

import "math"

// Angular rate unit constants
const (
	RadPerSec = "rads"
	DegPerSec = "degs"
)

// ValidUnits contains all valid angular rate units
var ValidUnits = []string{RadPerSec, DegPerSec}

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
	return "rads, degs"
}

// Label returns the axis label for a unit.
func Label(unit string) string {
	if unit == DegPerSec {
		return "deg/s"
	}
	return "rad/s"
}

// ConvertAngularRate converts a rate from radians per second to the target
// units. Gyro logs store rad/s.
func ConvertAngularRate(radPerSec float64, targetUnits string) float64 {
	switch targetUnits {
	case DegPerSec:
		return radPerSec * 180 / math.Pi
	default:
		return radPerSec // default to rad/s if unknown unit
	}
}

// NanosToMillis converts a nanosecond count or difference to milliseconds.
func NanosToMillis(ns int64) float64 {
	return float64(ns) / 1e6
}

// NanosToSeconds converts a nanosecond count or difference to seconds.
func NanosToSeconds(ns int64) float64 {
	return float64(ns) / 1e9
}
