// Package geo implements spherical-Earth point math: great-circle distances,
// radius bounding boxes and planar point-in-polygon tests on lat/lon pairs.
package geo

import (
	"fmt"
	"math"
)

// Unit is a distance unit token accepted by radius-dependent operations.
type Unit string

// Supported unit tokens.
const (
	Kilometers     Unit = "km"
	KilometersLong Unit = "kilometers"
	Miles          Unit = "mi"
	MilesLong      Unit = "miles"
)

// Sphere constants of the spherical Earth approximation.
const (
	RadiusKm = 6371.01     // RadiusKm is the mean Earth radius in kilometers.
	RadiusMi = 3958.762079 // RadiusMi is the mean Earth radius in miles.

	// KilometersPerMile converts miles to kilometers.
	KilometersPerMile = 1.609344
)

// Angular bounds of valid coordinates, in radians.
const (
	MinLat = -math.Pi / 2
	MaxLat = math.Pi / 2
	MinLon = -math.Pi
	MaxLon = math.Pi
)

// Angular bounds of valid coordinates, in degrees.
const (
	MinLatDeg = -90.0
	MaxLatDeg = 90.0
	MinLonDeg = -180.0
	MaxLonDeg = 180.0
)

// Radius returns the Earth radius expressed in the given unit.
func Radius(unit Unit) (float64, error) {
	switch unit {
	case Kilometers, KilometersLong:
		return RadiusKm, nil
	case Miles, MilesLong:
		return RadiusMi, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, string(unit))
	}
}

// ParseUnit validates a raw unit token.
func ParseUnit(raw string) (Unit, error) {
	unit := Unit(raw)
	if _, err := Radius(unit); err != nil {
		return "", err
	}

	return unit, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
