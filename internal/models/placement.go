package models

import "github.com/UnknownOlympus/meridian/internal/geo"

// Placement is the outcome of locating a task address relative to the service area.
type Placement struct {
	Point         geo.GeoPoint // Point is the geocoded position of the address.
	Distance      float64      // Distance from the service area origin, in the area unit.
	InServiceArea bool         // InServiceArea reports whether the point falls inside the service area.
}
