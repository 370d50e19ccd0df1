package geo

import (
	"fmt"
	"strconv"
)

// GeoPoint is a validated position on the sphere. Degree and radian forms
// are computed once at construction and never change.
type GeoPoint struct {
	latDeg float64
	lonDeg float64
	latRad float64
	lonRad float64
}

// NewGeoPoint builds a point from a latitude/longitude pair given in degrees,
// or in radians when inRadians is true. Coordinates outside the valid range
// are rejected with ErrOutOfBounds; they are never clamped.
func NewGeoPoint(latitude, longitude float64, inRadians bool) (GeoPoint, error) {
	if inRadians {
		if !within(latitude, MinLat, MaxLat) || !within(longitude, MinLon, MaxLon) {
			return GeoPoint{}, fmt.Errorf("%w: lat=%v rad, lon=%v rad", ErrOutOfBounds, latitude, longitude)
		}

		return GeoPoint{
			latDeg: toDegrees(latitude),
			lonDeg: toDegrees(longitude),
			latRad: latitude,
			lonRad: longitude,
		}, nil
	}

	if !within(latitude, MinLatDeg, MaxLatDeg) || !within(longitude, MinLonDeg, MaxLonDeg) {
		return GeoPoint{}, fmt.Errorf("%w: lat=%v, lon=%v", ErrOutOfBounds, latitude, longitude)
	}

	return GeoPoint{
		latDeg: latitude,
		lonDeg: longitude,
		latRad: toRadians(latitude),
		lonRad: toRadians(longitude),
	}, nil
}

// FromDegrees is NewGeoPoint for degree input.
func FromDegrees(latitude, longitude float64) (GeoPoint, error) {
	return NewGeoPoint(latitude, longitude, false)
}

// FromRadians is NewGeoPoint for radian input.
func FromRadians(latitude, longitude float64) (GeoPoint, error) {
	return NewGeoPoint(latitude, longitude, true)
}

// within also rejects NaN, which fails every comparison.
func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 { return p.latDeg }

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 { return p.lonDeg }

// LatitudeRadians returns the latitude in radians.
func (p GeoPoint) LatitudeRadians() float64 { return p.latRad }

// LongitudeRadians returns the longitude in radians.
func (p GeoPoint) LongitudeRadians() float64 { return p.lonRad }

// DistanceTo returns the great-circle distance to other in the given unit.
func (p GeoPoint) DistanceTo(other GeoPoint, unit Unit) (float64, error) {
	return Distance(p, other, unit)
}

// BoundingBox returns the box enclosing every point within distance of p.
func (p GeoPoint) BoundingBox(distance float64, unit Unit) (BoundingBox, error) {
	return NewBoundingBox(p, distance, unit)
}

// InPolygon reports whether p lies inside polygon.
func (p GeoPoint) InPolygon(polygon *Polygon) (bool, error) {
	return polygon.Contains(p)
}

// String renders the point as "lat,lon" in degrees.
func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.latDeg, 'f', -1, 64) + "," + strconv.FormatFloat(p.lonDeg, 'f', -1, 64)
}
