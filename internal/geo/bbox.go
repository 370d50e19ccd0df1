package geo

import (
	"fmt"
	"math"
)

// BoundingBox is the lat/lon rectangle around a center point that encloses
// every point within a great-circle distance of it. When MinLongitude is
// greater than MaxLongitude the box wraps across the 180th meridian.
type BoundingBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
	corners        [4]GeoPoint
}

// NewBoundingBox derives the bounding coordinates of all points whose
// great-circle distance to center is at most distance, following
// http://JanMatuschek.de/LatitudeLongitudeBoundingCoordinates.
//
// The latitude of any such point lies in [MinLatitude, MaxLatitude]. Its
// longitude lies in [MinLongitude, MaxLongitude] when MinLongitude <=
// MaxLongitude, otherwise it is >= MinLongitude or <= MaxLongitude.
func NewBoundingBox(center GeoPoint, distance float64, unit Unit) (BoundingBox, error) {
	radius, err := Radius(unit)
	if err != nil {
		return BoundingBox{}, err
	}
	if math.IsNaN(distance) || distance < 0 {
		return BoundingBox{}, fmt.Errorf("%w: bounding box distance must be >= 0, got %v", ErrInvalidArgument, distance)
	}

	// angular distance in radians on a great circle
	angular := distance / radius

	minLat := center.latRad - angular
	maxLat := center.latRad + angular

	var minLon, maxLon float64
	if minLat > MinLat && maxLat < MaxLat {
		deltaLon := math.Asin(math.Sin(angular) / math.Cos(center.latRad))

		minLon = center.lonRad - deltaLon
		if minLon < MinLon {
			minLon += 2 * math.Pi
		}
		maxLon = center.lonRad + deltaLon
		if maxLon > MaxLon {
			maxLon -= 2 * math.Pi
		}
	} else {
		// a pole is within the distance
		minLat = math.Max(minLat, MinLat)
		maxLat = math.Min(maxLat, MaxLat)
		minLon = MinLon
		maxLon = MaxLon
	}

	return newBoundingBoxFromRadians(minLat, minLon, maxLat, maxLon)
}

func newBoundingBoxFromRadians(minLat, minLon, maxLat, maxLon float64) (BoundingBox, error) {
	box := BoundingBox{
		minLat: toDegrees(minLat),
		minLon: toDegrees(minLon),
		maxLat: toDegrees(maxLat),
		maxLon: toDegrees(maxLon),
	}

	pairs := [4][2]float64{
		{minLat, minLon},
		{minLat, maxLon},
		{maxLat, minLon},
		{maxLat, maxLon},
	}
	for i, pair := range pairs {
		corner, err := FromRadians(pair[0], pair[1])
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bounding box corner %d: %w", i, err)
		}
		box.corners[i] = corner
	}

	return box, nil
}

// MinLatitude returns the southern edge in degrees.
func (b BoundingBox) MinLatitude() float64 { return b.minLat }

// MinLongitude returns the western edge in degrees.
func (b BoundingBox) MinLongitude() float64 { return b.minLon }

// MaxLatitude returns the northern edge in degrees.
func (b BoundingBox) MaxLatitude() float64 { return b.maxLat }

// MaxLongitude returns the eastern edge in degrees.
func (b BoundingBox) MaxLongitude() float64 { return b.maxLon }

// Wraps reports whether the box crosses the 180th meridian.
func (b BoundingBox) Wraps() bool { return b.minLon > b.maxLon }

// Corners returns the corner points ordered (minLat,minLon), (minLat,maxLon),
// (maxLat,minLon), (maxLat,maxLon).
func (b BoundingBox) Corners() [4]GeoPoint { return b.corners }

// Contains reports whether p falls inside the box, honoring the
// anti-meridian wrap.
func (b BoundingBox) Contains(p GeoPoint) bool {
	if p.latDeg < b.minLat || p.latDeg > b.maxLat {
		return false
	}
	if b.Wraps() {
		return p.lonDeg >= b.minLon || p.lonDeg <= b.maxLon
	}

	return p.lonDeg >= b.minLon && p.lonDeg <= b.maxLon
}

// Polygon returns the box as a 4-vertex ring walking its corners in order
// SW, SE, NE, NW. Ray casting treats longitudes as planar, so the polygon of
// a wrapped box does not describe the box.
func (b BoundingBox) Polygon() *Polygon {
	return NewPolygon(b.corners[0], b.corners[1], b.corners[3], b.corners[2])
}
