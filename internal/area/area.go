// Package area classifies geocoded points against the configured service area.
package area

import (
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/UnknownOlympus/meridian/internal/models"
)

// ServiceArea is the region served around an origin point. A point is inside
// when it lies within the boundary polygon, or, without a boundary, within
// radius of the origin.
type ServiceArea struct {
	origin   geo.GeoPoint
	radius   float64
	unit     geo.Unit
	box      geo.BoundingBox
	boundary *geo.Polygon
}

// New builds a service area. boundary may be nil.
func New(origin geo.GeoPoint, radius float64, unit geo.Unit, boundary *geo.Polygon) (*ServiceArea, error) {
	box, err := origin.BoundingBox(radius, unit)
	if err != nil {
		return nil, fmt.Errorf("failed to derive service area bounds: %w", err)
	}

	if boundary != nil && boundary.Len() < 3 {
		return nil, fmt.Errorf("service area boundary: %w", geo.ErrDegeneratePolygon)
	}

	return &ServiceArea{
		origin:   origin,
		radius:   radius,
		unit:     unit,
		box:      box,
		boundary: boundary,
	}, nil
}

// Origin returns the center of the area.
func (a *ServiceArea) Origin() geo.GeoPoint { return a.origin }

// Bounds returns the bounding box of the radius around the origin.
func (a *ServiceArea) Bounds() geo.BoundingBox { return a.box }

// Place measures point against the area.
func (a *ServiceArea) Place(point geo.GeoPoint) (models.Placement, error) {
	distance, err := a.origin.DistanceTo(point, a.unit)
	if err != nil {
		return models.Placement{}, err
	}

	inside, err := a.contains(point, distance)
	if err != nil {
		return models.Placement{}, err
	}

	return models.Placement{Point: point, Distance: distance, InServiceArea: inside}, nil
}

func (a *ServiceArea) contains(point geo.GeoPoint, distance float64) (bool, error) {
	if a.boundary != nil {
		return a.boundary.Contains(point)
	}

	// the box is a cheap reject before trusting the distance
	return a.box.Contains(point) && distance <= a.radius, nil
}
