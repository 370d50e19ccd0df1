package geo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// comparePrecision is the number of significant digits at which two
// latitudes are considered equal by the containment test.
const comparePrecision = 14

// minVertices is the smallest vertex count that encloses an area.
const minVertices = 3

// Polygon is an ordered ring of vertices; edge i joins vertex i and vertex
// (i+1) mod n. It must not be modified while containment tests run.
type Polygon struct {
	vertices []GeoPoint
}

// NewPolygon creates a polygon from the given vertices.
func NewPolygon(vertices ...GeoPoint) *Polygon {
	pg := &Polygon{vertices: make([]GeoPoint, 0, len(vertices))}
	pg.vertices = append(pg.vertices, vertices...)

	return pg
}

// PolygonFromPairs builds a polygon from (latitude, longitude) pairs in degrees.
func PolygonFromPairs(pairs [][2]float64) (*Polygon, error) {
	pg := &Polygon{vertices: make([]GeoPoint, 0, len(pairs))}
	for i, pair := range pairs {
		vertex, err := FromDegrees(pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		pg.AddVertex(vertex)
	}

	return pg, nil
}

// AddVertex appends a vertex to the ring.
func (pg *Polygon) AddVertex(vertex GeoPoint) {
	pg.vertices = append(pg.vertices, vertex)
}

// Vertices returns a copy of the vertex ring.
func (pg *Polygon) Vertices() []GeoPoint {
	out := make([]GeoPoint, len(pg.vertices))
	copy(out, pg.vertices)

	return out
}

// Len returns the number of vertices.
func (pg *Polygon) Len() int { return len(pg.vertices) }

// Contains reports whether p lies inside the polygon. Longitude is the x axis
// and latitude the y axis; a ray is cast from p towards increasing latitude
// and p is inside when it crosses an odd number of edges.
func (pg *Polygon) Contains(p GeoPoint) (bool, error) {
	n := len(pg.vertices)
	if n < minVertices {
		return false, fmt.Errorf("%w: got %d", ErrDegeneratePolygon, n)
	}

	crossings := 0
	p1 := pg.vertices[0]
	for i := 1; i <= n; i++ {
		p2 := pg.vertices[i%n]
		if crossesRay(p, p1, p2) {
			crossings++
		}
		p1 = p2
	}

	return crossings%2 != 0, nil
}

// crossesRay reports whether the edge p1-p2 is crossed by the ray from p.
func crossesRay(p, p1, p2 GeoPoint) bool {
	if p1.lonDeg == p2.lonDeg {
		return false
	}
	if p.lonDeg <= math.Min(p1.lonDeg, p2.lonDeg) || p.lonDeg > math.Max(p1.lonDeg, p2.lonDeg) {
		return false
	}
	if p.latDeg > math.Max(p1.latDeg, p2.latDeg) {
		return false
	}

	if sameLatitude(p1.latDeg, p2.latDeg) {
		return true
	}

	xLat := (p.lonDeg-p1.lonDeg)*(p2.latDeg-p1.latDeg)/(p2.lonDeg-p1.lonDeg) + p1.latDeg

	return atMostLatitude(p.latDeg, xLat)
}

func sameLatitude(a, b float64) bool {
	return a == b || significant(a).Equal(significant(b))
}

func atMostLatitude(a, b float64) bool {
	return a <= b || significant(a).LessThanOrEqual(significant(b))
}

// significant rounds v to comparePrecision significant digits.
func significant(v float64) decimal.Decimal {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'g', comparePrecision, 64))
	if err != nil {
		return decimal.NewFromFloat(v)
	}

	return d
}
