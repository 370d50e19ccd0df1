package geo

import "math"

// Distance computes the great-circle distance between a and b with the
// spherical law of cosines. The cosine sum is clamped to [-1, 1] so that
// rounding for identical or antipodal points cannot produce NaN.
func Distance(a, b GeoPoint, unit Unit) (float64, error) {
	radius, err := Radius(unit)
	if err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}

	cosine := math.Sin(a.latRad)*math.Sin(b.latRad) +
		math.Cos(a.latRad)*math.Cos(b.latRad)*math.Cos(a.lonRad-b.lonRad)
	cosine = math.Max(-1, math.Min(1, cosine))

	return radius * math.Acos(cosine), nil
}
