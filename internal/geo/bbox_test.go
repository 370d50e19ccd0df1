package geo_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundingBox(t *testing.T) {
	t.Parallel()
	center := mustPoint(t, 40.5187154, -74.4120953)

	t.Run("three mile box", func(t *testing.T) {
		t.Parallel()
		box, err := center.BoundingBox(3, geo.Miles)

		require.NoError(t, err)
		assert.InDelta(t, 40.47529593323, box.MinLatitude(), 1e-9)
		assert.InDelta(t, -74.469211617725, box.MinLongitude(), 1e-9)
		assert.InDelta(t, 40.56213486677, box.MaxLatitude(), 1e-9)
		assert.InDelta(t, -74.354978982275, box.MaxLongitude(), 1e-9)
		assert.False(t, box.Wraps())

		corners := box.Corners()
		assert.InDelta(t, 0.70642717975394, corners[0].LatitudeRadians(), 1e-12)
		assert.InDelta(t, -1.2997329340937, corners[0].LongitudeRadians(), 1e-12)
		assert.InDelta(t, 40.47529593323, corners[0].Latitude(), 1e-9)
		assert.InDelta(t, -74.469211617725, corners[0].Longitude(), 1e-9)
		assert.InDelta(t, box.MinLatitude(), corners[1].Latitude(), 0)
		assert.InDelta(t, box.MaxLongitude(), corners[1].Longitude(), 0)
		assert.InDelta(t, box.MaxLatitude(), corners[2].Latitude(), 0)
		assert.InDelta(t, box.MinLongitude(), corners[2].Longitude(), 0)
		assert.InDelta(t, 0.7079428050631269, corners[3].LatitudeRadians(), 1e-12)
		assert.InDelta(t, -1.2977391984918774, corners[3].LongitudeRadians(), 1e-12)
		assert.InDelta(t, 40.56213486676994, corners[3].Latitude(), 1e-9)
		assert.InDelta(t, -74.35497898227479, corners[3].Longitude(), 1e-9)
	})

	t.Run("zero distance collapses to the center", func(t *testing.T) {
		t.Parallel()
		box, err := geo.NewBoundingBox(center, 0, geo.Kilometers)

		require.NoError(t, err)
		assert.InDelta(t, center.Latitude(), box.MinLatitude(), 1e-12)
		assert.InDelta(t, center.Latitude(), box.MaxLatitude(), 1e-12)
		assert.InDelta(t, center.Longitude(), box.MinLongitude(), 1e-12)
		assert.InDelta(t, center.Longitude(), box.MaxLongitude(), 1e-12)
	})

	t.Run("negative distance", func(t *testing.T) {
		t.Parallel()
		_, err := geo.NewBoundingBox(center, -1, geo.Kilometers)

		require.ErrorIs(t, err, geo.ErrInvalidArgument)
	})

	t.Run("NaN distance", func(t *testing.T) {
		t.Parallel()
		_, err := geo.NewBoundingBox(center, math.NaN(), geo.Kilometers)

		require.ErrorIs(t, err, geo.ErrInvalidArgument)
	})

	t.Run("invalid unit", func(t *testing.T) {
		t.Parallel()
		_, err := geo.NewBoundingBox(center, 10, "leagues")

		require.ErrorIs(t, err, geo.ErrInvalidUnit)
	})

	t.Run("north pole within distance", func(t *testing.T) {
		t.Parallel()
		box, err := geo.NewBoundingBox(mustPoint(t, 89.9, 45), 50, geo.Kilometers)

		require.NoError(t, err)
		assert.InDelta(t, 90.0, box.MaxLatitude(), 1e-12)
		assert.Less(t, box.MinLatitude(), 89.9)
		assert.InDelta(t, -180.0, box.MinLongitude(), 1e-12)
		assert.InDelta(t, 180.0, box.MaxLongitude(), 1e-12)
	})

	t.Run("south pole within distance", func(t *testing.T) {
		t.Parallel()
		box, err := geo.NewBoundingBox(mustPoint(t, -89.95, -120), 20, geo.Miles)

		require.NoError(t, err)
		assert.InDelta(t, -90.0, box.MinLatitude(), 1e-12)
		assert.InDelta(t, -180.0, box.MinLongitude(), 1e-12)
		assert.InDelta(t, 180.0, box.MaxLongitude(), 1e-12)
	})

	t.Run("box crossing the anti-meridian eastwards", func(t *testing.T) {
		t.Parallel()
		box, err := geo.NewBoundingBox(mustPoint(t, 10, 179.9), 50, geo.Kilometers)

		require.NoError(t, err)
		assert.True(t, box.Wraps())
		assert.Greater(t, box.MinLongitude(), box.MaxLongitude())
		assert.Less(t, box.MinLongitude(), 179.9)
		assert.Less(t, box.MaxLongitude(), -179.0)
		assert.True(t, box.Contains(mustPoint(t, 10, 180)))
		assert.True(t, box.Contains(mustPoint(t, 10, -179.9)))
		assert.False(t, box.Contains(mustPoint(t, 10, 0)))
	})

	t.Run("box crossing the anti-meridian westwards", func(t *testing.T) {
		t.Parallel()
		box, err := geo.NewBoundingBox(mustPoint(t, -10, -179.95), 50, geo.Kilometers)

		require.NoError(t, err)
		assert.True(t, box.Wraps())
		assert.Greater(t, box.MinLongitude(), 179.0)
		assert.True(t, box.Contains(mustPoint(t, -10, 179.99)))
		assert.False(t, box.Contains(mustPoint(t, -12, -179.95)))
	})
}

// destination returns the point reached from origin after travelling the
// given angular distance along the initial bearing.
func destination(t *testing.T, origin geo.GeoPoint, angular, bearing float64) geo.GeoPoint {
	t.Helper()
	lat1, lon1 := origin.LatitudeRadians(), origin.LongitudeRadians()

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) + math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)
	lon2 = math.Mod(lon2+3*math.Pi, 2*math.Pi) - math.Pi

	point, err := geo.FromRadians(lat2, lon2)
	require.NoError(t, err)

	return point
}

func TestBoundingBox_EnclosesRadius(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		lat, lon float64
		distance float64
		unit     geo.Unit
	}{
		{"edison 3mi", 40.5187154, -74.4120953, 3, geo.Miles},
		{"vienna 100km", 48.2029047, 16.3873319, 100, geo.Kilometers},
		{"sydney 2500mi", -33.8688197, 151.2092955, 2500, geo.Miles},
		{"anti-meridian east", 10, 179.9, 50, geo.Kilometers},
		{"anti-meridian west", -10, -179.95, 50, geo.Kilometers},
		{"north pole", 89.9, 45, 50, geo.Kilometers},
		{"south pole", -89.95, -120, 20, geo.Miles},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			center := mustPoint(t, tc.lat, tc.lon)
			box, err := center.BoundingBox(tc.distance, tc.unit)
			require.NoError(t, err)

			radius, err := geo.Radius(tc.unit)
			require.NoError(t, err)
			// stay a hair inside the circle so rounding cannot push a point past the edge
			angular := tc.distance * (1 - 1e-7) / radius

			for deg := 0; deg < 360; deg += 10 {
				p := destination(t, center, angular, float64(deg)*math.Pi/180)

				d, errD := center.DistanceTo(p, tc.unit)
				require.NoError(t, errD)
				require.LessOrEqual(t, d, tc.distance)

				assert.GreaterOrEqual(t, p.Latitude(), box.MinLatitude(), "bearing %d", deg)
				assert.LessOrEqual(t, p.Latitude(), box.MaxLatitude(), "bearing %d", deg)
				assert.True(t, box.Contains(p), "bearing %d: %s outside box", deg, p)
			}
			assert.True(t, box.Contains(center))
		})
	}
}
