package area_test

import (
	"testing"

	"github.com/UnknownOlympus/meridian/internal/area"
	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(t *testing.T, lat, lon float64) geo.GeoPoint {
	t.Helper()
	p, err := geo.FromDegrees(lat, lon)
	require.NoError(t, err)

	return p
}

func TestNew(t *testing.T) {
	t.Parallel()
	origin := point(t, 40.5187154, -74.4120953)

	t.Run("invalid unit", func(t *testing.T) {
		t.Parallel()
		_, err := area.New(origin, 10, "yards", nil)

		require.ErrorIs(t, err, geo.ErrInvalidUnit)
	})

	t.Run("negative radius", func(t *testing.T) {
		t.Parallel()
		_, err := area.New(origin, -5, geo.Miles, nil)

		require.ErrorIs(t, err, geo.ErrInvalidArgument)
	})

	t.Run("degenerate boundary", func(t *testing.T) {
		t.Parallel()
		_, err := area.New(origin, 5, geo.Miles, geo.NewPolygon(origin))

		require.ErrorIs(t, err, geo.ErrDegeneratePolygon)
	})

	t.Run("bounds follow the radius", func(t *testing.T) {
		t.Parallel()
		serviceArea, err := area.New(origin, 3, geo.Miles, nil)

		require.NoError(t, err)
		assert.Equal(t, origin, serviceArea.Origin())
		assert.InDelta(t, 40.47529593323, serviceArea.Bounds().MinLatitude(), 1e-9)
		assert.InDelta(t, -74.354978982275, serviceArea.Bounds().MaxLongitude(), 1e-9)
	})
}

func TestServiceArea_PlaceByRadius(t *testing.T) {
	t.Parallel()
	edison := point(t, 40.5187154, -74.4120953)
	serviceArea, err := area.New(edison, 30, geo.Miles, nil)
	require.NoError(t, err)

	t.Run("point within radius", func(t *testing.T) {
		t.Parallel()
		brooklyn := point(t, 40.65, -73.95)

		placement, errP := serviceArea.Place(brooklyn)

		require.NoError(t, errP)
		assert.Equal(t, brooklyn, placement.Point)
		assert.InDelta(t, 25.888611495, placement.Distance, 1e-6)
		assert.True(t, placement.InServiceArea)
	})

	t.Run("point in the box corner but beyond the radius", func(t *testing.T) {
		t.Parallel()
		corner := serviceArea.Bounds().Corners()[3]

		placement, errP := serviceArea.Place(corner)

		require.NoError(t, errP)
		assert.Greater(t, placement.Distance, 30.0)
		assert.False(t, placement.InServiceArea)
	})

	t.Run("point far away", func(t *testing.T) {
		t.Parallel()
		placement, errP := serviceArea.Place(point(t, 48.2029047, 16.3873319))

		require.NoError(t, errP)
		assert.False(t, placement.InServiceArea)
	})
}

func TestServiceArea_PlaceByBoundary(t *testing.T) {
	t.Parallel()
	origin := point(t, 48.2029047, 16.3873319)
	boundary, err := geo.PolygonFromPairs([][2]float64{
		{48.17, 16.36}, {48.17, 16.43}, {48.22, 16.43}, {48.22, 16.36},
	})
	require.NoError(t, err)

	serviceArea, err := area.New(origin, 100, geo.Kilometers, boundary)
	require.NoError(t, err)

	inside, err := serviceArea.Place(point(t, 48.19, 16.40))
	require.NoError(t, err)
	assert.True(t, inside.InServiceArea)

	// within the radius but outside the boundary
	outside, err := serviceArea.Place(point(t, 48.3, 16.40))
	require.NoError(t, err)
	assert.Less(t, outside.Distance, 100.0)
	assert.False(t, outside.InServiceArea)
}
