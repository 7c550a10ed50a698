package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgatlas/internal/registry/models"
	dErrors "orgatlas/pkg/domain-errors"
)

// kmPerDegreeLat is the meridian arc for one degree on a 6371 km sphere.
const kmPerDegreeLat = EarthRadiusKm * math.Pi / 180

func town(lat float32, lon float64) *models.Location {
	return &models.Location{X: lat, Y: lon, Z: 1}
}

// townNorthOf returns a town km kilometres due north of (0,0), computed in
// float32 the way it is stored.
func townNorthOf(km float64) *models.Location {
	return town(float32(km/kmPerDegreeLat), 0)
}

func TestDistance(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		p := Point{Lat: 59.93, Lon: 30.31}
		assert.InDelta(t, 0, Distance(p, p), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]Point{
			{{Lat: 55.75, Lon: 37.62}, {Lat: 59.93, Lon: 30.31}},
			{{Lat: -33.86, Lon: 151.21}, {Lat: 51.5, Lon: -0.12}},
			{{Lat: 90, Lon: 0}, {Lat: -90, Lon: 180}},
			{{Lat: 0, Lon: 179.9}, {Lat: 0, Lon: -179.9}},
		}
		for _, p := range pairs {
			assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]))
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		assert.InDelta(t, kmPerDegreeLat, Distance(Point{}, Point{Lat: 1}), 1e-6)
	})

	t.Run("pole to pole is half circumference", func(t *testing.T) {
		assert.InDelta(t, math.Pi*EarthRadiusKm, Distance(Point{Lat: 90}, Point{Lat: -90}), 1e-6)
	})
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(Point{Lat: 90, Lon: -180}))
	assert.NoError(t, ValidateRange(Point{Lat: -90, Lon: 180}))

	err := ValidateRange(Point{Lat: 90.5})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	err = ValidateRange(Point{Lon: -180.01})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestCheck(t *testing.T) {
	origin := town(0, 0)

	t.Run("missing town fails for every type", func(t *testing.T) {
		for _, typ := range []models.OrganizationType{models.TypeCommercial, models.TypeGovernment, models.TypeTrust} {
			assert.True(t, dErrors.HasCode(Check(typ, nil, origin), dErrors.CodeConflict), typ)
			assert.True(t, dErrors.HasCode(Check(typ, origin, nil), dErrors.CodeConflict), typ)
		}
	})

	t.Run("out of range latitude fails", func(t *testing.T) {
		err := Check(models.TypeCommercial, town(91, 0), origin)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.Contains(t, err.Error(), "official town")
	})

	t.Run("out of range longitude fails", func(t *testing.T) {
		err := Check(models.TypeCommercial, origin, town(0, 181))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postal town")
	})

	t.Run("government within 10 km", func(t *testing.T) {
		assert.NoError(t, Check(models.TypeGovernment, origin, townNorthOf(9.99)))
	})

	t.Run("government beyond 10 km", func(t *testing.T) {
		err := Check(models.TypeGovernment, origin, townNorthOf(10.1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("trust within 1000 km", func(t *testing.T) {
		assert.NoError(t, Check(models.TypeTrust, origin, townNorthOf(999)))
	})

	t.Run("trust beyond 1000 km", func(t *testing.T) {
		err := Check(models.TypeTrust, origin, townNorthOf(1001))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("other types are unconstrained", func(t *testing.T) {
		assert.NoError(t, Check(models.TypeCommercial, origin, town(-45, 170)))
		assert.NoError(t, Check(models.TypePrivateLimitedCompany, origin, town(80, -170)))
	})
}

// latitudesAround returns the largest float32 latitude whose distance from
// the equator is within km and the smallest one beyond it.
func latitudesAround(km float64) (within, beyond float32) {
	within = float32(km / kmPerDegreeLat)
	for Distance(Point{}, Point{Lat: float64(within)}) > km {
		within = math.Nextafter32(within, 0)
	}
	beyond = math.Nextafter32(within, 90)
	for Distance(Point{}, Point{Lat: float64(beyond)}) <= km {
		beyond = math.Nextafter32(beyond, 90)
	}
	return within, beyond
}

func TestCheck_BoundaryIsInclusive(t *testing.T) {
	origin := town(0, 0)
	for _, typ := range []models.OrganizationType{models.TypeGovernment, models.TypeTrust} {
		limit, ok := MaxDistanceKm(typ)
		require.True(t, ok)
		within, beyond := latitudesAround(limit)

		assert.InDelta(t, limit, Distance(Point{}, Point{Lat: float64(within)}), 1e-3)
		assert.NoError(t, Check(typ, origin, town(within, 0)), typ)
		assert.True(t, dErrors.HasCode(Check(typ, origin, town(beyond, 0)), dErrors.CodeConflict), typ)
	}
}
