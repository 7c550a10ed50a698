// Package geo implements the distance rule between an organization's official
// and postal towns.
package geo

import (
	"math"

	"orgatlas/internal/registry/models"
	dErrors "orgatlas/pkg/domain-errors"
)

// EarthRadiusKm is the mean radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Distance ceilings per organization type, inclusive.
const (
	GovernmentMaxKm = 10.0
	TrustMaxKm      = 1000.0
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// PointOf maps a Location onto a Point. X is latitude, Y is longitude.
func PointOf(l *models.Location) Point {
	return Point{Lat: float64(l.X), Lon: l.Y}
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*sinLon*sinLon
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// ValidateRange checks that p lies on the globe.
func ValidateRange(p Point) error {
	if p.Lat < -90 || p.Lat > 90 {
		return dErrors.Newf(dErrors.CodeConflict, "latitude %v must be between -90 and 90", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return dErrors.Newf(dErrors.CodeConflict, "longitude %v must be between -180 and 180", p.Lon)
	}
	return nil
}

// MaxDistanceKm returns the ceiling for t, or false when t is unconstrained.
func MaxDistanceKm(t models.OrganizationType) (float64, bool) {
	switch t {
	case models.TypeGovernment:
		return GovernmentMaxKm, true
	case models.TypeTrust:
		return TrustMaxKm, true
	}
	return 0, false
}

// Check enforces the town rule for an organization of type t. Both towns must
// be present for every type; the distance ceiling applies to GOVERNMENT and
// TRUST only.
func Check(t models.OrganizationType, official, postal *models.Location) error {
	if official == nil {
		return dErrors.New(dErrors.CodeConflict, "official address must have a town")
	}
	if postal == nil {
		return dErrors.New(dErrors.CodeConflict, "postal address must have a town")
	}
	a, b := PointOf(official), PointOf(postal)
	if err := ValidateRange(a); err != nil {
		return dErrors.Newf(dErrors.CodeConflict, "official town: %v", err)
	}
	if err := ValidateRange(b); err != nil {
		return dErrors.Newf(dErrors.CodeConflict, "postal town: %v", err)
	}
	limit, ok := MaxDistanceKm(t)
	if !ok {
		return nil
	}
	if d := Distance(a, b); d > limit {
		return dErrors.Newf(dErrors.CodeConflict,
			"%s organization towns are %.3f km apart, limit is %.0f km", t, d, limit)
	}
	return nil
}
