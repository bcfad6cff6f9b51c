// Package geo holds the small amount of spherical geometry the siting pipeline needs.
package geo

import (
	"math"

	"solar-siting-service/internal/domain"
)

const (
	// EarthRadiusKm is the mean Earth radius used by DistanceKm.
	EarthRadiusKm = 6371.0
	// KmPerDegreeLat is the flat-earth length of one degree of latitude.
	KmPerDegreeLat = 111.0

	degToRad = math.Pi / 180
)

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b domain.Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*sinLng*sinLng
	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// KmPerDegree returns how many kilometers one degree of latitude and of
// longitude span at the given latitude. The longitude factor goes to zero
// at the poles.
func KmPerDegree(latitude float64) (latKm, lngKm float64) {
	return KmPerDegreeLat, KmPerDegreeLat * math.Cos(latitude*degToRad)
}

// Offset moves c by east/north kilometers using the flat-earth factors at c's latitude.
func Offset(c domain.Coordinates, eastKm, northKm float64) domain.Coordinates {
	latKm, lngKm := KmPerDegree(c.Lat)
	return domain.Coordinates{
		Lat: c.Lat + northKm/latKm,
		Lng: c.Lng + eastKm/lngKm,
	}
}
