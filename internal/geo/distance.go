// Package geo provides great-circle distance math for search centers and
// listing coordinates. Functions are pure and safe for concurrent use.
package geo

import (
	"math"
	"strconv"
)

// EarthRadiusMiles is the mean Earth radius used by DistanceMiles.
const EarthRadiusMiles = 3958.8

// MilesPerDegreeLat is the approximate length of one degree of latitude.
const MilesPerDegreeLat = 69.0

// DistanceMiles returns the haversine distance in miles between two
// latitude/longitude pairs given in degrees.
//
// The result is symmetric and 0 for identical points. Non-finite input yields
// NaN rather than an error; callers validate coordinates upstream.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	if !finite(lat1) || !finite(lng1) || !finite(lat2) || !finite(lng2) {
		return math.NaN()
	}
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// FormatDistance renders miles for display: "< 0.1 mi" below a tenth of a
// mile, otherwise one decimal place with the unit suffix.
func FormatDistance(miles float64) string {
	if miles < 0.1 {
		return "< 0.1 mi"
	}
	return strconv.FormatFloat(miles, 'f', 1, 64) + " mi"
}

// Offset moves (lat, lng) by north/east displacements in miles using a local
// equirectangular approximation. It is accurate enough for search radii of a
// few dozen miles.
func Offset(lat, lng, northMiles, eastMiles float64) (float64, float64) {
	dLat := northMiles / MilesPerDegreeLat
	cos := math.Cos(toRadians(lat))
	if math.Abs(cos) < 1e-9 {
		return lat + dLat, lng
	}
	dLng := eastMiles / (MilesPerDegreeLat * cos)
	return lat + dLat, lng + dLng
}

// Valid reports whether lat/lng are finite and inside WGS84 bounds.
func Valid(lat, lng float64) bool {
	return finite(lat) && finite(lng) &&
		lat >= -90 && lat <= 90 &&
		lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
