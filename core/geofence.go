package core

import "math"

// earthRadiusMeters matches the conventional mean-radius figure used for
// campus-scale haversine distances.
const earthRadiusMeters = 6371 * 1000

// GeofenceConfig is the admin-managed campus circle every attendance
// attempt is validated against. A zero radius means the geofence is not
// configured; callers must fail closed in that case.
type GeofenceConfig struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	RadiusInMeters float64 `json:"radiusInMeters"`
}

// Valid reports whether the config describes a usable geofence.
func (g GeofenceConfig) Valid() bool {
	return g.RadiusInMeters > 0 &&
		g.Latitude >= -90 && g.Latitude <= 90 &&
		g.Longitude >= -180 && g.Longitude <= 180
}

// HaversineDistance returns the great-circle distance in meters between
// two coordinate pairs.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// IsWithin reports whether (lat, lng) lies inside the configured circle.
// A point exactly on the boundary counts as inside; the comparison is a
// plain float64 <=, no extra tolerance is applied.
func (g GeofenceConfig) IsWithin(lat, lng float64) bool {
	return HaversineDistance(lat, lng, g.Latitude, g.Longitude) <= g.RadiusInMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
