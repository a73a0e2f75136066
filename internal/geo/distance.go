package geo

import "github.com/golang/geo/s2"

// EarthRadiusKM is the mean Earth radius.
const EarthRadiusKM = 6371.0088

// DegreesPerKM is an approximate conversion factor for latitude degrees to kilometers.
// At mid-latitudes, 1 degree of latitude is approximately 111 km.
const DegreesPerKM = 1.0 / 111.0

// KMToDegrees converts a distance to approximate latitude degrees.
func KMToDegrees(km float64) float64 {
	return km * DegreesPerKM
}

// DegreesToKM converts latitude degrees to approximate kilometers.
func DegreesToKM(deg float64) float64 {
	return deg / DegreesPerKM
}

// DistanceKM returns the great-circle distance between two points.
func DistanceKM(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusKM
}
