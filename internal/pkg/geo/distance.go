// Package geo provides great-circle distance helpers used by station
// assignment and hotspot grouping.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// roadFactor converts a direct distance into a rough road distance. It is a
// fixed fudge factor, not a routing computation.
const roadFactor = 1.3

// DistanceKm returns the haversine distance in kilometers between two
// longitude/latitude points in decimal degrees.
func DistanceKm(aLon, aLat, bLon, bLat float64) float64 {
	dLat := (bLat - aLat) * math.Pi / 180
	dLon := (bLon - aLon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(aLat*math.Pi/180)*math.Cos(bLat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// EstimateRoadKm approximates the road distance for a direct distance.
// Documented as an approximation, not a guarantee.
func EstimateRoadKm(directKm float64) float64 {
	return directKm * roadFactor
}
