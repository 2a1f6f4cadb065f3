package websocket

import (
	"math"
	"time"
)

const earthRadiusKm = 6371

// MotionFilter decides whether a new location sample represents significant
// motion worth persisting and broadcasting. A sample is insignificant only
// when it is both close to the previous one and soon after it.
type MotionFilter struct {
	MinDistanceKm float64
	MinInterval   time.Duration
}

// DefaultMotionFilter matches the product thresholds: 10 meters, 30 seconds.
func DefaultMotionFilter() *MotionFilter {
	return &MotionFilter{
		MinDistanceKm: 0.01,
		MinInterval:   30 * time.Second,
	}
}

// Significant reports whether the sample at (lat, lon) observed at `at`
// should be accepted given the previous cached sample. A nil previous
// sample (first ever for the user) is always accepted.
func (f *MotionFilter) Significant(prev *Sample, lat, lon float64, at time.Time) bool {
	if prev == nil {
		return true
	}
	distance := haversineKm(prev.Latitude, prev.Longitude, lat, lon)
	elapsed := at.Sub(prev.ObservedAt)
	return distance >= f.MinDistanceKm || elapsed >= f.MinInterval
}

// haversineKm computes the great-circle distance between two coordinates
// using the spherical law of haversines.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
