package services

import (
	"fmt"
	"math"
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// EarthRadiusKm is the mean earth radius used for great-circle distances
const EarthRadiusKm = 6371.0088

const (
	// GroundSpeedKmh is the default constant road speed
	GroundSpeedKmh = 60.0
	// ExpressSpeedKmh is the speed of the express transit profile
	ExpressSpeedKmh = 700.0
)

// Haversine returns the great-circle distance in kilometers
func Haversine(a, b entities.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceEstimator converts locations into distance and transit time at a constant speed
type DistanceEstimator struct {
	SpeedKmh float64
}

// NewDistanceEstimator creates an estimator for the given speed
func NewDistanceEstimator(speedKmh float64) (*DistanceEstimator, error) {
	if speedKmh <= 0 || math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) {
		return nil, fmt.Errorf("transit speed must be positive, got %v", speedKmh)
	}
	return &DistanceEstimator{SpeedKmh: speedKmh}, nil
}

// SpeedForProfile maps a transit profile name to its speed
func SpeedForProfile(profile string) (float64, error) {
	switch profile {
	case "", "ground":
		return GroundSpeedKmh, nil
	case "express":
		return ExpressSpeedKmh, nil
	default:
		return 0, fmt.Errorf("unknown transit profile: %s", profile)
	}
}

// Distance returns kilometers between two locations. ok is false when either
// side has no coordinates; such pairs are never distance zero.
func (d *DistanceEstimator) Distance(a, b entities.Location) (km float64, ok bool) {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return 0, false
	}
	return Haversine(*a.Coordinates, *b.Coordinates), true
}

// TransitHours converts a distance to hours of travel
func (d *DistanceEstimator) TransitHours(km float64) float64 {
	return km / d.SpeedKmh
}

// Transit converts a distance to a travel duration
func (d *DistanceEstimator) Transit(km float64) time.Duration {
	return HoursToDuration(d.TransitHours(km))
}

// HoursToDuration converts fractional hours to a duration
func HoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
