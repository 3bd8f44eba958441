package services

import (
	"math"
	"testing"
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

func loc(id string, lat, lon float64) entities.Location {
	return entities.Location{ID: entities.LocationID(id), Coordinates: &entities.Coordinates{Lat: lat, Lon: lon}}
}

func TestHaversine_OneDegreeAtEquator(t *testing.T) {
	km := Haversine(entities.Coordinates{Lat: 0, Lon: 0}, entities.Coordinates{Lat: 0, Lon: 1})

	if math.Abs(km-111.195) > 0.01 {
		t.Errorf("Expected ~111.195 km, got %.4f", km)
	}
}

func TestDistanceEstimator_Symmetry(t *testing.T) {
	est, err := NewDistanceEstimator(GroundSpeedKmh)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pairs := []struct {
		a, b entities.Location
	}{
		{loc("A", 0, 0), loc("B", 0, 1)},
		{loc("A", 48.85, 2.35), loc("B", 40.71, -74.0)},
		{loc("A", -33.9, 151.2), loc("B", 35.7, 139.7)},
	}

	for _, p := range pairs {
		ab, ok1 := est.Distance(p.a, p.b)
		ba, ok2 := est.Distance(p.b, p.a)
		if !ok1 || !ok2 {
			t.Fatalf("Expected distance to be defined")
		}
		if ab != ba {
			t.Errorf("Expected symmetric distance, got %v and %v", ab, ba)
		}
		if self, _ := est.Distance(p.a, p.a); self != 0 {
			t.Errorf("Expected zero self distance, got %v", self)
		}
	}
}

func TestDistanceEstimator_MissingCoordinates(t *testing.T) {
	est, _ := NewDistanceEstimator(GroundSpeedKmh)

	_, ok := est.Distance(loc("A", 0, 0), entities.Location{ID: "B"})
	if ok {
		t.Error("Expected distance to be undefined without coordinates")
	}
}

func TestDistanceEstimator_Transit(t *testing.T) {
	est, _ := NewDistanceEstimator(60)

	if h := est.TransitHours(120); h != 2 {
		t.Errorf("Expected 2 hours, got %v", h)
	}
	if d := est.Transit(90); d != 90*time.Minute {
		t.Errorf("Expected 90m, got %v", d)
	}
}

func TestNewDistanceEstimator_RejectsBadSpeed(t *testing.T) {
	for _, speed := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		if _, err := NewDistanceEstimator(speed); err == nil {
			t.Errorf("Expected error for speed %v", speed)
		}
	}
}

func TestSpeedForProfile(t *testing.T) {
	testCases := []struct {
		profile  string
		expected float64
		wantErr  bool
	}{
		{"", 60, false},
		{"ground", 60, false},
		{"express", 700, false},
		{"teleport", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.profile, func(t *testing.T) {
			speed, err := SpeedForProfile(tc.profile)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for profile %s, but got none", tc.profile)
				}
				return
			}
			if speed != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, speed)
			}
		})
	}
}
