package entities

import "fmt"

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Lat float64
	Lon float64
}

// Location is a site that can ship, produce or receive goods.
// Coordinates is nil when the source data has no usable position.
type Location struct {
	ID          LocationID
	Coordinates *Coordinates
}

// NewLocation creates a validated Location with coordinates
func NewLocation(id LocationID, lat, lon float64) (*Location, error) {
	if id == "" {
		return nil, fmt.Errorf("location id cannot be empty")
	}
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude out of range, got %v", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude out of range, got %v", lon)
	}

	return &Location{
		ID:          id,
		Coordinates: &Coordinates{Lat: lat, Lon: lon},
	}, nil
}

// HasCoordinates reports whether the location can take part in distance computations
func (l Location) HasCoordinates() bool {
	return l.Coordinates != nil
}
