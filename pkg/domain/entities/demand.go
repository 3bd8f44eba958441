package entities

import (
	"fmt"
	"time"
)

// UnboundedShortage is used by simulations that treat the whole product as unavailable
const UnboundedShortage Quantity = 1_000_000_000

// ShortageEvent describes a product that became unavailable at a location.
// A nil Horizon puts every order with a future deadline in scope.
type ShortageEvent struct {
	ProductID      ProductID
	UnavailableQty Quantity
	Origin         LocationID
	Horizon        *time.Duration
}

// NewShortageEvent creates a validated ShortageEvent without an explicit horizon
func NewShortageEvent(productID ProductID, unavailableQty Quantity, origin LocationID) (*ShortageEvent, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if unavailableQty < 0 {
		return nil, fmt.Errorf("unavailable quantity cannot be negative, got %d", unavailableQty)
	}

	return &ShortageEvent{
		ProductID:      productID,
		UnavailableQty: unavailableQty,
		Origin:         origin,
	}, nil
}

// WithHorizon returns a copy of the event limited to deadlines within h of now
func (e ShortageEvent) WithHorizon(h time.Duration) ShortageEvent {
	e.Horizon = &h
	return e
}

// Route is a directed lane between two locations
type Route struct {
	From LocationID
	To   LocationID
}
