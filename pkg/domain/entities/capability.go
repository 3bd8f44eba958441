package entities

import "fmt"

// ProductionCapability says whether a location can manufacture a product.
// A nil LeadTimeHours means the product is not supported there.
type ProductionCapability struct {
	LocationID    LocationID
	ProductID     ProductID
	LeadTimeHours *float64
}

// NewProductionCapability creates a supported capability with the given lead time
func NewProductionCapability(locationID LocationID, productID ProductID, leadTimeHours float64) (*ProductionCapability, error) {
	if locationID == "" {
		return nil, fmt.Errorf("location id cannot be empty")
	}
	if productID == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if leadTimeHours < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %v", leadTimeHours)
	}

	lt := leadTimeHours
	return &ProductionCapability{
		LocationID:    locationID,
		ProductID:     productID,
		LeadTimeHours: &lt,
	}, nil
}

// Supported reports whether the location has a finite lead time for the product
func (c ProductionCapability) Supported() bool {
	return c.LeadTimeHours != nil
}
