package entities

import "fmt"

// StockRecord is the on-hand quantity of one product at one location.
// A snapshot holds at most one record per (product, location).
type StockRecord struct {
	ProductID  ProductID
	LocationID LocationID
	OnHand     Quantity
}

// NewStockRecord creates a validated StockRecord
func NewStockRecord(productID ProductID, locationID LocationID, onHand Quantity) (*StockRecord, error) {
	if productID == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if locationID == "" {
		return nil, fmt.Errorf("location id cannot be empty")
	}
	if onHand < 0 {
		return nil, fmt.Errorf("on-hand quantity cannot be negative, got %d", onHand)
	}

	return &StockRecord{
		ProductID:  productID,
		LocationID: locationID,
		OnHand:     onHand,
	}, nil
}

// StockKey addresses a stock row
type StockKey struct {
	ProductID  ProductID
	LocationID LocationID
}

// MergeStock folds duplicate (product, location) rows into one by summing
// their on-hand quantities. Output order follows first appearance.
func MergeStock(records []StockRecord) []StockRecord {
	index := make(map[StockKey]int, len(records))
	merged := make([]StockRecord, 0, len(records))

	for _, rec := range records {
		key := StockKey{ProductID: rec.ProductID, LocationID: rec.LocationID}
		if i, exists := index[key]; exists {
			merged[i].OnHand += rec.OnHand
			continue
		}
		index[key] = len(merged)
		merged = append(merged, rec)
	}

	return merged
}
