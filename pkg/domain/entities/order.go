package entities

import (
	"fmt"
	"time"
)

// OrderLine is one unit of customer demand. It is immutable for the
// duration of a planning run.
type OrderLine struct {
	OrderID     string
	CustomerID  string
	ProductID   ProductID
	Qty         Quantity
	Destination LocationID
	NeedBy      time.Time
}

// NewOrderLine creates a validated OrderLine. NeedBy is stored in UTC.
func NewOrderLine(
	orderID, customerID string,
	productID ProductID,
	qty Quantity,
	destination LocationID,
	needBy time.Time,
) (*OrderLine, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if productID == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", qty)
	}
	if needBy.IsZero() {
		return nil, fmt.Errorf("need-by timestamp cannot be zero")
	}

	return &OrderLine{
		OrderID:     orderID,
		CustomerID:  customerID,
		ProductID:   productID,
		Qty:         qty,
		Destination: destination,
		NeedBy:      needBy.UTC(),
	}, nil
}
