package entities

import "fmt"

// BomEdge is a directed bill-of-materials edge: Parent consumes UsageQty of Child
type BomEdge struct {
	Parent   ProductID
	Child    ProductID
	UsageQty Quantity
}

// NewBomEdge creates a validated BomEdge
func NewBomEdge(parent, child ProductID, usageQty Quantity) (*BomEdge, error) {
	if parent == "" {
		return nil, fmt.Errorf("parent product id cannot be empty")
	}
	if child == "" {
		return nil, fmt.Errorf("child product id cannot be empty")
	}
	if parent == child {
		return nil, fmt.Errorf("parent and child product ids cannot be the same: %s", parent)
	}
	if usageQty < 1 {
		return nil, fmt.Errorf("usage quantity must be at least 1, got %d", usageQty)
	}

	return &BomEdge{
		Parent:   parent,
		Child:    child,
		UsageQty: usageQty,
	}, nil
}
