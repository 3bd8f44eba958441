package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// AllocationContext holds depletion state for one product at one location
type AllocationContext struct {
	Available entities.Quantity
	Allocated entities.Quantity
}

// Remaining is the quantity still free to allocate
func (c *AllocationContext) Remaining() entities.Quantity {
	return c.Available - c.Allocated
}

// AllocationMap is a shared stock pool keyed by product and location.
// It is consumed sequentially by greedy depletion and is not safe for concurrent use.
type AllocationMap map[string]*AllocationContext

// NewAllocationMap creates a new empty allocation map
func NewAllocationMap() AllocationMap {
	return make(AllocationMap)
}

// NewAllocationMapFromSnapshot seeds a pool with the snapshot's on-hand for the given products
func NewAllocationMapFromSnapshot(snap *entities.Snapshot, products ...entities.ProductID) AllocationMap {
	allocMap := make(AllocationMap)
	for _, product := range products {
		for loc, qty := range snap.StockByLocation(product) {
			allocMap[allocMap.makeKey(product, loc)] = &AllocationContext{Available: qty}
		}
	}
	return allocMap
}

// OnHand returns the remaining quantity of a product at a location
func (am AllocationMap) OnHand(product entities.ProductID, location entities.LocationID) entities.Quantity {
	ctx := am.Get(product, location)
	if ctx == nil {
		return 0
	}
	return ctx.Remaining()
}

// Allocate consumes qty of a product at a location
func (am AllocationMap) Allocate(product entities.ProductID, location entities.LocationID, qty entities.Quantity) error {
	ctx := am.Get(product, location)
	if ctx == nil {
		return fmt.Errorf("no stock of %s at %s", product, location)
	}
	if qty > ctx.Remaining() {
		return fmt.Errorf("cannot allocate %d of %s at %s, only %d remaining", qty, product, location, ctx.Remaining())
	}
	ctx.Allocated += qty
	return nil
}

// Get retrieves allocation context for a product and location
func (am AllocationMap) Get(product entities.ProductID, location entities.LocationID) *AllocationContext {
	return am[am.makeKey(product, location)]
}

// Set stores allocation context for a product and location
func (am AllocationMap) Set(product entities.ProductID, location entities.LocationID, context *AllocationContext) {
	am[am.makeKey(product, location)] = context
}

// Has checks if allocation context exists for a product and location
func (am AllocationMap) Has(product entities.ProductID, location entities.LocationID) bool {
	_, exists := am[am.makeKey(product, location)]
	return exists
}

// Size returns the number of allocation contexts stored
func (am AllocationMap) Size() int {
	return len(am)
}

// GetTotalAllocated returns the total allocated quantity across all entries
func (am AllocationMap) GetTotalAllocated() entities.Quantity {
	var total entities.Quantity
	for _, context := range am {
		total += context.Allocated
	}
	return total
}

// makeKey creates a consistent key for product and location
func (am AllocationMap) makeKey(product entities.ProductID, location entities.LocationID) string {
	return fmt.Sprintf("%s|%s", product, location)
}

// parseKey extracts product and location from a key
func (am AllocationMap) parseKey(key string) (entities.ProductID, entities.LocationID, bool) {
	product, location, found := strings.Cut(key, "|")
	if !found {
		return "", "", false
	}
	return entities.ProductID(product), entities.LocationID(location), true
}

// String returns a string representation of the allocation map for debugging
func (am AllocationMap) String() string {
	if len(am) == 0 {
		return "AllocationMap{empty}"
	}

	keys := make([]string, 0, len(am))
	for key := range am {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "AllocationMap{%d entries:\n", len(am))
	for _, key := range keys {
		if product, location, found := am.parseKey(key); found {
			ctx := am[key]
			fmt.Fprintf(&b, "  %s@%s: available=%d, allocated=%d\n", product, location, ctx.Available, ctx.Allocated)
		}
	}
	b.WriteString("}")
	return b.String()
}
