package testing

import (
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// BaseTime is the fixed "now" used across planning tests
var BaseTime = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

// SnapshotBuilder assembles snapshot tables for tests
type SnapshotBuilder struct {
	stock        []entities.StockRecord
	locations    []entities.Location
	orders       []entities.OrderLine
	capabilities []entities.ProductionCapability
	edges        []entities.BomEdge
}

// NewSnapshotBuilder creates an empty builder
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{}
}

// Location adds a location with coordinates
func (b *SnapshotBuilder) Location(id string, lat, lon float64) *SnapshotBuilder {
	b.locations = append(b.locations, entities.Location{
		ID:          entities.LocationID(id),
		Coordinates: &entities.Coordinates{Lat: lat, Lon: lon},
	})
	return b
}

// LocationWithoutCoordinates adds a location whose position is unknown
func (b *SnapshotBuilder) LocationWithoutCoordinates(id string) *SnapshotBuilder {
	b.locations = append(b.locations, entities.Location{ID: entities.LocationID(id)})
	return b
}

// Stock adds an on-hand row
func (b *SnapshotBuilder) Stock(product, location string, onHand entities.Quantity) *SnapshotBuilder {
	b.stock = append(b.stock, entities.StockRecord{
		ProductID:  entities.ProductID(product),
		LocationID: entities.LocationID(location),
		OnHand:     onHand,
	})
	return b
}

// Order adds an order line due the given offset after BaseTime
func (b *SnapshotBuilder) Order(orderID, customer, product string, qty entities.Quantity, dest string, due time.Duration) *SnapshotBuilder {
	b.orders = append(b.orders, entities.OrderLine{
		OrderID:     orderID,
		CustomerID:  customer,
		ProductID:   entities.ProductID(product),
		Qty:         qty,
		Destination: entities.LocationID(dest),
		NeedBy:      BaseTime.Add(due),
	})
	return b
}

// Capability adds a supported production capability
func (b *SnapshotBuilder) Capability(location, product string, leadTimeHours float64) *SnapshotBuilder {
	lt := leadTimeHours
	b.capabilities = append(b.capabilities, entities.ProductionCapability{
		LocationID:    entities.LocationID(location),
		ProductID:     entities.ProductID(product),
		LeadTimeHours: &lt,
	})
	return b
}

// UnsupportedCapability adds a capability row without a lead time
func (b *SnapshotBuilder) UnsupportedCapability(location, product string) *SnapshotBuilder {
	b.capabilities = append(b.capabilities, entities.ProductionCapability{
		LocationID: entities.LocationID(location),
		ProductID:  entities.ProductID(product),
	})
	return b
}

// Edge adds a BOM edge: parent consumes usage of child
func (b *SnapshotBuilder) Edge(parent, child string, usage entities.Quantity) *SnapshotBuilder {
	b.edges = append(b.edges, entities.BomEdge{
		Parent:   entities.ProductID(parent),
		Child:    entities.ProductID(child),
		UsageQty: usage,
	})
	return b
}

// Build produces the snapshot
func (b *SnapshotBuilder) Build() *entities.Snapshot {
	return entities.NewSnapshot(b.stock, b.locations, b.orders, b.capabilities, b.edges)
}

// BuildSimpleTestData is the one-line stock-now scenario: 100 units of P at
// L1 (0,0), one order for 30 to L2 (0,1) due in five hours
func BuildSimpleTestData() *entities.Snapshot {
	return NewSnapshotBuilder().
		Location("L1", 0, 0).
		Location("L2", 0, 1).
		Stock("P", "L1", 100).
		Order("O1", "C1", "P", 30, "L2", 5*time.Hour).
		Build()
}

// BuildNetworkTestData builds a small multi-plant network with a three level BOM:
// BIKE uses FRAME and WHEEL, FRAME uses TUBE, WHEEL uses SPOKE and TUBE
func BuildNetworkTestData() *entities.Snapshot {
	return NewSnapshotBuilder().
		Location("plant_1", 45.07, 7.69).
		Location("plant_2", 45.46, 9.19).
		Location("plant_3", 44.41, 8.93).
		Location("dc_1", 45.44, 12.32).
		LocationWithoutCoordinates("plant_9").
		Stock("BIKE", "plant_1", 20).
		Stock("BIKE", "plant_2", 5).
		Stock("BIKE", "plant_9", 500).
		Stock("FRAME", "plant_2", 40).
		Stock("WHEEL", "plant_3", 80).
		Stock("TUBE", "plant_1", 300).
		Capability("plant_3", "BIKE", 48).
		Capability("plant_1", "FRAME", 24).
		Capability("plant_2", "WHEEL", 12).
		Capability("plant_1", "TUBE", 6).
		Edge("BIKE", "FRAME", 1).
		Edge("BIKE", "WHEEL", 2).
		Edge("FRAME", "TUBE", 3).
		Edge("WHEEL", "SPOKE", 32).
		Edge("WHEEL", "TUBE", 1).
		Order("SO-1", "acme", "BIKE", 10, "dc_1", 24*time.Hour).
		Order("SO-2", "globex", "BIKE", 8, "plant_2", 12*time.Hour).
		Order("SO-3", "acme", "FRAME", 15, "dc_1", 48*time.Hour).
		Order("SO-4", "initech", "WHEEL", 30, "plant_1", 72*time.Hour).
		Order("SO-5", "globex", "BIKE", 3, "dc_1", 30*24*time.Hour).
		Build()
}
