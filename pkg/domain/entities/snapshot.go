package entities

import "sort"

// Snapshot is the read-only set of tables a planning call works on.
// Indexes are built once by NewSnapshot; callers must not mutate the slices.
type Snapshot struct {
	Stock        []StockRecord
	Locations    []Location
	Orders       []OrderLine
	Capabilities []ProductionCapability
	BomEdges     []BomEdge

	stockIndex      map[ProductID]map[LocationID]Quantity
	capabilityIndex map[ProductID][]ProductionCapability
	locationIndex   map[LocationID]Location
	orderIndex      map[ProductID][]OrderLine
}

// NewSnapshot builds a snapshot and its indexes. Duplicate stock rows are summed.
func NewSnapshot(
	stock []StockRecord,
	locations []Location,
	orders []OrderLine,
	capabilities []ProductionCapability,
	bomEdges []BomEdge,
) *Snapshot {
	s := &Snapshot{
		Stock:        MergeStock(stock),
		Locations:    append([]Location(nil), locations...),
		Orders:       append([]OrderLine(nil), orders...),
		Capabilities: append([]ProductionCapability(nil), capabilities...),
		BomEdges:     append([]BomEdge(nil), bomEdges...),
	}
	s.buildIndexes()
	return s
}

func (s *Snapshot) buildIndexes() {
	s.stockIndex = make(map[ProductID]map[LocationID]Quantity)
	for _, rec := range s.Stock {
		byLoc, exists := s.stockIndex[rec.ProductID]
		if !exists {
			byLoc = make(map[LocationID]Quantity)
			s.stockIndex[rec.ProductID] = byLoc
		}
		byLoc[rec.LocationID] += rec.OnHand
	}

	s.capabilityIndex = make(map[ProductID][]ProductionCapability)
	for _, c := range s.Capabilities {
		s.capabilityIndex[c.ProductID] = append(s.capabilityIndex[c.ProductID], c)
	}

	s.locationIndex = make(map[LocationID]Location, len(s.Locations))
	for _, loc := range s.Locations {
		// first row wins
		if _, exists := s.locationIndex[loc.ID]; !exists {
			s.locationIndex[loc.ID] = loc
		}
	}

	s.orderIndex = make(map[ProductID][]OrderLine)
	for _, o := range s.Orders {
		s.orderIndex[o.ProductID] = append(s.orderIndex[o.ProductID], o)
	}
}

// OnHand returns the on-hand quantity of a product at a location
func (s *Snapshot) OnHand(product ProductID, location LocationID) Quantity {
	return s.stockIndex[product][location]
}

// StockByLocation returns a copy of the per-location on-hand for a product
func (s *Snapshot) StockByLocation(product ProductID) map[LocationID]Quantity {
	out := make(map[LocationID]Quantity, len(s.stockIndex[product]))
	for loc, qty := range s.stockIndex[product] {
		out[loc] = qty
	}
	return out
}

// TotalOnHand sums stock of a product across locations
func (s *Snapshot) TotalOnHand(product ProductID) Quantity {
	var total Quantity
	for _, qty := range s.stockIndex[product] {
		total += qty
	}
	return total
}

// CapabilitiesFor returns production capabilities for a product
func (s *Snapshot) CapabilitiesFor(product ProductID) []ProductionCapability {
	return s.capabilityIndex[product]
}

// Location looks up a location by id
func (s *Snapshot) Location(id LocationID) (Location, bool) {
	loc, exists := s.locationIndex[id]
	return loc, exists
}

// OrdersFor returns order lines for a product in load order
func (s *Snapshot) OrdersFor(product ProductID) []OrderLine {
	return s.orderIndex[product]
}

// OrderedProducts returns the distinct products with at least one order line, sorted
func (s *Snapshot) OrderedProducts() []ProductID {
	products := make([]ProductID, 0, len(s.orderIndex))
	for p := range s.orderIndex {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products
}

// StockedProducts returns the distinct products with a stock row, sorted
func (s *Snapshot) StockedProducts() []ProductID {
	products := make([]ProductID, 0, len(s.stockIndex))
	for p := range s.stockIndex {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	return NewSnapshot(s.Stock, s.Locations, s.Orders, s.Capabilities, s.BomEdges)
}

// WithZeroedStock returns a copy whose stock rows for the given products have
// on-hand set to zero. The receiver is left untouched.
func (s *Snapshot) WithZeroedStock(products []ProductID) *Snapshot {
	zero := make(map[ProductID]bool, len(products))
	for _, p := range products {
		zero[p] = true
	}

	stock := make([]StockRecord, len(s.Stock))
	copy(stock, s.Stock)
	for i := range stock {
		if zero[stock[i].ProductID] {
			stock[i].OnHand = 0
		}
	}

	return NewSnapshot(stock, s.Locations, s.Orders, s.Capabilities, s.BomEdges)
}
