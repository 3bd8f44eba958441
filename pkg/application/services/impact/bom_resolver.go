package impact

import (
	"sort"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/domain/entities"
)

// ReverseBOM maps each child to the distinct parents that consume it
type ReverseBOM map[entities.ProductID][]entities.ProductID

// NewReverseBOM builds the child -> parents index. Duplicate edges collapse.
func NewReverseBOM(edges []entities.BomEdge) ReverseBOM {
	rev := make(ReverseBOM)
	seen := make(map[[2]entities.ProductID]bool)
	for _, e := range edges {
		key := [2]entities.ProductID{e.Child, e.Parent}
		if seen[key] {
			continue
		}
		seen[key] = true
		rev[e.Child] = append(rev[e.Child], e.Parent)
	}
	return rev
}

// HasParents reports whether any edge consumes the product
func (r ReverseBOM) HasParents(product entities.ProductID) bool {
	return len(r[product]) > 0
}

// Ancestors returns the sorted set of products that transitively consume
// component. The component itself is never part of the result, even when a
// cycle leads back to it.
func (r ReverseBOM) Ancestors(component entities.ProductID) []entities.ProductID {
	visited := map[entities.ProductID]bool{component: true}
	stack := append([]entities.ProductID(nil), r[component]...)
	result := make([]entities.ProductID, 0)

	for len(stack) > 0 {
		n := len(stack) - 1
		current := stack[n]
		stack = stack[:n]

		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)

		for _, parent := range r[current] {
			if !visited[parent] {
				stack = append(stack, parent)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ResolveBomImpact returns every product that depends on the missing component,
// directly or through intermediate assemblies
func ResolveBomImpact(component entities.ProductID, edges []entities.BomEdge) []entities.ProductID {
	return NewReverseBOM(edges).Ancestors(component)
}

// AffectedOrders returns orders for any product in the set, earliest deadline
// first, plus the number of distinct customers among them
func AffectedOrders(products []entities.ProductID, orders []entities.OrderLine) ([]entities.OrderLine, int) {
	wanted := make(map[entities.ProductID]bool, len(products))
	for _, p := range products {
		wanted[p] = true
	}

	affected := make([]entities.OrderLine, 0)
	customers := make(map[string]bool)
	for _, o := range orders {
		if !wanted[o.ProductID] {
			continue
		}
		affected = append(affected, o)
		customers[o.CustomerID] = true
	}

	sort.SliceStable(affected, func(i, j int) bool {
		if !affected[i].NeedBy.Equal(affected[j].NeedBy) {
			return affected[i].NeedBy.Before(affected[j].NeedBy)
		}
		return affected[i].OrderID < affected[j].OrderID
	})
	return affected, len(customers)
}

// ImpactedBySKU lists orders affected when a finished good itself is missing
func ImpactedBySKU(sku entities.ProductID, orders []entities.OrderLine) *dto.ImpactResult {
	affected, customers := AffectedOrders([]entities.ProductID{sku}, orders)
	return &dto.ImpactResult{
		Component:         sku,
		Products:          []entities.ProductID{sku},
		Orders:            affected,
		DistinctCustomers: customers,
	}
}

// ImpactedByComponent expands a component through the BOM and lists affected orders
func ImpactedByComponent(component entities.ProductID, snap *entities.Snapshot) *dto.ImpactResult {
	products := ResolveBomImpact(component, snap.BomEdges)
	affected, customers := AffectedOrders(products, snap.Orders)
	return &dto.ImpactResult{
		Component:         component,
		Products:          products,
		Orders:            affected,
		DistinctCustomers: customers,
	}
}
