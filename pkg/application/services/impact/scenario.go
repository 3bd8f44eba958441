package impact

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
)

// ScenarioRunner replans several products against a modified snapshot
type ScenarioRunner struct {
	planner *recovery.Planner
}

// NewScenarioRunner creates a scenario runner on top of a planner
func NewScenarioRunner(planner *recovery.Planner) *ScenarioRunner {
	return &ScenarioRunner{planner: planner}
}

// Classify decides whether code is a component, a finished good or unknown.
// Components have at least one BOM parent; finished goods appear as a BOM
// parent or on an order.
func Classify(code entities.ProductID, snap *entities.Snapshot) (dto.ScenarioKind, []entities.ProductID) {
	rev := NewReverseBOM(snap.BomEdges)
	if rev.HasParents(code) {
		return dto.ScenarioComponent, rev.Ancestors(code)
	}

	for _, e := range snap.BomEdges {
		if e.Parent == code {
			return dto.ScenarioFinishedGood, []entities.ProductID{code}
		}
	}
	if len(snap.OrdersFor(code)) > 0 {
		return dto.ScenarioFinishedGood, []entities.ProductID{code}
	}

	return dto.ScenarioUnknown, []entities.ProductID{}
}

// SimulateStockout zeroes stock for every product affected by code and
// replans each of them. The input snapshot is not modified.
func (r *ScenarioRunner) SimulateStockout(ctx context.Context, code entities.ProductID, snap *entities.Snapshot) (*dto.ScenarioResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}

	now := r.planner.Now()
	kind, products := Classify(code, snap)
	result := &dto.ScenarioResult{
		RunID:     logging.RunID(ctx),
		Code:      code,
		Kind:      kind,
		Products:  products,
		PlannedAt: now,
		Rows:      make([]entities.PlanRow, 0),
	}

	if kind == dto.ScenarioUnknown {
		result.Notes = append(result.Notes,
			fmt.Sprintf("code %s not found in BOM or orders; provide a component or a valid SKU", code))
		result.KPI = recovery.ComputeKPI(result.Rows)
		result.FullKit = recovery.FullKit(result.Rows)
		return result, nil
	}

	simulated := snap.WithZeroedStock(products)
	if err := r.planAll(ctx, now, result, simulated, nil); err != nil {
		return nil, fmt.Errorf("failed to simulate stockout of %s: %w", code, err)
	}

	if len(result.Rows) == 0 {
		result.Notes = append(result.Notes, "no open orders for the mapped products, nothing to replan")
	}
	return result, nil
}

// RerouteBlock replans with the from -> to lane closed. An empty sku plans
// every product with orders delivering to the destination.
func (r *ScenarioRunner) RerouteBlock(
	ctx context.Context,
	from, to entities.LocationID,
	sku entities.ProductID,
	snap *entities.Snapshot,
) (*dto.ScenarioResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("blocked route needs both origin and destination")
	}

	var products []entities.ProductID
	if sku != "" {
		products = []entities.ProductID{sku}
	} else {
		products = ProductsDeliveredTo(to, snap.Orders)
	}

	now := r.planner.Now()
	blocked := []entities.Route{{From: from, To: to}}
	result := &dto.ScenarioResult{
		RunID:     logging.RunID(ctx),
		Code:      sku,
		Kind:      dto.ScenarioReroute,
		Products:  products,
		Blocked:   blocked,
		PlannedAt: now,
		Rows:      make([]entities.PlanRow, 0),
	}

	if len(products) == 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("no open orders delivering to %s", to))
	}

	if err := r.planAll(ctx, now, result, snap, blocked); err != nil {
		return nil, fmt.Errorf("failed to reroute around %s->%s: %w", from, to, err)
	}
	return result, nil
}

// planAll plans each product of the result in turn and fills rows and KPIs
func (r *ScenarioRunner) planAll(
	ctx context.Context,
	now time.Time,
	result *dto.ScenarioResult,
	snap *entities.Snapshot,
	blocked []entities.Route,
) error {
	for _, product := range result.Products {
		event := entities.ShortageEvent{
			ProductID:      product,
			UnavailableQty: entities.UnboundedShortage,
			Origin:         entities.NoLocation,
		}
		plan, err := r.planner.PlanRecoveryAt(ctx, now, event, snap, blocked)
		if err != nil {
			return err
		}
		for _, row := range plan.Rows {
			row.ScenarioProduct = product
			result.Rows = append(result.Rows, row)
		}
	}

	result.KPI = recovery.ComputeKPI(result.Rows)
	result.FullKit = recovery.FullKit(result.Rows)
	return nil
}

// ProductsDeliveredTo returns the sorted distinct products ordered to a destination
func ProductsDeliveredTo(dest entities.LocationID, orders []entities.OrderLine) []entities.ProductID {
	seen := make(map[entities.ProductID]bool)
	products := make([]entities.ProductID, 0)
	for _, o := range orders {
		if o.Destination != dest || seen[o.ProductID] {
			continue
		}
		seen[o.ProductID] = true
		products = append(products, o.ProductID)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products
}
