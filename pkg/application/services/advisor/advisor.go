package advisor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/impact"
	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
)

const (
	// DefaultLeadTimeHours is assumed when no capability row gives a lead time
	DefaultLeadTimeHours = 72.0
	// MaxListedSKUs caps ListSKUs
	MaxListedSKUs = 200

	etaLayout = "2006-01-02 15:04 MST"
)

// Advisor turns recovery plans into recommended actions
type Advisor struct {
	planner *recovery.Planner
}

// NewAdvisor creates an advisor backed by a planner
func NewAdvisor(planner *recovery.Planner) *Advisor {
	return &Advisor{planner: planner}
}

// RecommendAction plans every open order of a missing SKU and proposes what to do
func (a *Advisor) RecommendAction(ctx context.Context, sku entities.ProductID, snap *entities.Snapshot) (*dto.Recommendation, error) {
	if sku == "" {
		return nil, fmt.Errorf("sku cannot be empty")
	}

	event := entities.ShortageEvent{
		ProductID:      sku,
		UnavailableQty: entities.UnboundedShortage,
		Origin:         entities.NoLocation,
	}
	plan, err := a.planner.PlanRecovery(ctx, event, snap, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to plan for %s: %w", sku, err)
	}

	affected := impact.ImpactedBySKU(sku, snap.Orders)
	rec := &dto.Recommendation{
		RunID:             logging.RunID(ctx),
		SKU:               sku,
		KPI:               plan.KPI,
		FullKit:           plan.FullKit,
		AffectedCustomers: affected.DistinctCustomers,
		Actions:           make([]dto.OrderAction, 0, len(plan.Rows)),
		Groups:            make([]dto.ActionGroup, 0),
	}

	if len(plan.Rows) == 0 {
		rec.Notes = append(rec.Notes, "no open orders found for this SKU")
		return rec, nil
	}

	capabilities := snap.CapabilitiesFor(sku)
	for _, row := range plan.Rows {
		rec.Actions = append(rec.Actions, dto.OrderAction{
			Row:    row,
			Action: actionFor(row, capabilities),
		})
	}

	rec.Top = pickTop(rec.Actions)
	rec.Summary = summaryFor(rec.Top, capabilities)
	rec.Groups = groupBySource(rec.Actions)
	return rec, nil
}

func actionFor(row entities.PlanRow, capabilities []entities.ProductionCapability) string {
	switch row.Strategy {
	case entities.StockNow:
		return fmt.Sprintf("Ship now from %s · ETA %s", row.Source, FormatETA(*row.Arrival))
	case entities.ProduceThenShip:
		return fmt.Sprintf("Produce at %s (LT≈%dh) then ship · ETA %s",
			row.Source, leadHoursAt(capabilities, row.Source), FormatETA(*row.Arrival))
	default:
		return "No feasible source. Inform customer of delay."
	}
}

// pickTop prefers the stock-now line with least lateness then earliest ETA,
// falling back to the best produce-then-ship line
func pickTop(actions []dto.OrderAction) *dto.OrderAction {
	for _, strategy := range []entities.Strategy{entities.StockNow, entities.ProduceThenShip} {
		var best *dto.OrderAction
		for i := range actions {
			a := &actions[i]
			if a.Row.Strategy != strategy {
				continue
			}
			if best == nil || a.Row.LatenessHours < best.Row.LatenessHours ||
				(a.Row.LatenessHours == best.Row.LatenessHours && a.Row.Arrival.Before(*best.Row.Arrival)) {
				best = a
			}
		}
		if best != nil {
			top := *best
			return &top
		}
	}
	return nil
}

func summaryFor(top *dto.OrderAction, capabilities []entities.ProductionCapability) string {
	if top == nil {
		return "No feasible plant. Inform customers of delay."
	}
	eta := FormatETA(*top.Row.Arrival)
	if top.Row.Strategy == entities.StockNow {
		return fmt.Sprintf("Ship now from %s for earliest ETA %s.", top.Row.Source, eta)
	}
	return fmt.Sprintf("Produce at %s (LT≈%dh) then ship. Earliest ETA %s.",
		top.Row.Source, leadHoursAt(capabilities, top.Row.Source), eta)
}

type groupKey struct {
	strategy entities.Strategy
	source   entities.LocationID
}

func groupBySource(actions []dto.OrderAction) []dto.ActionGroup {
	index := make(map[groupKey]int)
	groups := make([]dto.ActionGroup, 0)

	for _, a := range actions {
		if !a.Row.Sourced() {
			continue
		}
		key := groupKey{a.Row.Strategy, a.Row.Source}
		i, exists := index[key]
		if !exists {
			i = len(groups)
			index[key] = i
			groups = append(groups, dto.ActionGroup{Strategy: key.strategy, Source: key.source})
		}
		g := &groups[i]
		g.Lines++
		g.TotalQty += a.Row.Qty
		if g.EarliestETA == nil || a.Row.Arrival.Before(*g.EarliestETA) {
			eta := *a.Row.Arrival
			g.EarliestETA = &eta
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		si, sj := groups[i].Strategy.String(), groups[j].Strategy.String()
		if si != sj {
			return si < sj
		}
		if !groups[i].EarliestETA.Equal(*groups[j].EarliestETA) {
			return groups[i].EarliestETA.Before(*groups[j].EarliestETA)
		}
		return groups[i].Source < groups[j].Source
	})
	return groups
}

// fastestSite returns the location with the smallest supported lead time
func fastestSite(capabilities []entities.ProductionCapability) *dto.SiteOption {
	var best *dto.SiteOption
	for _, c := range capabilities {
		if !c.Supported() {
			continue
		}
		if best == nil || *c.LeadTimeHours < best.LeadTimeHours ||
			(*c.LeadTimeHours == best.LeadTimeHours && c.LocationID < best.Location) {
			best = &dto.SiteOption{Location: c.LocationID, LeadTimeHours: *c.LeadTimeHours}
		}
	}
	return best
}

func leadHoursAt(capabilities []entities.ProductionCapability, location entities.LocationID) int {
	lead := DefaultLeadTimeHours
	found := false
	for _, c := range capabilities {
		if c.LocationID == location && c.Supported() && (!found || *c.LeadTimeHours < lead) {
			lead = *c.LeadTimeHours
			found = true
		}
	}
	return int(math.Round(lead))
}

// ComponentProductionHint suggests the fastest site for a component and the
// fastest assembly site for each parent that has open orders
func ComponentProductionHint(component entities.ProductID, snap *entities.Snapshot) *dto.ProductionHint {
	hint := &dto.ProductionHint{
		Component:          component,
		DefaultLeadTimeHrs: DefaultLeadTimeHours,
		Parents:            make([]dto.ParentAssembly, 0),
	}

	hint.ComponentSite = fastestSite(snap.CapabilitiesFor(component))
	if hint.ComponentSite == nil {
		hint.ComponentSite = &dto.SiteOption{LeadTimeHours: DefaultLeadTimeHours, Defaulted: true}
	}

	for _, parent := range impact.ResolveBomImpact(component, snap.BomEdges) {
		open := len(snap.OrdersFor(parent))
		if open == 0 {
			continue
		}
		best := fastestSite(snap.CapabilitiesFor(parent))
		if best == nil {
			best = &dto.SiteOption{LeadTimeHours: DefaultLeadTimeHours, Defaulted: true}
		}
		hint.Parents = append(hint.Parents, dto.ParentAssembly{
			Parent:     parent,
			OpenOrders: open,
			Best:       best,
		})
	}

	return hint
}

// ListSKUs returns products that are both ordered and stocked, sorted and capped
func ListSKUs(snap *entities.Snapshot) []entities.ProductID {
	stocked := make(map[entities.ProductID]bool)
	for _, p := range snap.StockedProducts() {
		stocked[p] = true
	}

	skus := make([]entities.ProductID, 0)
	for _, p := range snap.OrderedProducts() {
		if stocked[p] {
			skus = append(skus, p)
		}
		if len(skus) == MaxListedSKUs {
			break
		}
	}
	return skus
}

// LocationsForSKU returns the sorted locations holding a stock row for the SKU
func LocationsForSKU(sku entities.ProductID, snap *entities.Snapshot) []entities.LocationID {
	byLoc := snap.StockByLocation(sku)
	locs := make([]entities.LocationID, 0, len(byLoc))
	for loc := range byLoc {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
	return locs
}

// FormatETA renders an arrival the way actions do
func FormatETA(t time.Time) string {
	return t.UTC().Format(etaLayout)
}
