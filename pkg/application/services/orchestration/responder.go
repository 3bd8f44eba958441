package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/advisor"
	"github.com/vsinha/disruption/pkg/application/services/coverage"
	"github.com/vsinha/disruption/pkg/application/services/impact"
	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/infrastructure/events"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
	"github.com/vsinha/disruption/pkg/infrastructure/metrics"
	"github.com/vsinha/disruption/pkg/infrastructure/repositories/memory"
)

// Operation names used for logs and metrics
const (
	OpPlan      = "plan"
	OpStockout  = "stockout"
	OpReroute   = "reroute"
	OpCoverage  = "coverage"
	OpRecommend = "recommend"
	OpImpact    = "impact"
	OpHint      = "hint"
	OpRefresh   = "refresh"
)

// Responder coordinates the planning services over the session snapshot.
// Every call runs under a fresh run id that tags its logs and events.
type Responder struct {
	session   *memory.Session
	planner   *recovery.Planner
	scenarios *impact.ScenarioRunner
	advisor   *advisor.Advisor
	events    events.EventStore
}

// NewResponder creates a responder. A nil event store disables events.
func NewResponder(session *memory.Session, planner *recovery.Planner, store events.EventStore) (*Responder, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if planner == nil {
		return nil, fmt.Errorf("planner cannot be nil")
	}

	return &Responder{
		session:   session,
		planner:   planner,
		scenarios: impact.NewScenarioRunner(planner),
		advisor:   advisor.NewAdvisor(planner),
		events:    store,
	}, nil
}

// Events returns the event store, if any
func (r *Responder) Events() events.EventStore {
	return r.events
}

// Snapshot returns the current session snapshot
func (r *Responder) Snapshot() *entities.Snapshot {
	return r.session.Snapshot()
}

// PlanRecovery plans one shortage event, optionally with blocked lanes
func (r *Responder) PlanRecovery(
	ctx context.Context,
	event entities.ShortageEvent,
	blocked []entities.Route,
) (*dto.PlanResult, error) {
	ctx, runID, start := r.begin(ctx, OpPlan)

	result, err := r.planner.PlanRecovery(ctx, event, r.session.Snapshot(), blocked)
	if err != nil {
		r.fail(ctx, OpPlan, err)
		return nil, err
	}

	r.finish(ctx, OpPlan, start, result.Rows, result.KPI)
	r.emit(runID, events.PlanComputedEvent, events.PlanComputed{
		ProductID: event.ProductID,
		Origin:    event.Origin,
		Lines:     len(result.Rows),
		KPI:       result.KPI,
	})
	r.emitUnsourced(runID, result.Rows)

	return result, nil
}

// ImpactByComponent lists products and open orders downstream of a component
func (r *Responder) ImpactByComponent(ctx context.Context, component entities.ProductID) *dto.ImpactResult {
	ctx, _, start := r.begin(ctx, OpImpact)

	result := impact.ImpactedByComponent(component, r.session.Snapshot())

	logging.Info(ctx).
		Str("component", string(component)).
		Int("products", len(result.Products)).
		Int("orders", len(result.Orders)).
		Dur("elapsed", time.Since(start)).
		Msg("Impact resolved")
	return result
}

// ImpactBySKU lists the open orders of one product
func (r *Responder) ImpactBySKU(ctx context.Context, sku entities.ProductID) *dto.ImpactResult {
	ctx, _, start := r.begin(ctx, OpImpact)

	result := impact.ImpactedBySKU(sku, r.session.Snapshot().Orders)

	logging.Info(ctx).
		Str("sku", string(sku)).
		Int("orders", len(result.Orders)).
		Dur("elapsed", time.Since(start)).
		Msg("Impact resolved")
	return result
}

// SimulateStockout zeroes every product affected by code and replans them
func (r *Responder) SimulateStockout(ctx context.Context, code entities.ProductID) (*dto.ScenarioResult, error) {
	ctx, runID, start := r.begin(ctx, OpStockout)

	result, err := r.scenarios.SimulateStockout(ctx, code, r.session.Snapshot())
	if err != nil {
		r.fail(ctx, OpStockout, err)
		return nil, err
	}

	r.finish(ctx, OpStockout, start, result.Rows, result.KPI)
	r.emit(runID, events.StockoutSimulatedEvent, events.StockoutSimulated{
		Code:     code,
		Kind:     string(result.Kind),
		Products: result.Products,
		KPI:      result.KPI,
	})
	r.emitUnsourced(runID, result.Rows)

	return result, nil
}

// RerouteBlock replans with the from -> to lane closed
func (r *Responder) RerouteBlock(
	ctx context.Context,
	from, to entities.LocationID,
	sku entities.ProductID,
) (*dto.ScenarioResult, error) {
	ctx, runID, start := r.begin(ctx, OpReroute)

	result, err := r.scenarios.RerouteBlock(ctx, from, to, sku, r.session.Snapshot())
	if err != nil {
		r.fail(ctx, OpReroute, err)
		return nil, err
	}

	r.finish(ctx, OpReroute, start, result.Rows, result.KPI)
	r.emit(runID, events.RouteBlockedEvent, events.RouteBlocked{
		Route:    entities.Route{From: from, To: to},
		Products: result.Products,
		KPI:      result.KPI,
	})
	r.emitUnsourced(runID, result.Rows)

	return result, nil
}

// Coverage compares demand due within the horizon with on-hand stock
func (r *Responder) Coverage(ctx context.Context, horizonDays int, riskOnly bool) (*dto.CoverageResult, error) {
	ctx, runID, start := r.begin(ctx, OpCoverage)

	snap := r.session.Snapshot()
	now := r.planner.Now()
	rows, err := coverage.CoverageAlerts(snap.Stock, snap.Orders, horizonDays, now)
	if err != nil {
		r.fail(ctx, OpCoverage, err)
		return nil, err
	}

	atRisk := len(coverage.RiskOnly(rows))
	if riskOnly {
		rows = coverage.RiskOnly(rows)
	}

	result := &dto.CoverageResult{
		RunID:       runID,
		HorizonDays: horizonDays,
		AsOf:        now,
		Rows:        rows,
		AtRisk:      atRisk,
	}

	metrics.CoverageAtRisk.Set(float64(atRisk))
	logging.Info(ctx).
		Int("horizon_days", horizonDays).
		Int("products", len(rows)).
		Int("at_risk", atRisk).
		Dur("elapsed", time.Since(start)).
		Msg("Coverage computed")
	r.emit(runID, events.CoverageComputedEvent, events.CoverageComputed{
		HorizonDays: horizonDays,
		Products:    len(rows),
		AtRisk:      atRisk,
	})

	return result, nil
}

// RecommendAction plans all open orders of a SKU and summarizes the actions
func (r *Responder) RecommendAction(ctx context.Context, sku entities.ProductID) (*dto.Recommendation, error) {
	ctx, runID, start := r.begin(ctx, OpRecommend)

	rec, err := r.advisor.RecommendAction(ctx, sku, r.session.Snapshot())
	if err != nil {
		r.fail(ctx, OpRecommend, err)
		return nil, err
	}

	var rows []entities.PlanRow
	for _, a := range rec.Actions {
		rows = append(rows, a.Row)
	}
	r.finish(ctx, OpRecommend, start, rows, rec.KPI)
	r.emit(runID, events.ActionRecommendedEvent, events.ActionRecommended{
		SKU:     sku,
		Summary: rec.Summary,
	})

	return rec, nil
}

// ProductionHint finds the fastest sites for a component and its parents
func (r *Responder) ProductionHint(ctx context.Context, component entities.ProductID) *dto.ProductionHint {
	ctx, _, start := r.begin(ctx, OpHint)

	hint := advisor.ComponentProductionHint(component, r.session.Snapshot())

	logging.Info(ctx).
		Str("component", string(component)).
		Int("parents", len(hint.Parents)).
		Dur("elapsed", time.Since(start)).
		Msg("Production hint computed")
	return hint
}

// ListSKUs returns products that are both ordered and stocked
func (r *Responder) ListSKUs() []entities.ProductID {
	return advisor.ListSKUs(r.session.Snapshot())
}

// LocationsForSKU returns the locations holding stock of a SKU
func (r *Responder) LocationsForSKU(sku entities.ProductID) []entities.LocationID {
	return advisor.LocationsForSKU(sku, r.session.Snapshot())
}

// Refresh reloads the session snapshot
func (r *Responder) Refresh(ctx context.Context) error {
	ctx, runID, _ := r.begin(ctx, OpRefresh)

	if err := r.session.Refresh(ctx); err != nil {
		r.fail(ctx, OpRefresh, err)
		return err
	}

	snap := r.session.Snapshot()
	r.emit(runID, events.SnapshotRefreshedEvent, events.SnapshotRefreshed{
		Source:    r.session.SourceName(),
		Orders:    len(snap.Orders),
		Stock:     len(snap.Stock),
		Locations: len(snap.Locations),
	})
	return nil
}

func (r *Responder) begin(ctx context.Context, operation string) (context.Context, string, time.Time) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logging.Debug(ctx).Str("operation", operation).Msg("Run started")
	return ctx, runID, time.Now()
}

func (r *Responder) finish(ctx context.Context, operation string, start time.Time, rows []entities.PlanRow, kpi entities.KPI) {
	elapsed := time.Since(start)
	metrics.ObservePlan(operation, elapsed.Seconds(), rows, kpi)

	logging.Info(ctx).
		Str("operation", operation).
		Int("lines", kpi.TotalOrders).
		Int("late", kpi.LateOrders).
		Int("no_source", kpi.NoSourceOrders).
		Float64("on_time_pct", kpi.OnTimePct).
		Dur("elapsed", elapsed).
		Msg("Run completed")
}

func (r *Responder) fail(ctx context.Context, operation string, err error) {
	metrics.ObserveFailure(operation)
	logging.Error(ctx).Err(err).Str("operation", operation).Msg("Run failed")
}

func (r *Responder) emit(runID, eventType string, data interface{}) {
	if r.events == nil {
		return
	}
	event := events.NewEvent(eventType, runID, data, r.planner.Now())
	if err := r.events.AppendEvent(runID, event); err != nil {
		logging.Logger.Warn().Err(err).Str("event", eventType).Msg("failed to append event")
	}
}

func (r *Responder) emitUnsourced(runID string, rows []entities.PlanRow) {
	for _, row := range rows {
		if row.Sourced() {
			continue
		}
		r.emit(runID, events.LineUnsourcedEvent, events.LineUnsourced{
			OrderID:     row.OrderID,
			ProductID:   row.ProductID,
			Qty:         row.Qty,
			Destination: row.Destination,
		})
	}
}
