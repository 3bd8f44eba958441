package recovery

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/shared"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/services"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
)

// Mode selects how lines share stock within one planning call
type Mode int

const (
	// ModeIndependent evaluates every line against the full stock and capability set
	ModeIndependent Mode = iota
	// ModeGreedyDepletion consumes a shared stock pool in deadline order
	ModeGreedyDepletion
)

// String method for Mode enum
func (m Mode) String() string {
	switch m {
	case ModeIndependent:
		return "independent"
	case ModeGreedyDepletion:
		return "greedy"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "independent":
		return ModeIndependent, nil
	case "greedy", "greedy-depletion":
		return ModeGreedyDepletion, nil
	default:
		return ModeIndependent, fmt.Errorf("unknown allocation mode: %s", s)
	}
}

// PlannerConfig configures a Planner
type PlannerConfig struct {
	// Workers bounds concurrent line evaluation; <= 0 uses GOMAXPROCS
	Workers int
	// DefaultHorizon applies when an event carries no horizon; 0 means unbounded
	DefaultHorizon time.Duration
	Mode           Mode
}

// Planner turns a shortage event into a per-line recovery plan
type Planner struct {
	selector *SourceSelector
	config   PlannerConfig
	clock    func() time.Time
}

// NewPlanner creates a new planner
func NewPlanner(estimator *services.DistanceEstimator, config PlannerConfig) (*Planner, error) {
	if estimator == nil {
		return nil, fmt.Errorf("distance estimator cannot be nil")
	}
	if config.DefaultHorizon < 0 {
		return nil, fmt.Errorf("default horizon cannot be negative, got %v", config.DefaultHorizon)
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	return &Planner{
		selector: NewSourceSelector(estimator),
		config:   config,
		clock:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock replaces the planner's time source
func (p *Planner) WithClock(clock func() time.Time) *Planner {
	p.clock = clock
	return p
}

// Now returns the planner's current time
func (p *Planner) Now() time.Time {
	return p.clock()
}

// Mode returns the configured allocation mode
func (p *Planner) Mode() Mode {
	return p.config.Mode
}

// Selector exposes the planner's source selector
func (p *Planner) Selector() *SourceSelector {
	return p.selector
}

// PlanRecovery plans every in-scope order line of the event's product
func (p *Planner) PlanRecovery(
	ctx context.Context,
	event entities.ShortageEvent,
	snap *entities.Snapshot,
	blocked []entities.Route,
) (*dto.PlanResult, error) {
	return p.PlanRecoveryAt(ctx, p.clock(), event, snap, blocked)
}

// PlanRecoveryAt is PlanRecovery evaluated at a fixed instant
func (p *Planner) PlanRecoveryAt(
	ctx context.Context,
	now time.Time,
	event entities.ShortageEvent,
	snap *entities.Snapshot,
	blocked []entities.Route,
) (*dto.PlanResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if event.ProductID == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}

	start := time.Now()
	lines := p.ScopeOrders(event, snap, now)

	var rows []entities.PlanRow
	var err error
	switch p.config.Mode {
	case ModeGreedyDepletion:
		rows, err = p.planGreedy(ctx, now, event, snap, blocked, lines)
	default:
		rows, err = p.planIndependent(ctx, now, event, snap, blocked, lines)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to plan recovery for %s: %w", event.ProductID, err)
	}

	kpi := ComputeKPI(rows)
	if event.UnavailableQty < entities.UnboundedShortage {
		kpi = ShortfallKPI(rows, event.UnavailableQty)
	}

	result := &dto.PlanResult{
		RunID:       logging.RunID(ctx),
		Event:       event,
		Blocked:     blocked,
		PlannedAt:   now,
		Rows:        rows,
		KPI:         kpi,
		FullKit:     FullKit(rows),
		Mode:        p.config.Mode.String(),
		ElapsedTime: time.Since(start),
	}

	logging.Debug(ctx).
		Str("product", string(event.ProductID)).
		Str("origin", string(event.Origin)).
		Str("mode", result.Mode).
		Int("lines", len(rows)).
		Float64("on_time_pct", kpi.OnTimePct).
		Dur("elapsed", result.ElapsedTime).
		Msg("recovery planned")

	return result, nil
}

// ScopeOrders returns the event's order lines with a deadline inside the
// horizon, earliest deadline first and order id second
func (p *Planner) ScopeOrders(event entities.ShortageEvent, snap *entities.Snapshot, now time.Time) []entities.OrderLine {
	var horizonEnd *time.Time
	switch {
	case event.Horizon != nil:
		end := now.Add(*event.Horizon)
		horizonEnd = &end
	case p.config.DefaultHorizon > 0:
		end := now.Add(p.config.DefaultHorizon)
		horizonEnd = &end
	}

	lines := make([]entities.OrderLine, 0)
	for _, line := range snap.OrdersFor(event.ProductID) {
		if line.NeedBy.Before(now) {
			continue
		}
		if horizonEnd != nil && line.NeedBy.After(*horizonEnd) {
			continue
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].NeedBy.Equal(lines[j].NeedBy) {
			return lines[i].NeedBy.Before(lines[j].NeedBy)
		}
		return lines[i].OrderID < lines[j].OrderID
	})
	return lines
}

func (p *Planner) planIndependent(
	ctx context.Context,
	now time.Time,
	event entities.ShortageEvent,
	snap *entities.Snapshot,
	blocked []entities.Route,
	lines []entities.OrderLine,
) ([]entities.PlanRow, error) {
	rows := make([]entities.PlanRow, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)

	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req := requestFor(line, event.Origin, blocked)
			rows[i] = rowFor(line, p.selector.Select(req, snap, nil, now))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *Planner) planGreedy(
	ctx context.Context,
	now time.Time,
	event entities.ShortageEvent,
	snap *entities.Snapshot,
	blocked []entities.Route,
	lines []entities.OrderLine,
) ([]entities.PlanRow, error) {
	pool := shared.NewAllocationMapFromSnapshot(snap, event.ProductID)
	rows := make([]entities.PlanRow, 0, len(lines))

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sel := p.selector.Select(requestFor(line, event.Origin, blocked), snap, pool, now)
		if sel.Strategy == entities.StockNow {
			if err := pool.Allocate(line.ProductID, sel.Source, line.Qty); err != nil {
				return nil, fmt.Errorf("failed to deplete pool for order %s: %w", line.OrderID, err)
			}
		}
		rows = append(rows, rowFor(line, sel))
	}

	return rows, nil
}

// requestFor builds the selector request for a line, excluding the shortage
// origin and the upstream end of every blocked lane into the line's destination
func requestFor(line entities.OrderLine, origin entities.LocationID, blocked []entities.Route) SourceRequest {
	excluded := make(map[entities.LocationID]bool)
	if origin != "" && origin != entities.NoLocation {
		excluded[origin] = true
	}
	for _, r := range blocked {
		if r.To == line.Destination {
			excluded[r.From] = true
		}
	}

	return SourceRequest{
		ProductID:   line.ProductID,
		Qty:         line.Qty,
		Destination: line.Destination,
		Excluded:    excluded,
	}
}

func rowFor(line entities.OrderLine, sel Selection) entities.PlanRow {
	row := entities.PlanRow{
		OrderID:       line.OrderID,
		CustomerID:    line.CustomerID,
		ProductID:     line.ProductID,
		Qty:           line.Qty,
		Destination:   line.Destination,
		NeedBy:        line.NeedBy,
		Source:        sel.Source,
		Arrival:       sel.Arrival,
		Strategy:      sel.Strategy,
		DistanceKm:    sel.DistanceKm,
		LatenessHours: entities.UnsourcedLateness(),
	}

	if sel.Arrival != nil {
		row.LatenessHours = Lateness(*sel.Arrival, line.NeedBy)
	}
	return row
}

// Lateness is max(0, arrival - needBy) in hours
func Lateness(arrival, needBy time.Time) float64 {
	if !arrival.After(needBy) {
		return 0
	}
	return arrival.Sub(needBy).Hours()
}
