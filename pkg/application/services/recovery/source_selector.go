package recovery

import (
	"sort"
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/services"
)

// StockView answers on-hand queries. *entities.Snapshot and the greedy
// allocation pool both satisfy it.
type StockView interface {
	OnHand(product entities.ProductID, location entities.LocationID) entities.Quantity
}

// SourceRequest describes one line to be sourced
type SourceRequest struct {
	ProductID   entities.ProductID
	Qty         entities.Quantity
	Destination entities.LocationID
	Excluded    map[entities.LocationID]bool
}

// Selection is the chosen fulfilment option for a request
type Selection struct {
	Source     entities.LocationID
	Strategy   entities.Strategy
	Arrival    *time.Time
	DistanceKm float64
}

// NoSelection is returned when no candidate is feasible
func NoSelection() Selection {
	return Selection{Source: entities.NoLocation, Strategy: entities.NoSource}
}

// SourceSelector picks the fastest feasible source for one line
type SourceSelector struct {
	estimator *services.DistanceEstimator
}

// NewSourceSelector creates a selector bound to a distance estimator
func NewSourceSelector(estimator *services.DistanceEstimator) *SourceSelector {
	return &SourceSelector{estimator: estimator}
}

type candidate struct {
	location entities.LocationID
	strategy entities.Strategy
	arrival  time.Time
	km       float64
}

// strategyRank orders stock-now ahead of produce-then-ship on full ties
func strategyRank(s entities.Strategy) int {
	if s == entities.StockNow {
		return 0
	}
	return 1
}

func (c candidate) before(other candidate) bool {
	if !c.arrival.Equal(other.arrival) {
		return c.arrival.Before(other.arrival)
	}
	if c.km != other.km {
		return c.km < other.km
	}
	if c.location != other.location {
		return c.location < other.location
	}
	return strategyRank(c.strategy) < strategyRank(other.strategy)
}

// Select evaluates every candidate location for the request. stock may be nil,
// in which case on-hand is read from the snapshot. The snapshot is never modified.
func (s *SourceSelector) Select(req SourceRequest, snap *entities.Snapshot, stock StockView, now time.Time) Selection {
	if stock == nil {
		stock = snap
	}

	dest, exists := snap.Location(req.Destination)
	if !exists || !dest.HasCoordinates() {
		return NoSelection()
	}

	var best *candidate
	consider := func(c candidate) {
		if best == nil || c.before(*best) {
			cc := c
			best = &cc
		}
	}

	for _, locID := range s.candidateLocations(req.ProductID, snap) {
		if req.Excluded[locID] {
			continue
		}
		loc, exists := snap.Location(locID)
		if !exists {
			continue
		}
		km, ok := s.estimator.Distance(loc, dest)
		if !ok {
			continue
		}
		transit := s.estimator.Transit(km)

		if req.Qty > 0 && stock.OnHand(req.ProductID, locID) >= req.Qty {
			consider(candidate{
				location: locID,
				strategy: entities.StockNow,
				arrival:  now.Add(transit),
				km:       km,
			})
		}

		if lead, ok := fastestLeadTime(snap.CapabilitiesFor(req.ProductID), locID); ok {
			consider(candidate{
				location: locID,
				strategy: entities.ProduceThenShip,
				arrival:  now.Add(services.HoursToDuration(lead) + transit),
				km:       km,
			})
		}
	}

	if best == nil {
		return NoSelection()
	}

	arrival := best.arrival
	return Selection{
		Source:     best.location,
		Strategy:   best.strategy,
		Arrival:    &arrival,
		DistanceKm: best.km,
	}
}

// candidateLocations returns, sorted, every location with a stock row or a
// production capability for the product
func (s *SourceSelector) candidateLocations(product entities.ProductID, snap *entities.Snapshot) []entities.LocationID {
	seen := make(map[entities.LocationID]bool)
	for loc := range snap.StockByLocation(product) {
		seen[loc] = true
	}
	for _, c := range snap.CapabilitiesFor(product) {
		seen[c.LocationID] = true
	}

	ids := make([]entities.LocationID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// fastestLeadTime returns the smallest supported lead time at a location
func fastestLeadTime(capabilities []entities.ProductionCapability, location entities.LocationID) (float64, bool) {
	found := false
	var lead float64
	for _, c := range capabilities {
		if c.LocationID != location || !c.Supported() {
			continue
		}
		if !found || *c.LeadTimeHours < lead {
			lead = *c.LeadTimeHours
			found = true
		}
	}
	return lead, found
}
