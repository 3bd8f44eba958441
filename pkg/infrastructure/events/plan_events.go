package events

import (
	"github.com/vsinha/disruption/pkg/domain/entities"
)

const (
	PlanComputedEvent      = "plan.computed"
	StockoutSimulatedEvent = "stockout.simulated"
	RouteBlockedEvent      = "route.blocked"
	CoverageComputedEvent  = "coverage.computed"
	LineUnsourcedEvent     = "line.unsourced"
	ActionRecommendedEvent = "action.recommended"
	SnapshotRefreshedEvent = "snapshot.refreshed"
)

// AllEventTypes lists every event type a planning run can emit
var AllEventTypes = []string{
	PlanComputedEvent,
	StockoutSimulatedEvent,
	RouteBlockedEvent,
	CoverageComputedEvent,
	LineUnsourcedEvent,
	ActionRecommendedEvent,
	SnapshotRefreshedEvent,
}

type PlanComputed struct {
	ProductID entities.ProductID  `json:"product_id"`
	Origin    entities.LocationID `json:"origin"`
	Lines     int                 `json:"lines"`
	KPI       entities.KPI        `json:"kpi"`
}

type StockoutSimulated struct {
	Code     entities.ProductID   `json:"code"`
	Kind     string               `json:"kind"`
	Products []entities.ProductID `json:"products"`
	KPI      entities.KPI         `json:"kpi"`
}

type RouteBlocked struct {
	Route    entities.Route       `json:"route"`
	Products []entities.ProductID `json:"products"`
	KPI      entities.KPI         `json:"kpi"`
}

type CoverageComputed struct {
	HorizonDays int `json:"horizon_days"`
	Products    int `json:"products"`
	AtRisk      int `json:"at_risk"`
}

type LineUnsourced struct {
	OrderID     string              `json:"order_id"`
	ProductID   entities.ProductID  `json:"product_id"`
	Qty         entities.Quantity   `json:"qty"`
	Destination entities.LocationID `json:"destination"`
}

type ActionRecommended struct {
	SKU     entities.ProductID `json:"sku"`
	Summary string             `json:"summary"`
}

type SnapshotRefreshed struct {
	Source    string `json:"source"`
	Orders    int    `json:"orders"`
	Stock     int    `json:"stock"`
	Locations int    `json:"locations"`
}
