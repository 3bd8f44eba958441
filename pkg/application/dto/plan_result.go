package dto

import (
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// PlanResult contains the complete output of one recovery planning call
type PlanResult struct {
	RunID       string
	Event       entities.ShortageEvent
	Blocked     []entities.Route
	PlannedAt   time.Time
	Rows        []entities.PlanRow
	KPI         entities.KPI
	FullKit     FullKitSummary
	Mode        string
	ElapsedTime time.Duration
}

// FullKitSummary counts orders whose every line is on time
type FullKitSummary struct {
	Orders       int
	OnTimeOrders int
	OnTimePct    float64
}

// ImpactResult lists the products and orders downstream of a missing component
type ImpactResult struct {
	Component         entities.ProductID
	Products          []entities.ProductID
	Orders            []entities.OrderLine
	DistinctCustomers int
}

// ScenarioKind classifies the code a stockout simulation was started from
type ScenarioKind string

const (
	ScenarioComponent    ScenarioKind = "component"
	ScenarioFinishedGood ScenarioKind = "finished-good"
	ScenarioUnknown      ScenarioKind = "unknown"
	ScenarioReroute      ScenarioKind = "reroute"
)

// ScenarioResult is a combined plan across several products
type ScenarioResult struct {
	RunID     string
	Code      entities.ProductID
	Kind      ScenarioKind
	Products  []entities.ProductID
	Blocked   []entities.Route
	PlannedAt time.Time
	Rows      []entities.PlanRow
	KPI       entities.KPI
	FullKit   FullKitSummary
	Notes     []string
}

// CoverageResult wraps coverage rows for a horizon
type CoverageResult struct {
	RunID       string
	HorizonDays int
	AsOf        time.Time
	Rows        []entities.CoverageRow
	AtRisk      int
}
