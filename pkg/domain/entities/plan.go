package entities

import (
	"math"
	"time"
)

// Strategy is the fulfilment option chosen for an order line
type Strategy int

const (
	NoSource Strategy = iota
	StockNow
	ProduceThenShip
)

// String method for Strategy enum
func (s Strategy) String() string {
	switch s {
	case StockNow:
		return "stock-now"
	case ProduceThenShip:
		return "produce-then-ship"
	case NoSource:
		return "no-source"
	default:
		return "unknown"
	}
}

// PlanRow is the engine's decision for one order line.
// Rows without a feasible source keep Source = NoLocation, a nil Arrival
// and an infinite LatenessHours.
type PlanRow struct {
	OrderID         string
	CustomerID      string
	ProductID       ProductID
	Qty             Quantity
	Destination     LocationID
	NeedBy          time.Time
	Source          LocationID
	Arrival         *time.Time
	Strategy        Strategy
	LatenessHours   float64
	DistanceKm      float64
	ScenarioProduct ProductID
}

// Sourced reports whether the row has a feasible source
func (r PlanRow) Sourced() bool {
	return r.Strategy != NoSource && r.Arrival != nil
}

// OnTime reports whether the row arrives no later than its deadline
func (r PlanRow) OnTime() bool {
	return r.Sourced() && r.LatenessHours <= 0
}

// UnsourcedLateness is the in-band lateness of a row with no source
func UnsourcedLateness() float64 {
	return math.Inf(1)
}

// KPI summarises service level over a set of plan rows
type KPI struct {
	OnTimePct      float64
	LateOrders     int
	TotalOrders    int
	NoSourceOrders int
	RecoveredQty   Quantity
	MissingQty     Quantity
}
