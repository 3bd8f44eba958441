package dto

import (
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// OrderAction is a human readable next step for one order line
type OrderAction struct {
	Row    entities.PlanRow
	Action string
}

// ActionGroup aggregates order actions sharing a strategy and source
type ActionGroup struct {
	Strategy    entities.Strategy
	Source      entities.LocationID
	Lines       int
	EarliestETA *time.Time
	TotalQty    entities.Quantity
}

// Recommendation is the advisor's answer for one SKU
type Recommendation struct {
	RunID             string
	SKU               entities.ProductID
	Summary           string
	Top               *OrderAction
	Actions           []OrderAction
	Groups            []ActionGroup
	KPI               entities.KPI
	FullKit           FullKitSummary
	AffectedCustomers int
	Notes             []string
}

// SiteOption is one production location with its lead time
type SiteOption struct {
	Location      entities.LocationID
	LeadTimeHours float64
	Defaulted     bool
}

// ParentAssembly suggests where to assemble a parent product that uses a component
type ParentAssembly struct {
	Parent     entities.ProductID
	OpenOrders int
	Best       *SiteOption
}

// ProductionHint tells where a component and its parents can be produced fastest
type ProductionHint struct {
	Component          entities.ProductID
	ComponentSite      *SiteOption
	Parents            []ParentAssembly
	DefaultLeadTimeHrs float64
}
