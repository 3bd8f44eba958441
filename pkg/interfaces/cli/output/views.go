package output

import (
	"math"
	"time"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
)

// rowView is the serialized form of a plan row. Lateness and distance are
// null when the line has no source.
type rowView struct {
	ScenarioProduct string     `json:"scenario_product,omitempty"`
	OrderID         string     `json:"order_id"`
	CustomerID      string     `json:"customer_id"`
	ProductID       string     `json:"product_id"`
	Qty             int64      `json:"qty"`
	Destination     string     `json:"destination_location_id"`
	Source          string     `json:"source_location_id"`
	Arrival         *time.Time `json:"arrival_ts"`
	Strategy        string     `json:"strategy"`
	LatenessHours   *float64   `json:"lateness_hours"`
	DistanceKm      *float64   `json:"distance_km"`
	NeedBy          time.Time  `json:"need_by_ts"`
}

type kpiView struct {
	OnTimePct      float64 `json:"on_time_pct"`
	LateOrders     int     `json:"late_orders"`
	TotalOrders    int     `json:"total_orders"`
	NoSourceOrders int     `json:"no_source_orders"`
	RecoveredQty   int64   `json:"recovered_qty"`
	MissingQty     int64   `json:"missing_qty"`
}

type fullKitView struct {
	Orders       int     `json:"orders"`
	OnTimeOrders int     `json:"on_time_orders"`
	OnTimePct    float64 `json:"on_time_orders_pct"`
}

type routeView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type planView struct {
	RunID          string      `json:"run_id"`
	ProductID      string      `json:"product_id"`
	UnavailableQty int64       `json:"unavailable_qty"`
	Origin         string      `json:"origin_location_id"`
	Mode           string      `json:"mode"`
	Blocked        []routeView `json:"blocked_routes,omitempty"`
	PlannedAt      time.Time   `json:"planned_at"`
	KPI            kpiView     `json:"kpi"`
	FullKit        fullKitView `json:"full_kit"`
	Rows           []rowView   `json:"rows"`
}

type scenarioView struct {
	RunID     string      `json:"run_id"`
	Code      string      `json:"code,omitempty"`
	Kind      string      `json:"kind"`
	Products  []string    `json:"products"`
	Blocked   []routeView `json:"blocked_routes,omitempty"`
	PlannedAt time.Time   `json:"planned_at"`
	KPI       kpiView     `json:"kpi"`
	FullKit   fullKitView `json:"full_kit"`
	Notes     []string    `json:"notes,omitempty"`
	Rows      []rowView   `json:"rows"`
}

type coverageRowView struct {
	ProductID      string `json:"product_id"`
	DemandInWindow int64  `json:"demand_in_window"`
	OnHand         int64  `json:"on_hand"`
	Gap            int64  `json:"gap"`
	Risk           bool   `json:"risk"`
}

type coverageView struct {
	RunID       string            `json:"run_id"`
	HorizonDays int               `json:"horizon_days"`
	AsOf        time.Time         `json:"as_of"`
	AtRisk      int               `json:"at_risk"`
	Rows        []coverageRowView `json:"rows"`
}

type orderView struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	ProductID   string    `json:"product_id"`
	Qty         int64     `json:"qty"`
	Destination string    `json:"destination_location_id"`
	NeedBy      time.Time `json:"need_by_ts"`
}

type impactView struct {
	Component         string      `json:"component"`
	Products          []string    `json:"products"`
	DistinctCustomers int         `json:"distinct_customers"`
	Orders            []orderView `json:"orders"`
}

type actionView struct {
	Action string  `json:"action"`
	Row    rowView `json:"row"`
}

type groupView struct {
	Strategy    string     `json:"strategy"`
	Source      string     `json:"source_location_id"`
	Lines       int        `json:"lines"`
	TotalQty    int64      `json:"total_qty"`
	EarliestETA *time.Time `json:"earliest_eta"`
}

type recommendationView struct {
	RunID             string       `json:"run_id"`
	SKU               string       `json:"sku"`
	Summary           string       `json:"recommended_action"`
	AffectedCustomers int          `json:"affected_customers"`
	KPI               kpiView      `json:"kpi"`
	FullKit           fullKitView  `json:"full_kit"`
	Groups            []groupView  `json:"by_source"`
	Actions           []actionView `json:"per_order"`
	Notes             []string     `json:"notes,omitempty"`
}

type siteView struct {
	Location      string  `json:"location_id,omitempty"`
	LeadTimeHours float64 `json:"lead_time_hours"`
	Defaulted     bool    `json:"defaulted"`
}

type parentView struct {
	Parent     string   `json:"parent"`
	OpenOrders int      `json:"open_orders"`
	Best       siteView `json:"best_site"`
}

type hintView struct {
	Component     string       `json:"component"`
	ComponentSite siteView     `json:"component_site"`
	Parents       []parentView `json:"parents"`
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	r := recovery.Round2(v)
	return &r
}

func toRowView(row entities.PlanRow) rowView {
	v := rowView{
		ScenarioProduct: string(row.ScenarioProduct),
		OrderID:         row.OrderID,
		CustomerID:      row.CustomerID,
		ProductID:       string(row.ProductID),
		Qty:             int64(row.Qty),
		Destination:     string(row.Destination),
		Source:          string(row.Source),
		Arrival:         row.Arrival,
		Strategy:        row.Strategy.String(),
		LatenessHours:   finiteOrNil(row.LatenessHours),
		NeedBy:          row.NeedBy,
	}
	if row.Sourced() {
		v.DistanceKm = finiteOrNil(row.DistanceKm)
	}
	return v
}

func toRowViews(rows []entities.PlanRow) []rowView {
	out := make([]rowView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRowView(row))
	}
	return out
}

func toKPIView(k entities.KPI) kpiView {
	return kpiView{
		OnTimePct:      k.OnTimePct,
		LateOrders:     k.LateOrders,
		TotalOrders:    k.TotalOrders,
		NoSourceOrders: k.NoSourceOrders,
		RecoveredQty:   int64(k.RecoveredQty),
		MissingQty:     int64(k.MissingQty),
	}
}

func toFullKitView(f dto.FullKitSummary) fullKitView {
	return fullKitView{Orders: f.Orders, OnTimeOrders: f.OnTimeOrders, OnTimePct: f.OnTimePct}
}

func toRouteViews(routes []entities.Route) []routeView {
	if len(routes) == 0 {
		return nil
	}
	out := make([]routeView, 0, len(routes))
	for _, r := range routes {
		out = append(out, routeView{From: string(r.From), To: string(r.To)})
	}
	return out
}

func toStrings[T ~string](ids []T) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func toSiteView(s *dto.SiteOption) siteView {
	if s == nil {
		return siteView{}
	}
	return siteView{Location: string(s.Location), LeadTimeHours: s.LeadTimeHours, Defaulted: s.Defaulted}
}

// view converts a result into its serializable form
func view(result interface{}) (interface{}, bool) {
	switch r := result.(type) {
	case *dto.PlanResult:
		return planView{
			RunID:          r.RunID,
			ProductID:      string(r.Event.ProductID),
			UnavailableQty: int64(r.Event.UnavailableQty),
			Origin:         string(r.Event.Origin),
			Mode:           r.Mode,
			Blocked:        toRouteViews(r.Blocked),
			PlannedAt:      r.PlannedAt,
			KPI:            toKPIView(r.KPI),
			FullKit:        toFullKitView(r.FullKit),
			Rows:           toRowViews(r.Rows),
		}, true

	case *dto.ScenarioResult:
		return scenarioView{
			RunID:     r.RunID,
			Code:      string(r.Code),
			Kind:      string(r.Kind),
			Products:  toStrings(r.Products),
			Blocked:   toRouteViews(r.Blocked),
			PlannedAt: r.PlannedAt,
			KPI:       toKPIView(r.KPI),
			FullKit:   toFullKitView(r.FullKit),
			Notes:     r.Notes,
			Rows:      toRowViews(r.Rows),
		}, true

	case *dto.CoverageResult:
		rows := make([]coverageRowView, 0, len(r.Rows))
		for _, c := range r.Rows {
			rows = append(rows, coverageRowView{
				ProductID:      string(c.ProductID),
				DemandInWindow: int64(c.DemandInWindow),
				OnHand:         int64(c.OnHand),
				Gap:            int64(c.Gap),
				Risk:           c.Risk,
			})
		}
		return coverageView{RunID: r.RunID, HorizonDays: r.HorizonDays, AsOf: r.AsOf, AtRisk: r.AtRisk, Rows: rows}, true

	case *dto.ImpactResult:
		orders := make([]orderView, 0, len(r.Orders))
		for _, o := range r.Orders {
			orders = append(orders, orderView{
				OrderID:     o.OrderID,
				CustomerID:  o.CustomerID,
				ProductID:   string(o.ProductID),
				Qty:         int64(o.Qty),
				Destination: string(o.Destination),
				NeedBy:      o.NeedBy,
			})
		}
		return impactView{
			Component:         string(r.Component),
			Products:          toStrings(r.Products),
			DistinctCustomers: r.DistinctCustomers,
			Orders:            orders,
		}, true

	case *dto.Recommendation:
		actions := make([]actionView, 0, len(r.Actions))
		for _, a := range r.Actions {
			actions = append(actions, actionView{Action: a.Action, Row: toRowView(a.Row)})
		}
		groups := make([]groupView, 0, len(r.Groups))
		for _, g := range r.Groups {
			groups = append(groups, groupView{
				Strategy:    g.Strategy.String(),
				Source:      string(g.Source),
				Lines:       g.Lines,
				TotalQty:    int64(g.TotalQty),
				EarliestETA: g.EarliestETA,
			})
		}
		return recommendationView{
			RunID:             r.RunID,
			SKU:               string(r.SKU),
			Summary:           r.Summary,
			AffectedCustomers: r.AffectedCustomers,
			KPI:               toKPIView(r.KPI),
			FullKit:           toFullKitView(r.FullKit),
			Groups:            groups,
			Actions:           actions,
			Notes:             r.Notes,
		}, true

	case *dto.ProductionHint:
		parents := make([]parentView, 0, len(r.Parents))
		for _, p := range r.Parents {
			parents = append(parents, parentView{Parent: string(p.Parent), OpenOrders: p.OpenOrders, Best: toSiteView(p.Best)})
		}
		return hintView{Component: string(r.Component), ComponentSite: toSiteView(r.ComponentSite), Parents: parents}, true

	case []entities.ProductID:
		return toStrings(r), true

	case []entities.LocationID:
		return toStrings(r), true
	}

	return nil, false
}
