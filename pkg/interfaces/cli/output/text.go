package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/advisor"
	"github.com/vsinha/disruption/pkg/domain/entities"
)

// maxTextRows caps the detail table in text output
const maxTextRows = 50

func renderText(w io.Writer, result interface{}, slaTarget float64) error {
	switch r := result.(type) {
	case *dto.PlanResult:
		fmt.Fprintf(w, "📊 Recovery Plan: %s\n", r.Event.ProductID)
		fmt.Fprintf(w, "======================\n\n")
		fmt.Fprintf(w, "Run: %s\n", r.RunID)
		if r.Event.Origin != "" && r.Event.Origin != entities.NoLocation {
			fmt.Fprintf(w, "Origin excluded: %s\n", r.Event.Origin)
		}
		writeBlocked(w, r.Blocked)
		fmt.Fprintf(w, "Mode: %s\n", r.Mode)
		writeKPI(w, r.KPI, r.FullKit, slaTarget)
		writeRows(w, r.Rows, false)

	case *dto.ScenarioResult:
		title := "Stockout Simulation"
		if r.Kind == dto.ScenarioReroute {
			title = "Reroute Plan"
		}
		fmt.Fprintf(w, "📊 %s: %s (%s)\n", title, r.Code, r.Kind)
		fmt.Fprintf(w, "======================\n\n")
		fmt.Fprintf(w, "Run: %s\n", r.RunID)
		fmt.Fprintf(w, "Products: %s\n", joinIDs(r.Products))
		writeBlocked(w, r.Blocked)
		for _, n := range r.Notes {
			fmt.Fprintf(w, "Note: %s\n", n)
		}
		writeKPI(w, r.KPI, r.FullKit, slaTarget)
		writeRows(w, r.Rows, true)

	case *dto.CoverageResult:
		fmt.Fprintf(w, "📦 Coverage alerts next %d days (as of %s)\n", r.HorizonDays, advisor.FormatETA(r.AsOf))
		fmt.Fprintf(w, "At risk: %d\n\n", r.AtRisk)
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-5s\n", "Product", "Demand", "On Hand", "Gap", "Risk")
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-5s\n",
			"---------------", "----------", "----------", "----------", "-----")
		for _, c := range r.Rows {
			fmt.Fprintf(w, "%-15s %-10d %-10d %-10d %-5t\n", c.ProductID, c.DemandInWindow, c.OnHand, c.Gap, c.Risk)
		}

	case *dto.ImpactResult:
		fmt.Fprintf(w, "⚠️  Impacted orders for %s: %d (customers: %d)\n", r.Component, len(r.Orders), r.DistinctCustomers)
		if len(r.Products) > 0 {
			fmt.Fprintf(w, "Products: %s\n", joinIDs(r.Products))
		}
		fmt.Fprintln(w)
		for _, o := range r.Orders {
			fmt.Fprintf(w, "- Order %s → %s (customer %s). %s x%d due %s\n",
				o.OrderID, o.Destination, o.CustomerID, o.ProductID, o.Qty, advisor.FormatETA(o.NeedBy))
		}

	case *dto.Recommendation:
		fmt.Fprintf(w, "Missing SKU: %s\n", r.SKU)
		fmt.Fprintf(w, "Recommended: %s\n", r.Summary)
		fmt.Fprintf(w, "Affected customers: %d\n", r.AffectedCustomers)
		for _, n := range r.Notes {
			fmt.Fprintf(w, "Note: %s\n", n)
		}
		writeKPI(w, r.KPI, r.FullKit, slaTarget)
		for i, a := range r.Actions {
			if i == maxTextRows {
				fmt.Fprintf(w, "… and %d more.\n", len(r.Actions)-maxTextRows)
				break
			}
			fmt.Fprintf(w, "- Order %s → %s (customer %s). %s\n", a.Row.OrderID, a.Row.Destination, a.Row.CustomerID, a.Action)
		}

	case *dto.ProductionHint:
		fmt.Fprintf(w, "🏭 Production hint for %s\n", r.Component)
		fmt.Fprintf(w, "Component: %s\n", siteText(r.ComponentSite))
		for _, p := range r.Parents {
			fmt.Fprintf(w, "- %s (%d open orders): assemble at %s\n", p.Parent, p.OpenOrders, siteText(p.Best))
		}

	case []entities.ProductID:
		for _, id := range r {
			fmt.Fprintln(w, id)
		}

	case []entities.LocationID:
		for _, id := range r {
			fmt.Fprintln(w, id)
		}

	default:
		return fmt.Errorf("unsupported result type %T", result)
	}
	return nil
}

func writeBlocked(w io.Writer, routes []entities.Route) {
	for _, r := range routes {
		fmt.Fprintf(w, "Blocked lane: %s → %s\n", r.From, r.To)
	}
}

func writeKPI(w io.Writer, kpi entities.KPI, fullKit dto.FullKitSummary, slaTarget float64) {
	fmt.Fprintf(w, "Lines: %d  Late: %d  No source: %d\n", kpi.TotalOrders, kpi.LateOrders, kpi.NoSourceOrders)
	fmt.Fprintf(w, "On-time lines: %.2f%%  Full-kit orders on time: %.2f%% (%d/%d)\n",
		kpi.OnTimePct, fullKit.OnTimePct, fullKit.OnTimeOrders, fullKit.Orders)
	if slaTarget > 0 {
		status := "met"
		if kpi.OnTimePct < slaTarget {
			status = "missed"
		}
		fmt.Fprintf(w, "SLA target %.2f%%: %s\n", slaTarget, status)
	}
	fmt.Fprintf(w, "Recovered qty: %d  Missing qty: %d\n\n", kpi.RecoveredQty, kpi.MissingQty)
}

func writeRows(w io.Writer, rows []entities.PlanRow, scenario bool) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No order lines in scope.")
		return
	}

	prefix := ""
	if scenario {
		prefix = fmt.Sprintf("%-12s ", "Scenario")
	}
	fmt.Fprintf(w, "%s%-10s %-10s %-10s %-6s %-10s %-10s %-18s %-22s %-8s\n", prefix,
		"Order", "Customer", "Product", "Qty", "Dest", "Source", "Strategy", "ETA", "Late(h)")

	for i, row := range rows {
		if i == maxTextRows {
			fmt.Fprintf(w, "… and %d more.\n", len(rows)-maxTextRows)
			return
		}
		eta := "-"
		if row.Arrival != nil {
			eta = advisor.FormatETA(*row.Arrival)
		}
		if scenario {
			fmt.Fprintf(w, "%-12s ", row.ScenarioProduct)
		}
		fmt.Fprintf(w, "%-10s %-10s %-10s %-6d %-10s %-10s %-18s %-22s %-8s\n",
			row.OrderID, row.CustomerID, row.ProductID, row.Qty, row.Destination, row.Source,
			row.Strategy, eta, FormatLateness(row.LatenessHours))
	}
}

func siteText(s *dto.SiteOption) string {
	if s == nil {
		return "unknown"
	}
	loc := string(s.Location)
	if loc == "" {
		loc = "any site"
	}
	if s.Defaulted {
		return fmt.Sprintf("%s (LT≈%.0fh, default)", loc, s.LeadTimeHours)
	}
	return fmt.Sprintf("%s (LT≈%.0fh)", loc, s.LeadTimeHours)
}

func joinIDs(ids []entities.ProductID) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(toStrings(ids), ", ")
}
