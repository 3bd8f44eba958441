package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
)

// PlanColumns is the column order of plan CSV output
var PlanColumns = []string{
	"order_id",
	"customer_id",
	"product_id",
	"qty",
	"destination_location_id",
	"source_location_id",
	"arrival_ts",
	"strategy",
	"lateness_hours",
}

func renderCSV(w io.Writer, result interface{}) error {
	cw := csv.NewWriter(w)

	var records [][]string
	switch r := result.(type) {
	case *dto.PlanResult:
		records = planRecords(r.Rows, false)
	case *dto.ScenarioResult:
		records = planRecords(r.Rows, true)
	case *dto.Recommendation:
		rows := make([]entities.PlanRow, 0, len(r.Actions))
		for _, a := range r.Actions {
			rows = append(rows, a.Row)
		}
		records = planRecords(rows, false)
		records[0] = append(records[0], "action")
		for i, a := range r.Actions {
			records[i+1] = append(records[i+1], a.Action)
		}
	case *dto.CoverageResult:
		records = append(records, []string{"product_id", "demand_in_window", "on_hand", "gap", "risk"})
		for _, c := range r.Rows {
			records = append(records, []string{
				string(c.ProductID),
				formatQty(c.DemandInWindow),
				formatQty(c.OnHand),
				formatQty(c.Gap),
				strconv.FormatBool(c.Risk),
			})
		}
	case *dto.ImpactResult:
		records = append(records, []string{"order_id", "customer_id", "product_id", "qty", "destination_location_id", "need_by_ts"})
		for _, o := range r.Orders {
			records = append(records, []string{
				o.OrderID,
				o.CustomerID,
				string(o.ProductID),
				formatQty(o.Qty),
				string(o.Destination),
				o.NeedBy.UTC().Format(time.RFC3339),
			})
		}
	case *dto.ProductionHint:
		records = append(records, []string{"product_id", "role", "open_orders", "location_id", "lead_time_hours", "defaulted"})
		records = append(records, siteRecord(string(r.Component), "component", "", r.ComponentSite))
		for _, p := range r.Parents {
			records = append(records, siteRecord(string(p.Parent), "parent", strconv.Itoa(p.OpenOrders), p.Best))
		}
	case []entities.ProductID:
		records = append(records, []string{"product_id"})
		for _, id := range r {
			records = append(records, []string{string(id)})
		}
	case []entities.LocationID:
		records = append(records, []string{"location_id"})
		for _, id := range r {
			records = append(records, []string{string(id)})
		}
	default:
		return fmt.Errorf("unsupported result type %T", result)
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func planRecords(rows []entities.PlanRow, scenario bool) [][]string {
	header := append([]string(nil), PlanColumns...)
	if scenario {
		header = append([]string{"scenario_product"}, header...)
	}

	records := [][]string{header}
	for _, row := range rows {
		rec := []string{
			row.OrderID,
			row.CustomerID,
			string(row.ProductID),
			formatQty(row.Qty),
			string(row.Destination),
			string(row.Source),
			formatArrival(row.Arrival),
			row.Strategy.String(),
			FormatLateness(row.LatenessHours),
		}
		if scenario {
			rec = append([]string{string(row.ScenarioProduct)}, rec...)
		}
		records = append(records, rec)
	}
	return records
}

func siteRecord(product, role, openOrders string, site *dto.SiteOption) []string {
	v := toSiteView(site)
	return []string{
		product,
		role,
		openOrders,
		v.Location,
		strconv.FormatFloat(v.LeadTimeHours, 'f', -1, 64),
		strconv.FormatBool(v.Defaulted),
	}
}

// FormatLateness renders lateness rounded to two decimals, or "inf" for a
// line without a source
func FormatLateness(hours float64) string {
	if math.IsInf(hours, 1) {
		return "inf"
	}
	return strconv.FormatFloat(recovery.Round2(hours), 'f', -1, 64)
}

func formatArrival(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatQty(q entities.Quantity) string {
	return strconv.FormatInt(int64(q), 10)
}
