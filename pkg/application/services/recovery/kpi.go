package recovery

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/domain/entities"
)

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ComputeKPI aggregates service level over plan rows. An empty set is 100% on time.
// MissingQty is the quantity left without any feasible source.
func ComputeKPI(rows []entities.PlanRow) entities.KPI {
	kpi := entities.KPI{TotalOrders: len(rows)}
	if len(rows) == 0 {
		kpi.OnTimePct = 100
		return kpi
	}

	onTime := 0
	for _, row := range rows {
		if row.OnTime() {
			onTime++
		}
		if row.Sourced() {
			kpi.RecoveredQty += row.Qty
		} else {
			kpi.NoSourceOrders++
			kpi.MissingQty += row.Qty
		}
	}

	kpi.LateOrders = len(rows) - onTime
	kpi.OnTimePct = Round2(100 * float64(onTime) / float64(len(rows)))
	return kpi
}

// ShortfallKPI is ComputeKPI with MissingQty measured against a declared shortage
func ShortfallKPI(rows []entities.PlanRow, unavailableQty entities.Quantity) entities.KPI {
	kpi := ComputeKPI(rows)
	missing := unavailableQty - kpi.RecoveredQty
	if missing < 0 {
		missing = 0
	}
	kpi.MissingQty = missing
	return kpi
}

// FullKit treats an order as on time only when every one of its lines is on time
func FullKit(rows []entities.PlanRow) dto.FullKitSummary {
	onTimeByOrder := make(map[string]bool)
	for _, row := range rows {
		prev, seen := onTimeByOrder[row.OrderID]
		if !seen {
			prev = true
		}
		onTimeByOrder[row.OrderID] = prev && row.OnTime()
	}

	summary := dto.FullKitSummary{Orders: len(onTimeByOrder), OnTimePct: 100}
	for _, ok := range onTimeByOrder {
		if ok {
			summary.OnTimeOrders++
		}
	}
	if summary.Orders > 0 {
		summary.OnTimePct = Round2(100 * float64(summary.OnTimeOrders) / float64(summary.Orders))
	}
	return summary
}
