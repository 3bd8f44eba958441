package coverage

import (
	"fmt"
	"sort"
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// CoverageAlerts compares demand due in [now, now+horizonDays] with total
// on-hand per product. Products with demand but no stock rows get on-hand 0.
// Rows are sorted by gap ascending, then product id.
func CoverageAlerts(
	stock []entities.StockRecord,
	orders []entities.OrderLine,
	horizonDays int,
	now time.Time,
) ([]entities.CoverageRow, error) {
	if horizonDays < 1 {
		return nil, fmt.Errorf("horizon must be at least 1 day, got %d", horizonDays)
	}

	end := now.Add(time.Duration(horizonDays) * 24 * time.Hour)

	demand := make(map[entities.ProductID]entities.Quantity)
	for _, o := range orders {
		if o.NeedBy.Before(now) || o.NeedBy.After(end) {
			continue
		}
		demand[o.ProductID] += o.Qty
	}

	onHand := make(map[entities.ProductID]entities.Quantity)
	for _, s := range stock {
		onHand[s.ProductID] += s.OnHand
	}

	rows := make([]entities.CoverageRow, 0, len(demand))
	for product, qty := range demand {
		gap := onHand[product] - qty
		rows = append(rows, entities.CoverageRow{
			ProductID:      product,
			DemandInWindow: qty,
			OnHand:         onHand[product],
			Gap:            gap,
			Risk:           gap < 0,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gap != rows[j].Gap {
			return rows[i].Gap < rows[j].Gap
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return rows, nil
}

// RiskOnly keeps the rows flagged at risk
func RiskOnly(rows []entities.CoverageRow) []entities.CoverageRow {
	risky := make([]entities.CoverageRow, 0)
	for _, r := range rows {
		if r.Risk {
			risky = append(risky, r)
		}
	}
	return risky
}
