package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/services"
	"github.com/vsinha/disruption/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()
	now := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)

	snap := buildBikeNetwork(now)

	estimator, err := services.NewDistanceEstimator(services.GroundSpeedKmh)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	planner, err := recovery.NewPlanner(estimator, recovery.PlannerConfig{})
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	planner.WithClock(func() time.Time { return now })

	// 30 frames lost in a fire at the Turin plant
	event, err := entities.NewShortageEvent("FRAME", 30, "plant_turin")
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	fmt.Println("🔥 Planning recovery for FRAME after losing plant_turin stock...")
	fmt.Println()

	result, err := planner.PlanRecovery(ctx, *event, snap, nil)
	if err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		return
	}

	if err := output.Generate(result, output.Config{Format: output.FormatText, SLATargetPct: 95}); err != nil {
		fmt.Printf("❌ %v\n", err)
	}
}

func buildBikeNetwork(now time.Time) *entities.Snapshot {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	var locations []entities.Location
	for _, l := range []struct {
		id       entities.LocationID
		lat, lon float64
	}{
		{"plant_turin", 45.07, 7.69},
		{"plant_milan", 45.46, 9.19},
		{"plant_genoa", 44.41, 8.93},
		{"dc_venice", 45.44, 12.32},
	} {
		loc, err := entities.NewLocation(l.id, l.lat, l.lon)
		must(err)
		locations = append(locations, *loc)
	}

	var stock []entities.StockRecord
	for _, s := range []struct {
		product  entities.ProductID
		location entities.LocationID
		qty      entities.Quantity
	}{
		{"FRAME", "plant_turin", 50},
		{"FRAME", "plant_milan", 12},
		{"FRAME", "plant_genoa", 4},
	} {
		rec, err := entities.NewStockRecord(s.product, s.location, s.qty)
		must(err)
		stock = append(stock, *rec)
	}

	capability, err := entities.NewProductionCapability("plant_genoa", "FRAME", 36)
	must(err)

	var orders []entities.OrderLine
	for i, o := range []struct {
		customer string
		qty      entities.Quantity
		dest     entities.LocationID
		due      time.Duration
	}{
		{"velo-shop", 10, "dc_venice", 12 * time.Hour},
		{"bike-hub", 8, "dc_venice", 24 * time.Hour},
		{"city-cycles", 6, "plant_milan", 48 * time.Hour},
	} {
		order, err := entities.NewOrderLine(fmt.Sprintf("SO-%d", i+1), o.customer, "FRAME", o.qty, o.dest, now.Add(o.due))
		must(err)
		orders = append(orders, *order)
	}

	return entities.NewSnapshot(stock, locations, orders, []entities.ProductionCapability{*capability}, nil)
}
