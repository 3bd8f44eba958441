package advisor

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/services"
	testhelpers "github.com/vsinha/disruption/pkg/infrastructure/testing"
)

func newTestAdvisor(t *testing.T) *Advisor {
	t.Helper()
	est, _ := services.NewDistanceEstimator(services.GroundSpeedKmh)
	planner, err := recovery.NewPlanner(est, recovery.PlannerConfig{})
	if err != nil {
		t.Fatalf("Failed to create planner: %v", err)
	}
	planner.WithClock(func() time.Time { return testhelpers.BaseTime })
	return NewAdvisor(planner)
}

func TestRecommendAction_ShipFromStock(t *testing.T) {
	advisor := newTestAdvisor(t)
	snap := testhelpers.BuildNetworkTestData()

	rec, err := advisor.RecommendAction(context.Background(), "BIKE", snap)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(rec.Actions) != 3 {
		t.Fatalf("Expected 3 actions, got %d", len(rec.Actions))
	}
	if rec.Top == nil || rec.Top.Row.OrderID != "SO-2" {
		t.Fatalf("Expected SO-2 as top pick, got %+v", rec.Top)
	}
	if !strings.HasPrefix(rec.Summary, "Ship now from plant_1 for earliest ETA") {
		t.Errorf("Unexpected summary: %s", rec.Summary)
	}
	for _, a := range rec.Actions {
		if !strings.HasPrefix(a.Action, "Ship now from ") {
			t.Errorf("Expected ship action for %s, got %s", a.Row.OrderID, a.Action)
		}
	}

	if len(rec.Groups) != 2 {
		t.Fatalf("Expected 2 source groups, got %d", len(rec.Groups))
	}
	if rec.Groups[0].Source != "plant_1" || rec.Groups[0].Lines != 2 || rec.Groups[0].TotalQty != 18 {
		t.Errorf("Expected plant_1 with 2 lines / 18 units first, got %+v", rec.Groups[0])
	}
	if rec.Groups[1].Source != "plant_2" || rec.Groups[1].Lines != 1 {
		t.Errorf("Expected plant_2 with 1 line second, got %+v", rec.Groups[1])
	}
	if rec.AffectedCustomers != 2 {
		t.Errorf("Expected 2 affected customers, got %d", rec.AffectedCustomers)
	}
}

func TestRecommendAction_ProduceAndNoSource(t *testing.T) {
	advisor := newTestAdvisor(t)
	snap := testhelpers.NewSnapshotBuilder().
		Location("L2", 0, 1).
		Location("L3", 0, 0).
		Capability("L3", "P", 47.6).
		Order("O1", "C1", "P", 5, "L2", 10*time.Hour).
		Order("O2", "C2", "P", 5, "NOWHERE", 10*time.Hour).
		Build()

	rec, err := advisor.RecommendAction(context.Background(), "P", snap)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(rec.Actions[0].Action, "Produce at L3 (LT≈48h) then ship · ETA ") {
		t.Errorf("Unexpected produce action: %s", rec.Actions[0].Action)
	}
	if rec.Actions[1].Action != "No feasible source. Inform customer of delay." {
		t.Errorf("Unexpected no-source action: %s", rec.Actions[1].Action)
	}
	if !strings.HasPrefix(rec.Summary, "Produce at L3 (LT≈48h) then ship. Earliest ETA ") {
		t.Errorf("Unexpected summary: %s", rec.Summary)
	}
	if len(rec.Groups) != 1 || rec.Groups[0].Strategy != entities.ProduceThenShip {
		t.Errorf("Expected a single produce group, got %+v", rec.Groups)
	}
}

func TestRecommendAction_NothingFeasible(t *testing.T) {
	advisor := newTestAdvisor(t)
	snap := testhelpers.NewSnapshotBuilder().
		Location("L2", 0, 1).
		Order("O1", "C1", "P", 5, "L2", 10*time.Hour).
		Build()

	rec, err := advisor.RecommendAction(context.Background(), "P", snap)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Top != nil {
		t.Errorf("Expected no top pick, got %+v", rec.Top)
	}
	if rec.Summary != "No feasible plant. Inform customers of delay." {
		t.Errorf("Unexpected summary: %s", rec.Summary)
	}
}

func TestRecommendAction_NoOrders(t *testing.T) {
	advisor := newTestAdvisor(t)

	rec, err := advisor.RecommendAction(context.Background(), "TUBE", testhelpers.BuildNetworkTestData())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rec.Actions) != 0 || len(rec.Notes) == 0 {
		t.Errorf("Expected no actions and a note, got %d actions", len(rec.Actions))
	}

	if _, err := advisor.RecommendAction(context.Background(), "", testhelpers.BuildNetworkTestData()); err == nil {
		t.Error("Expected error for empty sku")
	}
}

func TestComponentProductionHint(t *testing.T) {
	snap := testhelpers.BuildNetworkTestData()

	hint := ComponentProductionHint("TUBE", snap)

	if hint.ComponentSite.Location != "plant_1" || hint.ComponentSite.LeadTimeHours != 6 {
		t.Errorf("Expected TUBE at plant_1 in 6h, got %+v", hint.ComponentSite)
	}
	expected := map[entities.ProductID]entities.LocationID{
		"BIKE":  "plant_3",
		"FRAME": "plant_1",
		"WHEEL": "plant_2",
	}
	if len(hint.Parents) != len(expected) {
		t.Fatalf("Expected %d parents, got %d", len(expected), len(hint.Parents))
	}
	for _, p := range hint.Parents {
		if p.Best.Location != expected[p.Parent] {
			t.Errorf("Expected %s assembled at %s, got %s", p.Parent, expected[p.Parent], p.Best.Location)
		}
	}

	spoke := ComponentProductionHint("SPOKE", snap)
	if !spoke.ComponentSite.Defaulted || spoke.ComponentSite.LeadTimeHours != DefaultLeadTimeHours {
		t.Errorf("Expected defaulted 72h for SPOKE, got %+v", spoke.ComponentSite)
	}
}

func TestListSKUsAndLocations(t *testing.T) {
	snap := testhelpers.BuildNetworkTestData()

	skus := ListSKUs(snap)
	if !reflect.DeepEqual(skus, []entities.ProductID{"BIKE", "FRAME", "WHEEL"}) {
		t.Errorf("Expected [BIKE FRAME WHEEL], got %v", skus)
	}

	locs := LocationsForSKU("BIKE", snap)
	if !reflect.DeepEqual(locs, []entities.LocationID{"plant_1", "plant_2", "plant_9"}) {
		t.Errorf("Expected [plant_1 plant_2 plant_9], got %v", locs)
	}
	if len(LocationsForSKU("NOPE", snap)) != 0 {
		t.Error("Expected no locations for unknown sku")
	}
}
