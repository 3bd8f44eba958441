package orchestration

import (
	"context"
	"testing"
	"time"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/services"
	"github.com/vsinha/disruption/pkg/infrastructure/events"
	"github.com/vsinha/disruption/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/disruption/pkg/infrastructure/testing"
)

func newTestResponder(t *testing.T, snap *entities.Snapshot) (*Responder, *events.InMemoryEventStore) {
	t.Helper()
	est, err := services.NewDistanceEstimator(services.GroundSpeedKmh)
	if err != nil {
		t.Fatalf("Failed to create estimator: %v", err)
	}
	planner, err := recovery.NewPlanner(est, recovery.PlannerConfig{Workers: 2})
	if err != nil {
		t.Fatalf("Failed to create planner: %v", err)
	}
	planner.WithClock(func() time.Time { return testhelpers.BaseTime })

	session, err := memory.NewSession(context.Background(), memory.NewStaticSource(snap))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	store := events.NewInMemoryEventStore()
	responder, err := NewResponder(session, planner, store)
	if err != nil {
		t.Fatalf("Failed to create responder: %v", err)
	}
	return responder, store
}

func eventTypes(t *testing.T, store events.EventStore, runID string) []string {
	t.Helper()
	evts, err := store.ReadEvents(runID, 1)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	types := make([]string, 0, len(evts))
	for _, e := range evts {
		types = append(types, e.Type())
	}
	return types
}

func TestNewResponder_Validation(t *testing.T) {
	if _, err := NewResponder(nil, nil, nil); err == nil {
		t.Error("Expected error for nil session, got nil")
	}
}

func TestResponder_PlanRecovery(t *testing.T) {
	responder, store := newTestResponder(t, testhelpers.BuildNetworkTestData())

	event := entities.ShortageEvent{ProductID: "BIKE", UnavailableQty: entities.UnboundedShortage}
	result, err := responder.PlanRecovery(context.Background(), event, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.RunID == "" {
		t.Fatal("Expected run id on result")
	}
	if len(result.Rows) != 3 {
		t.Errorf("Expected 3 BIKE rows, got %d", len(result.Rows))
	}

	types := eventTypes(t, store, result.RunID)
	if len(types) == 0 || types[0] != events.PlanComputedEvent {
		t.Errorf("Expected first event %s, got %v", events.PlanComputedEvent, types)
	}
}

func TestResponder_UnsourcedLinesEmitEvents(t *testing.T) {
	snap := testhelpers.NewSnapshotBuilder().
		Location("L1", 45.0, 7.0).
		Order("O1", "c1", "Z", 4, "L1", 24*time.Hour).
		Order("O2", "c2", "Z", 2, "L1", 48*time.Hour).
		Build()
	responder, store := newTestResponder(t, snap)

	var seen []string
	handler := &events.HandlerFunc{
		Types: []string{events.LineUnsourcedEvent},
		Fn: func(e events.Event) error {
			seen = append(seen, e.Data().(events.LineUnsourced).OrderID)
			return nil
		},
	}
	if err := store.Subscribe(handler.Types, handler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	event := entities.ShortageEvent{ProductID: "Z", UnavailableQty: 6}
	result, err := responder.PlanRecovery(context.Background(), event, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.KPI.NoSourceOrders != 2 {
		t.Errorf("Expected 2 no-source lines, got %d", result.KPI.NoSourceOrders)
	}
	if len(seen) != 2 || seen[0] != "O1" || seen[1] != "O2" {
		t.Errorf("Expected unsourced events for O1 and O2, got %v", seen)
	}
}

func TestResponder_SimulateStockout(t *testing.T) {
	responder, store := newTestResponder(t, testhelpers.BuildNetworkTestData())

	result, err := responder.SimulateStockout(context.Background(), "TUBE")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Kind != dto.ScenarioComponent {
		t.Errorf("Expected component scenario, got %s", result.Kind)
	}
	for _, row := range result.Rows {
		if row.ScenarioProduct == "" {
			t.Errorf("Expected scenario product on row %s", row.OrderID)
		}
	}

	types := eventTypes(t, store, result.RunID)
	if len(types) == 0 || types[0] != events.StockoutSimulatedEvent {
		t.Errorf("Expected first event %s, got %v", events.StockoutSimulatedEvent, types)
	}

	unknown, err := responder.SimulateStockout(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if unknown.Kind != dto.ScenarioUnknown || len(unknown.Notes) == 0 {
		t.Errorf("Expected unknown scenario with a note, got %s %v", unknown.Kind, unknown.Notes)
	}
	if unknown.RunID == result.RunID {
		t.Error("Expected each call to get its own run id")
	}
}

func TestResponder_RerouteBlock(t *testing.T) {
	responder, _ := newTestResponder(t, testhelpers.BuildNetworkTestData())

	result, err := responder.RerouteBlock(context.Background(), "plant_1", "dc_1", "BIKE")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, row := range result.Rows {
		if row.Destination == "dc_1" && row.Source == "plant_1" {
			t.Errorf("Expected blocked lane plant_1->dc_1 unused, got row %s", row.OrderID)
		}
	}

	if _, err := responder.RerouteBlock(context.Background(), "", "dc_1", ""); err == nil {
		t.Error("Expected error for empty origin, got nil")
	}
}

func TestResponder_Coverage(t *testing.T) {
	snap := testhelpers.NewSnapshotBuilder().
		Location("L1", 45.0, 7.0).
		Stock("A", "L1", 5).
		Stock("B", "L1", 50).
		Order("O1", "c1", "A", 10, "L1", 24*time.Hour).
		Order("O2", "c1", "B", 10, "L1", 48*time.Hour).
		Build()
	responder, store := newTestResponder(t, snap)

	result, err := responder.Coverage(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Rows) != 2 || result.AtRisk != 1 {
		t.Errorf("Expected 2 rows with 1 at risk, got %d rows %d at risk", len(result.Rows), result.AtRisk)
	}
	if result.Rows[0].ProductID != "A" || result.Rows[0].Gap != -5 {
		t.Errorf("Expected A first with gap -5, got %+v", result.Rows[0])
	}

	riskOnly, err := responder.Coverage(context.Background(), 7, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(riskOnly.Rows) != 1 {
		t.Errorf("Expected 1 at-risk row, got %d", len(riskOnly.Rows))
	}

	types := eventTypes(t, store, result.RunID)
	if len(types) != 1 || types[0] != events.CoverageComputedEvent {
		t.Errorf("Expected single %s event, got %v", events.CoverageComputedEvent, types)
	}

	if _, err := responder.Coverage(context.Background(), 0, false); err == nil {
		t.Error("Expected error for zero horizon, got nil")
	}
}

func TestResponder_RecommendAndLookups(t *testing.T) {
	responder, _ := newTestResponder(t, testhelpers.BuildNetworkTestData())

	rec, err := responder.RecommendAction(context.Background(), "BIKE")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.Top == nil || rec.Summary == "" {
		t.Errorf("Expected a top recommendation with summary, got %+v", rec)
	}

	hint := responder.ProductionHint(context.Background(), "FRAME")
	if hint.ComponentSite == nil || hint.ComponentSite.Location != "plant_1" {
		t.Errorf("Expected FRAME produced at plant_1, got %+v", hint.ComponentSite)
	}

	skus := responder.ListSKUs()
	if len(skus) == 0 {
		t.Error("Expected SKUs that are both ordered and stocked")
	}

	locations := responder.LocationsForSKU("BIKE")
	if len(locations) != 3 {
		t.Errorf("Expected 3 BIKE locations, got %v", locations)
	}

	impacted := responder.ImpactByComponent(context.Background(), "TUBE")
	if len(impacted.Products) != 3 {
		t.Errorf("Expected 3 products above TUBE, got %v", impacted.Products)
	}
	bySKU := responder.ImpactBySKU(context.Background(), "BIKE")
	if len(bySKU.Orders) != 3 {
		t.Errorf("Expected 3 BIKE orders, got %d", len(bySKU.Orders))
	}
}

func TestResponder_Refresh(t *testing.T) {
	responder, store := newTestResponder(t, testhelpers.BuildSimpleTestData())

	if err := responder.Refresh(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	all, err := store.ReadAllEvents(0)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	if len(all) != 1 || all[0].Type() != events.SnapshotRefreshedEvent {
		t.Errorf("Expected one %s event, got %d events", events.SnapshotRefreshedEvent, len(all))
	}
}
