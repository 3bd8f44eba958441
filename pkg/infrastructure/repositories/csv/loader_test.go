package csv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

var fixedNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func newTestLoader() *Loader {
	return NewLoader(DefaultSchema()).WithClock(func() time.Time { return fixedNow })
}

func TestLoadStock_AliasesAndDuplicates(t *testing.T) {
	data := " SKU ,Plant,Stock\nBIKE,plant_1,5\nBIKE,plant_1,7\nFRAME,plant_2,3.0\nWHEEL,plant_3,\n"

	stock, err := newTestLoader().LoadStock(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := make(map[string]entities.Quantity)
	for _, s := range stock {
		got[string(s.ProductID)+"|"+string(s.LocationID)] = s.OnHand
	}

	if len(stock) != 3 {
		t.Fatalf("Expected 3 merged stock rows, got %d", len(stock))
	}
	if got["BIKE|plant_1"] != 12 {
		t.Errorf("Expected duplicate rows summed to 12, got %d", got["BIKE|plant_1"])
	}
	if got["FRAME|plant_2"] != 3 {
		t.Errorf("Expected integral decimal parsed as 3, got %d", got["FRAME|plant_2"])
	}
	if got["WHEEL|plant_3"] != 0 {
		t.Errorf("Expected blank on-hand to be 0, got %d", got["WHEEL|plant_3"])
	}
}

func TestLoadStock_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"negative on hand", "sku,loc_id,on_hand\nBIKE,plant_1,-1\n"},
		{"fractional on hand", "sku,loc_id,on_hand\nBIKE,plant_1,1.5\n"},
		{"empty product", "sku,loc_id,on_hand\n,plant_1,4\n"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newTestLoader().LoadStock(strings.NewReader(tt.data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestResolve_SchemaError(t *testing.T) {
	_, err := newTestLoader().LoadStock(strings.NewReader("warehouse,count\nplant_1,5\n"))

	var schemaErr *entities.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}
	if schemaErr.Table != "stock" {
		t.Errorf("Expected table stock, got %s", schemaErr.Table)
	}
	want := []string{FieldLocationID, FieldOnHand, FieldProductID}
	if strings.Join(schemaErr.Missing, ",") != strings.Join(want, ",") {
		t.Errorf("Expected missing %v, got %v", want, schemaErr.Missing)
	}
}

func TestLoadLocations_MissingCoordinates(t *testing.T) {
	data := "loc_id,lat,lon\nplant_1,45.07,7.69\nplant_2,,9.19\nplant_3,n/a,8.93\n"

	locations, err := newTestLoader().LoadLocations(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(locations) != 3 {
		t.Fatalf("Expected 3 locations, got %d", len(locations))
	}
	if !locations[0].HasCoordinates() {
		t.Error("Expected plant_1 to have coordinates")
	}
	if locations[1].HasCoordinates() || locations[2].HasCoordinates() {
		t.Error("Expected plant_2 and plant_3 to have nil coordinates")
	}

	if _, err := newTestLoader().LoadLocations(strings.NewReader("loc_id,lat,lon\nplant_1,95,7\n")); err == nil {
		t.Error("Expected error for out-of-range latitude, got nil")
	}
}

func TestLoadOrders(t *testing.T) {
	t.Run("full columns", func(t *testing.T) {
		data := "order_id,customer_id,sku,qty,dest_loc_id,need_by_ts_utc\n" +
			"SO-1,acme,BIKE,10,dc_1,2025-06-03T08:00:00Z\n" +
			"SO-2,globex,BIKE,4,dc_1,2025-06-04 10:30:00\n" +
			"SO-3,globex,FRAME,2,dc_1,2025-06-05\n"

		orders, err := newTestLoader().LoadOrders(strings.NewReader(data))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(orders) != 3 {
			t.Fatalf("Expected 3 orders, got %d", len(orders))
		}

		want := []time.Time{
			time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 4, 10, 30, 0, 0, time.UTC),
			time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		}
		for i, o := range orders {
			if !o.NeedBy.Equal(want[i]) {
				t.Errorf("Expected order %s need-by %v, got %v", o.OrderID, want[i], o.NeedBy)
			}
		}
	})

	t.Run("optional columns absent", func(t *testing.T) {
		data := "product,quantity,destination\nBIKE,3,dc_1\n"

		orders, err := newTestLoader().LoadOrders(strings.NewReader(data))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		o := orders[0]
		if o.OrderID != "0" {
			t.Errorf("Expected row-number order id 0, got %s", o.OrderID)
		}
		if o.CustomerID != "dc_1" {
			t.Errorf("Expected customer to default to destination, got %s", o.CustomerID)
		}
		if !o.NeedBy.Equal(fixedNow.Add(DefaultNeedByOffset)) {
			t.Errorf("Expected default need-by %v, got %v", fixedNow.Add(DefaultNeedByOffset), o.NeedBy)
		}
	})

	t.Run("substring need-by header", func(t *testing.T) {
		data := "sku,qty,dest,requested_delivery\nBIKE,1,dc_1,2025-07-01\n"

		orders, err := newTestLoader().LoadOrders(strings.NewReader(data))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !orders[0].NeedBy.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected need-by 2025-07-01, got %v", orders[0].NeedBy)
		}
	})

	t.Run("quantity required", func(t *testing.T) {
		if _, err := newTestLoader().LoadOrders(strings.NewReader("sku,dest\nBIKE,dc_1\n")); err == nil {
			t.Error("Expected schema error for missing quantity column, got nil")
		}
		if _, err := newTestLoader().LoadOrders(strings.NewReader("sku,qty,dest\nBIKE,,dc_1\n")); err == nil {
			t.Error("Expected error for blank quantity, got nil")
		}
		if _, err := newTestLoader().LoadOrders(strings.NewReader("sku,qty,dest\nBIKE,0,dc_1\n")); err == nil {
			t.Error("Expected error for zero quantity, got nil")
		}
	})

	t.Run("bad timestamp", func(t *testing.T) {
		if _, err := newTestLoader().LoadOrders(strings.NewReader("sku,qty,dest,due_date\nBIKE,1,dc_1,tomorrow\n")); err == nil {
			t.Error("Expected error for unparsable timestamp, got nil")
		}
	})
}

func TestLoadCapabilities(t *testing.T) {
	data := "plant,material,lead_time_h\nplant_1,BIKE,48\nplant_2,BIKE,\n"

	caps, err := newTestLoader().LoadCapabilities(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(caps) != 2 {
		t.Fatalf("Expected 2 capabilities, got %d", len(caps))
	}
	if !caps[0].Supported() || *caps[0].LeadTimeHours != 48 {
		t.Errorf("Expected plant_1 supported at 48h, got %+v", caps[0])
	}
	if caps[1].Supported() {
		t.Error("Expected empty lead time to be unsupported")
	}
}

func TestLoadBom(t *testing.T) {
	data := "material,component,qty_per\nBIKE,FRAME,1\nBIKE,WHEEL,2\nFRAME,TUBE,\n"

	edges, err := newTestLoader().LoadBom(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("Expected 3 edges, got %d", len(edges))
	}
	if edges[1].Parent != "BIKE" || edges[1].Child != "WHEEL" || edges[1].UsageQty != 2 {
		t.Errorf("Expected BIKE->WHEEL x2, got %+v", edges[1])
	}
	if edges[2].UsageQty != 1 {
		t.Errorf("Expected default usage 1, got %d", edges[2].UsageQty)
	}
}

func TestSchemaOverrides(t *testing.T) {
	schema, err := DefaultSchema().WithOverrides(map[string]map[string][]string{
		"stock": {FieldOnHand: {"Free_Qty"}},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stock, err := NewLoader(schema).LoadStock(strings.NewReader("sku,loc_id,free_qty\nBIKE,plant_1,9\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stock[0].OnHand != 9 {
		t.Errorf("Expected 9 on hand via override alias, got %d", stock[0].OnHand)
	}

	if len(DefaultSchema().Stock.Fields[2].Aliases) == 1 {
		t.Error("Expected overrides not to leak into the default schema")
	}

	if _, err := DefaultSchema().WithOverrides(map[string]map[string][]string{"routes": {}}); err == nil {
		t.Error("Expected error for unknown table, got nil")
	}
	if _, err := DefaultSchema().WithOverrides(map[string]map[string][]string{"stock": {"bin": {"x"}}}); err == nil {
		t.Error("Expected error for unknown field, got nil")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestSource_LoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	files := DefaultFiles()
	writeFile(t, dir, files.Stock, "sku,loc_id,on_hand\nBIKE,plant_1,5\nBIKE,plant_1,5\n")
	writeFile(t, dir, files.Locations, "loc_id,lat,lon\nplant_1,45.07,7.69\ndc_1,45.44,12.32\n")
	writeFile(t, dir, files.Orders, "order_id,customer_id,sku,qty,dest_loc_id,need_by_ts_utc\nSO-1,acme,BIKE,2,dc_1,2025-06-03T08:00:00Z\n")
	writeFile(t, dir, files.Capabilities, "loc_id,sku,lead_time_h\nplant_1,BIKE,24\n")

	src := NewSource(dir, files, DefaultSchema()).WithClock(func() time.Time { return fixedNow })

	t.Run("bom optional", func(t *testing.T) {
		snap, err := src.LoadSnapshot(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if snap.OnHand("BIKE", "plant_1") != 10 {
			t.Errorf("Expected 10 on hand, got %d", snap.OnHand("BIKE", "plant_1"))
		}
		if len(snap.BomEdges) != 0 {
			t.Errorf("Expected no BOM edges, got %d", len(snap.BomEdges))
		}
		if len(snap.OrdersFor("BIKE")) != 1 {
			t.Errorf("Expected 1 BIKE order, got %d", len(snap.OrdersFor("BIKE")))
		}
	})

	t.Run("bom present", func(t *testing.T) {
		writeFile(t, dir, files.Bom, "material,component\nBIKE,FRAME\n")
		snap, err := src.LoadSnapshot(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(snap.BomEdges) != 1 {
			t.Errorf("Expected 1 BOM edge, got %d", len(snap.BomEdges))
		}
	})

	t.Run("required file missing", func(t *testing.T) {
		if err := os.Remove(filepath.Join(dir, files.Orders)); err != nil {
			t.Fatalf("Failed to remove orders: %v", err)
		}
		if _, err := src.LoadSnapshot(context.Background()); err == nil {
			t.Error("Expected error for missing orders file, got nil")
		}
	})
}

func TestSource_SchemaErrorIsWrapped(t *testing.T) {
	dir := t.TempDir()
	files := DefaultFiles()
	writeFile(t, dir, files.Stock, "item,where,count\nBIKE,plant_1,5\n")

	_, err := NewSource(dir, files, DefaultSchema()).LoadSnapshot(context.Background())

	var schemaErr *entities.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected wrapped SchemaError, got %v", err)
	}
}
