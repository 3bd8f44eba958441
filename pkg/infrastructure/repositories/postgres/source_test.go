package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

//go:embed schema.sql
var schemaDDL string

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping postgres source test")
	}

	db, err := Open(url)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSource_LoadSnapshot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// a single connection keeps search_path pinned to the scratch schema
	db.SetMaxOpenConns(1)
	schema := fmt.Sprintf("disruption_test_%d", time.Now().UnixNano())
	setup := []string{
		"CREATE SCHEMA " + schema,
		"SET search_path TO " + schema,
	}
	for _, stmt := range strings.Split(schemaDDL, ";") {
		if strings.TrimSpace(stmt) != "" {
			setup = append(setup, stmt)
		}
	}
	setup = append(setup,
		"INSERT INTO stock VALUES ('BIKE','plant_1',5),('BIKE','plant_1',3)",
		"INSERT INTO locations VALUES ('plant_1',45.07,7.69),('dc_1',NULL,NULL)",
		"INSERT INTO orders VALUES ('SO-1','acme','BIKE',2,'dc_1','2025-06-03T08:00:00Z')",
		"INSERT INTO production_capabilities VALUES ('plant_1','BIKE',24),('plant_2','BIKE',NULL)",
		"INSERT INTO bom_edges VALUES ('BIKE','FRAME',1)",
	)
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	for _, stmt := range setup {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to run %q: %v", stmt, err)
		}
	}

	snap, err := NewSource(db).LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if snap.OnHand("BIKE", "plant_1") != 8 {
		t.Errorf("Expected 8 on hand, got %d", snap.OnHand("BIKE", "plant_1"))
	}
	if loc, ok := snap.Location("dc_1"); !ok || loc.HasCoordinates() {
		t.Errorf("Expected dc_1 without coordinates, got %+v", loc)
	}
	orders := snap.OrdersFor("BIKE")
	if len(orders) != 1 || !orders[0].NeedBy.Equal(time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected one BIKE order due 2025-06-03 08:00 UTC, got %+v", orders)
	}
	supported := 0
	for _, c := range snap.CapabilitiesFor("BIKE") {
		if c.Supported() {
			supported++
		}
	}
	if supported != 1 {
		t.Errorf("Expected 1 supported capability, got %d", supported)
	}
	if len(snap.BomEdges) != 1 {
		t.Errorf("Expected 1 BOM edge, got %d", len(snap.BomEdges))
	}
}

func TestSource_NilDB(t *testing.T) {
	if _, err := NewSource(nil).LoadSnapshot(context.Background()); err == nil {
		t.Error("Expected error for nil db, got nil")
	}
}
