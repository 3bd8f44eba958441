package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/disruption/pkg/application/dto"
	"github.com/vsinha/disruption/pkg/domain/entities"
)

var baseTime = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func samplePlan() *dto.PlanResult {
	arrival := baseTime.Add(30 * time.Hour)
	return &dto.PlanResult{
		RunID: "run-1",
		Event: entities.ShortageEvent{ProductID: "P", UnavailableQty: 10, Origin: "L9"},
		Mode:  "independent",
		Rows: []entities.PlanRow{
			{
				OrderID: "O1", CustomerID: "C1", ProductID: "P", Qty: 4, Destination: "L2",
				NeedBy: baseTime.Add(24 * time.Hour), Source: "L1", Arrival: &arrival,
				Strategy: entities.StockNow, LatenessHours: 6.004999, DistanceKm: 111.19,
			},
			{
				OrderID: "O2", CustomerID: "C2", ProductID: "P", Qty: 6, Destination: "L3",
				NeedBy: baseTime.Add(48 * time.Hour), Source: entities.NoLocation,
				Strategy: entities.NoSource, LatenessHours: entities.UnsourcedLateness(),
			},
		},
		KPI:     entities.KPI{OnTimePct: 0, LateOrders: 2, TotalOrders: 2, NoSourceOrders: 1, RecoveredQty: 4, MissingQty: 6},
		FullKit: dto.FullKitSummary{Orders: 2},
	}
}

func TestGenerate_CSVPlanColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(samplePlan(), Config{Format: FormatCSV, Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}

	expectedHeader := "order_id,customer_id,product_id,qty,destination_location_id,source_location_id,arrival_ts,strategy,lateness_hours"
	if strings.Join(records[0], ",") != expectedHeader {
		t.Errorf("Expected header %s, got %s", expectedHeader, strings.Join(records[0], ","))
	}

	first := records[1]
	if first[6] != "2025-06-03T14:00:00Z" {
		t.Errorf("Expected arrival 2025-06-03T14:00:00Z, got %s", first[6])
	}
	if first[7] != "stock-now" {
		t.Errorf("Expected strategy stock-now, got %s", first[7])
	}
	if first[8] != "6" {
		t.Errorf("Expected lateness rounded to 6, got %s", first[8])
	}

	unsourced := records[2]
	if unsourced[5] != "none" || unsourced[6] != "" || unsourced[8] != "inf" {
		t.Errorf("Expected none/empty/inf for unsourced row, got %v", unsourced)
	}
}

func TestGenerate_CSVScenarioPrefix(t *testing.T) {
	plan := samplePlan()
	for i := range plan.Rows {
		plan.Rows[i].ScenarioProduct = "P"
	}
	scenario := &dto.ScenarioResult{Kind: dto.ScenarioComponent, Code: "C", Rows: plan.Rows}

	var buf bytes.Buffer
	if err := Generate(scenario, Config{Format: FormatCSV, Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if records[0][0] != "scenario_product" || records[0][1] != "order_id" {
		t.Errorf("Expected scenario_product prefix, got %v", records[0][:2])
	}
	if records[1][0] != "P" {
		t.Errorf("Expected scenario product P, got %s", records[1][0])
	}
}

func TestGenerate_JSONNullLateness(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(samplePlan(), Config{Format: FormatJSON, Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded struct {
		RunID string `json:"run_id"`
		Rows  []struct {
			Source        string   `json:"source_location_id"`
			LatenessHours *float64 `json:"lateness_hours"`
			DistanceKm    *float64 `json:"distance_km"`
		} `json:"rows"`
		KPI struct {
			MissingQty int64 `json:"missing_qty"`
		} `json:"kpi"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}

	if decoded.RunID != "run-1" {
		t.Errorf("Expected run id run-1, got %s", decoded.RunID)
	}
	if decoded.Rows[0].LatenessHours == nil || *decoded.Rows[0].LatenessHours != 6 {
		t.Errorf("Expected lateness 6 on first row, got %v", decoded.Rows[0].LatenessHours)
	}
	if decoded.Rows[1].LatenessHours != nil || decoded.Rows[1].DistanceKm != nil {
		t.Error("Expected null lateness and distance for unsourced row")
	}
	if decoded.KPI.MissingQty != 6 {
		t.Errorf("Expected missing qty 6, got %d", decoded.KPI.MissingQty)
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(samplePlan(), Config{Format: FormatText, SLATargetPct: 95, Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Recovery Plan: P", "Origin excluded: L9", "No source: 1", "inf", "SLA target 95.00%: missed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q", want)
		}
	}
}

func TestGenerate_Coverage(t *testing.T) {
	result := &dto.CoverageResult{
		HorizonDays: 7,
		AsOf:        baseTime,
		AtRisk:      1,
		Rows: []entities.CoverageRow{
			{ProductID: "A", DemandInWindow: 10, OnHand: 5, Gap: -5, Risk: true},
		},
	}

	var buf bytes.Buffer
	if err := Generate(result, Config{Format: FormatCSV, Out: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "product_id,demand_in_window,on_hand,gap,risk\nA,10,5,-5,true\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestGenerate_OutputDir(t *testing.T) {
	dir := t.TempDir()
	result := &dto.CoverageResult{HorizonDays: 14, AsOf: baseTime}

	if err := Generate(result, Config{Format: FormatJSON, OutputDir: dir}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "coverage_alerts_14d.json")); err != nil {
		t.Errorf("Expected coverage_alerts_14d.json to be written: %v", err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	if err := Generate(samplePlan(), Config{Format: "xml", Out: &bytes.Buffer{}}); err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}
	if err := Generate(42, Config{Format: FormatJSON, Out: &bytes.Buffer{}}); err == nil {
		t.Error("Expected error for unsupported result type, got nil")
	}
}

func TestFormatLateness(t *testing.T) {
	testCases := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{1.005, "1.01"},
		{2.5, "2.5"},
		{entities.UnsourcedLateness(), "inf"},
	}

	for _, tc := range testCases {
		if got := FormatLateness(tc.in); got != tc.expected {
			t.Errorf("Expected FormatLateness(%v) = %s, got %s", tc.in, tc.expected, got)
		}
	}
}
