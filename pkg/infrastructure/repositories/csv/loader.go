package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// DefaultNeedByOffset is added to the load time when an orders table has no
// need-by column or a row leaves it blank.
const DefaultNeedByOffset = 24 * time.Hour

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Loader parses the five snapshot tables from CSV readers
type Loader struct {
	schema Schema
	clock  func() time.Time
}

// NewLoader creates a loader for the given column schema
func NewLoader(schema Schema) *Loader {
	return &Loader{
		schema: schema,
		clock:  time.Now,
	}
}

// WithClock sets the clock used for default need-by timestamps
func (l *Loader) WithClock(clock func() time.Time) *Loader {
	l.clock = clock
	return l
}

// LoadStock reads stock rows. Duplicate (product, location) rows are summed.
func (l *Loader) LoadStock(r io.Reader) ([]entities.StockRecord, error) {
	rows, cols, err := readTable(r, l.schema.Stock)
	if err != nil {
		return nil, err
	}

	var records []entities.StockRecord
	for i, row := range rows {
		qty, err := parseQuantity(cell(row, cols, FieldOnHand), 0)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		rec, err := entities.NewStockRecord(
			entities.ProductID(cell(row, cols, FieldProductID)),
			entities.LocationID(cell(row, cols, FieldLocationID)),
			qty,
		)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		records = append(records, *rec)
	}

	return entities.MergeStock(records), nil
}

// LoadLocations reads location rows. A blank or non-numeric coordinate
// leaves the location without coordinates.
func (l *Loader) LoadLocations(r io.Reader) ([]entities.Location, error) {
	rows, cols, err := readTable(r, l.schema.Locations)
	if err != nil {
		return nil, err
	}

	var locations []entities.Location
	for i, row := range rows {
		id := entities.LocationID(cell(row, cols, FieldLocationID))
		if id == "" {
			return nil, fmt.Errorf("locations CSV row %d: location id cannot be empty", i+2)
		}

		lat, latOK := parseCoordinate(cell(row, cols, FieldLat))
		lon, lonOK := parseCoordinate(cell(row, cols, FieldLon))
		if !latOK || !lonOK {
			locations = append(locations, entities.Location{ID: id})
			continue
		}

		loc, err := entities.NewLocation(id, lat, lon)
		if err != nil {
			return nil, fmt.Errorf("locations CSV row %d: %w", i+2, err)
		}
		locations = append(locations, *loc)
	}

	return locations, nil
}

// LoadOrders reads open order lines. Customer defaults to the destination
// and order id to the row number when those optional columns are absent.
func (l *Loader) LoadOrders(r io.Reader) ([]entities.OrderLine, error) {
	rows, cols, err := readTable(r, l.schema.Orders)
	if err != nil {
		return nil, err
	}

	defaultNeedBy := l.clock().UTC().Add(DefaultNeedByOffset)

	var orders []entities.OrderLine
	for i, row := range rows {
		qty, err := parseQuantity(cell(row, cols, FieldQty), -1)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}

		dest := entities.LocationID(cell(row, cols, FieldDestination))
		customer := cell(row, cols, FieldCustomerID)
		if customer == "" {
			customer = string(dest)
		}
		orderID := cell(row, cols, FieldOrderID)
		if orderID == "" {
			orderID = strconv.Itoa(i)
		}

		needBy := defaultNeedBy
		if raw := cell(row, cols, FieldNeedBy); raw != "" {
			needBy, err = parseTime(raw)
			if err != nil {
				return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
			}
		}

		order, err := entities.NewOrderLine(
			orderID,
			customer,
			entities.ProductID(cell(row, cols, FieldProductID)),
			qty,
			dest,
			needBy,
		)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}
		orders = append(orders, *order)
	}

	return orders, nil
}

// LoadCapabilities reads production capabilities. An empty lead time marks
// the pair as unsupported.
func (l *Loader) LoadCapabilities(r io.Reader) ([]entities.ProductionCapability, error) {
	rows, cols, err := readTable(r, l.schema.Capabilities)
	if err != nil {
		return nil, err
	}

	var caps []entities.ProductionCapability
	for i, row := range rows {
		location := entities.LocationID(cell(row, cols, FieldLocationID))
		product := entities.ProductID(cell(row, cols, FieldProductID))

		raw := cell(row, cols, FieldLeadTime)
		if raw == "" {
			if location == "" || product == "" {
				return nil, fmt.Errorf("capabilities CSV row %d: location and product ids cannot be empty", i+2)
			}
			caps = append(caps, entities.ProductionCapability{LocationID: location, ProductID: product})
			continue
		}

		lead, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(lead) || math.IsInf(lead, 0) {
			return nil, fmt.Errorf("capabilities CSV row %d: invalid lead time %q", i+2, raw)
		}
		c, err := entities.NewProductionCapability(location, product, lead)
		if err != nil {
			return nil, fmt.Errorf("capabilities CSV row %d: %w", i+2, err)
		}
		caps = append(caps, *c)
	}

	return caps, nil
}

// LoadBom reads parent/child edges. Usage defaults to 1.
func (l *Loader) LoadBom(r io.Reader) ([]entities.BomEdge, error) {
	rows, cols, err := readTable(r, l.schema.Bom)
	if err != nil {
		return nil, err
	}

	var edges []entities.BomEdge
	for i, row := range rows {
		usage, err := parseQuantity(cell(row, cols, FieldUsage), 1)
		if err != nil {
			return nil, fmt.Errorf("bom CSV row %d: %w", i+2, err)
		}
		edge, err := entities.NewBomEdge(
			entities.ProductID(cell(row, cols, FieldParent)),
			entities.ProductID(cell(row, cols, FieldChild)),
			usage,
		)
		if err != nil {
			return nil, fmt.Errorf("bom CSV row %d: %w", i+2, err)
		}
		edges = append(edges, *edge)
	}

	return edges, nil
}

func readTable(r io.Reader, schema TableSchema) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s CSV: %w", schema.Table, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s CSV has no header row", schema.Table)
	}

	cols, err := schema.Resolve(records[0])
	if err != nil {
		return nil, nil, err
	}

	return records[1:], cols, nil
}

func cell(row []string, cols map[string]int, field string) string {
	i, exists := cols[field]
	if !exists || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseQuantity accepts integers and integral decimals ("12.0"). A blank
// cell yields fallback; a negative fallback makes the value mandatory.
func parseQuantity(raw string, fallback entities.Quantity) (entities.Quantity, error) {
	if raw == "" {
		if fallback < 0 {
			return 0, fmt.Errorf("quantity cannot be empty")
		}
		return fallback, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return entities.Quantity(n), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid quantity %q", raw)
	}
	return entities.Quantity(f), nil
}

func parseCoordinate(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}
