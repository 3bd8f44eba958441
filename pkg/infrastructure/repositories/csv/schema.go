package csv

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// Field declares the header aliases recognised for one logical column.
// Aliases are tried in order; Contains is a substring fallback used only
// when no alias matches.
type Field struct {
	Name     string
	Aliases  []string
	Contains []string
	Required bool
}

// TableSchema is the declared column mapping of one input table
type TableSchema struct {
	Table  string
	Fields []Field
}

// Schema groups the mappings of every input table
type Schema struct {
	Stock        TableSchema
	Locations    TableSchema
	Orders       TableSchema
	Capabilities TableSchema
	Bom          TableSchema
}

// Logical field names
const (
	FieldProductID   = "product_id"
	FieldLocationID  = "location_id"
	FieldOnHand      = "on_hand"
	FieldLat         = "lat"
	FieldLon         = "lon"
	FieldOrderID     = "order_id"
	FieldCustomerID  = "customer_id"
	FieldQty         = "qty"
	FieldDestination = "destination"
	FieldNeedBy      = "need_by"
	FieldLeadTime    = "lead_time_hours"
	FieldParent      = "parent"
	FieldChild       = "child"
	FieldUsage       = "usage_qty"
)

// DefaultSchema returns the built-in alias lists
func DefaultSchema() Schema {
	return Schema{
		Stock: TableSchema{Table: "stock", Fields: []Field{
			{Name: FieldProductID, Aliases: []string{"sku", "product", "product_id", "material"}, Required: true},
			{Name: FieldLocationID, Aliases: []string{"loc_id", "plant", "plant_id", "site", "location"}, Required: true},
			{Name: FieldOnHand, Aliases: []string{"on_hand", "stock", "onhand", "qty", "quantity"}, Required: true},
		}},
		Locations: TableSchema{Table: "locations", Fields: []Field{
			{Name: FieldLocationID, Aliases: []string{"loc_id", "plant", "plant_id", "site", "location", "id"}, Required: true},
			{Name: FieldLat, Aliases: []string{"lat", "latitude", "y"}, Required: true},
			{Name: FieldLon, Aliases: []string{"lon", "longitude", "long", "lng", "x"}, Required: true},
		}},
		Orders: TableSchema{Table: "orders", Fields: []Field{
			{Name: FieldProductID, Aliases: []string{"sku", "product", "product_id", "material", "component"}, Required: true},
			{Name: FieldQty, Aliases: []string{"qty", "quantity", "order_qty", "ordered_qty"}, Required: true},
			{Name: FieldDestination, Aliases: []string{"dest_loc_id", "destination", "dest", "plant", "location", "site"}, Required: true},
			{Name: FieldCustomerID, Aliases: []string{"customer_id", "customer", "cust_id", "client_id", "client"}},
			{Name: FieldOrderID, Aliases: []string{"order_id", "ord_id", "so_id", "sales_order", "id"}},
			{
				Name:     FieldNeedBy,
				Aliases:  []string{"need_by_ts_utc", "need_by_ts", "need_by", "due_date", "need_date"},
				Contains: []string{"need", "due", "deliver", "require"},
			},
		}},
		Capabilities: TableSchema{Table: "capabilities", Fields: []Field{
			{Name: FieldLocationID, Aliases: []string{"loc_id", "plant", "plant_id", "site", "location"}, Required: true},
			{Name: FieldProductID, Aliases: []string{"sku", "product", "product_id", "material"}, Required: true},
			{Name: FieldLeadTime, Aliases: []string{"lead_time_h", "lead_time_hours", "lead_time", "lt_h"}, Required: true},
		}},
		Bom: TableSchema{Table: "bom", Fields: []Field{
			{Name: FieldChild, Aliases: []string{
				"component", "component_id", "componentcode", "comp", "comp_id", "child", "child_id",
				"child_material", "child_item", "subcomponent",
			}, Required: true},
			{Name: FieldParent, Aliases: []string{
				"material", "material_id", "product", "product_id", "fg", "finished_good", "parent", "parent_id",
				"header_material", "header_item",
			}, Required: true},
			{Name: FieldUsage, Aliases: []string{"usage_qty", "qty_per", "usage", "quantity", "qty"}},
		}},
	}
}

// WithOverrides replaces alias lists from configuration: table -> field -> aliases
func (s Schema) WithOverrides(overrides map[string]map[string][]string) (Schema, error) {
	tables := map[string]*TableSchema{
		s.Stock.Table:        &s.Stock,
		s.Locations.Table:    &s.Locations,
		s.Orders.Table:       &s.Orders,
		s.Capabilities.Table: &s.Capabilities,
		s.Bom.Table:          &s.Bom,
	}

	for table, fields := range overrides {
		ts, exists := tables[table]
		if !exists {
			return s, fmt.Errorf("unknown schema table: %s", table)
		}
		// copy before mutating so DefaultSchema results stay independent
		ts.Fields = append([]Field(nil), ts.Fields...)
		for name, aliases := range fields {
			i := ts.fieldIndex(name)
			if i < 0 {
				return s, fmt.Errorf("unknown field %s in schema table %s", name, table)
			}
			normalized := make([]string, 0, len(aliases))
			for _, a := range aliases {
				normalized = append(normalized, normalizeHeader(a))
			}
			ts.Fields[i].Aliases = normalized
		}
	}
	return s, nil
}

func (t TableSchema) fieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Resolve maps logical fields to column positions. Missing required fields
// are reported together as a *entities.SchemaError.
func (t TableSchema) Resolve(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	resolved := make(map[string]int, len(t.Fields))
	var missing []string

	for _, f := range t.Fields {
		if col, ok := matchField(f, header, positions); ok {
			resolved[f.Name] = col
			continue
		}
		if f.Required {
			missing = append(missing, f.Name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &entities.SchemaError{Table: t.Table, Missing: missing}
	}
	return resolved, nil
}

func matchField(f Field, header []string, positions map[string]int) (int, bool) {
	for _, alias := range f.Aliases {
		if col, exists := positions[alias]; exists {
			return col, true
		}
	}
	for i, h := range header {
		key := normalizeHeader(h)
		for _, fragment := range f.Contains {
			if strings.Contains(key, fragment) {
				return i, true
			}
		}
	}
	return 0, false
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
