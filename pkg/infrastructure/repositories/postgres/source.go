package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/repositories"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
)

const (
	stockQuery = `
	SELECT product_id, location_id, on_hand
	FROM stock
	ORDER BY product_id, location_id;
	`

	locationsQuery = `
	SELECT location_id, lat, lon
	FROM locations
	ORDER BY location_id;
	`

	ordersQuery = `
	SELECT order_id, customer_id, product_id, qty, destination_location_id, need_by_ts
	FROM orders
	ORDER BY need_by_ts, order_id;
	`

	capabilitiesQuery = `
	SELECT location_id, product_id, lead_time_hours
	FROM production_capabilities
	ORDER BY product_id, location_id;
	`

	bomQuery = `
	SELECT parent_product_id, child_product_id, usage_qty
	FROM bom_edges
	ORDER BY parent_product_id, child_product_id;
	`
)

// Open connects to Postgres through the pgx database/sql driver
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return db, nil
}

// Source loads a snapshot from the five planning tables
type Source struct {
	DB *sql.DB
}

// Verify interface compliance
var _ repositories.SnapshotSource = (*Source)(nil)

// NewSource wraps an open database handle
func NewSource(db *sql.DB) *Source {
	return &Source{DB: db}
}

// Name identifies the source in logs
func (s *Source) Name() string {
	return "postgres"
}

// LoadSnapshot reads every table in one read-only transaction so the
// snapshot is consistent
func (s *Source) LoadSnapshot(ctx context.Context) (*entities.Snapshot, error) {
	if s.DB == nil {
		return nil, errors.New("postgres source: db is nil")
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stock, err := loadStock(ctx, tx)
	if err != nil {
		return nil, err
	}
	locations, err := loadLocations(ctx, tx)
	if err != nil {
		return nil, err
	}
	orders, err := loadOrders(ctx, tx)
	if err != nil {
		return nil, err
	}
	caps, err := loadCapabilities(ctx, tx)
	if err != nil {
		return nil, err
	}
	edges, err := loadBom(ctx, tx)
	if err != nil {
		return nil, err
	}

	snap := entities.NewSnapshot(stock, locations, orders, caps, edges)
	logging.Info(ctx).
		Str("source", s.Name()).
		Int("stock_rows", len(snap.Stock)).
		Int("orders", len(snap.Orders)).
		Msg("Snapshot loaded")

	return snap, nil
}

func loadStock(ctx context.Context, tx *sql.Tx) ([]entities.StockRecord, error) {
	rows, err := tx.QueryContext(ctx, stockQuery)
	if err != nil {
		return nil, fmt.Errorf("load stock: query stock table: %w", err)
	}
	defer rows.Close()

	var out []entities.StockRecord
	for rows.Next() {
		var product, location string
		var onHand int64
		if err := rows.Scan(&product, &location, &onHand); err != nil {
			return nil, fmt.Errorf("load stock: scan rows: %w", err)
		}
		rec, err := entities.NewStockRecord(entities.ProductID(product), entities.LocationID(location), entities.Quantity(onHand))
		if err != nil {
			return nil, fmt.Errorf("load stock: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load stock: row iteration: %w", err)
	}
	return out, nil
}

func loadLocations(ctx context.Context, tx *sql.Tx) ([]entities.Location, error) {
	rows, err := tx.QueryContext(ctx, locationsQuery)
	if err != nil {
		return nil, fmt.Errorf("load locations: query locations table: %w", err)
	}
	defer rows.Close()

	var out []entities.Location
	for rows.Next() {
		var id string
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&id, &lat, &lon); err != nil {
			return nil, fmt.Errorf("load locations: scan rows: %w", err)
		}
		if !lat.Valid || !lon.Valid {
			out = append(out, entities.Location{ID: entities.LocationID(id)})
			continue
		}
		loc, err := entities.NewLocation(entities.LocationID(id), lat.Float64, lon.Float64)
		if err != nil {
			return nil, fmt.Errorf("load locations: %w", err)
		}
		out = append(out, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load locations: row iteration: %w", err)
	}
	return out, nil
}

func loadOrders(ctx context.Context, tx *sql.Tx) ([]entities.OrderLine, error) {
	rows, err := tx.QueryContext(ctx, ordersQuery)
	if err != nil {
		return nil, fmt.Errorf("load orders: query orders table: %w", err)
	}
	defer rows.Close()

	var out []entities.OrderLine
	for rows.Next() {
		var orderID, customer, product, dest string
		var qty int64
		var needBy time.Time
		if err := rows.Scan(&orderID, &customer, &product, &qty, &dest, &needBy); err != nil {
			return nil, fmt.Errorf("load orders: scan rows: %w", err)
		}
		order, err := entities.NewOrderLine(orderID, customer, entities.ProductID(product), entities.Quantity(qty), entities.LocationID(dest), needBy)
		if err != nil {
			return nil, fmt.Errorf("load orders: order %s: %w", orderID, err)
		}
		out = append(out, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load orders: row iteration: %w", err)
	}
	return out, nil
}

func loadCapabilities(ctx context.Context, tx *sql.Tx) ([]entities.ProductionCapability, error) {
	rows, err := tx.QueryContext(ctx, capabilitiesQuery)
	if err != nil {
		return nil, fmt.Errorf("load capabilities: query production_capabilities table: %w", err)
	}
	defer rows.Close()

	var out []entities.ProductionCapability
	for rows.Next() {
		var location, product string
		var lead sql.NullFloat64
		if err := rows.Scan(&location, &product, &lead); err != nil {
			return nil, fmt.Errorf("load capabilities: scan rows: %w", err)
		}
		if !lead.Valid {
			out = append(out, entities.ProductionCapability{
				LocationID: entities.LocationID(location),
				ProductID:  entities.ProductID(product),
			})
			continue
		}
		c, err := entities.NewProductionCapability(entities.LocationID(location), entities.ProductID(product), lead.Float64)
		if err != nil {
			return nil, fmt.Errorf("load capabilities: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load capabilities: row iteration: %w", err)
	}
	return out, nil
}

func loadBom(ctx context.Context, tx *sql.Tx) ([]entities.BomEdge, error) {
	rows, err := tx.QueryContext(ctx, bomQuery)
	if err != nil {
		return nil, fmt.Errorf("load bom: query bom_edges table: %w", err)
	}
	defer rows.Close()

	var out []entities.BomEdge
	for rows.Next() {
		var parent, child string
		var usage int64
		if err := rows.Scan(&parent, &child, &usage); err != nil {
			return nil, fmt.Errorf("load bom: scan rows: %w", err)
		}
		edge, err := entities.NewBomEdge(entities.ProductID(parent), entities.ProductID(child), entities.Quantity(usage))
		if err != nil {
			return nil, fmt.Errorf("load bom: %w", err)
		}
		out = append(out, *edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load bom: row iteration: %w", err)
	}
	return out, nil
}
