package csv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/repositories"
	"github.com/vsinha/disruption/pkg/domain/services"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
)

// Files names the CSV file of each table, relative to the source directory
type Files struct {
	Stock        string
	Locations    string
	Orders       string
	Capabilities string
	Bom          string
}

// DefaultFiles returns the conventional file names
func DefaultFiles() Files {
	return Files{
		Stock:        "inventory.csv",
		Locations:    "plants.csv",
		Orders:       "orders.csv",
		Capabilities: "plant_material.csv",
		Bom:          "material_component.csv",
	}
}

// Source loads a snapshot from a directory of CSV files
type Source struct {
	dir       string
	files     Files
	loader    *Loader
	validator *services.BOMValidator
}

// Verify interface compliance
var _ repositories.SnapshotSource = (*Source)(nil)

// NewSource creates a CSV snapshot source rooted at dir
func NewSource(dir string, files Files, schema Schema) *Source {
	return &Source{
		dir:       dir,
		files:     files,
		loader:    NewLoader(schema),
		validator: services.NewBOMValidator(),
	}
}

// WithClock sets the clock used for default need-by timestamps
func (s *Source) WithClock(clock func() time.Time) *Source {
	s.loader.WithClock(clock)
	return s
}

// Name identifies the source in logs
func (s *Source) Name() string {
	return "csv:" + s.dir
}

// LoadSnapshot reads all tables. The BOM file may be absent; every other
// file is required.
func (s *Source) LoadSnapshot(ctx context.Context) (*entities.Snapshot, error) {
	var (
		stock     []entities.StockRecord
		locations []entities.Location
		orders    []entities.OrderLine
		caps      []entities.ProductionCapability
		edges     []entities.BomEdge
	)

	if err := s.readFile(s.files.Stock, false, func(r io.Reader) (err error) {
		stock, err = s.loader.LoadStock(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.readFile(s.files.Locations, false, func(r io.Reader) (err error) {
		locations, err = s.loader.LoadLocations(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.readFile(s.files.Orders, false, func(r io.Reader) (err error) {
		orders, err = s.loader.LoadOrders(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.readFile(s.files.Capabilities, false, func(r io.Reader) (err error) {
		caps, err = s.loader.LoadCapabilities(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.readFile(s.files.Bom, true, func(r io.Reader) (err error) {
		edges, err = s.loader.LoadBom(r)
		return err
	}); err != nil {
		return nil, err
	}

	result := s.validator.ValidateBOM(edges)
	for _, w := range result.Warnings {
		logging.Warn(ctx).Str("source", s.Name()).Msg(w)
	}

	snap := entities.NewSnapshot(stock, locations, orders, caps, edges)
	logging.Info(ctx).
		Str("source", s.Name()).
		Int("stock_rows", len(snap.Stock)).
		Int("locations", len(snap.Locations)).
		Int("orders", len(snap.Orders)).
		Int("capabilities", len(snap.Capabilities)).
		Int("bom_edges", len(snap.BomEdges)).
		Msg("Snapshot loaded")

	return snap, nil
}

func (s *Source) readFile(name string, optional bool, parse func(io.Reader) error) error {
	if name == "" {
		if optional {
			return nil
		}
		return fmt.Errorf("csv source: required file name is empty")
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := parse(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
