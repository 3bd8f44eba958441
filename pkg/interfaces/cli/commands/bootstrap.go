package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vsinha/disruption/pkg/application/services/orchestration"
	"github.com/vsinha/disruption/pkg/application/services/recovery"
	"github.com/vsinha/disruption/pkg/domain/repositories"
	"github.com/vsinha/disruption/pkg/domain/services"
	"github.com/vsinha/disruption/pkg/infrastructure/config"
	"github.com/vsinha/disruption/pkg/infrastructure/events"
	"github.com/vsinha/disruption/pkg/infrastructure/logging"
	"github.com/vsinha/disruption/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/disruption/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/disruption/pkg/infrastructure/repositories/postgres"
)

// BuildSource creates the snapshot source named by the configuration.
// The returned close function releases any database handle.
func BuildSource(settings config.Config) (repositories.SnapshotSource, func() error, error) {
	noop := func() error { return nil }

	switch settings.Source {
	case config.SourcePostgres:
		db, err := postgres.Open(settings.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return postgres.NewSource(db), closer(db), nil

	case config.SourceCSV, "":
		schema, err := csv.DefaultSchema().WithOverrides(settings.Schema)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid schema overrides: %w", err)
		}
		files := csv.Files{
			Stock:        settings.Files.Stock,
			Locations:    settings.Files.Locations,
			Orders:       settings.Files.Orders,
			Capabilities: settings.Files.Capabilities,
			Bom:          settings.Files.Bom,
		}
		return csv.NewSource(settings.DataDir, files, schema), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown snapshot source: %s", settings.Source)
	}
}

func closer(db *sql.DB) func() error {
	return db.Close
}

// BuildPlanner creates a planner from the transit and planning settings
func BuildPlanner(settings config.Config) (*recovery.Planner, error) {
	speed, err := settings.SpeedKmh()
	if err != nil {
		return nil, err
	}
	estimator, err := services.NewDistanceEstimator(speed)
	if err != nil {
		return nil, err
	}
	mode, err := recovery.ParseMode(settings.Planning.Mode)
	if err != nil {
		return nil, err
	}

	return recovery.NewPlanner(estimator, recovery.PlannerConfig{
		Workers:        settings.Planning.Workers,
		DefaultHorizon: settings.DefaultHorizon(),
		Mode:           mode,
	})
}

// BuildResponder wires source, session, planner and event log. Every event
// is echoed to the debug log.
func BuildResponder(ctx context.Context, settings config.Config) (*orchestration.Responder, func() error, error) {
	source, closeSource, err := BuildSource(settings)
	if err != nil {
		return nil, closeSource, err
	}

	planner, err := BuildPlanner(settings)
	if err != nil {
		return nil, closeSource, err
	}

	session, err := memory.NewSession(ctx, source)
	if err != nil {
		return nil, closeSource, err
	}

	store := events.NewInMemoryEventStore()
	handler := &events.HandlerFunc{
		Types: events.AllEventTypes,
		Fn: func(e events.Event) error {
			logging.Logger.Debug().
				Str("event", e.Type()).
				Str("run_id", e.StreamID()).
				Interface("data", e.Data()).
				Msg("event")
			return nil
		},
	}
	if err := store.Subscribe(events.AllEventTypes, handler); err != nil {
		return nil, closeSource, err
	}

	responder, err := orchestration.NewResponder(session, planner, store)
	if err != nil {
		return nil, closeSource, err
	}
	return responder, closeSource, nil
}
