package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vsinha/disruption/pkg/application/services/orchestration"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/interfaces/cli/output"
)

// PlanOptions describes one shortage event from the command line
type PlanOptions struct {
	Product     string
	Qty         int64
	Origin      string
	HorizonDays int
	Blocked     string
}

// PlanCommand plans recovery for a single shortage event
type PlanCommand struct {
	config    Config
	responder *orchestration.Responder
	opts      PlanOptions
}

// NewPlanCommand creates a plan command
func NewPlanCommand(config Config, responder *orchestration.Responder, opts PlanOptions) *PlanCommand {
	return &PlanCommand{config: config, responder: responder, opts: opts}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	event, err := c.event()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	blocked, err := ParseRoutes(c.opts.Blocked)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	result, err := c.responder.PlanRecovery(ctx, event, blocked)
	if err != nil {
		return fmt.Errorf("error planning recovery: %w", err)
	}

	return output.Generate(result, c.config.output())
}

func (c *PlanCommand) event() (entities.ShortageEvent, error) {
	qty := entities.Quantity(c.opts.Qty)
	if qty == 0 {
		qty = entities.UnboundedShortage
	}

	origin := entities.LocationID(c.opts.Origin)
	if origin == "" {
		origin = entities.NoLocation
	}

	event, err := entities.NewShortageEvent(entities.ProductID(c.opts.Product), qty, origin)
	if err != nil {
		return entities.ShortageEvent{}, err
	}
	if c.opts.HorizonDays < 0 {
		return entities.ShortageEvent{}, fmt.Errorf("horizon cannot be negative, got %d", c.opts.HorizonDays)
	}
	if c.opts.HorizonDays > 0 {
		return event.WithHorizon(time.Duration(c.opts.HorizonDays) * 24 * time.Hour), nil
	}
	return *event, nil
}

// ParseRoutes reads a comma separated list of from:to lanes
func ParseRoutes(raw string) ([]entities.Route, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var routes []entities.Route
	for _, part := range strings.Split(raw, ",") {
		from, to, ok := strings.Cut(strings.TrimSpace(part), ":")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid route %q (use from:to)", part)
		}
		routes = append(routes, entities.Route{From: entities.LocationID(from), To: entities.LocationID(to)})
	}
	return routes, nil
}
