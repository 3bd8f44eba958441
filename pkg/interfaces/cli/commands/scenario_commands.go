package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/disruption/pkg/application/services/orchestration"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/interfaces/cli/output"
)

// StockoutCommand simulates a full stockout of a component or SKU
type StockoutCommand struct {
	config    Config
	responder *orchestration.Responder
	code      string
}

// NewStockoutCommand creates a stockout command
func NewStockoutCommand(config Config, responder *orchestration.Responder, code string) *StockoutCommand {
	return &StockoutCommand{config: config, responder: responder, code: code}
}

// Execute runs the stockout simulation
func (c *StockoutCommand) Execute(ctx context.Context) error {
	if c.code == "" {
		return fmt.Errorf("validation error: a component or SKU code is required")
	}

	result, err := c.responder.SimulateStockout(ctx, entities.ProductID(c.code))
	if err != nil {
		return fmt.Errorf("error simulating stockout: %w", err)
	}
	return output.Generate(result, c.config.output())
}

// RerouteCommand replans with one lane closed
type RerouteCommand struct {
	config    Config
	responder *orchestration.Responder
	from      string
	to        string
	sku       string
}

// NewRerouteCommand creates a reroute command. An empty sku covers every
// product delivered to the destination.
func NewRerouteCommand(config Config, responder *orchestration.Responder, from, to, sku string) *RerouteCommand {
	return &RerouteCommand{config: config, responder: responder, from: from, to: to, sku: sku}
}

// Execute runs the reroute plan
func (c *RerouteCommand) Execute(ctx context.Context) error {
	if c.from == "" || c.to == "" {
		return fmt.Errorf("validation error: need origin and destination, e.g. -from plant_201 -to plant_203")
	}

	result, err := c.responder.RerouteBlock(
		ctx,
		entities.LocationID(c.from),
		entities.LocationID(c.to),
		entities.ProductID(c.sku),
	)
	if err != nil {
		return fmt.Errorf("error planning reroute: %w", err)
	}
	return output.Generate(result, c.config.output())
}
