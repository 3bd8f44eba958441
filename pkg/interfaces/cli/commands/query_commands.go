package commands

import (
	"context"
	"fmt"

	"github.com/vsinha/disruption/pkg/application/services/orchestration"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/interfaces/cli/output"
)

// ImpactCommand lists orders affected by a missing component or SKU
type ImpactCommand struct {
	config    Config
	responder *orchestration.Responder
	component string
	sku       string
}

// NewImpactCommand creates an impact command. Exactly one of component and
// sku must be set.
func NewImpactCommand(config Config, responder *orchestration.Responder, component, sku string) *ImpactCommand {
	return &ImpactCommand{config: config, responder: responder, component: component, sku: sku}
}

// Execute runs the impact query
func (c *ImpactCommand) Execute(ctx context.Context) error {
	switch {
	case c.component != "" && c.sku != "":
		return fmt.Errorf("validation error: use either -component or -sku, not both")
	case c.component != "":
		return output.Generate(c.responder.ImpactByComponent(ctx, entities.ProductID(c.component)), c.config.output())
	case c.sku != "":
		return output.Generate(c.responder.ImpactBySKU(ctx, entities.ProductID(c.sku)), c.config.output())
	default:
		return fmt.Errorf("validation error: -component or -sku is required")
	}
}

// CoverageCommand reports demand against stock over a horizon
type CoverageCommand struct {
	config      Config
	responder   *orchestration.Responder
	horizonDays int
	riskOnly    bool
}

// NewCoverageCommand creates a coverage command
func NewCoverageCommand(config Config, responder *orchestration.Responder, horizonDays int, riskOnly bool) *CoverageCommand {
	return &CoverageCommand{config: config, responder: responder, horizonDays: horizonDays, riskOnly: riskOnly}
}

// Execute runs the coverage report
func (c *CoverageCommand) Execute(ctx context.Context) error {
	result, err := c.responder.Coverage(ctx, c.horizonDays, c.riskOnly)
	if err != nil {
		return fmt.Errorf("error computing coverage: %w", err)
	}
	return output.Generate(result, c.config.output())
}

// RecommendCommand suggests actions for every open order of a SKU
type RecommendCommand struct {
	config    Config
	responder *orchestration.Responder
	sku       string
}

// NewRecommendCommand creates a recommend command
func NewRecommendCommand(config Config, responder *orchestration.Responder, sku string) *RecommendCommand {
	return &RecommendCommand{config: config, responder: responder, sku: sku}
}

// Execute runs the recommendation
func (c *RecommendCommand) Execute(ctx context.Context) error {
	if c.sku == "" {
		return fmt.Errorf("validation error: -sku is required")
	}

	rec, err := c.responder.RecommendAction(ctx, entities.ProductID(c.sku))
	if err != nil {
		return fmt.Errorf("error recommending action: %w", err)
	}
	return output.Generate(rec, c.config.output())
}

// HintCommand suggests production sites for a component and its parents
type HintCommand struct {
	config    Config
	responder *orchestration.Responder
	component string
}

// NewHintCommand creates a hint command
func NewHintCommand(config Config, responder *orchestration.Responder, component string) *HintCommand {
	return &HintCommand{config: config, responder: responder, component: component}
}

// Execute runs the production hint
func (c *HintCommand) Execute(ctx context.Context) error {
	if c.component == "" {
		return fmt.Errorf("validation error: -component is required")
	}
	return output.Generate(c.responder.ProductionHint(ctx, entities.ProductID(c.component)), c.config.output())
}

// SKUsCommand lists SKUs, or the stock locations of one SKU
type SKUsCommand struct {
	config    Config
	responder *orchestration.Responder
	sku       string
}

// NewSKUsCommand creates a skus command
func NewSKUsCommand(config Config, responder *orchestration.Responder, sku string) *SKUsCommand {
	return &SKUsCommand{config: config, responder: responder, sku: sku}
}

// Execute runs the listing
func (c *SKUsCommand) Execute(ctx context.Context) error {
	if c.sku != "" {
		return output.Generate(c.responder.LocationsForSKU(entities.ProductID(c.sku)), c.config.output())
	}
	return output.Generate(c.responder.ListSKUs(), c.config.output())
}
