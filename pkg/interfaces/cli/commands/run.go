package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vsinha/disruption/pkg/application/services/orchestration"
	"github.com/vsinha/disruption/pkg/infrastructure/config"
)

// Executor is implemented by every subcommand
type Executor interface {
	Execute(ctx context.Context) error
}

// ResponderFactory builds the responder once flags are parsed
type ResponderFactory func(ctx context.Context) (*orchestration.Responder, func() error, error)

// Run parses a subcommand and its flags, builds the responder and executes it
func Run(
	ctx context.Context,
	args []string,
	settings config.Config,
	factory ResponderFactory,
	stdout io.Writer,
	stdin io.Reader,
) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-help" || args[0] == "--help" {
		printUsage(stdout)
		return nil
	}

	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)

	format := fs.String("format", "text", "Output format: text, json, csv")
	outputDir := fs.String("output", "", "Output directory for results (optional)")
	verbose := fs.Bool("verbose", false, "Enable verbose output")

	var build func(cfg Config, r *orchestration.Responder) Executor

	switch name {
	case "plan":
		var opts PlanOptions
		fs.StringVar(&opts.Product, "sku", "", "Product that became unavailable")
		fs.Int64Var(&opts.Qty, "qty", 0, "Unavailable quantity (0 = whole product)")
		fs.StringVar(&opts.Origin, "origin", "", "Location the shortage happened at")
		fs.IntVar(&opts.HorizonDays, "horizon", 0, "Only plan orders due within N days (0 = configured default)")
		fs.StringVar(&opts.Blocked, "block", "", "Blocked lanes as from:to[,from:to]")
		build = func(cfg Config, r *orchestration.Responder) Executor { return NewPlanCommand(cfg, r, opts) }

	case "impact":
		component := fs.String("component", "", "Missing component")
		sku := fs.String("sku", "", "Missing SKU")
		build = func(cfg Config, r *orchestration.Responder) Executor {
			return NewImpactCommand(cfg, r, *component, *sku)
		}

	case "stockout":
		code := fs.String("code", "", "Component or SKU to zero out")
		build = func(cfg Config, r *orchestration.Responder) Executor { return NewStockoutCommand(cfg, r, *code) }

	case "reroute":
		from := fs.String("from", "", "Origin of the blocked lane")
		to := fs.String("to", "", "Destination of the blocked lane")
		sku := fs.String("sku", "", "Limit to one SKU (default: every SKU delivered to -to)")
		build = func(cfg Config, r *orchestration.Responder) Executor {
			return NewRerouteCommand(cfg, r, *from, *to, *sku)
		}

	case "coverage":
		days := fs.Int("days", settings.Coverage.HorizonDays, "Horizon in days")
		riskOnly := fs.Bool("risk-only", false, "Only list products at risk")
		build = func(cfg Config, r *orchestration.Responder) Executor {
			return NewCoverageCommand(cfg, r, *days, *riskOnly)
		}

	case "recommend":
		sku := fs.String("sku", "", "Missing SKU")
		build = func(cfg Config, r *orchestration.Responder) Executor { return NewRecommendCommand(cfg, r, *sku) }

	case "hint":
		component := fs.String("component", "", "Component to produce")
		build = func(cfg Config, r *orchestration.Responder) Executor { return NewHintCommand(cfg, r, *component) }

	case "skus":
		sku := fs.String("sku", "", "List stock locations of this SKU instead")
		build = func(cfg Config, r *orchestration.Responder) Executor { return NewSKUsCommand(cfg, r, *sku) }

	case "ask":
		build = func(cfg Config, r *orchestration.Responder) Executor {
			return NewAskCommand(cfg, r, strings.Join(fs.Args(), " "), stdin)
		}

	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command: %s", name)
	}

	if err := fs.Parse(rest); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	responder, closeFn, err := factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer closeFn()

	cfg := Config{
		Format:       *format,
		OutputDir:    *outputDir,
		Verbose:      *verbose,
		SLATargetPct: settings.Planning.SLATargetPct,
		Out:          stdout,
	}
	return build(cfg, responder).Execute(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Disruption Recovery Planner

USAGE:
    disruption <command> [flags]

COMMANDS:
    plan        Plan recovery for a shortage event (-sku, -qty, -origin, -horizon, -block)
    impact      List orders hit by a missing component or SKU (-component | -sku)
    stockout    Simulate a full stockout of a component or SKU (-code)
    reroute     Replan with a lane closed (-from, -to, -sku)
    coverage    Compare demand due within a horizon with stock (-days, -risk-only)
    recommend   Recommend actions for a missing SKU (-sku)
    hint        Suggest production sites for a component (-component)
    skus        List SKUs, or stock locations of one SKU (-sku)
    ask         Answer a free-text question; interactive without one

COMMON FLAGS:
    -format <fmt>   Output format: text, json, csv (default: text)
    -output <dir>   Write results to a file in this directory
    -verbose        Enable verbose output

CONFIGURATION:
    -config <file> before the command selects a YAML file. DISRUPTION_*
    environment variables (also read from .env) override it.

EXAMPLES:
    disruption plan -sku product_123 -qty 40 -origin plant_201
    disruption reroute -from plant_201 -to plant_203 -format csv
    disruption coverage -days 14 -risk-only
    disruption ask "who is affected by product_123?"
`)
}
