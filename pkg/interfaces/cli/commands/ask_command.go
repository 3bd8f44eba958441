package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vsinha/disruption/pkg/application/services/orchestration"
	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/interfaces/cli/output"
	"github.com/vsinha/disruption/pkg/interfaces/intent"
)

// AskCommand answers free-text questions through the intent parser. With no
// question it runs an interactive session on In.
type AskCommand struct {
	config    Config
	responder *orchestration.Responder
	question  string
	in        io.Reader
}

// NewAskCommand creates an ask command
func NewAskCommand(config Config, responder *orchestration.Responder, question string, in io.Reader) *AskCommand {
	return &AskCommand{config: config, responder: responder, question: question, in: in}
}

// Execute answers the question, or starts the interactive session
func (c *AskCommand) Execute(ctx context.Context) error {
	if strings.TrimSpace(c.question) != "" {
		return c.Answer(ctx, c.question)
	}
	return c.runInteractiveSession(ctx)
}

// Answer dispatches one question to the matching planner call
func (c *AskCommand) Answer(ctx context.Context, question string) error {
	in := intent.Parse(question)
	out := c.config.output()

	switch in.Kind {
	case intent.SKUMissing:
		rec, err := c.responder.RecommendAction(ctx, entities.ProductID(in.SKU))
		if err != nil {
			return err
		}
		return output.Generate(rec, out)

	case intent.ImpactedBySKU:
		return output.Generate(c.responder.ImpactBySKU(ctx, entities.ProductID(in.SKU)), out)

	case intent.ComponentMissing:
		if err := output.Generate(c.responder.ImpactByComponent(ctx, entities.ProductID(in.Code)), out); err != nil {
			return err
		}
		result, err := c.responder.SimulateStockout(ctx, entities.ProductID(in.Code))
		if err != nil {
			return err
		}
		return output.Generate(result, out)

	case intent.ComponentStockout:
		result, err := c.responder.SimulateStockout(ctx, entities.ProductID(in.Code))
		if err != nil {
			return err
		}
		return output.Generate(result, out)

	case intent.RouteBlock:
		if in.Origin == "" || in.Dest == "" {
			fmt.Fprintln(c.config.writer(), "Need origin and destination plants like plant_201 and plant_203.")
			return nil
		}
		result, err := c.responder.RerouteBlock(ctx,
			entities.LocationID(in.Origin), entities.LocationID(in.Dest), entities.ProductID(in.SKU))
		if err != nil {
			return err
		}
		return output.Generate(result, out)

	case intent.Coverage:
		result, err := c.responder.Coverage(ctx, in.Horizon, false)
		if err != nil {
			return err
		}
		return output.Generate(result, out)

	default:
		c.printExamples()
		return nil
	}
}

func (c *AskCommand) runInteractiveSession(ctx context.Context) error {
	w := c.config.writer()
	scanner := bufio.NewScanner(c.in)

	fmt.Fprintln(w, "=== Disruption Session ===")
	fmt.Fprintln(w, "Type 'help' for examples, 'quit' to exit")
	fmt.Fprintln(w)

	for {
		fmt.Fprint(w, "disruption> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "help", "h":
			c.printExamples()
			continue
		case "quit", "q", "exit":
			fmt.Fprintln(w, "Goodbye!")
			return nil
		case "refresh":
			if err := c.responder.Refresh(ctx); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
			} else {
				fmt.Fprintln(w, "Snapshot reloaded.")
			}
			continue
		}

		if err := c.Answer(ctx, line); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
		fmt.Fprintln(w)
	}

	return scanner.Err()
}

func (c *AskCommand) printExamples() {
	fmt.Fprint(c.config.writer(), `I can answer questions like:
  - product_123 is missing, what should we do?
  - who is affected by product_123?
  - component product_45 is missing
  - run a stockout for component product_45
  - route plant_201 to plant_203 is blocked for product_123
  - coverage for the next 14 days
`)
}
