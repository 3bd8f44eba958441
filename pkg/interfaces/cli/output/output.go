package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/disruption/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format       string
	OutputDir    string
	Verbose      bool
	SLATargetPct float64
	Out          io.Writer
}

// Formats accepted by Generate
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Generate renders a planning result in the configured format. Output goes
// to Out (stdout when nil) or, when OutputDir is set, to a file named after
// the result kind.
func Generate(result interface{}, config Config) error {
	var buf bytes.Buffer
	var err error

	switch config.Format {
	case FormatText, "":
		err = renderText(&buf, result, config.SLATargetPct)
	case FormatJSON:
		err = renderJSON(&buf, result)
	case FormatCSV:
		err = renderCSV(&buf, result)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
	if err != nil {
		return err
	}

	if config.OutputDir == "" {
		out := config.Out
		if out == nil {
			out = os.Stdout
		}
		_, err := out.Write(buf.Bytes())
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ext := config.Format
	if ext == "" || ext == FormatText {
		ext = "txt"
	}
	filename := filepath.Join(config.OutputDir, baseName(result)+"."+ext)
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	if config.Verbose && config.Out != nil {
		fmt.Fprintf(config.Out, "💾 Results saved to: %s\n", filename)
	}
	return nil
}

func baseName(result interface{}) string {
	switch r := result.(type) {
	case *dto.PlanResult:
		return "recovery_plan"
	case *dto.ScenarioResult:
		if r.Kind == dto.ScenarioReroute {
			return "reroute_plan"
		}
		return "stockout_plan"
	case *dto.CoverageResult:
		return fmt.Sprintf("coverage_alerts_%dd", r.HorizonDays)
	case *dto.ImpactResult:
		return "impacted_orders"
	case *dto.Recommendation:
		return "recommendation"
	case *dto.ProductionHint:
		return "production_hint"
	default:
		return "result"
	}
}
