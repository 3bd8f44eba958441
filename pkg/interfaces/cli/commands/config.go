package commands

import (
	"io"
	"os"

	"github.com/vsinha/disruption/pkg/interfaces/cli/output"
)

// Config holds output settings shared by every subcommand
type Config struct {
	Format       string
	OutputDir    string
	Verbose      bool
	SLATargetPct float64
	Out          io.Writer
}

func (c Config) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c Config) output() output.Config {
	return output.Config{
		Format:       c.Format,
		OutputDir:    c.OutputDir,
		Verbose:      c.Verbose,
		SLATargetPct: c.SLATargetPct,
		Out:          c.writer(),
	}
}
